package goal

import "github.com/octotrack/octotrack-api/internal/progress"

type CreateGoalDTO struct {
	Title        string          `json:"title"`
	Type         progress.Metric `json:"type"`
	Target       int             `json:"target"`
	DeadlineDays int             `json:"deadline_days"`
}

type UpdateGoalDTO struct {
	Title        *string          `json:"title"`
	Type         *progress.Metric `json:"type"`
	Target       *int             `json:"target"`
	Current      *int             `json:"current"`
	DeadlineDays *int             `json:"deadline_days"`
}

type UpdateProgressDTO struct {
	GoalID string `json:"goal_id"`
}

// RefreshSummary reports the outcome of a refresh-all pass. Failed goals are
// skipped, not fatal, so Attempted can exceed Updated.
type RefreshSummary struct {
	Attempted int `json:"attempted"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}
