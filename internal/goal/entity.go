package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/octotrack/octotrack-api/internal/progress"
)

type Goal struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4()" json:"id"`
	UserID       uuid.UUID       `gorm:"column:user_id;not null;index" json:"user_id"`
	Title        string          `gorm:"not null" json:"title"`
	Type         progress.Metric `gorm:"type:varchar(32);not null" json:"type"`
	Target       int             `gorm:"not null" json:"target"`
	Current      int             `gorm:"not null;default:0" json:"current"`
	DeadlineDays int             `gorm:"column:deadline_days;not null" json:"deadline_days"`
	DeadlineDate time.Time       `gorm:"column:deadline_date;not null" json:"deadline_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Window is the span progress is computed over: from goal creation until the
// deadline, capped at the present by the engine.
func (g *Goal) Window() (since, until time.Time) {
	return g.CreatedAt, g.DeadlineDate
}
