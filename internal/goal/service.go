package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/octotrack/octotrack-api/internal/auth"
	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/github"
	"github.com/octotrack/octotrack-api/internal/progress"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidID    = errors.New("invalid id format")
	ErrValidation   = errors.New("validation failed")
)

type GoalService interface {
	Create(ctx context.Context, dto CreateGoalDTO) (*Goal, error)
	List(ctx context.Context) ([]Goal, error)
	Update(ctx context.Context, id string, dto UpdateGoalDTO) (*Goal, error)
	Delete(ctx context.Context, id string) error
	RefreshProgress(ctx context.Context, goalID string) (*Goal, error)
	RefreshAll(ctx context.Context) (RefreshSummary, error)
	Recompute(ctx context.Context, goalID, userID uuid.UUID) error
	SetRecomputeQueue(queue RecomputeQueue)
}

// RecomputeQueue accepts deferred progress computations. Enqueue reports
// false when the job could not be accepted.
type RecomputeQueue interface {
	Enqueue(goalID, userID uuid.UUID) bool
}

type goalService struct {
	repo   Repository
	tokens github.TokenProvider
	engine *progress.Engine
	queue  RecomputeQueue
}

func NewService(repo Repository, tokens github.TokenProvider, engine *progress.Engine) GoalService {
	return &goalService{
		repo:   repo,
		tokens: tokens,
		engine: engine,
	}
}

// SetRecomputeQueue attaches the background recompute worker. Without a
// queue, goals are created with zero progress until an explicit refresh.
func (s *goalService) SetRecomputeQueue(queue RecomputeQueue) {
	s.queue = queue
}

func getUserIDFromContext(ctx context.Context, log logrus.FieldLogger, action string) (uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

func validateCreate(dto CreateGoalDTO) error {
	if dto.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !dto.Type.IsValid() {
		return fmt.Errorf("%w: invalid goal type %q", ErrValidation, dto.Type)
	}
	if dto.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrValidation)
	}
	if dto.DeadlineDays <= 0 {
		return fmt.Errorf("%w: deadline_days must be positive", ErrValidation)
	}
	return nil
}

func (s *goalService) Create(ctx context.Context, dto CreateGoalDTO) (*Goal, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "create goal")
	if err != nil {
		return nil, err
	}

	if err := validateCreate(dto); err != nil {
		return nil, err
	}

	now := time.Now()
	goal := Goal{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        dto.Title,
		Type:         dto.Type,
		Target:       dto.Target,
		Current:      0,
		DeadlineDays: dto.DeadlineDays,
		DeadlineDate: now.AddDate(0, 0, dto.DeadlineDays),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(&goal); err != nil {
		log.WithError(err).Error("Failed to create goal")
		return nil, err
	}

	// Initial progress is computed off the request path; the caller sees
	// current=0 until the worker catches up.
	if s.queue != nil {
		if !s.queue.Enqueue(goal.ID, userID) {
			log.WithField("goal_id", goal.ID).Warn("Recompute queue full, initial progress deferred")
		}
	}

	log.WithField("goal_id", goal.ID).Info("Goal created")
	return &goal, nil
}

func (s *goalService) List(ctx context.Context) ([]Goal, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "list goals")
	if err != nil {
		return nil, err
	}

	goals, err := s.repo.FindAllByUserID(userID)
	if err != nil {
		log.WithError(err).Error("Failed to list goals")
		return nil, err
	}
	return goals, nil
}

func (s *goalService) Update(ctx context.Context, id string, dto UpdateGoalDTO) (*Goal, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "update goal")
	if err != nil {
		return nil, err
	}

	goalID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	goal, err := s.repo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		if *dto.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		goal.Title = *dto.Title
	}
	if dto.Type != nil {
		if !dto.Type.IsValid() {
			return nil, fmt.Errorf("%w: invalid goal type %q", ErrValidation, *dto.Type)
		}
		goal.Type = *dto.Type
	}
	if dto.Target != nil {
		if *dto.Target <= 0 {
			return nil, fmt.Errorf("%w: target must be positive", ErrValidation)
		}
		goal.Target = *dto.Target
	}
	if dto.Current != nil {
		if *dto.Current < 0 {
			return nil, fmt.Errorf("%w: current cannot be negative", ErrValidation)
		}
		goal.Current = *dto.Current
	}
	if dto.DeadlineDays != nil {
		if *dto.DeadlineDays <= 0 {
			return nil, fmt.Errorf("%w: deadline_days must be positive", ErrValidation)
		}
		// The deadline is always anchored to the creation time; days and
		// date move together.
		goal.DeadlineDays = *dto.DeadlineDays
		goal.DeadlineDate = goal.CreatedAt.AddDate(0, 0, *dto.DeadlineDays)
	}
	goal.UpdatedAt = time.Now()

	if err := s.repo.Update(goal); err != nil {
		log.WithError(err).Error("Failed to update goal")
		return nil, err
	}
	return goal, nil
}

func (s *goalService) Delete(ctx context.Context, id string) error {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "delete goal")
	if err != nil {
		return err
	}

	goalID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidID
	}

	if err := s.repo.Delete(goalID, userID); err != nil {
		if !errors.Is(err, ErrGoalNotFound) {
			log.WithError(err).Error("Failed to delete goal")
		}
		return err
	}

	log.WithField("goal_id", goalID).Info("Goal deleted")
	return nil
}

func (s *goalService) RefreshProgress(ctx context.Context, goalID string) (*Goal, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "refresh goal progress")
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(goalID)
	if err != nil {
		return nil, ErrInvalidID
	}

	if err := s.Recompute(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByIDAndUserID(id, userID)
}

// Recompute calculates current progress for one goal and persists it. It is
// shared by the request path and the background worker, which has no claims
// in its context and passes the owner id explicitly.
func (s *goalService) Recompute(ctx context.Context, goalID, userID uuid.UUID) error {
	log := config.WithContext(ctx)

	goal, err := s.repo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		return err
	}

	token, err := s.tokens.ProviderToken(ctx, userID.String())
	if err != nil {
		return err
	}

	since, until := goal.Window()
	result, err := s.engine.Progress(ctx, token, "", goal.Type, since, until)
	if err != nil {
		return err
	}
	if result.SkippedRepos > 0 {
		log.WithFields(logrus.Fields{
			"goal_id":       goalID,
			"skipped_repos": result.SkippedRepos,
		}).Warn("Progress may be undercounted due to unreadable repositories")
	}

	return s.repo.UpdateCurrent(goalID, userID, result.Count)
}

// RefreshAll recomputes every goal of the caller, isolating failures per
// goal: one broken goal never blocks the rest of the batch.
func (s *goalService) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "refresh all goals")
	if err != nil {
		return RefreshSummary{}, err
	}

	token, err := s.tokens.ProviderToken(ctx, userID.String())
	if err != nil {
		return RefreshSummary{}, err
	}

	goals, err := s.repo.FindAllByUserID(userID)
	if err != nil {
		return RefreshSummary{}, err
	}
	if len(goals) == 0 {
		return RefreshSummary{}, nil
	}

	// Resolve the username once for the whole batch.
	username := ""
	if claims, err := auth.GetUserClaimsFromContext(ctx); err == nil {
		username = claims.Login
	}

	summary := RefreshSummary{}
	for _, goal := range goals {
		summary.Attempted++

		since, until := goal.Window()
		result, err := s.engine.Progress(ctx, token, username, goal.Type, since, until)
		if err != nil {
			log.WithError(err).WithField("goal_id", goal.ID).Warn("Skipping goal in batch refresh")
			summary.Failed++
			continue
		}
		if err := s.repo.UpdateCurrent(goal.ID, userID, result.Count); err != nil {
			log.WithError(err).WithField("goal_id", goal.ID).Warn("Failed to persist refreshed progress")
			summary.Failed++
			continue
		}
		summary.Updated++
	}
	return summary, nil
}
