package goal

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGoalNotFound = errors.New("goal not found")

type Repository interface {
	Create(goal *Goal) error
	FindAllByUserID(userID uuid.UUID) ([]Goal, error)
	FindByIDAndUserID(id, userID uuid.UUID) (*Goal, error)
	Update(goal *Goal) error
	UpdateCurrent(id, userID uuid.UUID, current int) error
	Delete(id, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(goal *Goal) error {
	return r.db.Create(goal).Error
}

func (r *repository) FindAllByUserID(userID uuid.UUID) ([]Goal, error) {
	var goals []Goal
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// FindByIDAndUserID is owner-scoped: another user's goal id behaves exactly
// like a missing one.
func (r *repository) FindByIDAndUserID(id, userID uuid.UUID) (*Goal, error) {
	var goal Goal
	if err := r.db.First(&goal, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *repository) Update(goal *Goal) error {
	return r.db.Save(goal).Error
}

func (r *repository) UpdateCurrent(id, userID uuid.UUID, current int) error {
	result := r.db.Model(&Goal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("current", current)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *repository) Delete(id, userID uuid.UUID) error {
	result := r.db.Delete(&Goal{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
