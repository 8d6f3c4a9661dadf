package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	categorydomain "github.com/zgt/todo-list/domain/category"
	domain "github.com/zgt/todo-list/domain/task"
)

// Repository provides access to task storage. Every query is scoped by
// owner, and the gorm soft-delete scope keeps deleted rows out of all
// normal reads.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs the schema migrations for the task model.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate tasks: %w", err)
	}
	return nil
}

// Create saves a new task.
func (r *Repository) Create(ctx context.Context, t *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListByUser returns the owner's non-deleted tasks, newest first, capped
// at limit.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a non-deleted task owned by userID.
func (r *Repository) FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).
		First(&t, "id = ? AND user_id = ?", taskID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// ApplyPatch applies a column patch to the task matching (taskID, userID)
// and returns the canonical post-update row. Zero matched rows means the
// task is missing, deleted, or not owned by the caller.
func (r *Repository) ApplyPatch(ctx context.Context, userID, taskID string, patch map[string]any) (*domain.Task, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(patch)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, userID, taskID)
}

// SoftDelete marks the task deleted and refreshes the sync watermark,
// returning the number of rows touched. The soft-delete scope on the
// update predicate makes repeat calls no-ops, so the first-set deletion
// timestamp is preserved.
func (r *Repository) SoftDelete(ctx context.Context, userID, taskID string, patch map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(patch)
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected, nil
}

// CategoryOwned reports whether categoryID names a non-deleted category
// owned by userID.
func (r *Repository) CategoryOwned(ctx context.Context, userID, categoryID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&categorydomain.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check category ownership: %w", err)
	}
	return count > 0, nil
}
