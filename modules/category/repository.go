package category

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/zgt/todo-list/domain/category"
	taskdomain "github.com/zgt/todo-list/domain/task"
)

// Repository provides access to category storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new category repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs the schema migrations for the category model.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Category{}); err != nil {
		return fmt.Errorf("failed to migrate categories: %w", err)
	}
	return nil
}

// Create saves a new category.
func (r *Repository) Create(ctx context.Context, c *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListByUser returns the owner's non-deleted categories ordered by sort
// order, then newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// FindByID retrieves a non-deleted category owned by userID.
func (r *Repository) FindByID(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		First(&c, "id = ? AND user_id = ?", categoryID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &c, nil
}

// ApplyPatch applies a column patch to the category matching
// (categoryID, userID) and returns the canonical post-update row.
func (r *Repository) ApplyPatch(ctx context.Context, userID, categoryID string, patch map[string]any) (*domain.Category, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Updates(patch)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, userID, categoryID)
}

// SoftDelete marks the category deleted and clears the category
// reference on every task of the owner that points at it, in one
// transaction (set-null referential policy). Returns the number of
// categories deleted and tasks cleared. Repeat calls are no-ops.
func (r *Repository) SoftDelete(ctx context.Context, userID, categoryID string, patch map[string]any) (deleted, cleared int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Category{}).
			Where("id = ? AND user_id = ?", categoryID, userID).
			Updates(patch)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}
		deleted = result.RowsAffected
		if deleted == 0 {
			return nil
		}

		clearResult := tx.Model(&taskdomain.Task{}).
			Where("user_id = ? AND category_id = ?", userID, categoryID).
			Update("category_id", nil)
		if clearResult.Error != nil {
			return fmt.Errorf("failed to clear task references: %w", clearResult.Error)
		}
		cleared = clearResult.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, cleared, nil
}
