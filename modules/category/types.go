package category

import (
	"context"
	"time"

	domain "github.com/zgt/todo-list/domain/category"
)

// CategoryResponse is the wire representation of a category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCategoriesRequest is the request for listing the caller's categories.
type ListCategoriesRequest struct {
	UserID string `json:"user_id"`
}

// ListCategoriesResponse is the response containing the caller's categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"`
}

// GetCategoryRequest is the request for fetching a single category.
type GetCategoryRequest struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"id"`
}

// GetCategoryResponse carries the category, or null when no owned,
// non-deleted category matches.
type GetCategoryResponse struct {
	Category *CategoryResponse `json:"category"`
}

// CreateCategoryRequest is the request for creating a category.
type CreateCategoryRequest struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon,omitempty"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

// UpdateCategoryRequest is a partial update: only non-nil fields are
// applied.
type UpdateCategoryRequest struct {
	UserID     string  `json:"user_id"`
	CategoryID string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	Color      *string `json:"color,omitempty"`
	Icon       *string `json:"icon,omitempty"`
	SortOrder  *int    `json:"sortOrder,omitempty"`
}

// DeleteCategoryRequest is the request for soft-deleting a category.
type DeleteCategoryRequest struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"id"`
}

// DeleteCategoryResponse is the response for a category deletion.
type DeleteCategoryResponse struct {
	Success bool `json:"success"`
}

// CategoryPort defines the interface for category operations.
type CategoryPort interface {
	All(ctx context.Context, userID string) ([]CategoryResponse, error)
	ByID(ctx context.Context, userID, categoryID string) (*CategoryResponse, error)
	Create(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error)
	Update(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error)
	Delete(ctx context.Context, userID, categoryID string) error
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
