package category

import (
	"context"
	"log"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"

	domain "github.com/zgt/todo-list/domain/category"
	"github.com/zgt/todo-list/events"
)

const (
	maxNameLen = 100
	maxIconLen = 50
)

// hexColorRe matches a 6-digit hex color with leading '#'.
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// listCategories handles the category.all service request.
func (m *Module) listCategories(ctx context.Context, req ListCategoriesRequest, _ *mono.Msg) (ListCategoriesResponse, error) {
	if req.UserID == "" {
		return ListCategoriesResponse{}, ErrUnauthorized
	}
	categories, err := m.repo.ListByUser(ctx, req.UserID)
	if err != nil {
		return ListCategoriesResponse{}, err
	}
	resp := ListCategoriesResponse{
		Categories: make([]CategoryResponse, 0, len(categories)),
		Total:      len(categories),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(c))
	}
	return resp, nil
}

// getCategory handles the category.byId service request.
func (m *Module) getCategory(ctx context.Context, req GetCategoryRequest, _ *mono.Msg) (GetCategoryResponse, error) {
	if req.UserID == "" {
		return GetCategoryResponse{}, ErrUnauthorized
	}
	c, err := m.repo.FindByID(ctx, req.UserID, req.CategoryID)
	if err != nil {
		if err == ErrNotFound {
			return GetCategoryResponse{Category: nil}, nil
		}
		return GetCategoryResponse{}, err
	}
	resp := toCategoryResponse(c)
	return GetCategoryResponse{Category: &resp}, nil
}

// createCategory handles the category.create service request.
func (m *Module) createCategory(ctx context.Context, req CreateCategoryRequest, _ *mono.Msg) (CategoryResponse, error) {
	if req.UserID == "" {
		return CategoryResponse{}, ErrUnauthorized
	}
	if err := validateName(req.Name); err != nil {
		return CategoryResponse{}, err
	}
	if err := validateColor(req.Color); err != nil {
		return CategoryResponse{}, err
	}
	if err := validateIcon(req.Icon); err != nil {
		return CategoryResponse{}, err
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	c := &domain.Category{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Name:      req.Name,
		Color:     req.Color,
		Icon:      req.Icon,
		SortOrder: sortOrder,
	}
	if err := m.repo.Create(ctx, c); err != nil {
		return CategoryResponse{}, err
	}

	m.publishCreated(c)
	return toCategoryResponse(c), nil
}

// updateCategory handles the category.update service request.
func (m *Module) updateCategory(ctx context.Context, req UpdateCategoryRequest, _ *mono.Msg) (CategoryResponse, error) {
	if req.UserID == "" {
		return CategoryResponse{}, ErrUnauthorized
	}
	if req.CategoryID == "" {
		return CategoryResponse{}, newValidationError("id", "is required")
	}
	patch := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return CategoryResponse{}, err
		}
		patch["name"] = *req.Name
	}
	if req.Color != nil {
		if err := validateColor(*req.Color); err != nil {
			return CategoryResponse{}, err
		}
		patch["color"] = *req.Color
	}
	if req.Icon != nil {
		if err := validateIcon(*req.Icon); err != nil {
			return CategoryResponse{}, err
		}
		patch["icon"] = *req.Icon
	}
	if req.SortOrder != nil {
		patch["sort_order"] = *req.SortOrder
	}

	c, err := m.repo.ApplyPatch(ctx, req.UserID, req.CategoryID, patch)
	if err != nil {
		return CategoryResponse{}, err
	}
	return toCategoryResponse(c), nil
}

// deleteCategory handles the category.delete service request. Soft
// delete; task references are cleared in the same store transaction.
// Idempotent like task deletion.
func (m *Module) deleteCategory(ctx context.Context, req DeleteCategoryRequest, _ *mono.Msg) (DeleteCategoryResponse, error) {
	if req.UserID == "" {
		return DeleteCategoryResponse{}, ErrUnauthorized
	}
	now := time.Now().UTC()
	deleted, cleared, err := m.repo.SoftDelete(ctx, req.UserID, req.CategoryID, map[string]any{
		"deleted_at": now,
	})
	if err != nil {
		return DeleteCategoryResponse{}, err
	}

	if deleted > 0 {
		m.publishDeleted(req.CategoryID, req.UserID, cleared, now)
	}
	return DeleteCategoryResponse{Success: true}, nil
}

func validateName(name string) error {
	if name == "" {
		return newValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return newValidationError("name", "must be at most 100 characters")
	}
	return nil
}

func validateColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return newValidationError("color", "must be a valid hex color")
	}
	return nil
}

func validateIcon(icon string) error {
	if utf8.RuneCountInString(icon) > maxIconLen {
		return newValidationError("icon", "must be at most 50 characters")
	}
	return nil
}

func (m *Module) publishCreated(c *domain.Category) {
	if m.eventBus == nil {
		return
	}
	event := events.CategoryCreatedEvent{
		CategoryID: c.ID,
		UserID:     c.UserID,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
	}
	if err := events.CategoryCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[category] failed to publish CategoryCreated for %s: %v", c.ID, err)
	}
}

func (m *Module) publishDeleted(categoryID, userID string, cleared int64, at time.Time) {
	if m.eventBus == nil {
		return
	}
	event := events.CategoryDeletedEvent{
		CategoryID:   categoryID,
		UserID:       userID,
		ClearedTasks: cleared,
		DeletedAt:    at,
	}
	if err := events.CategoryDeletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[category] failed to publish CategoryDeleted for %s: %v", categoryID, err)
	}
}
