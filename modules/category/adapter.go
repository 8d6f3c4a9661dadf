package category

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// categoryAdapter wraps a ServiceContainer for type-safe cross-module
// calls. It implements the CategoryPort interface.
type categoryAdapter struct {
	container mono.ServiceContainer
}

// NewCategoryAdapter creates an adapter for the category services.
func NewCategoryAdapter(container mono.ServiceContainer) CategoryPort {
	if container == nil {
		panic("category adapter requires non-nil ServiceContainer")
	}
	return &categoryAdapter{container: container}
}

// All returns the caller's non-deleted categories.
func (a *categoryAdapter) All(ctx context.Context, userID string) ([]CategoryResponse, error) {
	req := ListCategoriesRequest{UserID: userID}
	var resp ListCategoriesResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "all",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, normalizeError("all", err)
	}
	return resp.Categories, nil
}

// ByID fetches a single owned category, or nil when none matches.
func (a *categoryAdapter) ByID(ctx context.Context, userID, categoryID string) (*CategoryResponse, error) {
	req := GetCategoryRequest{UserID: userID, CategoryID: categoryID}
	var resp GetCategoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "byId",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, normalizeError("byId", err)
	}
	return resp.Category, nil
}

// Create creates a new category.
func (a *categoryAdapter) Create(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	var resp CategoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create",
		json.Marshal, json.Unmarshal,
		req, &resp,
	); err != nil {
		return nil, normalizeError("create", err)
	}
	return &resp, nil
}

// Update applies a partial update.
func (a *categoryAdapter) Update(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	var resp CategoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update",
		json.Marshal, json.Unmarshal,
		req, &resp,
	); err != nil {
		return nil, normalizeError("update", err)
	}
	return &resp, nil
}

// Delete soft-deletes a category. Idempotent.
func (a *categoryAdapter) Delete(ctx context.Context, userID, categoryID string) error {
	req := DeleteCategoryRequest{UserID: userID, CategoryID: categoryID}
	var resp DeleteCategoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return normalizeError("delete", err)
	}
	if !resp.Success {
		return fmt.Errorf("category not deleted: %s", categoryID)
	}
	return nil
}

// normalizeError maps transport-flattened errors back onto this module's
// sentinels by message.
func normalizeError(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, ErrNotFound.Error()):
		return ErrNotFound
	case strings.Contains(msg, ErrUnauthorized.Error()):
		return ErrUnauthorized
	case strings.Contains(msg, "validation failed:"):
		field, reason := parseValidationMessage(msg)
		return &ValidationError{Field: field, Reason: reason}
	default:
		return fmt.Errorf("%s service call failed: %w", op, err)
	}
}

func parseValidationMessage(msg string) (field, reason string) {
	const marker = "validation failed: "
	idx := strings.Index(msg, marker)
	rest := msg[idx+len(marker):]
	if i := strings.Index(rest, ": "); i >= 0 {
		return rest[:i], rest[i+2:]
	}
	return "", rest
}
