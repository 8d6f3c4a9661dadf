package task

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/zgt/todo-list/domain/task"
	"github.com/zgt/todo-list/events"
)

const (
	// listLimit caps the page size of the list service.
	listLimit = 100

	maxTitleLen       = 500
	maxDescriptionLen = 5000
)

// listTasks handles the task.all service request: the caller's non-deleted
// tasks, newest first.
func (m *Module) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if req.UserID == "" {
		return ListTasksResponse{}, ErrUnauthorized
	}

	if m.cache != nil {
		var cached ListTasksResponse
		if hit, err := m.cache.Get(ctx, listKey(req.UserID), &cached); err == nil && hit {
			return cached, nil
		}
		// Collapse concurrent fills for the same user into one query.
		v, err, _ := m.listGroup.Do(req.UserID, func() (any, error) {
			resp, err := m.buildList(ctx, req.UserID)
			if err != nil {
				return ListTasksResponse{}, err
			}
			if cerr := m.cache.Set(ctx, listKey(req.UserID), resp); cerr != nil {
				log.Printf("[task] cache set failed for user %s: %v", req.UserID, cerr)
			}
			return resp, nil
		})
		if err != nil {
			return ListTasksResponse{}, err
		}
		return v.(ListTasksResponse), nil
	}

	return m.buildList(ctx, req.UserID)
}

func (m *Module) buildList(ctx context.Context, userID string) (ListTasksResponse, error) {
	tasks, err := m.repo.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return ListTasksResponse{}, err
	}
	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	return resp, nil
}

// getTask handles the task.byId service request. A missing, deleted, or
// foreign-owned task yields a null task, not an error.
func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (GetTaskResponse, error) {
	if req.UserID == "" {
		return GetTaskResponse{}, ErrUnauthorized
	}
	t, err := m.repo.FindByID(ctx, req.UserID, req.TaskID)
	if err != nil {
		if err == ErrNotFound {
			return GetTaskResponse{Task: nil}, nil
		}
		return GetTaskResponse{}, err
	}
	resp := toTaskResponse(t)
	return GetTaskResponse{Task: &resp}, nil
}

// createTask handles the task.create service request.
func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.UserID == "" {
		return TaskResponse{}, ErrUnauthorized
	}
	if err := validateTitle(req.Title); err != nil {
		return TaskResponse{}, err
	}
	if err := validateDescription(req.Description); err != nil {
		return TaskResponse{}, err
	}
	if req.CategoryID != nil {
		if err := m.checkCategory(ctx, req.UserID, *req.CategoryID); err != nil {
			return TaskResponse{}, err
		}
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		Completed:    false,
		DueDate:      req.DueDate,
		OrderIndex:   req.OrderIndex,
		Version:      1,
		LastSyncedAt: &now,
	}
	if err := m.repo.Create(ctx, t); err != nil {
		return TaskResponse{}, err
	}

	m.invalidateList(ctx, req.UserID)
	m.publishCreated(t)
	return toTaskResponse(t), nil
}

// updateTask handles the task.update service request. Only provided
// fields are applied; the canonical post-update record is returned so the
// client can reconcile server-computed fields.
func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.UserID == "" {
		return TaskResponse{}, ErrUnauthorized
	}
	if err := validateUpdate(&req); err != nil {
		return TaskResponse{}, err
	}
	if req.CategoryID != nil && !req.ClearCategory {
		if err := m.checkCategory(ctx, req.UserID, *req.CategoryID); err != nil {
			return TaskResponse{}, err
		}
	}

	patch := buildUpdatePatch(&req, time.Now().UTC())
	t, err := m.repo.ApplyPatch(ctx, req.UserID, req.TaskID, patch)
	if err != nil {
		return TaskResponse{}, err
	}

	m.invalidateList(ctx, req.UserID)
	if req.Completed != nil && *req.Completed && t.CompletedAt != nil {
		m.publishCompleted(t)
	}
	return toTaskResponse(t), nil
}

// deleteTask handles the task.delete service request. Soft delete only;
// deleting an already-deleted or missing task still succeeds.
func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if req.UserID == "" {
		return DeleteTaskResponse{}, ErrUnauthorized
	}
	now := time.Now().UTC()
	patch := map[string]any{
		"deleted_at":     now,
		"last_synced_at": now,
	}
	rows, err := m.repo.SoftDelete(ctx, req.UserID, req.TaskID, patch)
	if err != nil {
		return DeleteTaskResponse{}, err
	}

	if rows > 0 {
		m.invalidateList(ctx, req.UserID)
		m.publishDeleted(req.TaskID, req.UserID, now)
	}
	return DeleteTaskResponse{Success: true}, nil
}

// buildUpdatePatch turns a partial update request into the column patch
// written to the store. Kept free of I/O so the cross-field rules are
// testable in isolation. The completion timestamp is re-derived whenever
// the completed flag is present and no explicit value was supplied:
// true sets it to now, false clears it.
func buildUpdatePatch(req *UpdateTaskRequest, now time.Time) map[string]any {
	patch := map[string]any{
		"updated_at":     now,
		"last_synced_at": now,
		"version":        gorm.Expr("version + 1"),
	}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.OrderIndex != nil {
		patch["order_index"] = *req.OrderIndex
	}
	if req.ClearDueDate {
		patch["due_date"] = (*time.Time)(nil)
	} else if req.DueDate != nil {
		patch["due_date"] = *req.DueDate
	}
	if req.ClearCategory {
		patch["category_id"] = (*string)(nil)
	} else if req.CategoryID != nil {
		patch["category_id"] = *req.CategoryID
	}
	if req.Completed != nil {
		patch["completed"] = *req.Completed
		switch {
		case req.CompletedAt != nil:
			patch["completed_at"] = *req.CompletedAt
		case *req.Completed:
			patch["completed_at"] = now
		default:
			patch["completed_at"] = (*time.Time)(nil)
		}
	}
	return patch
}

func validateTitle(title string) error {
	if title == "" {
		return newValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return newValidationError("title", "must be at most 500 characters")
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return newValidationError("description", "must be at most 5000 characters")
	}
	return nil
}

func validateUpdate(req *UpdateTaskRequest) error {
	if req.TaskID == "" {
		return newValidationError("id", "is required")
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
	}
	return nil
}

// checkCategory rejects references to categories the caller does not own.
func (m *Module) checkCategory(ctx context.Context, userID, categoryID string) error {
	owned, err := m.repo.CategoryOwned(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if !owned {
		return newValidationError("categoryId", "unknown category")
	}
	return nil
}

func listKey(userID string) string {
	return "tasks:" + userID
}

// invalidateList drops the cached list for the user after any mutation.
func (m *Module) invalidateList(ctx context.Context, userID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, listKey(userID)); err != nil {
		log.Printf("[task] cache invalidation failed for user %s: %v", userID, err)
	}
}

// Event publishing is best-effort; failures are logged, never surfaced.

func (m *Module) publishCreated(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:     t.ID,
		UserID:     t.UserID,
		Title:      t.Title,
		CategoryID: t.CategoryID,
		CreatedAt:  t.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] failed to publish TaskCreated for %s: %v", t.ID, err)
	}
}

func (m *Module) publishCompleted(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCompletedEvent{
		TaskID:      t.ID,
		UserID:      t.UserID,
		CompletedAt: *t.CompletedAt,
	}
	if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] failed to publish TaskCompleted for %s: %v", t.ID, err)
	}
}

func (m *Module) publishDeleted(taskID, userID string, at time.Time) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:    taskID,
		UserID:    userID,
		DeletedAt: at,
	}
	if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] failed to publish TaskDeleted for %s: %v", taskID, err)
	}
}
