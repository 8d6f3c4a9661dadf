package task

import (
	"context"
	"time"

	domain "github.com/zgt/todo-list/domain/task"
)

// TaskResponse is the canonical wire representation of a task. Every
// mutating service returns the full canonical record so clients can
// reconcile optimistic state against server truth.
type TaskResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	CategoryID   *string    `json:"categoryId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"dueDate"`
	OrderIndex   *int       `json:"orderIndex"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	ArchivedAt   *time.Time `json:"archivedAt"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`
}

// ListTasksRequest is the request for listing the caller's tasks.
type ListTasksRequest struct {
	UserID string `json:"user_id"`
}

// ListTasksResponse is the response containing the caller's task list.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// GetTaskRequest is the request for fetching a single task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"id"`
}

// GetTaskResponse carries the task, or null when no owned, non-deleted
// task matches.
type GetTaskResponse struct {
	Task *TaskResponse `json:"task"`
}

// CreateTaskRequest is the request for creating a task. UserID is stamped
// by the API layer from the authenticated session, never taken from
// client input.
type CreateTaskRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	OrderIndex  *int       `json:"orderIndex,omitempty"`
}

// UpdateTaskRequest is a partial update: only non-nil fields are applied.
// ClearCategory and ClearDueDate express the "set to null" case that a
// nil pointer cannot distinguish from "not provided".
type UpdateTaskRequest struct {
	UserID        string     `json:"user_id"`
	TaskID        string     `json:"id"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ClearDueDate  bool       `json:"clearDueDate,omitempty"`
	CategoryID    *string    `json:"categoryId,omitempty"`
	ClearCategory bool       `json:"clearCategory,omitempty"`
	OrderIndex    *int       `json:"orderIndex,omitempty"`
}

// DeleteTaskRequest is the request for soft-deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"id"`
}

// DeleteTaskResponse is the response for a task deletion. Deleting an
// already-deleted or missing task still reports success.
type DeleteTaskResponse struct {
	Success bool `json:"success"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters (HTTP API, sync client) use it to reach the core
// domain without knowing about the service container.
type TaskPort interface {
	All(ctx context.Context, userID string) ([]TaskResponse, error)
	ByID(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	Create(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	Update(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// toTaskResponse converts a domain Task to its wire representation.
func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		CategoryID:   t.CategoryID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		DueDate:      t.DueDate,
		OrderIndex:   t.OrderIndex,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt,
		ArchivedAt:   t.ArchivedAt,
		LastSyncedAt: t.LastSyncedAt,
	}
}
