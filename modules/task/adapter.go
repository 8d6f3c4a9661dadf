package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps a ServiceContainer for type-safe cross-module calls.
// It implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates an adapter for the task services.
// container is the task module's ServiceContainer received via
// SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// All returns the caller's non-deleted tasks via the all service.
func (a *taskAdapter) All(ctx context.Context, userID string) ([]TaskResponse, error) {
	req := ListTasksRequest{UserID: userID}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "all",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, normalizeError("all", err)
	}
	return resp.Tasks, nil
}

// ByID fetches a single owned task, or nil when none matches.
func (a *taskAdapter) ByID(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := GetTaskRequest{UserID: userID, TaskID: taskID}
	var resp GetTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "byId",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, normalizeError("byId", err)
	}
	return resp.Task, nil
}

// Create creates a new task and returns the canonical record.
func (a *taskAdapter) Create(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create",
		json.Marshal, json.Unmarshal,
		req, &resp,
	); err != nil {
		return nil, normalizeError("create", err)
	}
	return &resp, nil
}

// Update applies a partial update and returns the canonical record.
func (a *taskAdapter) Update(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update",
		json.Marshal, json.Unmarshal,
		req, &resp,
	); err != nil {
		return nil, normalizeError("update", err)
	}
	return &resp, nil
}

// Delete soft-deletes a task. Idempotent.
func (a *taskAdapter) Delete(ctx context.Context, userID, taskID string) error {
	req := DeleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return normalizeError("delete", err)
	}
	if !resp.Success {
		return fmt.Errorf("task not deleted: %s", taskID)
	}
	return nil
}

// normalizeError maps errors flattened by the request-reply transport
// back onto the module's sentinels by message, so callers can branch on
// errors.Is the same way they would in-process.
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

// parseValidationMessage recovers field and reason from the stable
// "validation failed: <field>: <reason>" message format.
func parseValidationMessage(msg string) (field, reason string) {
	const marker = "validation failed: "
	idx := strings.Index(msg, marker)
	rest := msg[idx+len(marker):]
	if i := strings.Index(rest, ": "); i >= 0 {
		return rest[:i], rest[i+2:]
	}
	return "", rest
}
