package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zgt/todo-list/modules/task"
)

// Client keeps a local task list in sync with the task service using
// optimistic updates. Every mutation snapshots the current list, applies
// the change locally before dispatch, reconciles the affected record to
// the server's canonical version on success, rolls the affected record
// back on failure, and finishes with a staleness-guarded list refresh.
type Client struct {
	api    task.TaskPort
	userID string
	cache  *Cache

	// OnError receives user-visible failure messages. Defaults to a
	// log line when nil.
	OnError func(msg string, err error)

	mu   sync.Mutex
	errs []string
}

// New creates a client for one user's task list.
func New(api task.TaskPort, userID string) *Client {
	return &Client{
		api:    api,
		userID: userID,
		cache:  NewCache(),
	}
}

// Cache exposes the local view for rendering.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Errors returns the user-visible failure messages recorded so far.
func (c *Client) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errs))
	copy(out, c.errs)
	return out
}

// Refresh replaces the local list with the server's, unless a mutation
// lands while the request is in flight.
func (c *Client) Refresh(ctx context.Context) error {
	token := c.cache.BeginRefresh()
	tasks, err := c.api.All(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("refresh tasks: %w", err)
	}
	c.cache.CompleteRefresh(token, tasks)
	return nil
}

// Create adds a task. The list shows a provisional record immediately;
// on success it is rebound to the server-assigned record, on failure it
// disappears again.
func (c *Client) Create(ctx context.Context, req *task.CreateTaskRequest) (*Task, error) {
	req.UserID = c.userID
	snapshot := c.cache.Snapshot()

	now := time.Now().UTC()
	provisional := Task{
		ID:          "pending-" + uuid.NewString(),
		UserID:      c.userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		OrderIndex:  req.OrderIndex,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.cache.Prepend(provisional)

	resp, err := c.api.Create(ctx, req)
	if err != nil {
		c.cache.Rollback(snapshot, provisional.ID)
		c.recordError("Failed to create task", err)
		c.settleRefresh(ctx)
		return nil, err
	}

	c.cache.Reconcile(provisional.ID, *resp)
	c.settleRefresh(ctx)
	return resp, nil
}

// Update patches a task. The local record reflects the change before the
// server confirms it; on failure the record reverts to its exact prior
// state, value and position both.
func (c *Client) Update(ctx context.Context, req *task.UpdateTaskRequest) (*Task, error) {
	req.UserID = c.userID
	snapshot := c.cache.Snapshot()

	c.cache.ApplyPatch(req.TaskID, func(t *Task) {
		mergeUpdate(t, req)
	})

	resp, err := c.api.Update(ctx, req)
	if err != nil {
		c.cache.Rollback(snapshot, req.TaskID)
		c.recordError("Failed to update task", err)
		c.settleRefresh(ctx)
		return nil, err
	}

	c.cache.Reconcile(req.TaskID, *resp)
	c.settleRefresh(ctx)
	return resp, nil
}

// ToggleComplete flips a task's completion state.
func (c *Client) ToggleComplete(ctx context.Context, taskID string) (*Task, error) {
	current, ok := c.cache.Get(taskID)
	if !ok {
		return nil, task.ErrNotFound
	}
	completed := !current.Completed
	return c.Update(ctx, &task.UpdateTaskRequest{
		TaskID:    taskID,
		Completed: &completed,
	})
}

// Delete removes a task. The record vanishes from the list immediately;
// on failure it reappears at its prior position.
func (c *Client) Delete(ctx context.Context, taskID string) error {
	snapshot := c.cache.Snapshot()
	c.cache.Remove(taskID)

	if err := c.api.Delete(ctx, c.userID, taskID); err != nil {
		c.cache.Rollback(snapshot, taskID)
		c.recordError("Failed to delete task", err)
		c.settleRefresh(ctx)
		return err
	}

	c.settleRefresh(ctx)
	return nil
}

// settleRefresh runs the post-mutation list refresh. Failures here are
// not user-visible: the local list already reflects the settled outcome
// and the next mutation or manual refresh retries.
func (c *Client) settleRefresh(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		log.Printf("[client] settle refresh: %v", err)
	}
}

func (c *Client) recordError(msg string, err error) {
	c.mu.Lock()
	c.errs = append(c.errs, msg)
	c.mu.Unlock()
	if c.OnError != nil {
		c.OnError(msg, err)
		return
	}
	log.Printf("[client] %s: %v", msg, err)
}

// mergeUpdate applies the request's changed fields to a local record the
// same way the service will, including the completed/completedAt
// coupling, so the optimistic view matches the eventual canonical one.
func mergeUpdate(t *Task, req *task.UpdateTaskRequest) {
	now := time.Now().UTC()
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.OrderIndex != nil {
		t.OrderIndex = req.OrderIndex
	}
	if req.ClearDueDate {
		t.DueDate = nil
	} else if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.ClearCategory {
		t.CategoryID = nil
	} else if req.CategoryID != nil {
		t.CategoryID = req.CategoryID
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
		switch {
		case req.CompletedAt != nil:
			t.CompletedAt = req.CompletedAt
		case *req.Completed:
			t.CompletedAt = &now
		default:
			t.CompletedAt = nil
		}
	}
	t.Version++
	t.UpdatedAt = now
}
