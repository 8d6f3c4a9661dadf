// Package events defines the typed domain events emitted by the task and
// category modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	CategoryID *string   `json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskCompletedEvent is emitted when a task's completed flag toggles true.
type TaskCompletedEvent struct {
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskDeletedEvent is emitted when a task is soft-deleted by its owner.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// TasksArchivedEvent is emitted after an archival sweep that retired at
// least one task.
type TasksArchivedEvent struct {
	TaskIDs    []string  `json:"task_ids"`
	CutoffTime time.Time `json:"cutoff_time"`
	ArchivedAt time.Time `json:"archived_at"`
}

// TasksArchivedV1 is the typed event definition for archival sweeps.
var TasksArchivedV1 = helper.EventDefinition[TasksArchivedEvent](
	"sweeper", "TasksArchived", "v1",
)
