package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CategoryCreatedEvent is emitted when a new category is created.
type CategoryCreatedEvent struct {
	CategoryID string    `json:"category_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryCreatedV1 is the typed event definition for category creation.
var CategoryCreatedV1 = helper.EventDefinition[CategoryCreatedEvent](
	"category", "CategoryCreated", "v1",
)

// CategoryDeletedEvent is emitted when a category is soft-deleted. Task
// references to the category are cleared in the same store transaction;
// the event exists for observers, not for integrity.
type CategoryDeletedEvent struct {
	CategoryID   string    `json:"category_id"`
	UserID       string    `json:"user_id"`
	ClearedTasks int64     `json:"cleared_tasks"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// CategoryDeletedV1 is the typed event definition for category deletion.
var CategoryDeletedV1 = helper.EventDefinition[CategoryDeletedEvent](
	"category", "CategoryDeleted", "v1",
)
