// Package task defines the core domain entity for user tasks.
package task

import (
	"time"

	"gorm.io/gorm"
)

// Task is the core domain entity representing one user-owned todo item.
//
// DeletedAt doubles as the soft-delete/archival marker: a non-null value
// hides the row from every normal read path. Rows are never physically
// removed here; retention cleanup is a separate process.
type Task struct {
	ID           string         `gorm:"primarykey;size:36" json:"id"`
	UserID       string         `gorm:"size:64;not null;index" json:"userId"`
	CategoryID   *string        `gorm:"size:36;index" json:"categoryId"`
	Title        string         `gorm:"size:500;not null" json:"title"`
	Description  string         `gorm:"size:5000" json:"description"`
	Completed    bool           `gorm:"not null;default:false;index:idx_task_completed_at,priority:1" json:"completed"`
	DueDate      *time.Time     `json:"dueDate"`
	OrderIndex   *int           `json:"orderIndex"`
	Version      int            `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	CompletedAt  *time.Time     `gorm:"index:idx_task_completed_at,priority:2" json:"completedAt"`
	ArchivedAt   *time.Time     `json:"archivedAt"`
	LastSyncedAt *time.Time     `json:"lastSyncedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
