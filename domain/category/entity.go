// Package category defines the user-defined label entity for grouping tasks.
package category

import (
	"time"

	"gorm.io/gorm"
)

// Category is a user-defined label. Tasks hold a weak, nullable reference
// to at most one category; deleting a category clears those references.
type Category struct {
	ID        string         `gorm:"primarykey;size:36" json:"id"`
	UserID    string         `gorm:"size:64;not null;index;index:idx_category_user_sort,priority:1" json:"userId"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Color     string         `gorm:"size:7;not null" json:"color"`
	Icon      string         `gorm:"size:50" json:"icon"`
	SortOrder int            `gorm:"not null;default:0;index:idx_category_user_sort,priority:2" json:"sortOrder"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName returns the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}
