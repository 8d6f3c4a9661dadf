package sweeper

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/zgt/todo-list/domain/task"
)

// Result reports the outcome of one archival sweep.
type Result struct {
	Success         bool      `json:"success"`
	ArchivedCount   int       `json:"archivedCount"`
	CutoffTime      time.Time `json:"cutoffTime"`
	ArchivedTaskIDs []string  `json:"archivedTaskIds"`

	// AffectedUserIDs lists the distinct owners of the archived tasks.
	// Server-side only, for cache invalidation; not part of the reply.
	AffectedUserIDs []string `json:"-"`
}

// Sweeper soft-deletes tasks that were completed longer ago than the
// retention window. It runs across all users; it is a maintenance job,
// not a user-scoped operation.
type Sweeper struct {
	db        *gorm.DB
	retention time.Duration
}

// NewSweeper creates a sweeper over an open database.
func NewSweeper(db *gorm.DB, retention time.Duration) *Sweeper {
	return &Sweeper{db: db, retention: retention}
}

// Sweep archives every task with completed = true, completedAt before
// the cutoff, and no deletion marker. The select and bulk update run in
// one transaction, so a failed sweep has no partial effect and the next
// scheduled run simply retries: the predicate only ever matches rows
// that still qualify.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.retention)

	var ids, users []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			ID     string
			UserID string
		}
		// The soft-delete scope adds deleted_at IS NULL to both statements.
		err := tx.Model(&domain.Task{}).
			Where("completed = ? AND completed_at < ?", true, cutoff).
			Select("id", "user_id").
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to select archivable tasks: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
			if _, ok := seen[row.UserID]; !ok {
				seen[row.UserID] = struct{}{}
				users = append(users, row.UserID)
			}
		}

		err = tx.Model(&domain.Task{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"deleted_at":  now,
				"archived_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to archive tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{Success: false, CutoffTime: cutoff}, err
	}

	if ids == nil {
		ids = []string{}
	}
	return Result{
		Success:         true,
		ArchivedCount:   len(ids),
		CutoffTime:      cutoff,
		ArchivedTaskIDs: ids,
		AffectedUserIDs: users,
	}, nil
}
