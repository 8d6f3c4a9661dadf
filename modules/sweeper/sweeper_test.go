package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/zgt/todo-list/domain/task"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// seedTask inserts a task completed the given duration ago. A zero
// duration means the task is not completed at all.
func seedTask(t *testing.T, db *gorm.DB, completedAgo time.Duration) string {
	t.Helper()
	return seedUserTask(t, db, "user-1", completedAgo)
}

func seedUserTask(t *testing.T, db *gorm.DB, userID string, completedAgo time.Duration) string {
	t.Helper()

	task := &domain.Task{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   "seed",
		Version: 1,
	}
	if completedAgo > 0 {
		at := time.Now().UTC().Add(-completedAgo)
		task.Completed = true
		task.CompletedAt = &at
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task.ID
}

func TestSweep(t *testing.T) {
	db := setupTestDB(t)
	s := NewSweeper(db, 24*time.Hour)
	ctx := context.Background()

	oldDone := seedTask(t, db, 25*time.Hour)
	recentDone := seedTask(t, db, 23*time.Hour)
	notDone := seedTask(t, db, 0)

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.ArchivedCount != 1 {
		t.Errorf("expected 1 archived task, got %d", result.ArchivedCount)
	}
	if len(result.ArchivedTaskIDs) != 1 || result.ArchivedTaskIDs[0] != oldDone {
		t.Errorf("expected archived IDs [%s], got %v", oldDone, result.ArchivedTaskIDs)
	}
	if len(result.AffectedUserIDs) != 1 || result.AffectedUserIDs[0] != "user-1" {
		t.Errorf("expected affected users [user-1], got %v", result.AffectedUserIDs)
	}

	t.Run("archived task is soft-deleted and stamped", func(t *testing.T) {
		var raw domain.Task
		if err := db.Unscoped().First(&raw, "id = ?", oldDone).Error; err != nil {
			t.Fatalf("failed to read archived task: %v", err)
		}
		if !raw.DeletedAt.Valid {
			t.Error("expected deleted_at set")
		}
		if raw.ArchivedAt == nil {
			t.Error("expected archived_at set")
		}
	})

	t.Run("recent and uncompleted tasks survive", func(t *testing.T) {
		for _, id := range []string{recentDone, notDone} {
			var task domain.Task
			if err := db.First(&task, "id = ?", id).Error; err != nil {
				t.Errorf("expected task %s to survive the sweep: %v", id, err)
			}
		}
	})

	t.Run("repeat sweep archives nothing new", func(t *testing.T) {
		result, err := s.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
		if result.ArchivedCount != 0 {
			t.Errorf("expected 0 archived on repeat, got %d", result.ArchivedCount)
		}
		if result.ArchivedTaskIDs == nil {
			t.Error("expected empty slice, not nil")
		}
	})
}

func TestSweep_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	s := NewSweeper(db, 24*time.Hour)

	result, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if !result.Success || result.ArchivedCount != 0 {
		t.Errorf("expected successful empty sweep, got %+v", result)
	}
	if result.ArchivedTaskIDs == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestSweep_AffectedUsersDeduplicated(t *testing.T) {
	db := setupTestDB(t)
	s := NewSweeper(db, 24*time.Hour)

	seedUserTask(t, db, "user-a", 30*time.Hour)
	seedUserTask(t, db, "user-a", 26*time.Hour)
	seedUserTask(t, db, "user-b", 25*time.Hour)
	seedUserTask(t, db, "user-c", 23*time.Hour)

	result, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.ArchivedCount != 3 {
		t.Fatalf("expected 3 archived, got %d", result.ArchivedCount)
	}

	users := make(map[string]int)
	for _, u := range result.AffectedUserIDs {
		users[u]++
	}
	if len(users) != 2 || users["user-a"] != 1 || users["user-b"] != 1 {
		t.Errorf("expected each affected owner once, got %v", result.AffectedUserIDs)
	}
	if _, ok := users["user-c"]; ok {
		t.Error("expected user-c untouched: task inside retention window")
	}
}

func TestSweep_CutoffBoundary(t *testing.T) {
	db := setupTestDB(t)
	s := NewSweeper(db, 24*time.Hour)

	// Just over and just under the retention window.
	over := seedTask(t, db, 24*time.Hour+time.Minute)
	under := seedTask(t, db, 24*time.Hour-time.Minute)

	result, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.ArchivedCount != 1 || result.ArchivedTaskIDs[0] != over {
		t.Errorf("expected only %s archived, got %v", over, result.ArchivedTaskIDs)
	}

	var task domain.Task
	if err := db.First(&task, "id = ?", under).Error; err != nil {
		t.Errorf("expected under-retention task to survive: %v", err)
	}
}
