package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categorydomain "github.com/zgt/todo-list/domain/category"
	domain "github.com/zgt/todo-list/domain/task"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Task{}, &categorydomain.Category{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTask(userID, title string) *domain.Task {
	return &domain.Task{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   title,
		Version: 1,
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTask("user-1", "Buy groceries")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "user-1", task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Title != "Buy groceries" {
		t.Errorf("expected title %q, got %q", "Buy groceries", found.Title)
	}
	if found.Version != 1 {
		t.Errorf("expected version 1, got %d", found.Version)
	}
}

func TestRepository_FindByID_OwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTask("user-1", "Private task")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another user must not be able to see it, even knowing the ID.
	if _, err := repo.FindByID(ctx, "user-2", task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i, title := range []string{"first", "second", "third"} {
		task := newTask("user-1", title)
		task.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := db.Create(task).Error; err != nil {
			t.Fatalf("failed to seed task: %v", err)
		}
	}
	if err := db.Create(newTask("user-2", "other user")).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	tasks, err := repo.ListByUser(ctx, "user-1", 100)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	// Newest first.
	if tasks[0].Title != "third" || tasks[2].Title != "first" {
		t.Errorf("expected newest-first order, got %q .. %q", tasks[0].Title, tasks[2].Title)
	}

	t.Run("respects limit", func(t *testing.T) {
		tasks, err := repo.ListByUser(ctx, "user-1", 2)
		if err != nil {
			t.Fatalf("ListByUser() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("expected 2 tasks, got %d", len(tasks))
		}
	})

	t.Run("excludes soft-deleted", func(t *testing.T) {
		all, _ := repo.ListByUser(ctx, "user-1", 100)
		now := time.Now().UTC()
		if _, err := repo.SoftDelete(ctx, "user-1", all[0].ID, map[string]any{"deleted_at": now}); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}

		tasks, err := repo.ListByUser(ctx, "user-1", 100)
		if err != nil {
			t.Fatalf("ListByUser() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("expected 2 tasks after delete, got %d", len(tasks))
		}
	})
}

func TestRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTask("user-1", "To delete")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first := time.Now().UTC().Truncate(time.Second)
	rows, err := repo.SoftDelete(ctx, "user-1", task.ID, map[string]any{"deleted_at": first})
	if err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if _, err := repo.FindByID(ctx, "user-1", task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	t.Run("repeat delete is a no-op", func(t *testing.T) {
		later := first.Add(time.Hour)
		rows, err := repo.SoftDelete(ctx, "user-1", task.ID, map[string]any{"deleted_at": later})
		if err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		if rows != 0 {
			t.Errorf("expected 0 rows affected on repeat, got %d", rows)
		}

		// The original deletion timestamp is preserved.
		var raw domain.Task
		if err := db.Unscoped().First(&raw, "id = ?", task.ID).Error; err != nil {
			t.Fatalf("failed to read deleted row: %v", err)
		}
		if !raw.DeletedAt.Time.Equal(first) {
			t.Errorf("expected deleted_at %v, got %v", first, raw.DeletedAt.Time)
		}
	})
}

func TestRepository_ApplyPatch_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.ApplyPatch(ctx, "user-1", "missing-id", map[string]any{"title": "x"})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_CategoryOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cat := &categorydomain.Category{
		ID:     uuid.New().String(),
		UserID: "user-1",
		Name:   "Work",
	}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	tests := []struct {
		name       string
		userID     string
		categoryID string
		want       bool
	}{
		{"owned category", "user-1", cat.ID, true},
		{"foreign owner", "user-2", cat.ID, false},
		{"unknown category", "user-1", "missing", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owned, err := repo.CategoryOwned(ctx, tt.userID, tt.categoryID)
			if err != nil {
				t.Fatalf("CategoryOwned() error = %v", err)
			}
			if owned != tt.want {
				t.Errorf("expected %v, got %v", tt.want, owned)
			}
		})
	}

	t.Run("deleted category not owned", func(t *testing.T) {
		if err := db.Delete(cat).Error; err != nil {
			t.Fatalf("failed to soft-delete category: %v", err)
		}
		owned, err := repo.CategoryOwned(ctx, "user-1", cat.ID)
		if err != nil {
			t.Fatalf("CategoryOwned() error = %v", err)
		}
		if owned {
			t.Error("expected deleted category to be unowned")
		}
	})
}
