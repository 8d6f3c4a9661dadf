package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zgt/todo-list/modules/cache"
)

// Requires Redis on localhost:6379 and skips when it is missing.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T) (*cache.Cache, *redis.Client) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	const prefix = "test-sweeper:"
	t.Cleanup(func() {
		keys, _, err := client.Scan(ctx, 0, prefix+"*", 100).Result()
		if err == nil && len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return cache.New(client, prefix, time.Minute), client
}

func TestSweepInvalidatesCachedLists(t *testing.T) {
	c, _ := setupTestCache(t)
	db := setupTestDB(t)
	m := newTestModule(db, c)
	ctx := context.Background()

	seedUserTask(t, db, "user-1", 25*time.Hour)
	seedUserTask(t, db, "user-2", 23*time.Hour)

	// Both users have a cached list from before the sweep.
	type cachedList struct {
		Total int `json:"total"`
	}
	for _, key := range []string{"tasks:user-1", "tasks:user-2"} {
		if err := c.Set(ctx, key, cachedList{Total: 1}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	result, err := m.sweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweepOnce() error = %v", err)
	}
	if result.ArchivedCount != 1 {
		t.Fatalf("expected 1 archived, got %d", result.ArchivedCount)
	}

	// The archived task's owner must not be served the stale list.
	var got cachedList
	hit, err := c.Get(ctx, "tasks:user-1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("expected user-1 cached list invalidated after sweep")
	}

	// Untouched owners keep their cache.
	hit, err = c.Get(ctx, "tasks:user-2", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Error("expected user-2 cached list to survive the sweep")
	}
}

func TestSweepWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	m := newTestModule(db, nil)

	seedTask(t, db, 25*time.Hour)

	result, err := m.sweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweepOnce() error = %v", err)
	}
	if result.ArchivedCount != 1 {
		t.Errorf("expected 1 archived with nil cache, got %d", result.ArchivedCount)
	}
}
