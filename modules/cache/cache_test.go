package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tests require Redis on localhost:6379 and skip when it is missing.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cleanupKeys(ctx, client, prefix+"*")

	cache := New(client, prefix, 5*time.Minute)
	cleanup := func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	}
	return cache, cleanup
}

func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

type cachedList struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

func TestCache_SetGet(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test-todo:")
	defer cleanup()
	ctx := context.Background()

	stored := cachedList{IDs: []string{"t1", "t2"}, Total: 2}
	if err := cache.Set(ctx, "tasks:user-1", stored); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got cachedList
	hit, err := cache.Get(ctx, "tasks:user-1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if got.Total != 2 || len(got.IDs) != 2 {
		t.Errorf("unexpected cached value: %+v", got)
	}
}

func TestCache_GetMiss(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test-todo:")
	defer cleanup()

	var got cachedList
	hit, err := cache.Get(context.Background(), "tasks:nobody", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("expected a cache miss")
	}
}

func TestCache_Delete(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test-todo:")
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "tasks:user-1", cachedList{Total: 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "tasks:user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got cachedList
	hit, err := cache.Get(ctx, "tasks:user-1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("expected entry gone after delete")
	}
}

func TestCache_DeletePattern(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test-todo:")
	defer cleanup()
	ctx := context.Background()

	for _, key := range []string{"tasks:u1", "tasks:u2", "other:u1"} {
		if err := cache.Set(ctx, key, cachedList{Total: 1}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := cache.DeletePattern(ctx, "tasks:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var got cachedList
	if hit, _ := cache.Get(ctx, "tasks:u1", &got); hit {
		t.Error("expected tasks:u1 deleted")
	}
	if hit, _ := cache.Get(ctx, "other:u1", &got); !hit {
		t.Error("expected other:u1 to survive")
	}
}

func TestCache_Stats(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test-todo-stats:")
	defer cleanup()
	ctx := context.Background()

	var got cachedList
	cache.Get(ctx, "tasks:miss", &got)
	cache.Set(ctx, "tasks:hit", cachedList{Total: 1})
	cache.Get(ctx, "tasks:hit", &got)

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HitRate != 50 {
		t.Errorf("expected 50%% hit rate, got %v", stats.HitRate)
	}
}
