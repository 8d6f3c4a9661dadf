package client

import (
	"testing"
)

func cacheWith(tasks ...Task) *Cache {
	c := NewCache()
	c.CompleteRefresh(c.BeginRefresh(), tasks)
	return c
}

func TestCache_StaleRefreshDiscarded(t *testing.T) {
	c := cacheWith(serverTask("t1", "local"))

	// A refresh goes out, then an optimistic patch lands before the
	// response arrives.
	token := c.BeginRefresh()
	c.ApplyPatch("t1", func(task *Task) { task.Title = "patched" })

	stale := serverTask("t1", "stale-server-copy")
	if c.CompleteRefresh(token, []Task{stale}) {
		t.Error("expected stale refresh to be discarded")
	}

	got, _ := c.Get("t1")
	if got.Title != "patched" {
		t.Errorf("expected optimistic patch preserved, got %q", got.Title)
	}
}

func TestCache_FreshRefreshApplies(t *testing.T) {
	c := cacheWith(serverTask("t1", "old"))

	token := c.BeginRefresh()
	fresh := serverTask("t1", "new")
	if !c.CompleteRefresh(token, []Task{fresh}) {
		t.Fatal("expected refresh to apply")
	}

	got, _ := c.Get("t1")
	if got.Title != "new" {
		t.Errorf("expected refreshed title, got %q", got.Title)
	}
}

func TestCache_RollbackIsScoped(t *testing.T) {
	a := serverTask("t1", "first")
	b := serverTask("t2", "second")
	c := cacheWith(a, b)

	// Snapshot, then patch both records; rolling back only t1 must
	// leave t2's later patch intact.
	snapshot := c.Snapshot()
	c.ApplyPatch("t1", func(task *Task) { task.Title = "first-patched" })
	c.ApplyPatch("t2", func(task *Task) { task.Title = "second-patched" })

	c.Rollback(snapshot, "t1")

	got1, _ := c.Get("t1")
	if got1.Title != "first" {
		t.Errorf("expected t1 rolled back, got %q", got1.Title)
	}
	got2, _ := c.Get("t2")
	if got2.Title != "second-patched" {
		t.Errorf("expected t2 patch preserved, got %q", got2.Title)
	}
}

func TestCache_RollbackReinsertsAtPosition(t *testing.T) {
	c := cacheWith(serverTask("t1", "first"), serverTask("t2", "second"), serverTask("t3", "third"))

	snapshot := c.Snapshot()
	c.Remove("t2")

	c.Rollback(snapshot, "t2")

	got := titles(c.List())
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestCache_ReconcileRebindsID(t *testing.T) {
	c := NewCache()
	provisional := serverTask("pending-1", "draft")
	c.Prepend(provisional)

	canonical := serverTask("real-id", "draft")
	if !c.Reconcile("pending-1", canonical) {
		t.Fatal("expected reconcile to find the provisional record")
	}

	if _, ok := c.Get("pending-1"); ok {
		t.Error("expected provisional ID gone")
	}
	got, ok := c.Get("real-id")
	if !ok || got.Title != "draft" {
		t.Errorf("expected canonical record, got %+v", got)
	}
}

func TestCache_ReconcileInvalidatesInflightRefresh(t *testing.T) {
	c := cacheWith(serverTask("t1", "v1"))

	token := c.BeginRefresh()

	// The mutation settles (reconcile) while the refresh is in flight;
	// the refresh carries pre-mutation state and must lose.
	canonical := serverTask("t1", "v2")
	canonical.Version = 2
	c.Reconcile("t1", canonical)

	stale := serverTask("t1", "v1")
	if c.CompleteRefresh(token, []Task{stale}) {
		t.Error("expected refresh dispatched before reconcile to be discarded")
	}

	got, _ := c.Get("t1")
	if got.Version != 2 {
		t.Errorf("expected reconciled version 2, got %d", got.Version)
	}
}
