package client

import (
	"sync"

	"github.com/zgt/todo-list/modules/task"
)

// Task is the client-side record shape, identical to the wire
// representation the services return.
type Task = task.TaskResponse

// Cache is the client's ordered view of the task list. Every optimistic
// apply and every reconciliation bumps a logical clock; a list refresh
// carries the clock value from its dispatch and is discarded if anything
// newer landed while it was in flight, so a stale server response can
// never overwrite a pending optimistic patch.
type Cache struct {
	mu    sync.Mutex
	tasks []Task
	index map[string]int
	seq   uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{index: make(map[string]int)}
}

// List returns a copy of the cached task list in display order.
func (c *Cache) List() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Get returns the cached record for id.
func (c *Cache) Get(id string) (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return Task{}, false
	}
	return c.tasks[i], true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Snapshot captures the full current list, including positions, for a
// later rollback.
func (c *Cache) Snapshot() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make([]Task, len(c.tasks))
	copy(snap, c.tasks)
	return snap
}

// ApplyPatch merges an optimistic change into the record for id and
// advances the logical clock. A refresh in flight across this call is
// invalidated by the clock bump, which is what "cancel outstanding
// refreshes" means here: their responses will be discarded on arrival.
func (c *Cache) ApplyPatch(id string, mutate func(*Task)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	mutate(&c.tasks[i])
	c.seq++
	return true
}

// Prepend optimistically inserts a record at the head of the list.
func (c *Cache) Prepend(t Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]Task{t}, c.tasks...)
	c.reindex()
	c.seq++
}

// Remove optimistically drops the record for id from the visible list.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	c.reindex()
	c.seq++
	return true
}

// Reconcile replaces the record's provisional value with the canonical
// server record. The record keeps its current position; server-computed
// fields replace every optimistic guess. oldID allows a provisional
// create to be rebound to its server-assigned identity.
func (c *Cache) Reconcile(oldID string, canonical Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[oldID]
	if !ok {
		return false
	}
	c.tasks[i] = canonical
	c.reindex()
	c.seq++
	return true
}

// Rollback restores the records named in touched to their value and
// position in the snapshot, atomically from the caller's perspective.
// Records not named are left alone, so a rollback never disturbs another
// record's pending optimistic patch.
func (c *Cache) Rollback(snapshot []Task, touched ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapIndex := make(map[string]int, len(snapshot))
	for i, t := range snapshot {
		snapIndex[t.ID] = i
	}

	for _, id := range touched {
		snapPos, inSnap := snapIndex[id]
		curPos, inCur := c.index[id]

		switch {
		case inSnap && inCur:
			c.tasks[curPos] = snapshot[snapPos]
		case inSnap && !inCur:
			// Optimistically removed; reinsert at its prior position.
			pos := snapPos
			if pos > len(c.tasks) {
				pos = len(c.tasks)
			}
			c.tasks = append(c.tasks[:pos], append([]Task{snapshot[snapPos]}, c.tasks[pos:]...)...)
		case !inSnap && inCur:
			// Optimistically created; discard the provisional record.
			c.tasks = append(c.tasks[:curPos], c.tasks[curPos+1:]...)
		}
		c.reindex()
	}
	c.seq++
}

// BeginRefresh tags a refresh with the current clock value.
func (c *Cache) BeginRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// CompleteRefresh installs a server list snapshot if nothing newer has
// been applied since the refresh was dispatched. It reports whether the
// response was installed or discarded as stale.
func (c *Cache) CompleteRefresh(token uint64, tasks []Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != token {
		return false
	}
	c.tasks = make([]Task, len(tasks))
	copy(c.tasks, tasks)
	c.reindex()
	return true
}

// Invalidate clears the cache; the next refresh repopulates it
// unconditionally.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = nil
	c.index = make(map[string]int)
	c.seq++
}

// reindex rebuilds the id index after a structural change. Callers hold
// the lock.
func (c *Cache) reindex() {
	c.index = make(map[string]int, len(c.tasks))
	for i, t := range c.tasks {
		c.index[t.ID] = i
	}
}
