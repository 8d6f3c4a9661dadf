// Package sweeper implements the archival sweep: a periodic maintenance
// job that soft-deletes tasks completed longer ago than the retention
// window. Scheduling comes from outside (HTTP trigger or the optional
// interval ticker); a missed or failed sweep is corrected by the next one.
package sweeper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zgt/todo-list/events"
	"github.com/zgt/todo-list/modules/cache"
)

// defaultRetention is how long a completed task survives before the
// sweep archives it.
const defaultRetention = 24 * time.Hour

// SweepRequest is the (empty) request for the sweeper.run service.
type SweepRequest struct{}

// Module runs archival sweeps on demand and, optionally, on an interval.
type Module struct {
	db        *gorm.DB
	sweeper   *Sweeper
	cache     *cache.Cache
	eventBus  mono.EventBus
	dbPath    string
	retention time.Duration
	interval  time.Duration
	stop      chan struct{}
	wg        sync.WaitGroup
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new sweeper module. ARCHIVE_RETENTION and
// ARCHIVE_INTERVAL accept Go durations; an unset or zero interval
// disables the internal ticker, leaving scheduling to the external
// trigger.
func NewModule() *Module {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "todo.db"
	}

	retention := defaultRetention
	if v := os.Getenv("ARCHIVE_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			retention = d
		} else {
			log.Printf("[sweeper] Ignoring invalid ARCHIVE_RETENTION %q", v)
		}
	}

	var interval time.Duration
	if v := os.Getenv("ARCHIVE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		} else {
			log.Printf("[sweeper] Ignoring invalid ARCHIVE_INTERVAL %q", v)
		}
	}

	return &Module{
		dbPath:    dbPath,
		retention: retention,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "sweeper"
}

// SetCache sets the task-list cache to invalidate after sweeps. A nil
// cache leaves list freshness to the store alone.
func (m *Module) SetCache(c *cache.Cache) {
	m.cache = c
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TasksArchivedV1.ToBase(),
	}
}

// RegisterServices registers the sweeper.run request-reply service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "run", json.Unmarshal, json.Marshal, m.runSweep,
	); err != nil {
		return fmt.Errorf("failed to register run service: %w", err)
	}
	log.Printf("[sweeper] Registered services: services.sweeper.run")
	return nil
}

// runSweep handles the sweeper.run service request.
func (m *Module) runSweep(ctx context.Context, _ SweepRequest, _ *mono.Msg) (Result, error) {
	return m.sweepOnce(ctx)
}

// sweepOnce runs one sweep, logging and publishing the outcome.
func (m *Module) sweepOnce(ctx context.Context) (Result, error) {
	log.Printf("[sweeper] Archiving tasks completed before now-%s", m.retention)
	result, err := m.sweeper.Sweep(ctx)
	if err != nil {
		log.Printf("[sweeper] Sweep failed: %v", err)
		return result, err
	}
	log.Printf("[sweeper] Archived %d tasks (cutoff %s)", result.ArchivedCount, result.CutoffTime.Format(time.RFC3339))

	if result.ArchivedCount > 0 {
		m.invalidateLists(ctx, result.AffectedUserIDs)
	}
	if result.ArchivedCount > 0 && m.eventBus != nil {
		event := events.TasksArchivedEvent{
			TaskIDs:    result.ArchivedTaskIDs,
			CutoffTime: result.CutoffTime,
			ArchivedAt: time.Now().UTC(),
		}
		if err := events.TasksArchivedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[sweeper] failed to publish TasksArchived: %v", err)
		}
	}
	return result, nil
}

// invalidateLists drops the cached task lists of the archived tasks'
// owners so a swept task disappears from listings immediately rather
// than at TTL expiry. The key format matches the task module's list
// cache.
func (m *Module) invalidateLists(ctx context.Context, userIDs []string) {
	if m.cache == nil {
		return
	}
	for _, userID := range userIDs {
		if err := m.cache.Delete(ctx, "tasks:"+userID); err != nil {
			log.Printf("[sweeper] cache invalidation failed for user %s: %v", userID, err)
		}
	}
}

// Start opens the database and, when an interval is configured, starts
// the ticker loop.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[sweeper] Connecting to SQLite database: %s", m.dbPath)

	// Shares the database file with the task and category modules.
	db, err := gorm.Open(sqlite.Open(m.dbPath+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db
	m.sweeper = NewSweeper(db, m.retention)

	if m.interval > 0 {
		m.wg.Add(1)
		go m.run()
		log.Printf("[sweeper] Ticker enabled, sweeping every %s", m.interval)
	}

	log.Println("[sweeper] Module started successfully")
	return nil
}

// run is the ticker loop. Sweep failures are logged only; there is no
// synchronous caller to inform.
func (m *Module) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			log.Println("[sweeper] Ticker stopping")
			return
		case <-ticker.C:
			if _, err := m.sweepOnce(context.Background()); err != nil {
				log.Printf("[sweeper] Scheduled sweep failed, will retry next interval: %v", err)
			}
		}
	}
}

// Stop halts the ticker and closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	close(m.stop)
	m.wg.Wait()

	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Println("[sweeper] Database connection closed")
	return nil
}

// Health performs a health check on the sweeper module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get sql.DB: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"retention":      m.retention.String(),
			"ticker_enabled": m.interval > 0,
		},
	}
}

// newTestModule wires a module directly over an open database, bypassing
// the framework lifecycle. Used by tests.
func newTestModule(db *gorm.DB, c *cache.Cache) *Module {
	return &Module{
		db:        db,
		sweeper:   NewSweeper(db, defaultRetention),
		cache:     c,
		retention: defaultRetention,
		stop:      make(chan struct{}),
	}
}
