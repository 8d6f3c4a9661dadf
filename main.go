package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/zgt/todo-list/modules/api"
	"github.com/zgt/todo-list/modules/auth"
	cachemod "github.com/zgt/todo-list/modules/cache"
	"github.com/zgt/todo-list/modules/category"
	"github.com/zgt/todo-list/modules/sweeper"
	"github.com/zgt/todo-list/modules/task"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Todo List Service ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	authModule := auth.NewModule()
	taskModule := task.NewModule()
	categoryModule := category.NewModule()
	sweeperModule := sweeper.NewModule()

	// The Redis list cache is optional: without REDIS_ADDR the task
	// module serves lists straight from the database.
	var cacheModule *cachemod.Module
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cacheModule = cachemod.NewModule(redisAddr)
		app.Register(cacheModule)
	}

	// Order: independent modules first, then dependent modules
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(categoryModule)
	app.Register(sweeperModule)
	app.Register(api.NewModule(authModule))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	if cacheModule != nil {
		taskModule.SetCache(cacheModule.Cache())
		sweeperModule.SetCache(cacheModule.Cache())
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/tasks           - List tasks")
	log.Println("  GET    /api/tasks/:id       - Get task")
	log.Println("  POST   /api/tasks           - Create task")
	log.Println("  PATCH  /api/tasks/:id       - Update task")
	log.Println("  DELETE /api/tasks/:id       - Delete task (soft)")
	log.Println("  GET    /api/categories      - List categories")
	log.Println("  POST   /api/categories      - Create category")
	log.Println("  PATCH  /api/categories/:id  - Update category")
	log.Println("  DELETE /api/categories/:id  - Delete category")
	log.Println("")
	log.Println("  Internal Endpoints:")
	log.Println("  POST   /internal/archive    - Archive old completed tasks")
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("Environment:")
	log.Println("  DB_PATH            - SQLite database path (default: todo.db)")
	log.Println("  JWT_SECRET         - HMAC secret for session tokens")
	log.Println("  REDIS_ADDR         - Enable the Redis list cache")
	log.Println("  ARCHIVE_RETENTION  - Completed-task retention (default: 24h)")
	log.Println("  ARCHIVE_INTERVAL   - Periodic sweep interval (unset: disabled)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
