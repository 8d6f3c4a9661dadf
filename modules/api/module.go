// Package api is the driving adapter exposing the task, category, and
// sweeper services over HTTP.
package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zgt/todo-list/modules/auth"
	"github.com/zgt/todo-list/modules/category"
	"github.com/zgt/todo-list/modules/sweeper"
	"github.com/zgt/todo-list/modules/task"
)

// Module is the HTTP driving adapter. It reaches the core domain only
// through the module ports.
type Module struct {
	app             *fiber.App
	authPort        auth.AuthPort
	taskAdapter     task.TaskPort
	categoryAdapter category.CategoryPort
	sweeperAdapter  sweeper.SweeperPort
	addr            string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new API module. The auth port is passed directly;
// session validation is in-process and has no service container.
func NewModule(authPort auth.AuthPort) *Module {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return &Module{authPort: authPort, addr: addr}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"task", "category", "sweeper"}
}

// SetDependencyServiceContainer receives service containers from
// dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "category":
		m.categoryAdapter = category.NewCategoryAdapter(container)
	case "sweeper":
		m.sweeperAdapter = sweeper.NewSweeperAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.taskAdapter == nil || m.categoryAdapter == nil || m.sweeperAdapter == nil {
		return fmt.Errorf("module dependencies not set")
	}
	if m.authPort == nil {
		return fmt.Errorf("auth port not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})
	m.app.Use(recover.New())
	m.setupRoutes()

	// Server availability is verified via Health().
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// setupRoutes wires the REST surface.
func (m *Module) setupRoutes() {
	h := NewHandlers(m.taskAdapter, m.categoryAdapter)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Archival trigger for the external scheduler. Carries no session;
	// deployments front it with network-level access control.
	m.app.Post("/internal/archive", m.triggerArchive)

	tasks := m.app.Group("/api/tasks", AuthMiddleware(m.authPort))
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Patch("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)

	categories := m.app.Group("/api/categories", AuthMiddleware(m.authPort))
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Patch("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)
}

// triggerArchive handles POST /internal/archive.
func (m *Module) triggerArchive(c *fiber.Ctx) error {
	result, err := m.sweeperAdapter.Run(c.UserContext())
	if err != nil {
		log.Printf("[api] Archive sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "archive sweep failed",
		})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Stop shuts down the HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{"addr": m.addr},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
