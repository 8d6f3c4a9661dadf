package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zgt/todo-list/modules/category"
	"github.com/zgt/todo-list/modules/task"
)

// Handlers contains the HTTP handlers bridging REST to the service layer.
type Handlers struct {
	tasks      task.TaskPort
	categories category.CategoryPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tasks task.TaskPort, categories category.CategoryPort) *Handlers {
	return &Handlers{tasks: tasks, categories: categories}
}

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.All(c.UserContext(), sessionUserID(c))
	if err != nil {
		return handleTaskError(c, "list tasks", err)
	}
	return c.Status(fiber.StatusOK).JSON(tasks)
}

// GetTask handles GET /api/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	t, err := h.tasks.ByID(c.UserContext(), sessionUserID(c), c.Params("id"))
	if err != nil {
		return handleTaskError(c, "get task", err)
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body createTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.CreateTaskRequest{
		UserID:      sessionUserID(c),
		Title:       body.Title,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		OrderIndex:  body.OrderIndex,
	}
	if body.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *body.DueDate)
		if err != nil {
			return badRequest(c, "dueDate must be an RFC 3339 timestamp")
		}
		req.DueDate = &due
	}

	created, err := h.tasks.Create(c.UserContext(), &req)
	if err != nil {
		return handleTaskError(c, "create task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTask handles PATCH /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var body updateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.UpdateTaskRequest{
		UserID:      sessionUserID(c),
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Completed:   body.Completed,
		OrderIndex:  body.OrderIndex,
	}

	if present(body.CategoryID) {
		if isNull(body.CategoryID) {
			req.ClearCategory = true
		} else {
			var id string
			if err := json.Unmarshal(body.CategoryID, &id); err != nil {
				return badRequest(c, "categoryId must be a string or null")
			}
			req.CategoryID = &id
		}
	}
	if present(body.DueDate) {
		if isNull(body.DueDate) {
			req.ClearDueDate = true
		} else {
			var raw string
			if err := json.Unmarshal(body.DueDate, &raw); err != nil {
				return badRequest(c, "dueDate must be a timestamp string or null")
			}
			due, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return badRequest(c, "dueDate must be an RFC 3339 timestamp")
			}
			req.DueDate = &due
		}
	}

	updated, err := h.tasks.Update(c.UserContext(), &req)
	if err != nil {
		return handleTaskError(c, "update task", err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), sessionUserID(c), c.Params("id")); err != nil {
		return handleTaskError(c, "delete task", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// ListCategories handles GET /api/categories.
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.All(c.UserContext(), sessionUserID(c))
	if err != nil {
		return handleCategoryError(c, "list categories", err)
	}
	return c.Status(fiber.StatusOK).JSON(categories)
}

// CreateCategory handles POST /api/categories.
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var body createCategoryBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.categories.Create(c.UserContext(), &category.CreateCategoryRequest{
		UserID:    sessionUserID(c),
		Name:      body.Name,
		Color:     body.Color,
		Icon:      body.Icon,
		SortOrder: body.SortOrder,
	})
	if err != nil {
		return handleCategoryError(c, "create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateCategory handles PATCH /api/categories/:id.
func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	var body updateCategoryBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.categories.Update(c.UserContext(), &category.UpdateCategoryRequest{
		UserID:     sessionUserID(c),
		CategoryID: c.Params("id"),
		Name:       body.Name,
		Color:      body.Color,
		Icon:       body.Icon,
		SortOrder:  body.SortOrder,
	})
	if err != nil {
		return handleCategoryError(c, "update category", err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteCategory handles DELETE /api/categories/:id.
func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.UserContext(), sessionUserID(c), c.Params("id")); err != nil {
		return handleCategoryError(c, "delete category", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// handleTaskError maps task service errors onto HTTP responses without
// exposing internals.
func handleTaskError(c *fiber.Ctx, op string, err error) error {
	var vErr *task.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: vErr.Field + " " + vErr.Reason,
		})
	case errors.Is(err, task.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case errors.Is(err, task.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Sign in required",
		})
	default:
		log.Printf("[api] Failed to %s: %v", op, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to " + op,
		})
	}
}

// handleCategoryError maps category service errors onto HTTP responses.
func handleCategoryError(c *fiber.Ctx, op string, err error) error {
	var vErr *category.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: vErr.Field + " " + vErr.Reason,
		})
	case errors.Is(err, category.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Category not found",
		})
	case errors.Is(err, category.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Sign in required",
		})
	default:
		log.Printf("[api] Failed to %s: %v", op, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to " + op,
		})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: msg,
	})
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
