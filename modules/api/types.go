package api

import "encoding/json"

// ErrorResponse is the JSON error envelope for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// createTaskBody is the request body for POST /api/tasks.
type createTaskBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId"`
	DueDate     *string `json:"dueDate"`
	OrderIndex  *int    `json:"orderIndex"`
}

// updateTaskBody is the request body for PATCH /api/tasks/:id. The
// RawMessage fields distinguish an explicit JSON null ("clear this
// field") from an absent key ("leave it alone").
type updateTaskBody struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	DueDate     json.RawMessage `json:"dueDate"`
	CategoryID  json.RawMessage `json:"categoryId"`
	OrderIndex  *int            `json:"orderIndex"`
}

// createCategoryBody is the request body for POST /api/categories.
type createCategoryBody struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	SortOrder *int   `json:"sortOrder"`
}

// updateCategoryBody is the request body for PATCH /api/categories/:id.
type updateCategoryBody struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sortOrder"`
}
