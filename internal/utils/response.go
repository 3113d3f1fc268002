package utils

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse acknowledges a successful write.
type MessageResponse struct {
	Message string      `json:"message"`
	ID      interface{} `json:"id,omitempty"`
}

// Fail sends an error payload with optional details.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// SendError sends an error payload with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// SendMessage acknowledges a write with a message.
func SendMessage(c *fiber.Ctx, status int, message string) error {
	return SendCreated(c, status, message, nil)
}

// SendCreated acknowledges a write and echoes the identifier of the created record.
func SendCreated(c *fiber.Ctx, status int, message string, id interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(MessageResponse{
		Message: message,
		ID:      id,
	})
}

// OK sends data as the response body.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// List sends items as a JSON array; a nil slice is sent as [] rather than null.
func List[T any](c *fiber.Ctx, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.Status(fiber.StatusOK).JSON(items)
}
