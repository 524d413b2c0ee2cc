package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/extract"
	"docsearch/internal/http/middleware"
	"docsearch/internal/service"
	"docsearch/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// respondError maps a service error onto the error taxonomy. fallback is the
// message used for unexpected failures. Server-side failures are logged with
// the underlying error; the client only sees the code and a safe message.
func respondError(c *fiber.Ctx, logger *slog.Logger, err error, fallback string) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback

	switch {
	case errors.Is(err, service.ErrQueryRequired):
		status, code, msg = fiber.StatusBadRequest, "QUERY_REQUIRED", "Query parameter is required"
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidID):
		status, code, msg = fiber.StatusBadRequest, "INVALID_ID", "invalid id format"
	case errors.Is(err, service.ErrEmptyUpload):
		status, code, msg = fiber.StatusBadRequest, "FILE_REQUIRED", "PDF file is required"
	case errors.Is(err, service.ErrInvalidPayload):
		status, code, msg = fiber.StatusBadRequest, "INVALID_PAYLOAD", "payload must be a JSON array of objects"
	case errors.Is(err, service.ErrInvalidFormat):
		status, code, msg = fiber.StatusBadRequest, "INVALID_FORMAT", "format must be one of json, json.gz, xlsx"
	case errors.Is(err, service.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "document not found"
	case errors.Is(err, extract.ErrExtraction):
		code, msg = "INVALID_DOCUMENT", "Error uploading document due to invalid file"
	case errors.Is(err, storage.ErrNotReady):
		code, msg = "NOT_READY", "blob store is not ready"
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("request_failed",
			"request_id", middleware.GetRequestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"code", code,
			"error", err.Error(),
		)
	}
	return writeError(c, status, code, msg)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
