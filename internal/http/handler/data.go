package handler

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/http/middleware"
	"docsearch/internal/service"
)

// Export streams the data collection as an attachment.
//
// @Summary      Export data
// @Tags         data
// @Produce      json
// @Param        format  query  string  false  "json (default), json.gz or xlsx"
// @Success      200
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /export [get]
func Export(data service.DataService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := service.ParseExportFormat(c.Query("format"))
		if err != nil {
			return respondError(c, logger, err, "")
		}

		write, err := data.Export(c.UserContext(), format)
		if err != nil {
			return respondError(c, logger, err, "Error exporting data")
		}

		c.Attachment(format.Filename())
		c.Set(fiber.HeaderContentType, format.ContentType())

		// The writer runs after the handler returns, so nothing request-scoped
		// from c may be used inside it.
		rid := middleware.GetRequestID(c)
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			if err := write(w); err != nil {
				logger.Error("data_export_failed",
					"request_id", rid,
					"format", string(format),
					"error", err.Error(),
				)
			}
			_ = w.Flush()
		})
		return nil
	}
}

// Load replaces the data collection with a JSON array of objects, read from
// multipart field "file" or the raw request body.
//
// @Summary      Bulk-load data
// @Tags         data
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  false  "JSON file"
// @Success      200  {object}  map[string]int
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /load [post]
func Load(data service.DataService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := c.Body()
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()
			if payload, err = io.ReadAll(f); err != nil {
				return respondError(c, logger, err, "Error loading data")
			}
		}

		n, err := data.Load(c.UserContext(), payload)
		if err != nil {
			return respondError(c, logger, err, "Error loading data")
		}
		return c.JSON(fiber.Map{"loaded": n})
	}
}
