package handler

import (
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/model"
	"docsearch/internal/service"
)

// Search returns every stored file whose text contains q.
//
// @Summary      Search documents
// @Tags         documents
// @Produce      json
// @Param        q   query  string  true  "Text to search for"
// @Success      200  {array}   model.Summary
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /search [get]
func Search(router service.StorageRouter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if strings.TrimSpace(q) == "" {
			return respondError(c, logger, service.ErrQueryRequired, "")
		}

		res, err := router.Search(c.UserContext(), q)
		if err != nil {
			return respondError(c, logger, err, "Error searching documents")
		}
		return c.JSON(nonNil(res))
	}
}

// GetPDF streams the stored bytes of one file.
//
// @Summary      Retrieve a PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  string  true  "Document ID"
// @Success      200
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /pdf/{id} [get]
func GetPDF(router service.StorageRouter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		content, err := router.Open(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, logger, err, "Error retrieving document")
		}

		c.Set(fiber.HeaderContentType, content.ContentType)
		if content.Name != "" {
			c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": content.Name}))
		}

		size := int(content.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes the body once it has been written.
		return c.SendStream(content.Body, size)
	}
}

// ListPDFs lists every stored file, documents first.
//
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Success      200  {array}   model.Summary
// @Failure      500  {object}  errorPayload
// @Router       /pdfs [get]
func ListPDFs(router service.StorageRouter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := router.ListAll(c.UserContext())
		if err != nil {
			return respondError(c, logger, err, "Error retrieving documents")
		}
		return c.JSON(nonNil(res))
	}
}

// UploadPDF accepts a multipart upload in field "pdf".
//
// The default response is the plain-text confirmation; clients sending
// Accept: application/json get the stored record summary instead.
//
// @Summary      Upload a PDF
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      plain
// @Produce      json
// @Param        pdf  formData  file  true  "PDF file"
// @Success      201  {object}  service.UploadResult
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /upload-pdf [post]
func UploadPDF(router service.StorageRouter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("pdf")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "PDF file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return respondError(c, logger, err, "Error uploading document")
		}

		res, err := router.Upload(c.UserContext(), fh.Filename, data)
		if err != nil {
			return respondError(c, logger, err, "Error uploading document")
		}

		c.Location("/pdf/" + res.ID)
		c.Status(fiber.StatusCreated)
		if c.Accepts(fiber.MIMETextPlain, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
			return c.JSON(res)
		}
		return c.SendString("Document uploaded")
	}
}

func nonNil(s []model.Summary) []model.Summary {
	if s == nil {
		return []model.Summary{}
	}
	return s
}
