package handler

import (
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB     *sql.DB
	Router service.StorageRouter
	Data   service.DataService
	Blobs  BlobReadiness
	Logger *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	app.Get("/", Index())

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/readyz", Readiness(d.DB, d.Blobs))

	app.Get("/search", Search(d.Router, logger))
	app.Get("/pdf/:id", GetPDF(d.Router, logger))
	app.Get("/pdfs", ListPDFs(d.Router, logger))
	app.Post("/upload-pdf", UploadPDF(d.Router, logger))

	app.Get("/export", Export(d.Data, logger))
	app.Post("/load", Load(d.Data, logger))
}
