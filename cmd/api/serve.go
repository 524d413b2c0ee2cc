package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"docsearch/docs"
	handlers "docsearch/internal/http/handler"
	"docsearch/internal/http/middleware"
	"docsearch/internal/otel"
	"docsearch/internal/repository/postgres"
	"docsearch/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var waitBlob time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), waitBlob)
		},
	}
	cmd.Flags().DurationVar(&waitBlob, "wait-blob", 0, "block startup until the blob store is ready, up to this long")
	return cmd
}

func serve(ctx context.Context, waitBlob time.Duration) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()

	shutdownTracing, err := otel.Init(ctx, e.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	blobs := e.blobStore()
	blobs.Start(ctx)
	if waitBlob > 0 {
		wctx, cancel := context.WithTimeout(ctx, waitBlob)
		err := blobs.Wait(wctx)
		cancel()
		if err != nil {
			return fmt.Errorf("blob store not ready: %w", err)
		}
	}

	dataSvc, err := service.NewDataService(postgres.NewDataPostgres(e.db), e.logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             e.cfg.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggerWithLogger(e.logger))
	app.Use(promMiddleware.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:     e.db,
		Router: e.router(blobs),
		Data:   dataSvc,
		Blobs:  blobs,
		Logger: e.logger,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("server_started", "port", e.cfg.Port, "blob_backend", e.cfg.Blob.Backend)
		errCh <- app.Listen(":" + e.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("server_stopping")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
