package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// @title docsearch API
// @version 1.0
// @description Upload PDFs, search their text and retrieve them.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("command_failed", "error", err.Error())
		os.Exit(1)
	}
}
