package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"question-bank/internal/config"
	"question-bank/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer container.Close()
	cfg := container.Config

	if err := container.Sweeper.Start(cfg.GetUploadSweepSchedule()); err != nil {
		container.Logger.Error("Upload sweeper not started", err)
	}

	// Handlers
	documentHandler := handler.NewDocumentHandler(
		container.DocumentService,
		container.Uploads,
		cfg.GetMaxFileSize(),
		container.Logger,
	)
	processingHandler := handler.NewProcessingHandler(container.ProcessingService, container.Logger)
	pdfHandler := handler.NewPDFHandler(container.QuestionBankService, container.Logger)

	// Router
	router := handler.NewRouter(
		documentHandler,
		processingHandler,
		pdfHandler,
		cfg.GetAllowedOrigins(),
		container.Logger,
	)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	serverErr := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		container.Logger.Error("Server failed", err)
	}

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("HTTP server shutdown failed", err)
	}
	container.Sweeper.Stop(ctx)
	if err := container.Runner.Shutdown(cfg.GetShutdownTimeout()); err != nil {
		container.Logger.Warn("Background tasks did not finish", "error", err)
	}

	container.Logger.Info("Server exited")
}
