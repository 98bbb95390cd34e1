package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mailroomhq/mailroom/internal/config"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/storage"
)

// A one-shot cleanup run for cron-style scheduling. The server runs the
// same job periodically; this binary exists for deployments that prefer
// an external scheduler.
func main() {
	maxAge := flag.Duration("max-age", 0, "delete attachments older than this (default: CLEANUP_MAX_AGE or 24h)")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort the run after this long")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	appLogger := logger.New(logger.DefaultConfig())

	age := cfg.Cleanup.MaxAge
	if *maxAge > 0 {
		age = *maxAge
	}

	storageService := storage.NewService(&cfg.Storage)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := storageService.CheckAccess(ctx); err != nil {
		log.Fatalf("storage access check failed: %v", err)
	}

	job := storage.NewCleanupJob(storageService, 0, age, appLogger)
	result := job.RunOnce(ctx)

	fmt.Printf("scanned %d objects, deleted %d (%d bytes freed) in %s\n",
		result.FilesScanned, result.FilesDeleted, result.BytesFreed,
		result.EndTime.Sub(result.StartTime).Round(time.Millisecond))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, "error:", e)
		}
		os.Exit(1)
	}
}
