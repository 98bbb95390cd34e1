package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// CleanupResult holds the outcome of one cleanup run.
type CleanupResult struct {
	StartTime    time.Time
	EndTime      time.Time
	FilesScanned int
	FilesDeleted int
	BytesFreed   int64
	Errors       []string
}

// CleanupJob removes attachment objects older than the configured age
// from the date-bucketed folders. Uploaded attachments are temporary by
// contract: they only need to outlive the send that references them.
type CleanupJob struct {
	storage  *Service
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewCleanupJob creates a cleanup job over the given storage service.
func NewCleanupJob(storage *Service, interval, maxAge time.Duration, logger *slog.Logger) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		storage:  storage,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic cleanup loop.
func (j *CleanupJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("cleanup job is already running")
	}
	j.running = true
	j.stopChan = make(chan struct{})
	j.wg.Add(1)

	go j.run()

	j.logger.Info("attachment cleanup job started",
		slog.Duration("interval", j.interval),
		slog.Duration("max_age", j.maxAge),
	)
	return nil
}

// Stop stops the periodic cleanup loop and waits for it to finish.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	close(j.stopChan)
	j.mu.Unlock()

	j.wg.Wait()
}

func (j *CleanupJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			result := j.RunOnce(context.Background())
			j.logger.Info("attachment cleanup run finished",
				slog.Int("scanned", result.FilesScanned),
				slog.Int("deleted", result.FilesDeleted),
				slog.Int64("bytes_freed", result.BytesFreed),
				slog.Int("errors", len(result.Errors)),
			)
		}
	}
}

// RunOnce scans the attachment folders and deletes every object whose
// last modification is older than the retention window.
func (j *CleanupJob) RunOnce(ctx context.Context) *CleanupResult {
	result := &CleanupResult{StartTime: time.Now().UTC()}
	cutoff := result.StartTime.Add(-j.maxAge)

	paginator := s3.NewListObjectsV2Paginator(j.storage.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(j.storage.bucket),
		Prefix: aws.String(FolderPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("list objects: %v", err))
			break
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			result.FilesScanned++

			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}

			if err := j.storage.DeleteObject(ctx, *obj.Key); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", *obj.Key, err))
				continue
			}
			result.FilesDeleted++
			if obj.Size != nil {
				result.BytesFreed += *obj.Size
			}
		}
	}

	result.EndTime = time.Now().UTC()
	return result
}
