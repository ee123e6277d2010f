package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gsbingo17/tms-migrate/pkg/convert"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
)

// Converter is the single-attachment conversion consumed by the coordinator.
type Converter interface {
	Convert(ctx context.Context, ownerID, attachmentID string, opts convert.ProcessingOptions) (string, error)
}

// Coordinator dispatches a batch of conversions onto a bounded worker pool.
type Coordinator struct {
	converter Converter
	log       *logger.Logger
}

// NewCoordinator creates a batch coordinator
func NewCoordinator(converter Converter, log *logger.Logger) *Coordinator {
	return &Coordinator{
		converter: converter,
		log:       log,
	}
}

// validate rejects a malformed request before any work starts.
func validate(req *Request) error {
	if len(req.AttachmentIDs) == 0 {
		return fmt.Errorf("batch request has no attachment ids")
	}
	if req.BatchOptions.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("maxConcurrentJobs must be positive, got %d", req.BatchOptions.MaxConcurrentJobs)
	}
	return nil
}

// Run converts every attachment in the request with at most
// MaxConcurrentJobs conversions in flight. Once dispatch has started the
// caller always gets a Result: per-item failures are recorded, never
// propagated. Cancellation is honored between attachment boundaries only;
// conversions already dispatched run to completion so no partially-converted
// output is ever persisted.
func (c *Coordinator) Run(ctx context.Context, ownerID string, req Request) (*Result, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	total := len(req.AttachmentIDs)
	c.log.Infof("Starting batch of %d attachments with %d concurrent jobs", total, req.BatchOptions.MaxConcurrentJobs)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, req.BatchOptions.MaxConcurrentJobs)

	// mu guards the result aggregation below.
	var mu sync.Mutex
	result := &Result{}

	record := func(attachmentID, newID string, err error, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{
				AttachmentID: attachmentID,
				Reason:       err.Error(),
			})
		} else {
			result.Processed++
			result.ProcessedAttachments = append(result.ProcessedAttachments, newID)
		}
		if req.BatchOptions.CollectDetailedStats {
			result.Stats = append(result.Stats, ItemStat{
				AttachmentID: attachmentID,
				DurationMs:   elapsed.Milliseconds(),
				Succeeded:    err == nil,
			})
		}
	}

	// In-flight conversions must finish even if the batch context is
	// canceled, so workers run on a detached context.
	workCtx := context.WithoutCancel(ctx)

	for _, attachmentID := range req.AttachmentIDs {
		// Honor cancellation at the attachment boundary: stop dispatching
		// and account for the remainder as failures.
		select {
		case <-ctx.Done():
			record(attachmentID, "", fmt.Errorf("batch canceled before dispatch: %w", ctx.Err()), 0)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			record(attachmentID, "", fmt.Errorf("batch canceled before dispatch: %w", ctx.Err()), 0)
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			start := time.Now()
			newID, err := c.converter.Convert(workCtx, ownerID, id, req.ProcessingOptions)
			if err != nil {
				c.log.WithField("attachment", id).Warnf("Conversion failed: %v", err)
			}
			record(id, newID, err, time.Since(start))
		}(attachmentID)
	}

	wg.Wait()

	switch {
	case result.Failed == 0:
		result.Status = StatusCompleted
	case result.Processed == 0:
		result.Status = StatusFailed
	default:
		result.Status = StatusPartial
	}

	c.log.Infof("Batch finished: %d processed, %d failed (%s)", result.Processed, result.Failed, result.Status)
	return result, nil
}
