// Package batch runs many attachment conversions under one request with
// bounded concurrency and per-item failure accounting.
package batch

import (
	"github.com/gsbingo17/tms-migrate/pkg/convert"
)

// Status summarizes a batch outcome.
type Status string

// Batch statuses. A batch is partial when some items converted and some
// failed; one failing item never cancels its siblings.
const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// Options bounds a batch run.
type Options struct {
	MaxConcurrentJobs    int  `json:"maxConcurrentJobs"`
	CollectDetailedStats bool `json:"collectDetailedStats"`
}

// Request is one batch of attachment conversions sharing processing options.
type Request struct {
	AttachmentIDs     []string                  `json:"attachmentIds"`
	ProcessingOptions convert.ProcessingOptions `json:"processingOptions"`
	BatchOptions      Options                   `json:"batchOptions"`
}

// Failure records why one attachment's conversion failed.
type Failure struct {
	AttachmentID string `json:"attachmentId"`
	Reason       string `json:"reason"`
}

// ItemStat carries per-item timing, populated when detailed stats are
// requested.
type ItemStat struct {
	AttachmentID string `json:"attachmentId"`
	DurationMs   int64  `json:"durationMs"`
	Succeeded    bool   `json:"succeeded"`
}

// Result aggregates a batch run. Processed + Failed always equals the number
// of requested attachments, and ProcessedAttachments is unordered with
// respect to submission order: callers needing order must correlate by id.
type Result struct {
	Status               Status     `json:"status"`
	Processed            int        `json:"processed"`
	Failed               int        `json:"failed"`
	ProcessedAttachments []string   `json:"processedAttachments"`
	Failures             []Failure  `json:"failures,omitempty"`
	Stats                []ItemStat `json:"stats,omitempty"`
}
