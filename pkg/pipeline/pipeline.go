// Package pipeline wires the transformation engine, the attachment
// conversion service and the batch coordinator into the orchestrator-facing
// entry points.
package pipeline

import (
	"context"

	"github.com/gsbingo17/tms-migrate/pkg/batch"
	"github.com/gsbingo17/tms-migrate/pkg/codec"
	"github.com/gsbingo17/tms-migrate/pkg/convert"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/mapping"
	"github.com/gsbingo17/tms-migrate/pkg/record"
	"github.com/gsbingo17/tms-migrate/pkg/storage"
	"github.com/gsbingo17/tms-migrate/pkg/transform"
)

// Pipeline is the facade an orchestrator drives: record transformation on
// one side, attachment conversion (single or batched) on the other.
type Pipeline struct {
	processor   *transform.Processor
	service     *convert.Service
	coordinator *batch.Coordinator
	log         *logger.Logger
}

// New assembles a pipeline over the given store and codec limits.
func New(store storage.Store, chunkSize int, memoryLimit int64, log *logger.Logger) *Pipeline {
	engine := transform.NewEngine(transform.NewGovaluateEvaluator(), log)
	processor := transform.NewProcessor(engine, log)
	service := convert.NewService(codec.New(chunkSize, memoryLimit, log), store, log)

	return &Pipeline{
		processor:   processor,
		service:     service,
		coordinator: batch.NewCoordinator(service, log),
		log:         log,
	}
}

// TransformField applies a single mapping to the source record and returns
// the resulting value. Intended for preview and debugging tooling.
func (p *Pipeline) TransformField(source record.Record, m mapping.FieldMapping) interface{} {
	return p.processor.TransformField(source, m)
}

// TransformRecord produces the target record for a source record under a
// mapping list.
func (p *Pipeline) TransformRecord(source record.Record, mappings []mapping.FieldMapping) record.Record {
	return p.processor.TransformRecord(source, mappings)
}

// ConvertAttachment converts one attachment and returns the new attachment
// id.
func (p *Pipeline) ConvertAttachment(ctx context.Context, ownerID, attachmentID string, opts convert.ProcessingOptions) (string, error) {
	return p.service.Convert(ctx, ownerID, attachmentID, opts)
}

// ConvertBatch converts a batch of attachments with bounded concurrency.
func (p *Pipeline) ConvertBatch(ctx context.Context, ownerID string, req batch.Request) (*batch.Result, error) {
	return p.coordinator.Run(ctx, ownerID, req)
}
