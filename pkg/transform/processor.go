package transform

import (
	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/mapping"
	"github.com/gsbingo17/tms-migrate/pkg/record"
)

// Processor assembles target records from source records under a mapping
// list. It is a pure function of its inputs: the source record is never
// modified.
type Processor struct {
	engine *Engine
	log    *logger.Logger
}

// NewProcessor creates a record processor
func NewProcessor(engine *Engine, log *logger.Logger) *Processor {
	return &Processor{
		engine: engine,
		log:    log,
	}
}

// TransformRecord applies every mapping to the source record and returns the
// assembled target record. A mapping with no transformation, or with a
// malformed one, is a direct copy; the target field is skipped entirely when
// the source field is absent, so absent and null stay distinguishable.
func (p *Processor) TransformRecord(source record.Record, mappings []mapping.FieldMapping) record.Record {
	target := record.Record{}

	for i := range mappings {
		m := &mappings[i]

		spec, err := m.Spec()
		if err != nil {
			// Malformed specifications are recoverable: log and copy.
			p.log.Warnf("Malformed transformation for field %s, falling back to direct copy: %v", m.SourceID, err)
			spec = nil
		}

		sourceValue, present := source.Get(m.SourceID)

		if spec == nil {
			if !present {
				continue
			}
			target.Set(m.TargetID, sourceValue)
			continue
		}

		target.Set(m.TargetID, p.engine.Apply(sourceValue, spec.Type, spec.Params, source))
	}
	return target
}

// TransformField applies a single mapping and returns the resulting value.
// Intended for preview and debugging tooling.
func (p *Processor) TransformField(source record.Record, m mapping.FieldMapping) interface{} {
	spec, err := m.Spec()
	if err != nil {
		p.log.Warnf("Malformed transformation for field %s, falling back to direct copy: %v", m.SourceID, err)
		spec = nil
	}

	sourceValue, _ := source.Get(m.SourceID)
	if spec == nil {
		return sourceValue
	}
	return p.engine.Apply(sourceValue, spec.Type, spec.Params, source)
}
