// Package migration drives an end-to-end run: source records are transformed
// under the configured mapping list, and the attachments each record
// references are batch-converted through the pipeline.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gsbingo17/tms-migrate/pkg/batch"
	"github.com/gsbingo17/tms-migrate/pkg/codec"
	"github.com/gsbingo17/tms-migrate/pkg/config"
	"github.com/gsbingo17/tms-migrate/pkg/convert"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/mapping"
	"github.com/gsbingo17/tms-migrate/pkg/pipeline"
	"github.com/gsbingo17/tms-migrate/pkg/record"
	"github.com/gsbingo17/tms-migrate/pkg/storage"
)

// Record fields with pipeline meaning: ownerField identifies the owning test
// asset, attachmentsField lists the attachment ids to convert.
const (
	ownerField       = "id"
	attachmentsField = "attachments"
)

// Migrator runs a migration described by a Config.
type Migrator struct {
	config *config.Config
	log    *logger.Logger
}

// NewMigrator creates a new Migrator
func NewMigrator(cfg *config.Config, log *logger.Logger) *Migrator {
	return &Migrator{
		config: cfg,
		log:    log,
	}
}

// Start transforms the configured records and converts their attachments.
func (m *Migrator) Start(ctx context.Context) error {
	m.log.Infof("Starting %s to %s migration", m.config.Processing.SourceProvider, m.config.Processing.TargetProvider)

	store, err := m.openStore()
	if err != nil {
		return err
	}

	mappings, err := mapping.Load(m.config.MappingFile)
	if err != nil {
		return fmt.Errorf("failed to load mapping file: %w", err)
	}
	m.log.Infof("Loaded %d field mappings from %s", len(mappings), m.config.MappingFile)

	records, err := m.readRecords()
	if err != nil {
		return err
	}
	m.log.Infof("Loaded %d source records from %s", len(records), m.config.RecordsFile)

	p := pipeline.New(store, m.config.Codec.ChunkSize, m.config.Codec.MemoryLimit, m.log)

	opts := convert.ProcessingOptions{
		SourceProvider:     m.config.Processing.SourceProvider,
		TargetProvider:     m.config.Processing.TargetProvider,
		Format:             codec.Format(m.config.Processing.Format),
		ExportImages:       m.config.Processing.ExportImages,
		PreserveFormatting: m.config.Processing.PreserveFormatting,
	}

	targets := make([]record.Record, 0, len(records))
	var converted, failed int

	for i, source := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target := p.TransformRecord(source, mappings)

		ownerID, attachmentIDs := recordAttachments(source)
		if len(attachmentIDs) > 0 {
			result, err := p.ConvertBatch(ctx, ownerID, batch.Request{
				AttachmentIDs:     attachmentIDs,
				ProcessingOptions: opts,
				BatchOptions: batch.Options{
					MaxConcurrentJobs:    m.config.Batch.MaxConcurrentJobs,
					CollectDetailedStats: m.config.Batch.CollectDetailedStats,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to convert attachments for record %d: %w", i, err)
			}
			converted += result.Processed
			failed += result.Failed
			for _, f := range result.Failures {
				m.log.Warnf("Attachment %s of record %s failed: %s", f.AttachmentID, ownerID, f.Reason)
			}
			target.Set(attachmentsField, toInterfaces(result.ProcessedAttachments))
		}

		targets = append(targets, target)
	}

	if err := m.writeRecords(targets); err != nil {
		return err
	}

	m.log.Infof("Migration finished: %d records, %d attachments converted, %d attachments failed", len(targets), converted, failed)
	return nil
}

// openStore builds the configured attachment store.
func (m *Migrator) openStore() (storage.Store, error) {
	switch m.config.Storage.Backend {
	case "mongodb":
		m.log.Infof("Connecting to MongoDB at %s", m.config.Storage.MongoDB.ConnectionString)
		return storage.NewMongoStore(
			m.config.Storage.MongoDB.ConnectionString,
			m.config.Storage.MongoDB.Database,
			m.config.Storage.MongoDB.Collection,
			m.log,
		)
	case "elasticsearch":
		es := m.config.Storage.Elasticsearch
		m.log.Infof("Connecting to Elasticsearch at %v", es.Addresses)
		var tlsConfig *storage.ElasticTLSConfig
		if es.TLS {
			tlsConfig = &storage.ElasticTLSConfig{
				Enabled:                true,
				CACertPath:             es.CACertPath,
				SkipVerify:             es.SkipVerify,
				CertificateFingerprint: es.CertificateFingerprint,
				ConnectionTimeout:      es.ConnectionTimeout,
				ResponseTimeout:        es.ResponseTimeout,
			}
		} else {
			tlsConfig = &storage.ElasticTLSConfig{
				ConnectionTimeout: es.ConnectionTimeout,
				ResponseTimeout:   es.ResponseTimeout,
			}
		}
		return storage.NewElasticStore(es.Addresses, es.Username, es.Password, es.APIKey, es.Index, tlsConfig, m.log)
	default:
		m.log.Info("Using in-memory attachment store")
		return storage.NewMemoryStore(), nil
	}
}

func (m *Migrator) readRecords() ([]record.Record, error) {
	data, err := os.ReadFile(m.config.RecordsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}
	return records, nil
}

func (m *Migrator) writeRecords(records []record.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode target records: %w", err)
	}
	if err := os.WriteFile(m.config.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// recordAttachments pulls the owner id and the referenced attachment ids out
// of a source record.
func recordAttachments(source record.Record) (string, []string) {
	ownerID := ""
	if v, ok := source.Get(ownerField); ok {
		if s, isString := v.(string); isString {
			ownerID = s
		}
	}

	raw, ok := source.Get(attachmentsField)
	if !ok {
		return ownerID, nil
	}
	items, isArray := raw.([]interface{})
	if !isArray {
		return ownerID, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if id, isString := item.(string); isString {
			ids = append(ids, id)
		}
	}
	return ownerID, ids
}

func toInterfaces(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
