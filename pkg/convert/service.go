// Package convert implements envelope-level attachment conversion between
// provider-specific wrapper formats, layered on top of the codec.
package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
	"github.com/gsbingo17/tms-migrate/pkg/codec"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/record"
	"github.com/gsbingo17/tms-migrate/pkg/storage"
)

// ProcessingOptions parameterizes one conversion call. Immutable once the
// call starts.
type ProcessingOptions struct {
	SourceProvider     string       `json:"sourceProvider"`
	TargetProvider     string       `json:"targetProvider"`
	Format             codec.Format `json:"format"`
	ExportImages       bool         `json:"exportImages"`
	PreserveFormatting bool         `json:"preserveFormatting"`
}

func (o ProcessingOptions) codecOptions() codec.Options {
	return codec.Options{
		Format:             o.Format,
		ExportImages:       o.ExportImages,
		PreserveFormatting: o.PreserveFormatting,
	}
}

// sourceEnvelope is the parseable part of a provider envelope: the wrapped
// content plus provenance metadata. Binary content is base64-encoded and
// flagged via contentEncoding.
type sourceEnvelope struct {
	Content         *string                `json:"content"`
	ContentEncoding string                 `json:"contentEncoding"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// Service converts a single attachment: envelope unwrap, codec transcode,
// envelope wrap, persist. The original attachment is never mutated or
// deleted; retention is the caller's decision.
type Service struct {
	codec *codec.Codec
	store storage.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a conversion service
func NewService(c *codec.Codec, store storage.Store, log *logger.Logger) *Service {
	return &Service{
		codec: c,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Convert reads the attachment, converts it under opts and persists the
// result as a new attachment, returning the new id. Storage failures and
// corrupt base64 data are fatal for this attachment only.
func (s *Service) Convert(ctx context.Context, ownerID, attachmentID string, opts ProcessingOptions) (string, error) {
	att, found, err := s.store.Get(ctx, ownerID, attachmentID)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment %s: %w", attachmentID, err)
	}
	if !found {
		return "", fmt.Errorf("attachment %s not found for owner %s", attachmentID, ownerID)
	}

	payload, err := att.Decoded()
	if err != nil {
		return "", err
	}

	// Step 1: unwrap. Non-JSON payloads have no envelope; the raw bytes go
	// straight to the codec with empty metadata.
	content, metadata := unwrap(payload)

	// Step 2: transcode.
	converted, processed, err := s.codec.Convert(content, att.ContentType, opts.codecOptions())
	if err != nil {
		return "", fmt.Errorf("failed to convert attachment %s: %w", attachmentID, err)
	}
	if !processed {
		// Image export is disabled: the original attachment stands as-is.
		s.log.Debugf("Attachment %s left unprocessed, keeping original", attachmentID)
		return att.ID, nil
	}

	if opts.Format == codec.FormatJSON && !opts.PreserveFormatting {
		converted = compactJSON(converted)
	}

	// Step 3: wrap in the destination envelope.
	wrapped, err := s.wrap(converted, metadata, opts)
	if err != nil {
		return "", fmt.Errorf("failed to wrap attachment %s: %w", attachmentID, err)
	}

	out := attachment.New(
		ownerID,
		codec.OutputFileName(att.FileName, opts.Format),
		codec.OutputContentType(att.ContentType, opts.Format),
		wrapped,
	)
	if err := s.store.Put(ctx, ownerID, out); err != nil {
		return "", fmt.Errorf("failed to store converted attachment: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"attachment": attachmentID,
		"converted":  out.ID,
	}).Debugf("Converted %s attachment (%d -> %d bytes)", att.ContentType, att.Size, out.Size)
	return out.ID, nil
}

// unwrap extracts the wrapped content and provenance metadata from a source
// envelope. Payloads that are not a JSON envelope pass through whole.
func unwrap(payload []byte) ([]byte, map[string]interface{}) {
	var env sourceEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Content == nil {
		return payload, map[string]interface{}{}
	}

	content := []byte(*env.Content)
	if env.ContentEncoding == "base64" {
		if decoded, err := base64.StdEncoding.DecodeString(*env.Content); err == nil {
			content = decoded
		}
	}

	metadata := env.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return content, metadata
}

// wrap builds the destination envelope: provenance (convertedFrom,
// convertedAt), the target provider's identity block remapped from the
// source metadata, the source metadata preserved verbatim, and the converted
// content.
func (s *Service) wrap(content []byte, metadata map[string]interface{}, opts ProcessingOptions) ([]byte, error) {
	source := LookupProvider(opts.SourceProvider)
	target := LookupProvider(opts.TargetProvider)

	identity := record.Record{}
	if id, ok := metadata[source.IDKey]; ok {
		identity.Set("id", id)
	}
	if name, ok := metadata[source.NameKey]; ok {
		identity.Set("name", name)
	}

	env := record.Record{}
	env.Set("convertedFrom", source.DisplayName)
	env.Set("convertedAt", s.now().UTC().Format(time.RFC3339))
	env.Set(target.IdentityBlock, identity)
	env.Set("originalMetadata", metadata)

	if utf8.Valid(content) {
		env.Set("content", string(content))
	} else {
		env.Set("content", base64.StdEncoding.EncodeToString(content))
		env.Set("contentEncoding", "base64")
	}

	return json.Marshal(env)
}

// compactJSON strips insignificant whitespace when the content is valid
// JSON, leaving anything else untouched.
func compactJSON(content []byte) []byte {
	if !json.Valid(content) {
		return content
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, content); err != nil {
		return content
	}
	return buf.Bytes()
}
