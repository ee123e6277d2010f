// Package storage defines the attachment store consumed by the conversion
// pipeline and its backends. The pipeline never assumes a particular engine:
// anything keyed by (ownerId, attachmentId) works.
package storage

import (
	"context"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
)

// Store persists attachments keyed by owning entity and attachment id.
// Implementations must be safe for concurrent use across distinct attachment
// ids; concurrent writes to the same id are not a supported use case (every
// conversion creates a new id).
type Store interface {
	// Put stores the attachment under the given owner.
	Put(ctx context.Context, ownerID string, att attachment.Attachment) error

	// Get returns the attachment and whether it exists.
	Get(ctx context.Context, ownerID, attachmentID string) (attachment.Attachment, bool, error)

	// Delete removes the attachment. Deleting a missing attachment is not
	// an error.
	Delete(ctx context.Context, ownerID, attachmentID string) error
}
