package storage

import (
	"context"
	"sync"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
)

// MemoryStore is the in-memory reference Store, keyed by owner id and
// attachment id. It backs tests and local dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]map[string]attachment.Attachment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners: make(map[string]map[string]attachment.Attachment),
	}
}

// Put stores the attachment under the given owner
func (s *MemoryStore) Put(_ context.Context, ownerID string, att attachment.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owners[ownerID]
	if !ok {
		owner = make(map[string]attachment.Attachment)
		s.owners[ownerID] = owner
	}
	owner[att.ID] = att
	return nil
}

// Get returns the attachment and whether it exists
func (s *MemoryStore) Get(_ context.Context, ownerID, attachmentID string) (attachment.Attachment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	att, ok := s.owners[ownerID][attachmentID]
	return att, ok, nil
}

// Delete removes the attachment
func (s *MemoryStore) Delete(_ context.Context, ownerID, attachmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.owners[ownerID], attachmentID)
	return nil
}

// Len reports the number of attachments stored for an owner
func (s *MemoryStore) Len(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.owners[ownerID])
}
