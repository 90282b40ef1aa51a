package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

// MemorySnapshotStore is an in-memory domain.SnapshotRepository for
// tests that exercise the recovery manager without a database. An
// optional FailSave error makes writes fail to test degraded paths.
type MemorySnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]*session.RecoverySnapshot
	order     []string

	// FailSave, when set, is returned from SaveSnapshot.
	FailSave error
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[string]*session.RecoverySnapshot)}
}

var _ domain.SnapshotRepository = (*MemorySnapshotStore)(nil)

// SaveSnapshot stores a copy of the snapshot.
func (s *MemorySnapshotStore) SaveSnapshot(_ context.Context, snapshot *session.RecoverySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	if _, exists := s.snapshots[snapshot.SessionID]; !exists {
		s.order = append(s.order, snapshot.SessionID)
	}
	copied := *snapshot
	s.snapshots[snapshot.SessionID] = &copied
	return nil
}

// LoadSnapshot returns the snapshot for a session.
func (s *MemorySnapshotStore) LoadSnapshot(_ context.Context, sessionID string) (*session.RecoverySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[sessionID]
	if !ok {
		return nil, &domain.SnapshotNotFoundError{SessionID: sessionID}
	}
	copied := *snap
	return &copied, nil
}

// LatestSnapshot returns the most recently saved snapshot.
func (s *MemorySnapshotStore) LatestSnapshot(_ context.Context) (*session.RecoverySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		if snap, ok := s.snapshots[s.order[i]]; ok {
			copied := *snap
			return &copied, nil
		}
	}
	return nil, &domain.SnapshotNotFoundError{}
}

// ClearSnapshot removes the snapshot for a session.
func (s *MemorySnapshotStore) ClearSnapshot(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

// Count returns the number of stored snapshots.
func (s *MemorySnapshotStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// MemoryRecordStore is an in-memory domain.RecordRepository for tests.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string]*domain.Record
	order   []string
}

// NewMemoryRecordStore creates an empty store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]*domain.Record)}
}

var _ domain.RecordRepository = (*MemoryRecordStore)(nil)

// Save stores the record.
func (s *MemoryRecordStore) Save(_ context.Context, record *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID()]; !exists {
		s.order = append(s.order, record.ID())
	}
	s.records[record.ID()] = record
	return nil
}

// FindByID returns the record with the given id.
func (s *MemoryRecordStore) FindByID(_ context.Context, id string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, &domain.RecordNotFoundError{ID: id}
	}
	return record, nil
}

// List returns all records ordered by started_at descending (newest
// first), matching the domain.RecordRepository contract.
func (s *MemoryRecordStore) List(_ context.Context) ([]*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]*domain.Record, 0, len(s.order))
	for _, id := range s.order {
		if record, ok := s.records[id]; ok {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt().After(records[j].StartedAt())
	})
	return records, nil
}

// Delete removes the record with the given id.
func (s *MemoryRecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return &domain.RecordNotFoundError{ID: id}
	}
	delete(s.records, id)
	return nil
}

// Close is a no-op.
func (s *MemoryRecordStore) Close() error {
	return nil
}
