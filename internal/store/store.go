// Package store persists lightweight contract lifecycle records keyed by the
// provider document id. The provider remains the source of truth for signing
// state; these records only support the status endpoint and operator
// debugging.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"deedflow/internal/contract"
)

// ErrNotFound is returned when no record exists for a document id.
var ErrNotFound = errors.New("contract record not found")

// ContractRecord is the persisted snapshot of one dispatched contract.
type ContractRecord struct {
	DocumentID      string            `json:"documentId"`
	PropertyAddress string            `json:"propertyAddress"`
	Form            contract.FormData `json:"form"`
	SandboxSkipped  bool              `json:"sandboxSkipped"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// ContractStore persists and retrieves contract records.
type ContractStore interface {
	Save(ctx context.Context, record ContractRecord) error
	Get(ctx context.Context, documentID string) (*ContractRecord, error)
	List(ctx context.Context) ([]ContractRecord, error)
}

// MemoryStore is the in-process fallback used when Redis is disabled. Records
// live until the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ContractRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]ContractRecord)}
}

func (s *MemoryStore) Save(_ context.Context, record ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.DocumentID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, documentID string) (*ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) List(_ context.Context) ([]ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]ContractRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
