package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hnpham/stockpile/internal/core/domain"
)

// MemoryAdapter is an in-process CollectionRepository. It backs the client's
// offline fallback and unit tests. Collections are kept JSON-encoded so
// callers get the same copy semantics as a remote backend: mutating a
// returned record never changes the stored state.
type MemoryAdapter struct {
	collections *xsync.MapOf[string, []byte]
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{collections: xsync.NewMapOf[string, []byte]()}
}

func (m *MemoryAdapter) GetCollection(_ context.Context, key string) ([]domain.Record, error) {
	raw, ok := m.collections.Load(key)
	if !ok {
		return []domain.Record{}, nil
	}

	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", key, err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (m *MemoryAdapter) SetCollection(_ context.Context, key string, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	m.collections.Store(key, raw)
	return nil
}
