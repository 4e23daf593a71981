package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/internal/port"
)

// CollectionStore provides uniform CRUD over whole-collection values. Every
// mutation is a read-modify-write round trip against the backend; two
// concurrent writers to the same collection can lose an update. That is an
// accepted limitation of the whole-value layout, not something this layer
// papers over.
//
// Backend failures never propagate: reads degrade to an empty collection,
// writes to a false success flag, and the failure is logged server-side.
// Callers cannot tell "not found" from "backend unreachable" except by
// effect.
type CollectionStore struct {
	repo port.CollectionRepository
}

func NewCollectionStore(repo port.CollectionRepository) *CollectionStore {
	return &CollectionStore{repo: repo}
}

// Get fetches the whole collection. Any backend failure yields an empty
// collection.
func (s *CollectionStore) Get(ctx context.Context, key string) []domain.Record {
	records, err := s.repo.GetCollection(ctx, key)
	if err != nil {
		s.reportError(key, "get", err)
		return []domain.Record{}
	}
	return records
}

// Set overwrites the whole collection and reports success.
func (s *CollectionStore) Set(ctx context.Context, key string, records []domain.Record) bool {
	if err := s.repo.SetCollection(ctx, key, records); err != nil {
		s.reportError(key, "set", err)
		return false
	}
	return true
}

// Add appends one record to the collection via read-modify-write.
func (s *CollectionStore) Add(ctx context.Context, key string, record domain.Record) bool {
	records := s.Get(ctx, key)
	records = append(records, record)
	return s.Set(ctx, key, records)
}

// Update shallow-merges fields into the first record whose id matches.
// Returns false when no record matches or the write fails; the collection is
// left untouched in the no-match case.
func (s *CollectionStore) Update(ctx context.Context, key, id string, fields domain.Record) bool {
	records := s.Get(ctx, key)
	for i, record := range records {
		if record.ID() == id {
			merged := record.Clone()
			merged.Merge(fields)
			records[i] = merged
			return s.Set(ctx, key, records)
		}
	}
	return false
}

// Delete removes every record whose id matches. Removing nothing is still a
// success; only a backend write failure reports false.
func (s *CollectionStore) Delete(ctx context.Context, key, id string) bool {
	records := s.Get(ctx, key)
	kept := records[:0]
	for _, record := range records {
		if record.ID() != id {
			kept = append(kept, record)
		}
	}
	return s.Set(ctx, key, kept)
}

// LogOperation appends an audit entry to the operation log. Failures are
// swallowed entirely; audit logging never blocks or fails the mutation that
// triggered it.
func (s *CollectionStore) LogOperation(ctx context.Context, operation, details, operator string) {
	entry := domain.NewOperationLog(operation, details, operator, time.Now())
	if !s.Add(ctx, domain.CollectionOpLogs, entry) {
		log.Printf("store: operation log entry dropped: %s", operation)
	}
}

// RecentOperations returns up to limit audit entries, newest last (append
// order). limit <= 0 means all.
func (s *CollectionStore) RecentOperations(ctx context.Context, limit int) []domain.Record {
	entries := s.Get(ctx, domain.CollectionOpLogs)
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func (s *CollectionStore) reportError(key, op string, err error) {
	log.Printf("store: %s %s failed: %v", op, key, err)
	metrics.GetOrCreateCounter(fmt.Sprintf(`stockpile_store_errors_total{collection=%q,op=%q}`, key, op)).Inc()
}
