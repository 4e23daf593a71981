package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hnpham/stockpile/internal/core/domain"
)

// MigrationService bulk-imports a JSON export into the collection store.
// Every category is written wholesale and independently: one failing
// category is recorded and the rest still import.
type MigrationService struct {
	store *CollectionStore
}

func NewMigrationService(store *CollectionStore) *MigrationService {
	return &MigrationService{store: store}
}

// Import normalizes and stores each supplied category, then writes a single
// summary entry to the operation log.
func (s *MigrationService) Import(ctx context.Context, payload domain.MigrationPayload) domain.ImportResult {
	result := domain.ImportResult{
		Imported: map[string]int{},
		Errors:   []string{},
	}

	categories := []struct {
		name    string
		key     string
		records []domain.Record
		isItem  bool
	}{
		{"items", domain.CollectionItems, payload.EmergencyItems, true},
		{"outbound", domain.CollectionOutbound, payload.OutboundRecords, false},
		{"return", domain.CollectionReturn, payload.ReturnRecords, false},
		{"borrow", domain.CollectionBorrow, payload.BorrowRecords, false},
	}

	for _, cat := range categories {
		if cat.records == nil {
			continue
		}

		normalized := make([]domain.Record, 0, len(cat.records))
		for _, record := range cat.records {
			normalized = append(normalized, normalizeRecord(record, cat.isItem))
		}

		if !s.store.Set(ctx, cat.key, normalized) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: store write failed", cat.name))
			continue
		}
		result.Imported[cat.name] = len(normalized)
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = "migration completed"
	} else {
		result.Message = "migration completed with errors"
	}

	s.store.LogOperation(ctx, "data migration", importSummary(result.Imported), domain.DefaultOperator)
	return result
}

// normalizeRecord coerces the fields the rest of the system relies on:
// string ids (synthesized when absent), integer quantities, float prices,
// and a recomputed totalValue for items.
func normalizeRecord(record domain.Record, isItem bool) domain.Record {
	out := record.Clone()

	if out.String(domain.FieldID) == "" {
		out[domain.FieldID] = synthesizeID()
	} else {
		out[domain.FieldID] = out.String(domain.FieldID)
	}

	if out.Has(domain.FieldQuantity) {
		out[domain.FieldQuantity] = out.Int(domain.FieldQuantity)
	}
	if out.Has(domain.FieldPrice) {
		out[domain.FieldPrice] = out.Float(domain.FieldPrice)
	}

	if isItem {
		quantity := out.Int(domain.FieldQuantity)
		price := out.Float(domain.FieldPrice)
		out[domain.FieldQuantity] = quantity
		out[domain.FieldPrice] = price
		out[domain.FieldTotalValue] = domain.TotalValue(quantity, price)
	}
	return out
}

// synthesizeID builds a time-plus-random id for imported records that have
// none. The random suffix keeps ids unique within one import batch.
func synthesizeID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func importSummary(imported map[string]int) string {
	return fmt.Sprintf("items=%d outbound=%d return=%d borrow=%d",
		imported["items"], imported["outbound"], imported["return"], imported["borrow"])
}
