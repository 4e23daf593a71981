package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hnpham/stockpile/internal/core/domain"
)

var (
	// ErrUpdateFailed covers both "no such item" and "backend write failed";
	// the store does not let callers tell them apart.
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
	ErrSaveFailed   = errors.New("failed to save item")
)

// ValidationError reports the required fields a create request left out.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// ItemService implements the emergency-item operations on top of the
// collection store: list, stats, create, update, delete. Every successful
// mutation appends an operation-log entry as a side effect.
type ItemService struct {
	store *CollectionStore
}

func NewItemService(store *CollectionStore) *ItemService {
	return &ItemService{store: store}
}

// List returns the full items collection, unfiltered and unpaged.
func (s *ItemService) List(ctx context.Context) []domain.Record {
	return s.store.Get(ctx, domain.CollectionItems)
}

// Stats aggregates the whole items collection: grand total value, per
// category counts and values, and the low-stock alert list.
func (s *ItemService) Stats(ctx context.Context) domain.Stats {
	items := s.store.Get(ctx, domain.CollectionItems)

	stats := domain.Stats{
		TotalItems: len(items),
		Categories: make(map[string]domain.CategoryStat),
		LowStock:   []domain.Record{},
	}

	for _, item := range items {
		value := item.Float(domain.FieldTotalValue)
		stats.TotalValue += value

		cat := stats.Categories[item.String(domain.FieldCategory)]
		cat.Count++
		cat.Value += value
		stats.Categories[item.String(domain.FieldCategory)] = cat

		if item.Int(domain.FieldQuantity) < domain.LowStockThreshold {
			stats.LowStock = append(stats.LowStock, item)
		}
	}
	return stats
}

// Create validates presence of the required fields, applies defaults,
// assigns a time-based id, computes totalValue, and appends the item.
// Quantity zero is valid; an absent quantity is not.
func (s *ItemService) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	var missing []string
	if fields.String(domain.FieldName) == "" {
		missing = append(missing, domain.FieldName)
	}
	if fields.String(domain.FieldCategory) == "" {
		missing = append(missing, domain.FieldCategory)
	}
	if !fields.Has(domain.FieldQuantity) {
		missing = append(missing, domain.FieldQuantity)
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	now := time.Now()
	quantity := fields.Int(domain.FieldQuantity)
	price := fields.Float(domain.FieldPrice)

	item := fields.Clone()
	item[domain.FieldID] = domain.TimeID(now)
	item[domain.FieldQuantity] = quantity
	item[domain.FieldPrice] = price
	item[domain.FieldTotalValue] = domain.TotalValue(quantity, price)
	item[domain.FieldCreatedAt] = now.Format(time.RFC3339)
	item[domain.FieldUpdatedAt] = now.Format(time.RFC3339)

	if item.String(domain.FieldUnit) == "" {
		item[domain.FieldUnit] = domain.DefaultUnit
	}
	if item.String(domain.FieldDate) == "" {
		item[domain.FieldDate] = now.Format("2006-01-02")
	}
	if item.String(domain.FieldOperator) == "" {
		item[domain.FieldOperator] = domain.DefaultOperator
	}

	if !s.store.Add(ctx, domain.CollectionItems, item) {
		return nil, ErrSaveFailed
	}

	s.store.LogOperation(ctx, "create item",
		fmt.Sprintf("name=%s id=%s quantity=%d", item.String(domain.FieldName), item.ID(), quantity),
		item.String(domain.FieldOperator))

	return item, nil
}

// Update shallow-merges the supplied fields into the stored item. When only
// one of quantity/price is supplied, totalValue is recomputed against the
// other field's stored value.
func (s *ItemService) Update(ctx context.Context, id string, fields domain.Record) error {
	existing := s.findItem(ctx, id)
	if existing == nil {
		return ErrUpdateFailed
	}

	updates := fields.Clone()
	if updates.Has(domain.FieldQuantity) || updates.Has(domain.FieldPrice) {
		quantity := existing.Int(domain.FieldQuantity)
		if updates.Has(domain.FieldQuantity) {
			quantity = updates.Int(domain.FieldQuantity)
			updates[domain.FieldQuantity] = quantity
		}
		price := existing.Float(domain.FieldPrice)
		if updates.Has(domain.FieldPrice) {
			price = updates.Float(domain.FieldPrice)
			updates[domain.FieldPrice] = price
		}
		updates[domain.FieldTotalValue] = domain.TotalValue(quantity, price)
	}
	updates[domain.FieldUpdatedAt] = time.Now().Format(time.RFC3339)

	if !s.store.Update(ctx, domain.CollectionItems, id, updates) {
		return ErrUpdateFailed
	}

	s.store.LogOperation(ctx, "update item", "id="+id, fields.String(domain.FieldOperator))
	return nil
}

// Delete removes every record with the given id. The store reports success
// even when nothing matched, and the operation log fires either way.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if !s.store.Delete(ctx, domain.CollectionItems, id) {
		return ErrDeleteFailed
	}
	s.store.LogOperation(ctx, "delete item", "id="+id, "")
	return nil
}

func (s *ItemService) findItem(ctx context.Context, id string) domain.Record {
	for _, item := range s.store.Get(ctx, domain.CollectionItems) {
		if item.ID() == id {
			return item
		}
	}
	return nil
}
