package port

import (
	"context"

	"github.com/hnpham/stockpile/internal/core/domain"
)

// CollectionRepository is the storage boundary: collections are read and
// written wholesale, one named JSON array per key. There is no row-level
// operation here on purpose; every mutation above this interface is a full
// read-modify-write round trip.
type CollectionRepository interface {
	// GetCollection fetches the entire collection stored under key.
	// A missing key is an empty collection, not an error.
	GetCollection(ctx context.Context, key string) ([]domain.Record, error)

	// SetCollection overwrites the entire collection stored under key.
	SetCollection(ctx context.Context, key string, records []domain.Record) error
}
