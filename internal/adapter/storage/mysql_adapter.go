package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hnpham/stockpile/internal/core/domain"
)

// MySQLAdapter keeps the same whole-value contract as the Redis adapter:
// one row per collection, the full JSON array in a single document column.
//
// Schema:
//
//	CREATE TABLE collections (
//	    name VARCHAR(64) PRIMARY KEY,
//	    doc  JSON NOT NULL,
//	    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetCollection(ctx context.Context, key string) ([]domain.Record, error) {
	var raw []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT doc FROM collections WHERE name = ?`, key,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", key, err)
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

func (m *MySQLAdapter) SetCollection(ctx context.Context, key string, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO collections (name, doc) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE doc = VALUES(doc)`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}
	return nil
}

// Ping reports backend reachability, used by the health endpoint.
func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
