package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/hnpham/stockpile/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/stockpile?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestMySQLSetThenGetCollection(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	db.ExecContext(ctx, `DELETE FROM collections WHERE name = 'test-items'`)

	in := []domain.Record{
		{"id": "1", "name": "water", "quantity": 24, "price": 0.5},
	}
	if err := adapter.SetCollection(ctx, "test-items", in); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	out, err := adapter.GetCollection(ctx, "test-items")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].String("name") != "water" || out[0].Float("price") != 0.5 {
		t.Errorf("record mangled: %v", out[0])
	}
}

func TestMySQLGetCollection_Missing(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	db.ExecContext(ctx, `DELETE FROM collections WHERE name = 'test-nope'`)

	records, err := adapter.GetCollection(ctx, "test-nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty collection, got %d records", len(records))
	}
}

func TestMySQLSetCollection_Upsert(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	db.ExecContext(ctx, `DELETE FROM collections WHERE name = 'test-upsert'`)

	if err := adapter.SetCollection(ctx, "test-upsert", []domain.Record{{"id": "a"}}); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := adapter.SetCollection(ctx, "test-upsert", []domain.Record{{"id": "b"}, {"id": "c"}}); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	out, err := adapter.GetCollection(ctx, "test-upsert")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(out) != 2 || out[0].ID() != "b" {
		t.Errorf("expected [b c], got %v", out)
	}
}
