package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/hnpham/stockpile/internal/adapter/handler"
	"github.com/hnpham/stockpile/internal/adapter/storage"
	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/internal/core/service"
	"github.com/hnpham/stockpile/pkg/client"
)

type testEnv struct {
	redis     *redis.Client
	store     *service.CollectionStore
	items     *service.ItemService
	migration *service.MigrationService
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// isolate from previous runs
	for _, key := range []string{
		domain.CollectionItems, domain.CollectionOutbound, domain.CollectionReturn,
		domain.CollectionBorrow, domain.CollectionOpLogs, domain.CollectionBackups,
	} {
		rdb.Del(ctx, "collection:"+key)
	}

	store := service.NewCollectionStore(storage.NewRedisAdapter(rdb))
	return &testEnv{
		redis:     rdb,
		store:     store,
		items:     service.NewItemService(store),
		migration: service.NewMigrationService(store),
		cleanup:   func() { rdb.Close() },
	}
}

func TestItemLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	ctx := context.Background()

	created, err := env.items.Create(ctx, domain.Record{
		"name":     "flashlight",
		"category": "lighting",
		"quantity": 4,
		"price":    12.5,
		"source":   "warehouse A",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := created.ID()

	items := env.items.List(ctx)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Float(domain.FieldTotalValue) != 50 {
		t.Errorf("expected totalValue 50, got %v", items[0].Float(domain.FieldTotalValue))
	}
	if items[0].String("source") != "warehouse A" {
		t.Errorf("free-form field lost: %v", items[0])
	}

	// price-only update recomputes against the stored quantity
	if err := env.items.Update(ctx, id, domain.Record{"price": 10}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	items = env.items.List(ctx)
	if items[0].Float(domain.FieldTotalValue) != 40 {
		t.Errorf("expected totalValue 40 after price update, got %v", items[0].Float(domain.FieldTotalValue))
	}

	stats := env.items.Stats(ctx)
	if stats.TotalItems != 1 || stats.TotalValue != 40 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.LowStock) != 1 {
		t.Errorf("quantity 4 should be low stock: %+v", stats)
	}

	if err := env.items.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if remaining := env.items.List(ctx); len(remaining) != 0 {
		t.Errorf("expected empty collection, got %v", remaining)
	}

	// create, update, delete each logged one operation
	logs := env.store.RecentOperations(ctx, 0)
	if len(logs) != 3 {
		t.Errorf("expected 3 operation log entries, got %d", len(logs))
	}
}

func TestMigrationRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	ctx := context.Background()

	result := env.migration.Import(ctx, domain.MigrationPayload{
		EmergencyItems: []domain.Record{
			{"name": "water", "quantity": "24", "price": "0.5"},
			{"id": "it-2", "name": "blanket", "quantity": 10},
		},
		BorrowRecords: []domain.Record{{"quantity": 1}},
	})
	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.Imported["items"] != 2 || result.Imported["borrow"] != 1 {
		t.Errorf("unexpected counts: %v", result.Imported)
	}

	items := env.items.List(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Int(domain.FieldQuantity) != 24 || items[0].Float(domain.FieldTotalValue) != 12 {
		t.Errorf("normalization wrong: %v", items[0])
	}
	if items[1].ID() != "it-2" {
		t.Errorf("existing id not preserved: %v", items[1])
	}

	borrows := env.store.Get(ctx, domain.CollectionBorrow)
	if len(borrows) != 1 || borrows[0].ID() == "" {
		t.Errorf("borrow record missing synthesized id: %v", borrows)
	}
}

func TestHTTPStackOverRedis(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	httpHandler := handler.NewHTTPHandler(env.items)
	migrateHandler := handler.NewMigrateHandler(env.migration)

	mux := http.NewServeMux()
	mux.HandleFunc("/items", httpHandler.Items)
	mux.HandleFunc("/migrate", migrateHandler.Migrate)
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	server := httptest.NewServer(mux)
	defer server.Close()

	c := client.New(server.URL)
	if !c.Online() {
		t.Fatal("expected online client")
	}
	ctx := context.Background()

	item, err := c.CreateItem(ctx, domain.Record{
		"name": "rope", "category": "gear", "quantity": 2, "price": 3,
	})
	if err != nil {
		t.Fatalf("create via client failed: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats via client failed: %v", err)
	}
	if stats.TotalItems != 1 || stats.TotalValue != 6 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := c.DeleteItem(ctx, item.ID()); err != nil {
		t.Fatalf("delete via client failed: %v", err)
	}
}
