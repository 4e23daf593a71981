// Package client is the data-access layer for the inventory API. It mirrors
// the server's CRUD surface and degrades to a local in-memory store when the
// remote API is unreachable: a connectivity probe at construction sets the
// online flag, and the first failed remote call flips the session offline.
// Offline state is owned by the Client and scoped to it; Reconnect re-probes
// explicitly instead of the flag being one-way for the process lifetime.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hnpham/stockpile/internal/adapter/storage"
	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/internal/core/service"
)

const defaultTimeout = 10 * time.Second

// Client talks to the inventory HTTP API, falling back to a private
// in-memory store for the rest of the session once a remote call fails.
// The fallback silently diverges from server state; that is the documented
// offline behavior, not a sync mechanism.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	online bool

	// local fallback reuses the server-side services over an in-memory
	// repository so offline semantics match the remote ones exactly.
	localItems     *service.ItemService
	localMigration *service.MigrationService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New constructs a Client bound to baseURL and probes connectivity once.
func New(baseURL string, opts ...Option) *Client {
	local := service.NewCollectionStore(storage.NewMemoryAdapter())
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: defaultTimeout},
		localItems:     service.NewItemService(local),
		localMigration: service.NewMigrationService(local),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.online = c.probe(context.Background())
	return c
}

// Online reports whether the session is still using the remote store.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Reconnect re-probes the remote API and restores online mode on success.
func (c *Client) Reconnect(ctx context.Context) bool {
	ok := c.probe(ctx)
	c.mu.Lock()
	c.online = ok
	c.mu.Unlock()
	return ok
}

// ListItems returns the full items collection.
func (c *Client) ListItems(ctx context.Context) ([]domain.Record, error) {
	if !c.Online() {
		return c.localItems.List(ctx), nil
	}

	env, err := c.do(ctx, http.MethodGet, "/items?action=list", nil)
	if err != nil {
		c.markOffline(err)
		return c.localItems.List(ctx), nil
	}
	var items []domain.Record
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// Stats returns the aggregate inventory view.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	if !c.Online() {
		return c.localItems.Stats(ctx), nil
	}

	env, err := c.do(ctx, http.MethodGet, "/items?action=stats", nil)
	if err != nil {
		c.markOffline(err)
		return c.localItems.Stats(ctx), nil
	}
	var stats domain.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return domain.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

// CreateItem creates an item and returns the stored record, id and derived
// fields included.
func (c *Client) CreateItem(ctx context.Context, fields domain.Record) (domain.Record, error) {
	if !c.Online() {
		return c.localItems.Create(ctx, fields)
	}

	env, err := c.do(ctx, http.MethodPost, "/items", fields)
	if err != nil {
		c.markOffline(err)
		return c.localItems.Create(ctx, fields)
	}
	if !env.Success {
		return nil, env.apiError()
	}
	var item domain.Record
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}

// UpdateItem merges the supplied fields into the stored item.
func (c *Client) UpdateItem(ctx context.Context, id string, fields domain.Record) error {
	if !c.Online() {
		return c.localItems.Update(ctx, id, fields)
	}

	env, err := c.do(ctx, http.MethodPut, "/items?id="+url.QueryEscape(id), fields)
	if err != nil {
		c.markOffline(err)
		return c.localItems.Update(ctx, id, fields)
	}
	if !env.Success {
		return env.apiError()
	}
	return nil
}

// DeleteItem removes the item with the given id.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if !c.Online() {
		return c.localItems.Delete(ctx, id)
	}

	env, err := c.do(ctx, http.MethodDelete, "/items?id="+url.QueryEscape(id), nil)
	if err != nil {
		c.markOffline(err)
		return c.localItems.Delete(ctx, id)
	}
	if !env.Success {
		return env.apiError()
	}
	return nil
}

// Migrate bulk-imports a JSON export.
func (c *Client) Migrate(ctx context.Context, payload domain.MigrationPayload) (domain.ImportResult, error) {
	if !c.Online() {
		return c.localMigration.Import(ctx, payload), nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("encode payload: %w", err)
	}
	raw, err := c.doRaw(ctx, http.MethodPost, "/migrate", body)
	if err != nil {
		c.markOffline(err)
		return c.localMigration.Import(ctx, payload), nil
	}
	var result domain.ImportResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ImportResult{}, fmt.Errorf("decode import result: %w", err)
	}
	return result, nil
}

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Required []string        `json:"required"`
}

func (e *envelope) apiError() error {
	if len(e.Required) > 0 {
		return fmt.Errorf("%s: %s", e.Error, strings.Join(e.Required, ", "))
	}
	if e.Error != "" {
		return fmt.Errorf("%s", e.Error)
	}
	return fmt.Errorf("request failed")
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
	}
	raw, err := c.doRaw(ctx, method, path, encoded)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// doRaw performs one remote round trip. Only transport-level failures are
// returned as errors here; HTTP error statuses still carry a JSON body the
// caller can interpret, so they do not flip the session offline.
func (c *Client) doRaw(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *Client) markOffline(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online {
		c.online = false
		log.Printf("client: remote call failed, falling back to local store: %v", err)
	}
}

func (c *Client) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
