// Package core provides the repository ports and the read-through document cache for vetdesk.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// CacheRepository defines the interface for caching operations.
// The core defines the port and the data layer provides the Redis implementation.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// DefaultDocumentCacheTTL bounds how long a cached document or list survives.
const DefaultDocumentCacheTTL = 5 * time.Minute

// sharedLoadTimeout bounds a collapsed repository read.
const sharedLoadTimeout = 30 * time.Second

// CachedDocumentsOptions bundles dependencies for NewCachedDocuments.
type CachedDocumentsOptions struct {
	// Cache may be nil, in which case every call goes straight to the repository.
	Cache CacheRepository
	// Kind namespaces keys, e.g. "customers".
	Kind   string
	TTL    time.Duration
	Logger *slog.Logger
}

// CachedDocuments is a read-through cache in front of a DocumentRepository.
//
// Items are cached under doc:{kind}:{id}. Lists are cached under a per-kind
// generation so any write invalidates every cached page at once.
// Cache failures are logged and never fail the request.
type CachedDocuments[T any, P model.DocumentPtr[T]] struct {
	repo   DocumentRepository[P]
	cache  CacheRepository
	kind   string
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

var _ DocumentRepository[*model.Customer] = (*CachedDocuments[model.Customer, *model.Customer])(nil)

// NewCachedDocuments wraps repo with a cache.
func NewCachedDocuments[T any, P model.DocumentPtr[T]](
	repo DocumentRepository[P],
	opts CachedDocumentsOptions,
) *CachedDocuments[T, P] {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultDocumentCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDocuments[T, P]{
		repo:   repo,
		cache:  opts.Cache,
		kind:   opts.Kind,
		ttl:    ttl,
		logger: logger.With("component", "document_cache", "kind", opts.Kind),
	}
}

func (c *CachedDocuments[T, P]) itemKey(id string) string {
	return "doc:" + c.kind + ":" + id
}

func (c *CachedDocuments[T, P]) genKey() string {
	return "doc:" + c.kind + ":gen"
}

// Create stores doc and bumps the list generation.
func (c *CachedDocuments[T, P]) Create(ctx context.Context, doc P) (P, error) {
	out, err := c.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.bumpGeneration(ctx)
	return out, nil
}

// GetByID returns the cached document or loads it from the repository.
func (c *CachedDocuments[T, P]) GetByID(ctx context.Context, id string) (P, error) {
	if c.cache == nil {
		return c.repo.GetByID(ctx, id)
	}
	key := c.itemKey(id)
	if doc, ok := c.getItem(ctx, key); ok {
		return doc, nil
	}
	raw, err := c.load(ctx, key, func(fctx context.Context) (any, error) {
		return c.repo.GetByID(fctx, id)
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, raw)
	return decodeOne[T, P](raw)
}

// FindByEmail always reads through; login paths must see the latest row.
func (c *CachedDocuments[T, P]) FindByEmail(ctx context.Context, email string) (P, error) {
	return c.repo.FindByEmail(ctx, email)
}

// List returns a page of documents.
func (c *CachedDocuments[T, P]) List(ctx context.Context, opts model.ListOptions) ([]P, error) {
	opts = opts.Normalize()
	if c.cache == nil {
		return c.repo.List(ctx, opts)
	}
	gen, ok := c.generation(ctx)
	if !ok {
		return c.repo.List(ctx, opts)
	}
	key := fmt.Sprintf("doc:%s:list:%s:%d:%d", c.kind, gen, opts.Limit, opts.Offset)
	return c.listThrough(ctx, key, func(fctx context.Context) ([]P, error) {
		return c.repo.List(fctx, opts)
	})
}

// ListByOwner returns a page of documents owned by ownerID.
func (c *CachedDocuments[T, P]) ListByOwner(ctx context.Context, ownerID string, opts model.ListOptions) ([]P, error) {
	opts = opts.Normalize()
	if c.cache == nil || strings.TrimSpace(ownerID) == "" {
		return c.repo.ListByOwner(ctx, ownerID, opts)
	}
	gen, ok := c.generation(ctx)
	if !ok {
		return c.repo.ListByOwner(ctx, ownerID, opts)
	}
	key := fmt.Sprintf("doc:%s:owner:%s:%s:%d:%d", c.kind, ownerID, gen, opts.Limit, opts.Offset)
	return c.listThrough(ctx, key, func(fctx context.Context) ([]P, error) {
		return c.repo.ListByOwner(fctx, ownerID, opts)
	})
}

// Update stores doc, drops its cached copy, and bumps the list generation.
func (c *CachedDocuments[T, P]) Update(ctx context.Context, doc P) (P, error) {
	out, err := c.repo.Update(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, out.DocMeta().ID)
	return out, nil
}

// Delete removes the document and invalidates its cache entries.
func (c *CachedDocuments[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := c.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		c.invalidate(ctx, id)
	}
	return deleted, nil
}

func (c *CachedDocuments[T, P]) listThrough(
	ctx context.Context,
	key string,
	fetch func(context.Context) ([]P, error),
) ([]P, error) {
	if raw, err := c.cache.Get(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	} else if raw != nil {
		var out []P
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	}

	raw, err := c.load(ctx, key, func(fctx context.Context) (any, error) { return fetch(fctx) })
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, raw)
	var out []P
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", c.kind, err)
	}
	return out, nil
}

// load collapses concurrent misses for key into one repository call.
// The shared call outlives any single caller's cancellation; each caller
// still stops waiting when its own ctx is done.
func (c *CachedDocuments[T, P]) load(
	ctx context.Context,
	key string,
	fetch func(context.Context) (any, error),
) ([]byte, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		val, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(val)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	raw, ok := res.Val.([]byte)
	if !ok {
		return nil, errors.New("unexpected singleflight result")
	}
	return raw, nil
}

func (c *CachedDocuments[T, P]) getItem(ctx context.Context, key string) (P, bool) {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	doc, err := decodeOne[T, P](raw)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
		return nil, false
	}
	return doc, true
}

func (c *CachedDocuments[T, P]) store(ctx context.Context, key string, raw []byte) {
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// generation returns the current list generation, creating one if absent.
func (c *CachedDocuments[T, P]) generation(ctx context.Context) (string, bool) {
	key := c.genKey()
	if _, err := c.cache.SetIfNotExists(ctx, key, []byte(uuid.NewString()), 0); err != nil {
		c.logger.WarnContext(ctx, "cache generation init failed", "error", err)
		return "", false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		if err != nil {
			c.logger.WarnContext(ctx, "cache generation read failed", "error", err)
		}
		return "", false
	}
	return string(raw), true
}

func (c *CachedDocuments[T, P]) bumpGeneration(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, c.genKey(), []byte(uuid.NewString()), 0); err != nil {
		c.logger.WarnContext(ctx, "cache generation bump failed", "error", err)
	}
}

func (c *CachedDocuments[T, P]) invalidate(ctx context.Context, id string) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.Delete(ctx, c.itemKey(id)); err != nil {
		c.logger.WarnContext(ctx, "cache delete failed", "id", id, "error", err)
	}
	c.bumpGeneration(ctx)
}

func decodeOne[T any, P model.DocumentPtr[T]](raw []byte) (P, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return P(&v), nil
}
