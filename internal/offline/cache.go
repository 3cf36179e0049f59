// Package offline keeps the application shell available without a network.
//
// A Worker sits between shell requests and the upstream origin. It precaches
// a fixed manifest on install, drops caches from older versions on activate
// and then serves GET requests cache-first, falling back to the cached root
// document for navigations when the network is unreachable.
package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cakebook/internal/models"
)

// ErrNotCached is returned by Match when no entry exists for a request.
var ErrNotCached = errors.New("offline: not cached")

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Storage is the set of named caches, persisted in the cache_entries table.
// A cache exists once it holds at least one entry.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a Storage on db.
func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Open returns the cache with the given name.
func (s *Storage) Open(name string) *Cache {
	return &Cache{db: s.db, name: name}
}

// Keys returns the names of every cache, sorted.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.CacheEntry{}).
		Distinct("cache_name").
		Order("cache_name").
		Pluck("cache_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}
	return names, nil
}

// Delete removes a cache and all of its entries. It reports whether the
// cache existed.
func (s *Storage) Delete(ctx context.Context, name string) (bool, error) {
	res := s.db.WithContext(ctx).
		Unscoped().
		Where(&models.CacheEntry{CacheName: name}).
		Delete(&models.CacheEntry{})
	if res.Error != nil {
		return false, fmt.Errorf("delete cache %q: %w", name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Match looks req up in every cache, oldest entry first.
func (s *Storage) Match(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return nil, ErrNotCached
	}
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).
		Where(&models.CacheEntry{URL: cacheKey(req.URL)}).
		Order("created_at").
		First(&entry).Error
	return responseFor(req, &entry, err)
}

// Cache is a single named cache.
type Cache struct {
	db   *gorm.DB
	name string
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// Match returns the cached response for req. Only GET requests match.
func (c *Cache) Match(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return nil, ErrNotCached
	}
	var entry models.CacheEntry
	err := c.db.WithContext(ctx).
		Where(&models.CacheEntry{CacheName: c.name, URL: cacheKey(req.URL)}).
		First(&entry).Error
	return responseFor(req, &entry, err)
}

// Put stores resp under req, replacing any previous entry. The response
// body is read fully and replaced with an equivalent reader, so resp stays
// usable by the caller.
func (c *Cache) Put(ctx context.Context, req *http.Request, resp *http.Response) error {
	snap, err := snapshot(resp)
	if err != nil {
		return err
	}
	return c.store(c.db.WithContext(ctx), cacheKey(req.URL), snap)
}

// AddAll fetches every URL concurrently and stores the responses. It is all
// or nothing: when any fetch fails or answers with a status other than 200
// nothing is stored.
func (c *Cache) AddAll(ctx context.Context, client Doer, urls []string) error {
	snaps := make([]*stored, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("build request for %s: %w", u, err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", u, err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode)
			}
			snap, err := snapshot(resp)
			if err != nil {
				return fmt.Errorf("read %s: %w", u, err)
			}
			snap.key = cacheKey(req.URL)
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snap := range snaps {
			if err := c.store(tx, snap.key, snap); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keys returns the request URLs stored in the cache.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	var urls []string
	err := c.db.WithContext(ctx).
		Model(&models.CacheEntry{}).
		Where(&models.CacheEntry{CacheName: c.name}).
		Order("url").
		Pluck("url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("list cache %q: %w", c.name, err)
	}
	return urls, nil
}

func (c *Cache) store(db *gorm.DB, key string, snap *stored) error {
	header, err := json.Marshal(snap.header)
	if err != nil {
		return fmt.Errorf("encode headers: %w", err)
	}
	entry := models.CacheEntry{
		CacheName:  c.name,
		URL:        key,
		StatusCode: snap.status,
		Header:     header,
		Body:       snap.body,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_name"}, {Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"status_code", "header", "body", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("store %s in cache %q: %w", key, c.name, err)
	}
	return nil
}

// stored is an in-memory copy of a response.
type stored struct {
	key    string
	status int
	header http.Header
	body   []byte
}

// snapshot copies resp and rewinds its body so it can still be read.
func snapshot(resp *http.Response) (*stored, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return &stored{
		status: resp.StatusCode,
		header: resp.Header.Clone(),
		body:   body,
	}, nil
}

func responseFor(req *http.Request, entry *models.CacheEntry, err error) (*http.Response, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", req.URL, err)
	}

	header := http.Header{}
	if len(entry.Header) > 0 {
		if err := json.Unmarshal(entry.Header, &header); err != nil {
			return nil, fmt.Errorf("decode cached headers for %s: %w", entry.URL, err)
		}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", entry.StatusCode, http.StatusText(entry.StatusCode)),
		StatusCode:    entry.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}, nil
}

// cacheKey identifies a request in a cache: the absolute URL without its
// fragment.
func cacheKey(u *url.URL) string {
	k := *u
	k.Fragment = ""
	k.RawFragment = ""
	return k.String()
}
