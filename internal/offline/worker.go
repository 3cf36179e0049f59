package offline

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"cakebook/internal/logger"
)

// State is a worker lifecycle phase.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MessageSkipWaiting asks an installed worker to activate immediately.
const MessageSkipWaiting = "SKIP_WAITING"

// Message is a control message posted to the worker by a client page.
type Message struct {
	Type string `json:"type" binding:"required"`
}

// Defaults for Options.
const (
	DefaultCacheName   = "receitas-bolo-v1"
	DefaultOfflinePage = "/"
)

// DefaultPrecache is the app shell manifest stored on install.
var DefaultPrecache = []string{
	"/",
	"/manifest.json",
	"/icons/icon-192x192.png",
	"/icons/icon-512x512.png",
}

// Options configures a Worker.
type Options struct {
	// Origin is the shell origin, e.g. http://localhost:3000. Only responses
	// from this origin are cached at runtime.
	Origin string
	// CacheName is the versioned cache tag. Activate deletes every other cache.
	CacheName   string
	OfflinePage string
	Precache    []string

	// Client performs network requests. Nil means an *http.Client with
	// Timeout as its overall request timeout. Proxied fetches never follow
	// redirects when Client is an *http.Client, so the browser sees the 3xx.
	Client  Doer
	Timeout time.Duration

	TracerProvider trace.TracerProvider
}

// Worker proxies shell requests with a cache-first policy.
type Worker struct {
	mu    sync.RWMutex
	state State

	storage     *Storage
	cache       *Cache
	origin      *url.URL
	offlinePage string
	precache    []string
	client      Doer
	fetchClient Doer

	pending sync.WaitGroup
	tracer  trace.Tracer
	log     *zap.SugaredLogger
}

// NewWorker creates a worker in the parsed state.
func NewWorker(storage *Storage, opts Options) (*Worker, error) {
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse shell origin: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("shell origin %q must be an absolute URL", opts.Origin)
	}
	origin = &url.URL{Scheme: origin.Scheme, Host: origin.Host}

	if opts.CacheName == "" {
		opts.CacheName = DefaultCacheName
	}
	if opts.OfflinePage == "" {
		opts.OfflinePage = DefaultOfflinePage
	}
	if opts.Precache == nil {
		opts.Precache = DefaultPrecache
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	w := &Worker{
		state:       StateParsed,
		storage:     storage,
		cache:       storage.Open(opts.CacheName),
		origin:      origin,
		client:      opts.Client,
		fetchClient: withoutRedirects(opts.Client),
		tracer:      opts.TracerProvider.Tracer("cakebook/internal/offline"),
		log:         logger.Named("offline").With("cache", opts.CacheName),
	}

	w.offlinePage, err = w.resolve(opts.OfflinePage)
	if err != nil {
		return nil, err
	}
	for _, p := range opts.Precache {
		u, err := w.resolve(p)
		if err != nil {
			return nil, err
		}
		w.precache = append(w.precache, u)
	}
	return w, nil
}

// withoutRedirects returns a copy of an *http.Client that hands redirects
// back to the caller. Other Doers are returned unchanged.
func withoutRedirects(d Doer) Doer {
	hc, ok := d.(*http.Client)
	if !ok {
		return d
	}
	c := *hc
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

func (w *Worker) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse shell path %q: %w", path, err)
	}
	return w.origin.ResolveReference(ref).String(), nil
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Cache returns the worker's current cache.
func (w *Worker) Cache() *Cache {
	return w.cache
}

// transition moves the worker from one of the allowed phases to next.
func (w *Worker) transition(next State, from ...State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range from {
		if w.state == s {
			w.log.Debugw("worker state change", "from", w.state, "to", next)
			w.state = next
			return nil
		}
	}
	return fmt.Errorf("offline: cannot move to %s while %s", next, w.state)
}

// Install populates the cache with the precache manifest. A population
// failure is logged and returned for observability only: the worker still
// reaches the installed phase and behaves as if fully online for anything
// that is missing.
func (w *Worker) Install(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "offline.install",
		trace.WithAttributes(
			attribute.String("offline.cache", w.cache.Name()),
			attribute.Int("offline.precache.count", len(w.precache)),
		))
	defer span.End()

	if err := w.transition(StateInstalling, StateParsed); err != nil {
		return err
	}

	err := w.cache.AddAll(ctx, w.client, w.precache)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "precache failed")
		w.log.Warnw("precache failed, continuing without offline shell", "error", err)
	} else {
		w.log.Infow("precache complete", "entries", len(w.precache))
	}

	if terr := w.transition(StateInstalled, StateInstalling); terr != nil {
		return terr
	}
	return err
}

// Activate deletes every cache except the current version and starts
// intercepting fetches.
func (w *Worker) Activate(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "offline.activate",
		trace.WithAttributes(attribute.String("offline.cache", w.cache.Name())))
	defer span.End()

	if err := w.transition(StateActivating, StateInstalled); err != nil {
		return err
	}

	names, err := w.storage.Keys(ctx)
	if err != nil {
		w.log.Warnw("failed to list caches", "error", err)
		span.RecordError(err)
	}
	removed := 0
	for _, name := range names {
		if name == w.cache.Name() {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			w.log.Warnw("failed to delete old cache", "old_cache", name, "error", err)
			span.RecordError(err)
			continue
		}
		w.log.Infow("deleted old cache", "old_cache", name)
		removed++
	}
	span.SetAttributes(attribute.Int("offline.caches.removed", removed))

	return w.transition(StateActivated, StateActivating)
}

// HandleMessage processes a client control message. SKIP_WAITING activates
// an installed worker; every other message, or SKIP_WAITING in any other
// phase, is ignored.
func (w *Worker) HandleMessage(ctx context.Context, msg Message) error {
	if msg.Type != MessageSkipWaiting {
		w.log.Debugw("ignoring worker message", "type", msg.Type)
		return nil
	}
	if w.State() != StateInstalled {
		return nil
	}
	return w.Activate(ctx)
}

// Terminate makes the worker redundant. Later fetches go straight to the
// network and no new background writes start, so Wait may follow it even
// while requests are still in flight.
func (w *Worker) Terminate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateRedundant
}

// Wait blocks until every background cache write has finished.
func (w *Worker) Wait() {
	w.pending.Wait()
}

// Fetch resolves an outbound request. Once activated, GET requests are served
// from the cache when present and otherwise from the network, storing
// successful same-origin responses in the background. A navigation that
// fails on the network is answered with the cached offline page; any other
// network failure is returned as is.
func (w *Worker) Fetch(req *http.Request) (*http.Response, error) {
	ctx, span := w.tracer.Start(req.Context(), "offline.fetch",
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		))
	defer span.End()
	req = req.WithContext(ctx)

	if req.Method != http.MethodGet || w.State() != StateActivated {
		span.SetAttributes(attribute.String("offline.outcome", "passthrough"))
		return w.fetchClient.Do(req)
	}

	resp, err := w.cache.Match(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String("offline.outcome", "hit"))
		return resp, nil
	}
	if !errors.Is(err, ErrNotCached) {
		w.log.Warnw("cache lookup failed", "url", req.URL.String(), "error", err)
	}

	resp, err = w.fetchClient.Do(req)
	if err != nil {
		if isNavigation(req) {
			if page, ferr := w.offlineResponse(ctx, req); ferr == nil {
				span.SetAttributes(attribute.String("offline.outcome", "fallback"))
				return page, nil
			}
		}
		span.SetAttributes(attribute.String("offline.outcome", "error"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "network request failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("offline.outcome", "network"),
		attribute.Int("http.response.status_code", resp.StatusCode),
	)
	if w.cacheable(resp) {
		w.storeAsync(ctx, req, resp)
	}
	return resp, nil
}

func (w *Worker) offlineResponse(ctx context.Context, req *http.Request) (*http.Response, error) {
	fallback, err := http.NewRequestWithContext(ctx, http.MethodGet, w.offlinePage, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.cache.Match(ctx, fallback)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// cacheable reports whether resp is a 200 from the shell origin. Redirects
// to another origin are checked against the final request.
func (w *Worker) cacheable(resp *http.Response) bool {
	if resp.StatusCode != http.StatusOK || resp.Request == nil {
		return false
	}
	u := resp.Request.URL
	return strings.EqualFold(u.Scheme, w.origin.Scheme) && strings.EqualFold(u.Host, w.origin.Host)
}

// storeAsync copies resp and writes the copy in a goroutine. Write failures
// are logged; the caller never waits for them. Nothing is scheduled once the
// worker has left the activated phase.
func (w *Worker) storeAsync(ctx context.Context, req *http.Request, resp *http.Response) {
	snap, err := snapshot(resp)
	if err != nil {
		w.log.Warnw("failed to copy response for caching", "url", req.URL.String(), "error", err)
		return
	}
	key := cacheKey(req.URL)
	ctx = context.WithoutCancel(ctx)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != StateActivated {
		return
	}
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		if err := w.cache.store(w.cache.db.WithContext(ctx), key, snap); err != nil {
			w.log.Warnw("failed to cache response", "url", key, "error", err)
		}
	}()
}

// isNavigation reports whether req loads a full document.
func isNavigation(req *http.Request) bool {
	if dest := req.Header.Get("Sec-Fetch-Dest"); dest != "" {
		return dest == "document"
	}
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	for _, part := range strings.Split(req.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "text/html" {
			return true
		}
	}
	return false
}
