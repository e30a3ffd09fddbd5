// Package inspect serves a live view of a document over HTTP.
//
// Routes:
//
//	GET  /tree             current body markup
//	GET  /events           websocket stream of mutation records (JSON)
//	POST /snapshots        capture the document into the snapshot store
//	GET  /snapshots        list stored snapshot keys
//	GET  /snapshots/{key}  fetch one snapshot
//	GET  /metrics          Prometheus exposition, when a gatherer is set
//
// Every read of the document happens on the runtime loop through
// Runtime.Call, so the runtime must be running (Runtime.Run) while the
// handler serves requests.
package inspect

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/snapshot"
)

// DefaultClientBuffer is the number of undelivered records a websocket
// client may fall behind before records are dropped for it.
const DefaultClientBuffer = 64

// Inspector exposes one runtime and its document.
type Inspector struct {
	rt       *reactive.Runtime
	doc      *dom.Document
	store    snapshot.Store
	prefix   string
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	buffer   int

	upgrader websocket.Upgrader
	stop     func()

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithStore enables the snapshot routes.
func WithStore(store snapshot.Store) Option {
	return func(i *Inspector) {
		i.store = store
	}
}

// WithKeyPrefix sets the prefix of snapshot keys (default "snap-").
func WithKeyPrefix(prefix string) Option {
	return func(i *Inspector) {
		i.prefix = prefix
	}
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(i *Inspector) {
		i.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClientBuffer sets the per-client record buffer.
func WithClientBuffer(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.buffer = n
		}
	}
}

// New creates an Inspector and starts observing doc. Call it on the runtime
// goroutine, before Runtime.Run or from inside a dispatched callback.
func New(rt *reactive.Runtime, doc *dom.Document, opts ...Option) *Inspector {
	i := &Inspector{
		rt:      rt,
		doc:     doc,
		prefix:  "snap-",
		logger:  slog.Default().With("component", "inspect"),
		buffer:  DefaultClientBuffer,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local devtools
			},
		},
	}
	for _, opt := range opts {
		opt(i)
	}
	i.stop = doc.Observe(i.broadcast)
	return i
}

// Handler returns the HTTP handler serving every route.
func (i *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/tree", i.handleTree)
	r.Get("/events", i.handleEvents)
	if i.store != nil {
		r.Post("/snapshots", i.handleCapture)
		r.Get("/snapshots", i.handleList)
		r.Get("/snapshots/{key}", i.handleSnapshot)
	}
	if i.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(i.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ClientCount returns the number of connected websocket clients.
func (i *Inspector) ClientCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.clients)
}

// Close stops observing the document and disconnects every client. Call it
// on the runtime goroutine.
func (i *Inspector) Close() {
	i.stop()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	for c := range i.clients {
		c.close()
		delete(i.clients, c)
	}
}

func (i *Inspector) handleTree(w http.ResponseWriter, r *http.Request) {
	var html string
	err := i.rt.Call(r.Context(), func() error {
		html = dom.InnerHTML(i.doc.Body())
		return nil
	})
	if err != nil {
		i.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (i *Inspector) handleCapture(w http.ResponseWriter, r *http.Request) {
	var snap snapshot.Snapshot
	err := i.rt.Call(r.Context(), func() error {
		snap = snapshot.Capture(i.doc)
		return nil
	})
	if err != nil {
		i.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	key, err := snapshot.Save(r.Context(), i.store, snap, i.prefix)
	if err != nil {
		i.fail(w, http.StatusInternalServerError, err)
		return
	}
	i.logger.Info("snapshot stored", "key", key)
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (i *Inspector) handleList(w http.ResponseWriter, r *http.Request) {
	keys, err := i.store.List(r.Context())
	if err != nil {
		i.fail(w, http.StatusInternalServerError, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (i *Inspector) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := i.store.Get(r.Context(), chi.URLParam(r, "key"))
	switch {
	case errors.Is(err, snapshot.ErrInvalidKey):
		i.fail(w, http.StatusBadRequest, err)
	case errors.Is(err, snapshot.ErrNotFound):
		i.fail(w, http.StatusNotFound, err)
	case err != nil:
		i.fail(w, http.StatusInternalServerError, err)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func (i *Inspector) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		i.logger.Error("inspector request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
