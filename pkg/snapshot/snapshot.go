// Package snapshot captures the rendered state of a document and stores it
// on disk or in S3.
//
// A snapshot is a JSON document holding the serialized body and the
// document's mutation counters at capture time. Keys are time-ordered so a
// List returns captures oldest first.
package snapshot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/vango-dev/loom/pkg/dom"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// ErrInvalidKey is returned for keys that could escape the store's
// namespace.
var ErrInvalidKey = errors.New("snapshot: invalid key")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put stores data under key, replacing any previous snapshot.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the snapshot stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every stored key in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Snapshot is the stored form of a capture.
type Snapshot struct {
	HTML    string    `json:"html"`
	Stats   dom.Stats `json:"stats"`
	TakenAt time.Time `json:"taken_at"`
}

// Capture serializes the body of doc.
func Capture(doc *dom.Document) Snapshot {
	return Snapshot{
		HTML:    dom.InnerHTML(doc.Body()),
		Stats:   doc.Stats(),
		TakenAt: time.Now().UTC(),
	}
}

// Save stores snap under a fresh key, which it returns. Capture runs on the
// runtime goroutine; Save may run anywhere.
func Save(ctx context.Context, store Store, snap Snapshot, prefix string) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	key := NewKey(prefix)
	if err := store.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Load fetches and decodes the snapshot stored under key.
func Load(ctx context.Context, store Store, key string) (Snapshot, error) {
	var s Snapshot
	data, err := store.Get(ctx, key)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidKey reports whether key may be used with a Store.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// NewKey returns a key that sorts after every key made earlier with the same
// prefix.
func NewKey(prefix string) string {
	b := make([]byte, 4)
	rand.Read(b)
	return prefix + time.Now().UTC().Format("20060102T150405.000000000") + "-" + hex.EncodeToString(b)
}
