package render

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"

	loomerr "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// Entry is one keyed item of an Each list.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// KV builds an Entry.
func KV[K comparable, V any](key K, value V) Entry[K, V] {
	return Entry[K, V]{Key: key, Value: value}
}

// Entries collects pairs into a list snapshot.
func Entries[K comparable, V any](pairs ...Entry[K, V]) []Entry[K, V] {
	return append([]Entry[K, V](nil), pairs...)
}

// Each renders one subtree per entry and keeps the DOM in step with entries
// by key:
//
//   - an entry whose key disappears is disposed exactly once;
//   - an entry whose key persists keeps its nodes and scope and is only
//     repositioned, never rebuilt, and never re-rendered for a new value;
//   - an entry with a new key is rendered by fn in a fresh child scope.
//
// Keys are compared with ==. A snapshot containing the same key twice is
// rejected with E301 and leaves the DOM untouched.
//
// Entries whose relative order is unchanged stay where they are; only the
// remaining ones are moved, so a reorder costs as few moves as possible.
func Each[K comparable, V any](rt *reactive.Runtime, doc *dom.Document, entries *reactive.Signal[[]Entry[K, V]], fn func(V) (*dom.Node, error)) (*dom.Node, error) {
	owner := rt.RequireScope("each")
	frag, reg := newRegion(doc, "each")
	l := &list[K, V]{
		rt:     rt,
		owner:  owner,
		region: reg,
		render: fn,
		mounts: make(map[K]*Mount),
	}

	if err := l.reconcile(entries.Get()); err != nil {
		l.disposeAll()
		return nil, err
	}

	reactive.Watch(rt, "each", []reactive.Source{entries}, func() error {
		return l.reconcile(entries.Get())
	})
	owner.OnCleanup(l.disposeAll)
	return frag, nil
}

type list[K comparable, V any] struct {
	rt     *reactive.Runtime
	owner  *reactive.Scope
	region *region
	render func(V) (*dom.Node, error)

	// keys is the order of the mounted entries.
	keys   []K
	mounts map[K]*Mount
}

func (l *list[K, V]) disposeAll() {
	for _, k := range l.keys {
		l.mounts[k].Dispose()
	}
	l.keys = nil
	clear(l.mounts)
}

func (l *list[K, V]) reconcile(next []Entry[K, V]) error {
	index := make(map[K]int, len(next))
	for i, e := range next {
		if _, dup := index[e.Key]; dup {
			return loomerr.New("E301").WithDetailf("key %v appears more than once", e.Key)
		}
		index[e.Key] = i
	}

	span := reconcileSpan(l.rt, "each")
	defer span.End()

	var errs []error
	created, moved, removed := 0, 0, 0

	// Dispose entries whose key is gone, remembering the old position of
	// every survivor.
	oldPos := make(map[K]int, len(l.keys))
	survivors := 0
	for _, k := range l.keys {
		if _, keep := index[k]; keep {
			oldPos[k] = survivors
			survivors++
			continue
		}
		if err := l.mounts[k].Dispose(); err != nil {
			errs = append(errs, err)
		}
		delete(l.mounts, k)
		removed++
	}

	// Survivors on the longest increasing run of old positions keep their
	// place; everything else is inserted or moved around them.
	seq := make([]int, len(next))
	for i, e := range next {
		if p, ok := oldPos[e.Key]; ok {
			seq[i] = p
		} else {
			seq[i] = -1
		}
	}
	stay := stable(seq)

	keys := make([]K, 0, len(next))
	ref := l.region.end
	for i := len(next) - 1; i >= 0; i-- {
		e := next[i]
		m, ok := l.mounts[e.Key]
		switch {
		case !ok:
			var err error
			m, err = NewMount(l.rt, l.owner, func() (*dom.Node, error) { return l.render(e.Value) })
			if err != nil {
				errs = append(errs, err)
				continue
			}
			l.mounts[e.Key] = m
			if err := l.region.place(m, ref); err != nil {
				errs = append(errs, err)
			}
			created++
		case !stay[i]:
			if err := l.region.place(m, ref); err != nil {
				errs = append(errs, err)
			}
			moved++
		}
		if m.first != nil {
			ref = m.first
		}
		keys = append(keys, e.Key)
	}

	// keys was built back to front.
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	l.keys = keys

	span.SetAttributes(
		attribute.Int("loom.created", created),
		attribute.Int("loom.moved", moved),
		attribute.Int("loom.removed", removed),
	)
	l.rt.Observer().Reconciled("each", created, moved, removed)
	l.rt.Logger().Debug("list reconciled", "entries", len(next), "created", created, "moved", moved, "removed", removed)
	return errors.Join(errs...)
}

// stable marks the positions of seq that lie on a longest strictly
// increasing subsequence of its non-negative values.
func stable(seq []int) []bool {
	// tails[k] is the index in seq of the smallest tail of an increasing run
	// of length k+1; prev links each index to its predecessor on that run.
	var tails []int
	prev := make([]int, len(seq))
	for i, v := range seq {
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	out := make([]bool, len(seq))
	if len(tails) == 0 {
		return out
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		out[i] = true
	}
	return out
}
