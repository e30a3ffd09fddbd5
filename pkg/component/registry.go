package component

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/cespare/xxhash/v2"

	loomerr "github.com/vango-dev/loom/internal/errors"
)

// suffixLen is the number of base36 hash digits appended to a tag.
const suffixLen = 7

// Registry maps generated element tags to component names. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[string]string
	tags   []string
	counts map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTag:  make(map[string]string),
		counts: make(map[string]int),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the registry used by Define.
func Default() *Registry {
	return defaultRegistry
}

// Register allocates a tag for name. The tag is the kebab-cased name followed
// by a hash suffix; registering the same names in the same order always
// yields the same tags. A name may be registered more than once and gets a
// distinct tag each time.
func (r *Registry) Register(name string) (string, error) {
	base := kebab(name)
	if base == "" {
		return "", loomerr.New("E401").WithDetailf("%q has no letters or digits", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.counts[name]
	for {
		key := name
		if seq > 0 {
			key += "#" + strconv.Itoa(seq)
		}
		seq++
		tag := base + "-" + suffix(key)
		if _, taken := r.byTag[tag]; taken {
			continue
		}
		r.counts[name] = seq
		r.byTag[tag] = name
		r.tags = append(r.tags, tag)
		return tag, nil
	}
}

// Lookup returns the component name registered under tag.
func (r *Registry) Lookup(tag string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byTag[tag]
	return name, ok
}

// Tags returns every allocated tag in registration order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.tags...)
}

func suffix(key string) string {
	s := strconv.FormatUint(xxhash.Sum64String(key), 36)
	if len(s) > suffixLen {
		s = s[:suffixLen]
	}
	return s
}

// kebab lower-cases name and separates words with hyphens:
// "TodoItem" and "todo item" both become "todo-item". Names starting with a
// digit get an "x-" prefix, since element names must start with a letter.
func kebab(name string) string {
	var b strings.Builder
	pendingDash := false
	var prev rune
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if unicode.IsUpper(r) && b.Len() > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				pendingDash = true
			}
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
		prev = r
	}
	s := b.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "x-" + s
	}
	return s
}
