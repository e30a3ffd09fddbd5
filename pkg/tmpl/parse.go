package tmpl

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	loomerr "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/dom"
)

// HoleMarker marks an interpolation hole in template markup.
const HoleMarker = "${}"

// Holes are replaced by sentinels before tokenizing. A sentinel starts with a
// letter so the tokenizer accepts it as a tag or attribute name.
const sentinelPrefix = "loomhole_"

var sentinelRE = regexp.MustCompile(sentinelPrefix + `(\d+)_`)

func sentinel(i int) string {
	return sentinelPrefix + strconv.Itoa(i) + "_"
}

// SyntaxError describes malformed template markup.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
}

// HoleKind is the position a hole occupies in the markup.
type HoleKind uint8

const (
	HoleContent   HoleKind = iota // between tags
	HoleDirective                 // attribute-name position: <p ${}>
	HoleAttribute                 // inside an attribute value
)

// String returns the string representation of the HoleKind.
func (k HoleKind) String() string {
	switch k {
	case HoleContent:
		return "content"
	case HoleDirective:
		return "directive"
	case HoleAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Hole describes one interpolation hole.
type Hole struct {
	Index int
	Line  int
	Kind  HoleKind
	Attr  string // attribute name for HoleAttribute
}

type nodeKind uint8

const (
	staticElement nodeKind = iota
	staticText
	staticComment
	contentHole
)

// tnode is a node of the static parse.
type tnode struct {
	kind       nodeKind
	tag        string
	attrs      []attrSpec
	directives []int
	text       string
	hole       int
	children   []*tnode
	line       int
}

type attrSpec struct {
	name  string
	parts []part
}

// part is a piece of an attribute value: static text, or a hole when
// hole >= 0.
type part struct {
	text string
	hole int
}

// Template is the cached static parse of a markup string.
type Template struct {
	name   string
	markup string
	roots  []*tnode
	holes  []Hole
}

// Name returns the name used in error locations.
func (t *Template) Name() string { return t.name }

// Markup returns the source markup.
func (t *Template) Markup() string { return t.markup }

// NumHoles returns the number of values Execute expects.
func (t *Template) NumHoles() int { return len(t.holes) }

// Holes describes every hole in source order.
func (t *Template) Holes() []Hole {
	return append([]Hole(nil), t.holes...)
}

var cache sync.Map // markup -> *Template

// Compile parses markup, reusing a previous parse of the same string.
func Compile(markup string) (*Template, error) {
	if t, ok := cache.Load(markup); ok {
		return t.(*Template), nil
	}
	t, err := Parse("template", markup)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(markup, t)
	return actual.(*Template), nil
}

// Parse parses markup without consulting the cache. name is used in error
// locations, typically a file path.
func Parse(name, markup string) (*Template, error) {
	p := newParser(name, markup)
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Template{name: name, markup: markup, roots: p.roots, holes: p.holes}, nil
}

type parser struct {
	name   string
	markup string
	src    string

	// starts holds the offset of each hole's sentinel in src.
	starts []int
	holes  []Hole
	seen   []bool

	stack   []*tnode
	offsets []int // start offsets of open elements
	roots   []*tnode
}

func newParser(name, markup string) *parser {
	p := &parser{name: name, markup: markup}
	pieces := strings.Split(markup, HoleMarker)
	var b strings.Builder
	for i, piece := range pieces {
		b.WriteString(piece)
		if i < len(pieces)-1 {
			p.starts = append(p.starts, b.Len())
			b.WriteString(sentinel(i))
		}
	}
	p.src = b.String()
	p.holes = make([]Hole, len(p.starts))
	p.seen = make([]bool, len(p.starts))
	for i, start := range p.starts {
		line, _ := p.position(start)
		p.holes[i] = Hole{Index: i, Line: line}
	}
	return p
}

// position maps an offset in the substituted source back to a 1-based line
// and column of the original markup.
func (p *parser) position(off int) (line, col int) {
	return p.lineCol(p.original(off))
}

// original converts an offset in the substituted source to one in markup.
func (p *parser) original(off int) int {
	orig := off
	for i, start := range p.starts {
		end := start + len(sentinel(i))
		if off >= end {
			orig -= len(sentinel(i)) - len(HoleMarker)
			continue
		}
		if off > start {
			orig -= off - start
		}
		break
	}
	return min(orig, len(p.markup))
}

func (p *parser) lineCol(orig int) (line, col int) {
	before := p.markup[:orig]
	line = 1 + strings.Count(before, "\n")
	col = orig - strings.LastIndex(before, "\n")
	return line, col
}

func (p *parser) fail(code string, off int, format string, args ...any) error {
	return p.failAt(code, p.original(off), format, args...)
}

// failAt reports an error at an offset of the original markup.
func (p *parser) failAt(code string, orig int, format string, args ...any) error {
	line, col := p.lineCol(orig)
	msg := fmt.Sprintf(format, args...)
	return loomerr.New(code).
		WithSource(p.name, p.markup, line, col).
		Wrap(&SyntaxError{Line: line, Column: col, Msg: msg})
}

func (p *parser) run() error {
	if i := strings.Index(p.markup, sentinelPrefix); i >= 0 {
		return p.failAt("E201", i, "the prefix %s is reserved", sentinelPrefix)
	}
	z := html.NewTokenizer(strings.NewReader(p.src))
	off := 0
	for {
		tt := z.Next()
		start := off
		off += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return p.fail("E201", start, "%v", err)
			}
			return p.finish()

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el, err := p.element(tok, start)
			if err != nil {
				return err
			}
			p.add(el)
			if tt == html.StartTagToken && !dom.IsVoidElement(el.tag) {
				p.stack = append(p.stack, el)
				p.offsets = append(p.offsets, start)
			}

		case html.EndTagToken:
			tok := z.Token()
			if err := p.close(tok.Data, start); err != nil {
				return err
			}

		case html.TextToken:
			p.text(z.Token().Data)

		case html.CommentToken:
			data := z.Token().Data
			if sentinelRE.MatchString(data) {
				return p.fail("E201", start, "holes are not allowed inside comments")
			}
			p.add(&tnode{kind: staticComment, text: data})

		case html.DoctypeToken:
			return p.fail("E201", start, "doctype is not allowed in a template")
		}
	}
}

func (p *parser) finish() error {
	if n := len(p.stack); n > 0 {
		return p.fail("E203", p.offsets[n-1], "<%s> is never closed", p.stack[n-1].tag)
	}
	for i, ok := range p.seen {
		if !ok {
			return p.fail("E201", p.starts[i], "hole %d is not in content, attribute-name or attribute-value position", i)
		}
	}
	return nil
}

// add appends n to the innermost open element or to the roots.
func (p *parser) add(n *tnode) {
	if len(p.stack) == 0 {
		p.roots = append(p.roots, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.children = append(top.children, n)
}

func (p *parser) close(tag string, off int) error {
	n := len(p.stack)
	if n == 0 {
		return p.fail("E203", off, "</%s> has no matching open tag", tag)
	}
	top := p.stack[n-1]
	if top.tag != tag {
		line, _ := p.position(p.offsets[n-1])
		return p.fail("E203", off, "</%s> closes <%s> opened on line %d", tag, top.tag, line)
	}
	p.stack = p.stack[:n-1]
	p.offsets = p.offsets[:n-1]
	return nil
}

func (p *parser) element(tok html.Token, off int) (*tnode, error) {
	if sentinelRE.MatchString(tok.Data) {
		return nil, p.fail("E201", off, "a hole cannot be used as a tag name")
	}
	line, _ := p.position(off)
	el := &tnode{kind: staticElement, tag: tok.Data, line: line}

	for _, a := range tok.Attr {
		if m := sentinelRE.FindStringSubmatch(a.Key); m != nil {
			if m[0] != a.Key {
				return nil, p.fail("E201", off, "a hole cannot be part of attribute name %q", a.Key)
			}
			if a.Val != "" {
				return nil, p.fail("E201", off, "a hole in attribute-name position cannot take a value")
			}
			i := p.claim(m[1], HoleDirective, "")
			el.directives = append(el.directives, i)
			continue
		}
		el.attrs = append(el.attrs, attrSpec{name: a.Key, parts: p.split(a.Val, HoleAttribute, a.Key)})
	}
	return el, nil
}

// claim marks a hole as placed and records its kind.
func (p *parser) claim(digits string, kind HoleKind, attr string) int {
	i, _ := strconv.Atoi(digits)
	p.seen[i] = true
	p.holes[i].Kind = kind
	p.holes[i].Attr = attr
	return i
}

// split cuts s into static text and holes.
func (p *parser) split(s string, kind HoleKind, attr string) []part {
	var parts []part
	last := 0
	for _, m := range sentinelRE.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			parts = append(parts, part{text: s[last:m[0]], hole: -1})
		}
		parts = append(parts, part{hole: p.claim(s[m[2]:m[3]], kind, attr)})
		last = m[1]
	}
	if last < len(s) || len(parts) == 0 {
		parts = append(parts, part{text: s[last:], hole: -1})
	}
	return parts
}

func (p *parser) text(data string) {
	for _, pt := range p.split(data, HoleContent, "") {
		if pt.hole >= 0 {
			p.add(&tnode{kind: contentHole, hole: pt.hole, line: p.holes[pt.hole].Line})
			continue
		}
		// Whitespace between top-level nodes is indentation, not content.
		if len(p.stack) == 0 && strings.TrimSpace(pt.text) == "" {
			continue
		}
		p.add(&tnode{kind: staticText, text: pt.text})
	}
}
