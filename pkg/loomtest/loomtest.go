package loomtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// Recorder is an Observer that counts runtime events.
type Recorder struct {
	reactive.NopObserver

	ScopesDisposed int
	Jobs           map[string]int
	Failures       []error
	Created        int
	Moved          int
	Removed        int
	Components     []string
}

func (r *Recorder) ScopeDisposed(int) { r.ScopesDisposed++ }

func (r *Recorder) JobRan(kind string) {
	if r.Jobs == nil {
		r.Jobs = make(map[string]int)
	}
	r.Jobs[kind]++
}

func (r *Recorder) NotificationFailed(err error) { r.Failures = append(r.Failures, err) }

func (r *Recorder) Reconciled(_ string, created, moved, removed int) {
	r.Created += created
	r.Moved += moved
	r.Removed += removed
}

func (r *Recorder) ComponentCreated(name string) { r.Components = append(r.Components, name) }

// Env is a runtime and document wired for tests.
type Env struct {
	T        *testing.T
	RT       *reactive.Runtime
	Doc      *dom.Document
	Recorder *Recorder
}

// NewEnv creates a runtime with a discarding logger and a Recorder, plus an
// empty document. Extra options are applied after the defaults.
func NewEnv(t *testing.T, opts ...reactive.Option) *Env {
	t.Helper()
	rec := &Recorder{}
	opts = append([]reactive.Option{
		reactive.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		reactive.WithObserver(rec),
	}, opts...)
	rt := reactive.NewRuntime(opts...)
	t.Cleanup(rt.Close)
	return &Env{T: t, RT: rt, Doc: dom.NewDocument(), Recorder: rec}
}

// Mount runs fn in a lifecycle scope, appends its result to the document
// body and returns it. The scope is disposed when the test ends. A failing
// fn fails the test.
func (e *Env) Mount(fn func() (*dom.Node, error)) *dom.Node {
	e.T.Helper()
	life, err := reactive.WithLifecycleErr(e.RT, fn)
	if err != nil {
		e.T.Fatalf("mount failed: %v", err)
	}
	e.T.Cleanup(func() {
		if err := life.Uninit(); err != nil {
			e.T.Errorf("teardown failed: %v", err)
		}
	})
	if life.Value == nil {
		return nil
	}
	if life.Value.Parent() == nil {
		if err := e.Doc.Body().AppendChild(life.Value); err != nil {
			e.T.Fatalf("append to body failed: %v", err)
		}
	}
	return life.Value
}

// HTML returns the serialized body.
func (e *Env) HTML() string {
	return dom.InnerHTML(e.Doc.Body())
}

// RenderToString serializes node. Fragments serialize their children.
//
// Example:
//
//	html := loomtest.RenderToString(node)
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *dom.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind() == dom.KindFragment {
		return dom.InnerHTML(node)
	}
	return dom.OuterHTML(node)
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	loomtest.ExpectContains(t, node, "Welcome Admin")
func ExpectContains(t *testing.T, node *dom.Node, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
//
// Example:
//
//	loomtest.ExpectNotContains(t, node, "Error")
func ExpectNotContains(t *testing.T, node *dom.Node, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that node or one of its descendants, shadow trees
// included, has the given tag.
func ExpectElement(t *testing.T, node *dom.Node, tag string) {
	t.Helper()
	if node == nil || dom.Find(node, dom.ByTag(tag)) == nil {
		t.Errorf("expected a <%s> element, got:\n%s", tag, truncate(RenderToString(node), 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	loomtest.ExpectAttribute(t, node, "class", "btn-primary")
func ExpectAttribute(t *testing.T, node *dom.Node, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// Click finds the first element with tag under node and clicks it.
func Click(t *testing.T, node *dom.Node, tag string) {
	t.Helper()
	el := dom.Find(node, dom.ByTag(tag))
	if el == nil {
		t.Fatalf("no <%s> to click in:\n%s", tag, truncate(RenderToString(node), 500))
	}
	el.Click()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
