package component

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/tmpl"
)

type recordingObserver struct {
	reactive.NopObserver
	created []string
}

func (o *recordingObserver) ComponentCreated(name string) { o.created = append(o.created, name) }

func newEnv() (*reactive.Runtime, *dom.Document, *recordingObserver) {
	obs := &recordingObserver{}
	rt := reactive.NewRuntime(
		reactive.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		reactive.WithObserver(obs),
	)
	return rt, dom.NewDocument(), obs
}

func mustDefine[P any](t *testing.T, name string, init Init[P]) *Definition[P] {
	t.Helper()
	d, err := DefineIn(NewRegistry(), name, init)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNewMountsIntoClosedShadowRoot(t *testing.T) {
	rt, doc, obs := newEnv()
	greeting := mustDefine(t, "Greeting", func(h *Host, name string) (*dom.Node, error) {
		return h.HTML(`<p>Hello, ${}!</p>`, name)
	})

	inst, err := greeting.New(rt, doc, "Ada")
	if err != nil {
		t.Fatal(err)
	}

	if inst.Tag() != greeting.Tag() || inst.Name() != "Greeting" {
		t.Errorf("unexpected identity %q/%q", inst.Tag(), inst.Name())
	}
	if inst.Element.ShadowRoot() != nil {
		t.Error("shadow root should be closed")
	}
	if !inst.Element.HasShadowRoot() {
		t.Error("element should have a shadow root")
	}
	want := `<template shadowrootmode="closed"><p>Hello, Ada!</p></template>`
	if html := dom.OuterHTML(inst.Element); !strings.Contains(html, want) {
		t.Errorf("OuterHTML = %s, want it to contain %s", html, want)
	}
	if len(obs.created) != 1 || obs.created[0] != "Greeting" {
		t.Errorf("observer saw %v", obs.created)
	}
}

func TestInitRunsInsidePrivateScope(t *testing.T) {
	rt, doc, _ := newEnv()
	count := reactive.NewSignal(1)
	cleaned := 0

	counter := mustDefine(t, "Counter", func(h *Host, _ struct{}) (*dom.Node, error) {
		doubled := reactive.Use(rt, count, func(n int) int { return n * 2 })
		h.OnCleanup(func() { cleaned++ })
		if rt.CurrentScope() != h.Scope() {
			t.Error("init should run with the instance scope current")
		}
		return h.HTML(`<span>${}</span>`, doubled)
	})

	inst, err := counter.New(rt, doc, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if inst.Scope().Parent() != nil {
		t.Error("an instance built outside any scope gets a root scope")
	}

	count.Set(4)
	if got := dom.Find(inst.Element, dom.ByTag("span")).TextContent(); got != "8" {
		t.Errorf("text = %q, want 8", got)
	}

	inst.Uninit()
	inst.Uninit()
	count.Set(5)

	if cleaned != 1 {
		t.Errorf("cleanup ran %d times, want 1", cleaned)
	}
	if count.SubscriberCount() != 0 {
		t.Error("derivation should unsubscribe on Uninit")
	}
}

func TestNestedInstancesCascade(t *testing.T) {
	rt, doc, _ := newEnv()
	var order []string

	child := mustDefine(t, "Child", func(h *Host, label string) (*dom.Node, error) {
		h.OnCleanup(func() { order = append(order, label) })
		return h.HTML(`<i>${}</i>`, label)
	})
	parent := mustDefine(t, "Parent", func(h *Host, _ int) (*dom.Node, error) {
		h.OnCleanup(func() { order = append(order, "parent") })
		a, err := child.New(h.Runtime(), h.Document(), "a")
		if err != nil {
			return nil, err
		}
		b, err := child.New(h.Runtime(), h.Document(), "b")
		if err != nil {
			return nil, err
		}
		if a.Scope().Parent() != h.Scope() {
			t.Error("nested instance scope should be a child of the parent's")
		}
		return h.HTML(`<div>${}${}</div>`, a, b)
	})

	inst, err := parent.New(rt, doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(dom.FindAll(inst.Element, dom.ByTag(child.Tag()))); n != 2 {
		t.Fatalf("found %d children", n)
	}

	inst.Uninit()
	if strings.Join(order, ",") != "b,a,parent" {
		t.Errorf("teardown order = %v, want [b a parent]", order)
	}
}

func TestInstanceUnderWithLifecycle(t *testing.T) {
	rt, doc, _ := newEnv()
	cleaned := false
	widget := mustDefine(t, "Widget", func(h *Host, _ int) (*dom.Node, error) {
		h.OnCleanup(func() { cleaned = true })
		return nil, nil
	})

	page := reactive.WithLifecycle(rt, func() *Instance {
		inst, err := widget.New(rt, doc, 0)
		if err != nil {
			t.Fatal(err)
		}
		return inst
	})

	if page.Value.Scope().Parent() != page.Scope {
		t.Error("instance should be owned by the enclosing lifecycle")
	}
	page.Uninit()
	if !cleaned {
		t.Error("page teardown should cascade into the instance")
	}
}

func TestInitErrorDisposesScope(t *testing.T) {
	rt, doc, obs := newEnv()
	boom := errors.New("boom")
	cleaned := false

	broken := mustDefine(t, "Broken", func(h *Host, _ int) (*dom.Node, error) {
		h.OnCleanup(func() { cleaned = true })
		return nil, boom
	})

	inst, err := broken.New(rt, doc, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("New() error = %v, want %v", err, boom)
	}
	if inst != nil {
		t.Error("failed construction should not return an instance")
	}
	if !cleaned {
		t.Error("failed construction should dispose its scope")
	}
	if rt.CurrentScope() != nil {
		t.Error("scope stack should be restored")
	}
	if len(obs.created) != 0 {
		t.Error("failed construction should not be reported as created")
	}
}

func TestInitPanicPropagates(t *testing.T) {
	rt, doc, _ := newEnv()
	cleaned := false
	panicky := mustDefine(t, "Panicky", func(h *Host, _ int) (*dom.Node, error) {
		h.OnCleanup(func() { cleaned = true })
		panic("init failed")
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic should reach the constructor caller")
			}
		}()
		panicky.New(rt, doc, 0)
	}()

	if !cleaned || rt.CurrentScope() != nil {
		t.Error("panicking init should dispose its scope and restore the stack")
	}
}

type counterAPI struct {
	count *reactive.Signal[int]
}

func (c counterAPI) Increment() { c.count.Update(func(n int) int { return n + 1 }) }

func TestExposeAndEvents(t *testing.T) {
	rt, doc, _ := newEnv()
	counter := mustDefine(t, "ClickCounter", func(h *Host, start int) (*dom.Node, error) {
		count := reactive.NewSignal(start)
		h.Expose(counterAPI{count: count})
		return h.HTML(`<button ${}>${}</button>`,
			tmpl.Set(tmpl.Props{"onclick": func() {
				count.Update(func(n int) int { return n + 1 })
				h.Emit("changed", count.Get())
			}}),
			count,
		)
	})

	inst := reactive.WithLifecycle(rt, func() *Instance {
		i, err := counter.New(rt, doc, 10)
		if err != nil {
			t.Fatal(err)
		}
		return i
	}).Value
	doc.Body().AppendChild(inst.Element)

	var detail any
	doc.Body().SetHandler("changed", func(e *dom.Event) { detail = e.Detail })

	api, ok := APIOf[counterAPI](inst)
	if !ok {
		t.Fatal("API should be a counterAPI")
	}
	api.Increment()

	btn := dom.Find(inst.Element, dom.ByTag("button"))
	btn.Click()

	if btn.TextContent() != "12" {
		t.Errorf("button text = %q, want 12", btn.TextContent())
	}
	if detail != 12 {
		t.Errorf("event detail = %v, want 12", detail)
	}
}

func TestDefinePanicsOnInvalidName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Define should panic on an invalid name")
		}
	}()
	Define("", func(*Host, int) (*dom.Node, error) { return nil, nil })
}
