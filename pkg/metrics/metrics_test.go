package metrics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/render"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func newRuntime(c *Collector, opts ...reactive.Option) *reactive.Runtime {
	opts = append(opts,
		reactive.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		reactive.WithObserver(c),
	)
	return reactive.NewRuntime(opts...)
}

func TestCollectorCountsScopesAndJobs(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	rt := newRuntime(c)
	src := reactive.NewSignal(1)

	life := reactive.WithLifecycle(rt, func() *reactive.Signal[int] {
		reactive.UseCleanup(rt, func() {})
		reactive.UseCleanup(rt, func() {})
		return reactive.Use(rt, src, func(v int) int { return v + 1 })
	})
	if err := src.Set(2); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(3); err != nil {
		t.Fatal(err)
	}
	if err := life.Uninit(); err != nil {
		t.Fatal(err)
	}

	if got := counterValue(t, c.jobs.WithLabelValues("derive")); got != 2 {
		t.Errorf("jobs_total{derive} = %v, want 2", got)
	}
	if got := counterValue(t, c.scopesDisposed); got != 1 {
		t.Errorf("scopes_disposed_total = %v, want 1", got)
	}
	// Two user cleanups plus the derivation's own unsubscribe.
	if got := counterValue(t, c.cleanupsRun); got != 3 {
		t.Errorf("cleanups_run_total = %v, want 3", got)
	}
}

func TestCollectorCountsReconciliation(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	rt := newRuntime(c)
	doc := dom.NewDocument()
	list := reactive.NewSignal(render.Entries(render.KV(1, "a"), render.KV(2, "b")))

	reactive.WithLifecycle(rt, func() error {
		n, err := render.Each(rt, doc, list, func(v string) (*dom.Node, error) {
			return doc.CreateTextNode(v), nil
		})
		if err != nil {
			return err
		}
		return doc.Body().AppendChild(n)
	})
	if err := list.Set(render.Entries(render.KV(2, "b"), render.KV(3, "c"))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		op   string
		want float64
	}{
		{"created", 3},
		{"moved", 0},
		{"removed", 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, c.reconcileNodes.WithLabelValues("each", tt.op)); got != tt.want {
			t.Errorf("reconcile_nodes_total{each,%s} = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestCollectorCountsFailuresAndDrops(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	rt := newRuntime(c, reactive.WithQueueSize(1))
	src := reactive.NewSignal(0)

	reactive.WithLifecycle(rt, func() error {
		reactive.Watch(rt, "binding", []reactive.Source{src}, func() error {
			panic("boom")
		})
		return nil
	})
	if err := rt.Batch(func() { _ = src.Set(1) }); err == nil {
		t.Fatal("expected the panicking job to surface as an error")
	}
	if got := counterValue(t, c.notificationErrors); got != 1 {
		t.Errorf("notification_errors_total = %v, want 1", got)
	}
	if err := src.Set(2); err == nil {
		t.Fatal("expected the panicking job to surface from an unbatched Set")
	}
	if got := counterValue(t, c.notificationErrors); got != 2 {
		t.Errorf("notification_errors_total = %v, want 2", got)
	}

	rt.Dispatch(func() {})
	rt.Dispatch(func() {})
	if got := counterValue(t, c.dispatchDropped); got != 1 {
		t.Errorf("dispatch_dropped_total = %v, want 1", got)
	}

	c.ComponentCreated("Counter")
	if got := counterValue(t, c.componentsCreated.WithLabelValues("Counter")); got != 1 {
		t.Errorf("components_created_total{Counter} = %v, want 1", got)
	}
}

func TestCollectorRegistersUnderNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("app"), WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"doc": "main"}))
	c.DispatchDropped()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "app_ui_dispatch_dropped_total" {
			continue
		}
		found = true
		labels := mf.GetMetric()[0].GetLabel()
		if len(labels) != 1 || labels[0].GetName() != "doc" || labels[0].GetValue() != "main" {
			t.Errorf("labels = %v", labels)
		}
	}
	if !found {
		t.Error("app_ui_dispatch_dropped_total not registered")
	}
}
