package loomtest_test

import (
	"testing"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/loomtest"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/tmpl"
)

func TestMountAppendsToBodyAndTearsDown(t *testing.T) {
	count := reactive.NewSignal(1)

	t.Run("mounted", func(t *testing.T) {
		env := loomtest.NewEnv(t)
		node := env.Mount(func() (*dom.Node, error) {
			return tmpl.HTML(env.RT, env.Doc, `<p class="n">${}</p>`, count)
		})

		loomtest.ExpectContains(t, node, "<p")
		loomtest.ExpectAttribute(t, node, "class", "n")
		loomtest.ExpectElement(t, node, "p")
		if got := env.HTML(); got != `<p class="n">1</p>` {
			t.Errorf("HTML() = %s", got)
		}
		if count.SubscriberCount() != 1 {
			t.Errorf("SubscriberCount = %d, want 1", count.SubscriberCount())
		}
	})

	// The subtest's cleanup disposed the mount.
	if count.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d after teardown, want 0", count.SubscriberCount())
	}
}

func TestRenderToStringFragment(t *testing.T) {
	env := loomtest.NewEnv(t)
	node := tmpl.MustHTML(env.RT, env.Doc, `<a></a><b>x</b>`)
	if got := loomtest.RenderToString(node); got != "<a></a><b>x</b>" {
		t.Errorf("RenderToString = %s", got)
	}
	if loomtest.RenderToString(nil) != "" {
		t.Error("nil should render empty")
	}
	loomtest.ExpectNotContains(t, node, "<i>")
}

func TestClickAndRecorder(t *testing.T) {
	env := loomtest.NewEnv(t)
	clicks := reactive.NewSignal(0)
	node := env.Mount(func() (*dom.Node, error) {
		label := reactive.Use(env.RT, clicks, func(n int) int { return n * 10 })
		return tmpl.HTML(env.RT, env.Doc, `<button onclick=${}>${}</button>`,
			func() { clicks.Update(func(n int) int { return n + 1 }) }, label)
	})

	loomtest.Click(t, node, "button")
	loomtest.Click(t, node, "button")
	loomtest.ExpectContains(t, node, ">20<")
	if env.Recorder.Jobs["derive"] != 2 {
		t.Errorf("derive jobs = %d, want 2", env.Recorder.Jobs["derive"])
	}
}
