package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchBubbles(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("button")
	require.NoError(t, outer.AppendChild(inner))

	var path []string
	inner.SetHandler("onclick", func(e *Event) {
		path = append(path, "inner")
		assert.Equal(t, inner, e.CurrentTarget)
	})
	outer.SetHandler("click", func(e *Event) {
		path = append(path, "outer")
		assert.Equal(t, inner, e.Target)
	})

	assert.True(t, inner.Click())
	assert.Equal(t, []string{"inner", "outer"}, path)
}

func TestDispatchStopAndPrevent(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("form")
	inner := doc.CreateElement("button")
	require.NoError(t, outer.AppendChild(inner))

	reached := false
	inner.SetHandler("submit", func(e *Event) {
		e.StopPropagation()
		e.PreventDefault()
	})
	outer.SetHandler("submit", func(*Event) { reached = true })

	assert.False(t, inner.Dispatch(NewEvent("submit")))
	assert.False(t, reached)
}

func TestHandlerSlotReplacedAndCleared(t *testing.T) {
	doc := NewDocument()
	btn := doc.CreateElement("button")
	calls := ""

	btn.SetHandler("click", func(*Event) { calls += "a" })
	btn.SetHandler("onclick", func(*Event) { calls += "b" })
	btn.Click()
	btn.SetHandler("click", nil)
	btn.Click()

	assert.Equal(t, "b", calls)
	assert.Nil(t, btn.Handler("click"))
}

func TestDispatchCrossesShadowBoundary(t *testing.T) {
	doc := NewDocument()
	host := doc.CreateElement("x-toggle")
	root, err := host.AttachShadow(ShadowClosed)
	require.NoError(t, err)
	btn := doc.CreateElement("button")
	require.NoError(t, root.AppendChild(btn))
	require.NoError(t, doc.Body().AppendChild(host))

	var target *Node
	doc.Body().SetHandler("click", func(e *Event) { target = e.Target })
	btn.Click()

	assert.Equal(t, host, target, "target is retargeted to the host")
}

func TestShadowRootAttachOnce(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("x-el")

	root, err := el.AttachShadow(ShadowClosed)
	require.NoError(t, err)
	assert.Equal(t, el, root.Host())
	assert.Nil(t, el.ShadowRoot(), "closed roots are hidden")
	assert.True(t, el.HasShadowRoot())

	_, err = el.AttachShadow(ShadowOpen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E402")

	open := doc.CreateElement("x-open")
	r2, err := open.AttachShadow(ShadowOpen)
	require.NoError(t, err)
	assert.Equal(t, r2, open.ShadowRoot())

	_, err = doc.CreateTextNode("x").AttachShadow(ShadowOpen)
	assert.ErrorIs(t, err, ErrHierarchy)
}
