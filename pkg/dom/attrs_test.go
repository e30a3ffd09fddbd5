package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributesKeepOrder(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("a")

	el.SetAttribute("href", "/")
	el.SetAttribute("class", "nav")
	el.SetAttribute("href", "/home")

	assert.Equal(t, []Attr{{"href", "/home"}, {"class", "nav"}}, el.Attrs())

	v, ok := el.GetAttribute("class")
	assert.True(t, ok)
	assert.Equal(t, "nav", v)

	el.RemoveAttribute("class")
	assert.False(t, el.HasAttribute("class"))
	el.RemoveAttribute("class")
}

func TestBooleanPropertiesReflect(t *testing.T) {
	doc := NewDocument()
	btn := doc.CreateElement("button")

	btn.SetProperty("disabled", true)
	assert.True(t, btn.HasAttribute("disabled"))
	v, ok := btn.Property("disabled")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	btn.SetProperty("disabled", false)
	assert.False(t, btn.HasAttribute("disabled"))

	assert.True(t, IsBooleanProperty("checked"))
	assert.False(t, IsBooleanProperty("value"))
}

func TestStringPropertiesReflect(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetProperty("className", "card")
	v, _ := el.GetAttribute("class")
	assert.Equal(t, "card", v)

	el.SetProperty("value", "typed")
	assert.False(t, el.HasAttribute("value"), "value is not reflected")
	got, _ := el.Property("value")
	assert.Equal(t, "typed", got)
}
