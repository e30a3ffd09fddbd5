package reactive

// Context is an implicit, dynamically scoped parameter channel. A value
// provided with Provide is visible to everything called synchronously, at any
// depth, while Provide runs, and to nothing called afterwards.
//
//	var Theme = reactive.NewContext[string]("theme")
//
//	reactive.Provide(rt, Theme, "dark", func() *dom.Node {
//	    return card(rt) // Theme.Get(rt) == "dark"
//	})
type Context[T any] struct {
	id   uint64
	name string
}

// NewContext creates a new context. The name only appears in errors.
func NewContext[T any](name string) *Context[T] {
	return &Context[T]{id: nextID(), name: name}
}

// Name returns the context name.
func (c *Context[T]) Name() string {
	return c.name
}

// Provide makes value the nearest value of c while fn runs, and returns fn's
// result. The previous value is restored when fn returns or panics.
func Provide[T, R any](rt *Runtime, c *Context[T], value T, fn func() R) R {
	rt.contexts[c.id] = append(rt.contexts[c.id], value)
	defer func() {
		stack := rt.contexts[c.id]
		if len(stack) <= 1 {
			delete(rt.contexts, c.id)
			return
		}
		rt.contexts[c.id] = stack[:len(stack)-1]
	}()
	return fn()
}

// Run is Provide for functions without a result.
func (c *Context[T]) Run(rt *Runtime, value T, fn func()) {
	Provide(rt, c, value, func() struct{} {
		fn()
		return struct{}{}
	})
}

// Lookup returns the nearest provided value, if any.
func (c *Context[T]) Lookup(rt *Runtime) (T, bool) {
	stack := rt.contexts[c.id]
	if len(stack) == 0 {
		var zero T
		return zero, false
	}
	v, _ := stack[len(stack)-1].(T)
	return v, true
}

// Get returns the nearest provided value. Calling it outside any Provide for
// c panics with E103.
func (c *Context[T]) Get(rt *Runtime) T {
	v, ok := c.Lookup(rt)
	if !ok {
		misuse("E103", "call "+c.name+".Get inside a Provide for the same context")
	}
	return v
}
