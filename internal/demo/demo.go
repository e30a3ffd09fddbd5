// Package demo is a small todo application built on loom's public API. The
// inspect command serves it, and its tests exercise the packages end to end.
package demo

import (
	"slices"
	"strconv"

	"github.com/vango-dev/loom/pkg/component"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/render"
)

// Filter selects which todos the list shows.
type Filter int

const (
	All Filter = iota
	Active
	Completed
)

// Todo is one item. Done is reactive so an item re-renders in place.
type Todo struct {
	ID    int
	Title string
	Done  *reactive.Signal[bool]
}

// Store holds the application state.
type Store struct {
	todos  *reactive.Signal[[]*Todo]
	filter *reactive.Signal[Filter]
	nextID int
}

// NewStore returns a store holding one todo per title.
func NewStore(titles ...string) *Store {
	s := &Store{
		todos:  reactive.NewSignal[[]*Todo](nil),
		filter: reactive.NewSignal(All),
	}
	for _, title := range titles {
		s.todos.Set(append(s.todos.Get(), s.newTodo(title)))
	}
	return s
}

func (s *Store) newTodo(title string) *Todo {
	s.nextID++
	return &Todo{ID: s.nextID, Title: title, Done: reactive.NewSignal(false)}
}

// Todos returns the todo list signal.
func (s *Store) Todos() *reactive.Signal[[]*Todo] { return s.todos }

// Filter returns the filter signal.
func (s *Store) Filter() *reactive.Signal[Filter] { return s.filter }

// Add appends a todo and returns its ID.
func (s *Store) Add(title string) (int, error) {
	t := s.newTodo(title)
	return t.ID, s.todos.Set(append(slices.Clone(s.todos.Get()), t))
}

// Remove deletes the todo with id.
func (s *Store) Remove(id int) error {
	return s.todos.Set(slices.DeleteFunc(slices.Clone(s.todos.Get()), func(t *Todo) bool {
		return t.ID == id
	}))
}

// Toggle flips the todo with id. The list is re-published so filtered views
// and counters recompute.
func (s *Store) Toggle(id int) error {
	for _, t := range s.todos.Get() {
		if t.ID == id {
			if err := t.Done.Set(!t.Done.Get()); err != nil {
				return err
			}
			return s.todos.Set(s.todos.Get())
		}
	}
	return nil
}

// ClearCompleted removes every finished todo.
func (s *Store) ClearCompleted() error {
	return s.todos.Set(slices.DeleteFunc(slices.Clone(s.todos.Get()), func(t *Todo) bool {
		return t.Done.Get()
	}))
}

// Reverse reverses the list order.
func (s *Store) Reverse() error {
	todos := slices.Clone(s.todos.Get())
	slices.Reverse(todos)
	return s.todos.Set(todos)
}

// StoreContext carries the store to components created during setup.
var StoreContext = reactive.NewContext[*Store]("demo.store")

func remaining(todos []*Todo) int {
	n := 0
	for _, t := range todos {
		if !t.Done.Get() {
			n++
		}
	}
	return n
}

func visible(todos []*Todo, f Filter) []render.Entry[int, *Todo] {
	var out []render.Entry[int, *Todo]
	for _, t := range todos {
		if f == All || (f == Active) != t.Done.Get() {
			out = append(out, render.KV(t.ID, t))
		}
	}
	return out
}

// Item renders one todo.
var Item = component.Define("TodoItem", func(h *component.Host, t *Todo) (*dom.Node, error) {
	rt := h.Runtime()
	store := StoreContext.Get(rt)
	class := reactive.Use(rt, t.Done, func(done bool) string {
		if done {
			return "done"
		}
		return "open"
	})
	return h.HTML(`<li class="todo ${}">`+
		`<input type="checkbox" checked=${} onclick=${}>`+
		`<span>${}</span>`+
		`<button class="remove" onclick=${}>x</button>`+
		`</li>`,
		class,
		t.Done,
		func() { store.Toggle(t.ID) },
		t.Title,
		func() { h.Emit("remove", t.ID) },
	)
})

// Stats renders the remaining-count line.
var Stats = component.Define("TodoStats", func(h *component.Host, _ struct{}) (*dom.Node, error) {
	rt := h.Runtime()
	store := StoreContext.Get(rt)
	left := reactive.Use(rt, store.todos, func(todos []*Todo) string {
		n := remaining(todos)
		if n == 1 {
			return "1 item left"
		}
		return strconv.Itoa(n) + " items left"
	})
	return h.HTML(`<span class="count">${}</span>`, left)
})

// App is the whole application. Props is the store it renders.
var App = component.Define("TodoApp", func(h *component.Host, store *Store) (*dom.Node, error) {
	rt, doc := h.Runtime(), h.Document()
	reactive.UseCleanup(rt, func() {
		rt.Logger().Debug("todo app unmounted")
	})

	return reactive.Provide(rt, StoreContext, store, func() appResult {
		entries := reactive.Use2(rt, store.todos, store.filter, visible)
		empty := reactive.Use(rt, store.todos, func(todos []*Todo) bool { return len(todos) == 0 })
		allDone := reactive.Use(rt, store.todos, func(todos []*Todo) bool {
			return len(todos) > 0 && remaining(todos) == 0
		})
		anyDone := reactive.Use(rt, store.todos, func(todos []*Todo) bool {
			return len(todos) > remaining(todos)
		})

		list, err := render.Each(rt, doc, entries, func(t *Todo) (*dom.Node, error) {
			// Later renders run outside the Provide, so re-provide the store.
			return reactive.Provide(rt, StoreContext, store, func() appResult {
				inst, err := Item.New(rt, doc, t)
				if err != nil {
					return appResult{err: err}
				}
				return appResult{node: inst.Node()}
			}).unwrap()
		})
		if err != nil {
			return appResult{err: err}
		}

		status, err := render.Choice(rt, doc, []render.Branch{
			{When: empty, Render: func() (*dom.Node, error) {
				return h.HTML(`<p class="status">Nothing to do</p>`)
			}},
			{When: allDone, Render: func() (*dom.Node, error) {
				return h.HTML(`<p class="status">All done</p>`)
			}},
		})
		if err != nil {
			return appResult{err: err}
		}

		clear, err := render.If(rt, doc, anyDone, func() (*dom.Node, error) {
			return h.HTML(`<button class="clear" onclick=${}>Clear completed</button>`,
				func() { store.ClearCompleted() })
		})
		if err != nil {
			return appResult{err: err}
		}

		stats, err := Stats.New(rt, doc, struct{}{})
		if err != nil {
			return appResult{err: err}
		}

		node, err := h.HTML(`<section class="todoapp">`+
			`<ul ${}>${}</ul>${}<footer>${}${}</footer>`+
			`</section>`,
			func(ul *dom.Node) {
				ul.SetHandler("onremove", func(e *dom.Event) {
					if id, ok := e.Detail.(int); ok {
						store.Remove(id)
					}
				})
			},
			list, status, stats.Node(), clear,
		)
		return appResult{node: node, err: err}
	}).unwrap()
})

type appResult struct {
	node *dom.Node
	err  error
}

func (r appResult) unwrap() (*dom.Node, error) { return r.node, r.err }
