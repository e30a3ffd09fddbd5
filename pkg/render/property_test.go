//go:build property
// +build property

package render

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

func distinct(keys []int) []Entry[int, int] {
	seen := map[int]bool{}
	var out []Entry[int, int]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, KV(k, k))
		}
	}
	return out
}

// TestEachProperties checks keyed reconciliation over generated list pairs.
func TestEachProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("dom order follows keys and survivors are never rebuilt", prop.ForAll(
		func(before, after []int) bool {
			rt, doc, _ := newEnv()
			list := reactive.NewSignal(distinct(before))
			cleanups := map[int]int{}
			renders := map[int]int{}
			div := doc.CreateElement("div")

			life := reactive.WithLifecycle(rt, func() error {
				n, err := Each(rt, doc, list, func(k int) (*dom.Node, error) {
					renders[k]++
					reactive.UseCleanup(rt, func() { cleanups[k]++ })
					return doc.CreateTextNode(strconv.Itoa(k) + ","), nil
				})
				if err != nil {
					return err
				}
				return div.AppendChild(n)
			})
			if life.Value != nil {
				return false
			}

			next := distinct(after)
			if err := list.Set(next); err != nil {
				return false
			}

			var want strings.Builder
			kept := map[int]bool{}
			for _, e := range next {
				want.WriteString(strconv.Itoa(e.Key) + ",")
				kept[e.Key] = true
			}
			if div.TextContent() != want.String() {
				return false
			}
			for _, e := range distinct(before) {
				if kept[e.Key] && (cleanups[e.Key] != 0 || renders[e.Key] != 1) {
					return false
				}
				if !kept[e.Key] && cleanups[e.Key] != 1 {
					return false
				}
			}
			return life.Uninit() == nil
		},
		gen.SliceOf(gen.IntRange(0, 12)),
		gen.SliceOf(gen.IntRange(0, 12)),
	))

	properties.Property("a reversal moves all but one survivor", prop.ForAll(
		func(n int) bool {
			rt, doc, _ := newEnv()
			keys := make([]int, n)
			for i := range keys {
				keys[i] = i
			}
			list := reactive.NewSignal(distinct(keys))
			div := doc.CreateElement("div")
			reactive.WithLifecycle(rt, func() error {
				node, err := Each(rt, doc, list, func(k int) (*dom.Node, error) {
					return doc.CreateTextNode(strconv.Itoa(k)), nil
				})
				if err != nil {
					return err
				}
				return div.AppendChild(node)
			})

			reversed := make([]int, n)
			for i := range keys {
				reversed[n-1-i] = keys[i]
			}
			doc.ResetStats()
			if err := list.Set(distinct(reversed)); err != nil {
				return false
			}
			return doc.Stats().Moved == n-1
		},
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
