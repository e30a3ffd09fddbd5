package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// debounceDelay groups the burst of events editors emit for one save.
const debounceDelay = 50 * time.Millisecond

func renderCmd(g *globals) *cobra.Command {
	var (
		holes []string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a template file to HTML",
		Long: `Execute a template file with static string holes and print the
resulting markup. Holes are filled in order from --hole flags.

Examples:
  loom render greeting.html --hole Ada
  loom render card.html --hole title --hole body --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			if !watch {
				return renderFile(out, g, path, holes)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchFile(ctx, out, cmd.ErrOrStderr(), g, path, holes)
		},
	}

	cmd.Flags().StringArrayVar(&holes, "hole", nil, "Value for the next hole (repeatable)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the file changes")

	return cmd
}

func renderFile(out io.Writer, g *globals, path string, holes []string) error {
	t, err := checkFile(path)
	if err != nil {
		return err
	}
	values := make([]any, len(holes))
	for i, h := range holes {
		values[i] = h
	}

	rt := reactive.NewRuntime(
		reactive.WithLogger(slog.Default().With("component", "render")),
		reactive.WithDebug(g.cfg.Debug),
	)
	defer rt.Close()

	// A scope is needed only for reactive holes, but keeps teardown uniform.
	life, err := reactive.WithLifecycleErr(rt, func() (*dom.Node, error) {
		return t.Execute(rt, dom.NewDocument(), values...)
	})
	if err != nil {
		return err
	}
	defer life.Uninit()

	switch {
	case life.Value == nil:
		return writeLine(out, "")
	case life.Value.Kind() == dom.KindFragment:
		return writeLine(out, dom.InnerHTML(life.Value))
	default:
		return writeLine(out, dom.OuterHTML(life.Value))
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

// watchFile renders path, then again after every change until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file on save are followed.
func watchFile(ctx context.Context, out, errOut io.Writer, g *globals, path string, holes []string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger := slog.Default().With("component", "watch")
	render := func() {
		if err := renderFile(out, g, path, holes); err != nil {
			fmt.Fprintln(errOut, describe(err))
		}
	}
	render()

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			logger.Debug("template changed", "path", path)
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
