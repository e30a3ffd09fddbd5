package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	loomerr "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/tmpl"
)

func checkCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Compile template files and report syntax errors",
		Long: `Compile each template file and print every error with its source
context. Exits non-zero when any file fails.

Examples:
  loom check card.html
  loom check templates/*.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			failed := 0
			for _, path := range args {
				t, err := checkFile(path)
				if err != nil {
					failed++
					fmt.Fprintln(errOut, describe(err))
					continue
				}
				fmt.Fprintf(out, "\033[32m✓\033[0m %s (%d holes)\n", path, t.NumHoles())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(args))
			}
			return nil
		},
	}
}

func checkFile(path string) (*tmpl.Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tmpl.Parse(path, string(src))
}

// describe formats coded errors with their source context.
func describe(err error) string {
	var coded *loomerr.Error
	if asCoded(err, &coded) {
		return coded.Format()
	}
	return err.Error()
}

func asCoded(err error, target **loomerr.Error) bool {
	return errors.As(err, target)
}
