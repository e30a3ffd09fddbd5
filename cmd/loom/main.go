package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/config"
	loomerr "github.com/vango-dev/loom/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags and the configuration they resolve to.
type globals struct {
	configPath string
	debug      bool
	noColor    bool

	cfg *config.Config
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		var coded *loomerr.Error
		if asCoded(err, &coded) {
			fmt.Fprintln(os.Stderr, coded.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Tooling for loom reactive DOM templates",
		Long: `loom checks and renders reactive templates and serves a live
inspector for a running document.

Templates are HTML with ${} holes. The CLI compiles them with the same
parser the runtime uses, so a file that passes "loom check" will compile
at run time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default ./loom.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		checkCmd(g),
		renderCmd(g),
		inspectCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// load resolves configuration and installs the default logger.
func (g *globals) load(cmd *cobra.Command, stderr io.Writer) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("debug") {
		overrides["debug"] = g.debug
		if g.debug {
			overrides["log.level"] = "debug"
		}
	}
	cfg, err := config.LoadWith(g.configPath, overrides)
	if err != nil {
		return err
	}
	g.cfg = cfg

	if g.noColor {
		loomerr.DisableColors()
	}

	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
