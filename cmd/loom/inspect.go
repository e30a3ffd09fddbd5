package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/inspect"
	"github.com/vango-dev/loom/pkg/metrics"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/snapshot"
)

func inspectCmd(g *globals) *cobra.Command {
	var (
		addr string
		todo []string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the demo application under the inspector",
		Long: `Mount the todo demo in a live document and serve the inspector:
the current tree, a websocket stream of mutations, snapshots and
Prometheus metrics.

Snapshots go to snapshots.s3.bucket when set, otherwise to snapshots.dir.

Examples:
  loom inspect
  loom inspect --addr 127.0.0.1:9000 --todo milk --todo eggs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				g.cfg.Inspector.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runInspect(ctx, cmd, g.cfg, todo)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringArrayVar(&todo, "todo", []string{"Read the docs", "Try loom check"}, "Initial todo (repeatable)")

	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, cfg *config.Config, todos []string) error {
	logger := slog.Default().With("component", "inspect")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))

	rt := reactive.NewRuntime(
		reactive.WithLogger(slog.Default().With("component", "runtime")),
		reactive.WithObserver(collector),
		reactive.WithQueueSize(cfg.Runtime.QueueSize),
		reactive.WithDebug(cfg.Debug),
	)
	defer rt.Close()
	doc := dom.NewDocument()

	store, err := snapshotStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Everything below runs before the loop starts, so it owns the runtime.
	app, err := demo.App.New(rt, doc, demo.NewStore(todos...))
	if err != nil {
		return err
	}
	if err := doc.Body().AppendChild(app.Node()); err != nil {
		return err
	}
	insp := inspect.New(rt, doc,
		inspect.WithStore(store),
		inspect.WithGatherer(reg),
		inspect.WithLogger(logger),
	)

	// The loop outlives ctx so teardown can still run on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- rt.Run(loopCtx) }()

	srv := &http.Server{
		Addr:              cfg.Inspector.Addr,
		Handler:           insp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.ListenAndServe() }()
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m inspector listening on http://%s\n", cfg.Inspector.Addr)

	select {
	case err := <-serveDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	if err := rt.Call(shutdownCtx, func() error {
		insp.Close()
		return app.Uninit()
	}); err != nil {
		logger.Warn("teardown failed", "error", err)
	}
	stopLoop()
	<-loopDone
	return nil
}

func snapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	if !cfg.UsesS3() {
		return snapshot.NewFileStore(cfg.Snapshots.Dir)
	}
	// Credentials and region come from the standard AWS chain: environment,
	// shared config and profiles, then instance roles.
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Snapshots.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Snapshots.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	slog.Default().InfoContext(ctx, "snapshots stored in S3", "bucket", cfg.Snapshots.S3.Bucket, "region", awsCfg.Region)
	return snapshot.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Snapshots.S3.Bucket, cfg.Snapshots.S3.Prefix), nil
}
