package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/internal/config"
	"github.com/3leaps/nimbusview/internal/metrics"
	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/internal/server"
	"github.com/3leaps/nimbusview/internal/server/handlers"
	"github.com/3leaps/nimbusview/pkg/cdn"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/snapshot"
	"github.com/3leaps/nimbusview/pkg/source"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web listing browser",
	Long: `Start the HTTP server that renders a listing as a browsable folder tree.

The complete flat listing is fetched once, asynchronously, at startup.
The browse page shows a loading view until the fetch resolves and an
empty view if it fails; navigating between folders never triggers
another fetch.

Examples:
  nimbusview serve --source https://cdn.example.com/index.json
  nimbusview serve --source s3://my-bucket/data/ --region us-east-1
  nimbusview serve --manifest view.yaml --port 8080`,
	RunE: runServe,
}

var (
	serveSource     string
	serveSourceKind string
	serveManifest   string
	serveHost       string
	servePort       int
	serveRegion     string
	serveProfile    string
	serveEndpoint   string
	serveCDNBase    string
	serveTitle      string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveSource, "source", "s", "", "Listing source URI (https://.../index.json | s3://bucket/prefix | file:///dir)")
	serveCmd.Flags().StringVar(&serveSourceKind, "source-kind", "", "Source kind for bare --source values (http|s3|file)")
	serveCmd.Flags().StringVarP(&serveManifest, "manifest", "m", "", "Path to view manifest (yaml or json)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Bind port (overrides config)")
	serveCmd.Flags().StringVar(&serveRegion, "region", "", "AWS region for s3 sources")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "AWS credential profile for s3 sources")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Custom endpoint URL for S3-compatible stores")
	serveCmd.Flags().StringVar(&serveCDNBase, "cdn-base", "", "Base URL for outbound file links")
	serveCmd.Flags().StringVar(&serveTitle, "title", "", "Browse page title")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	overrides := map[string]any{}
	if cmd.Flags().Changed("host") {
		overrides["server.host"] = serveHost
	}
	if cmd.Flags().Changed("port") {
		overrides["server.port"] = servePort
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		overrides["logging.level"] = viper.GetString("logging.level")
	}
	if rootCmd.PersistentFlags().Changed("log-profile") {
		overrides["logging.profile"] = viper.GetString("logging.profile")
	}

	cfg, err := config.Load(ctx, overrides)
	if err != nil {
		observability.CLILogger.Error("Invalid configuration", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}

	// The pre-run logger only saw flags and environment; rebuild it with
	// the file layering applied.
	if err := observability.Init(observability.Config{Level: cfg.Logging.Level, Profile: cfg.Logging.Profile}); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
	}

	spec, err := resolveViewSpec(serveManifest, serveSource, serveSourceKind,
		serveRegion, serveProfile, serveEndpoint, serveCDNBase, serveTitle, nil, nil)
	if err != nil {
		observability.CLILogger.Error("Invalid view configuration", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid view configuration", err)
	}

	matcher, err := match.New(match.Config{Includes: spec.Includes, Excludes: spec.Excludes})
	if err != nil {
		observability.CLILogger.Error("Invalid match patterns", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid match patterns", err)
	}

	src, err := buildSource(ctx, spec)
	if err != nil {
		observability.CLILogger.Error("Failed to create listing source", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to create listing source", err)
	}

	var listSrc source.Source = metricsSource{src: src, kind: string(spec.URI.Kind)}
	if !matcher.Empty() {
		listSrc = filterSource{src: listSrc, matcher: matcher}
	}

	var links *cdn.Links
	if spec.CDNBase != "" {
		links, err = cdn.New(spec.CDNBase)
		if err != nil {
			observability.CLILogger.Error("Invalid CDN base URL", zap.Error(err))
			return exitError(foundry.ExitInvalidArgument, "Invalid CDN base URL", err)
		}
	}

	store := snapshot.NewStore(listSrc, observability.ServerLogger)

	handlers.InitHealthManager(versionInfo.Version)
	handlers.GetHealthManager().RegisterChecker("snapshot", snapshotHealthChecker{store: store})

	title := spec.Title
	if title == "" {
		title = src.String()
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port,
		server.WithSnapshot(store),
		server.WithCDN(links),
		server.WithTitle(title),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithHealthEnabled(cfg.Health.Enabled),
	)

	metrics.SetSnapshotState(snapshot.StatePending.String())
	go loadSnapshot(ctx, store)

	if cfg.Metrics.Enabled {
		go runMetricsServer(ctx, cfg)
	}

	observability.CLILogger.Info("Starting server",
		zap.String("addr", srv.Addr()),
		zap.String("source", src.String()))

	if err := srv.Run(ctx); err != nil {
		observability.CLILogger.Error("Server failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}

// snapshotHealthChecker reports the listing snapshot state as a health
// check. Pending and failed snapshots degrade the probe rather than fail
// it: the server intentionally keeps serving the loading and empty views
// in those states.
type snapshotHealthChecker struct {
	store *snapshot.Store
}

func (c snapshotHealthChecker) CheckHealth(ctx context.Context) error {
	switch c.store.State() {
	case snapshot.StateLoaded:
		return nil
	case snapshot.StateFailed:
		return fmt.Errorf("%w: listing fetch failed", handlers.ErrDegraded)
	default:
		return fmt.Errorf("%w: listing fetch pending", handlers.ErrDegraded)
	}
}

// metricsSource records fetch outcome metrics around the underlying
// listing call.
type metricsSource struct {
	src  source.Source
	kind string
}

func (m metricsSource) List(ctx context.Context) ([]source.Object, error) {
	start := time.Now()
	objects, err := m.src.List(ctx)
	metrics.RecordSourceFetch(m.kind, time.Since(start), err == nil)
	return objects, err
}

func (m metricsSource) String() string { return m.src.String() }

// filterSource drops keys the view's match patterns reject before they
// reach the snapshot, so manifest filters apply to every page and API
// response without per-request work.
type filterSource struct {
	src     source.Source
	matcher *match.Matcher
}

func (f filterSource) List(ctx context.Context) ([]source.Object, error) {
	objects, err := f.src.List(ctx)
	if err != nil {
		return nil, err
	}

	kept := objects[:0]
	for _, obj := range objects {
		if f.matcher.Match(obj.Key) {
			kept = append(kept, obj)
		}
	}
	return kept, nil
}

func (f filterSource) String() string { return f.src.String() }

// loadSnapshot drives the one-shot listing fetch and records the outcome
// in the process metrics.
func loadSnapshot(ctx context.Context, store *snapshot.Store) {
	start := time.Now()
	err := store.Load(ctx)
	metrics.RecordSnapshotLoad(time.Since(start), err == nil)
	metrics.SetSnapshotState(store.State().String())
	metrics.SetSnapshotObjects(store.Len())
	metrics.SetSnapshotBytes(store.Bytes())
}

// runMetricsServer serves the Prometheus exposition endpoint on the
// metrics port, plus the pprof handlers when enabled. It shuts down when
// the command context is cancelled.
func runMetricsServer(ctx context.Context, cfg *config.Config) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if cfg.Debug.PprofEnabled {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              cfg.Metrics.Addr(cfg.Server.Host),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	observability.ServerLogger.Info("metrics listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		observability.ServerLogger.Error("metrics server failed", zap.Error(err))
	}
}
