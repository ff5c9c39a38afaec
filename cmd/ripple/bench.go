package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/telemetry"
)

func benchCmd() *cobra.Command {
	var (
		configPath  string
		atoms       int
		depth       int
		mutations   int
		batch       int
		metricsAddr string
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive a layered computed graph",
		Long: `Build a graph of atoms, layers of computed values and one reaction
per leaf, then apply random mutations in batches and report timings.

With --metrics-addr the engine metrics stay available on /metrics
(and /healthz answers) until the process is interrupted.

Examples:
  ripple bench
  ripple bench --atoms=1000 --depth=6 --batch=50
  ripple bench --metrics-addr=:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("atoms") {
				cfg.Bench.Atoms = atoms
			}
			if flags.Changed("depth") {
				cfg.Bench.Depth = depth
			}
			if flags.Changed("mutations") {
				cfg.Bench.Mutations = mutations
			}
			if flags.Changed("batch") {
				cfg.Bench.Batch = batch
			}
			if flags.Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if err := validateBench(cfg.Bench); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBench(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, seed)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to ripple.toml")
	cmd.Flags().IntVar(&atoms, "atoms", 0, "Number of atoms (default from ripple.toml)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Computed layers above the atoms (default from ripple.toml)")
	cmd.Flags().IntVar(&mutations, "mutations", 0, "Total atom writes (default from ripple.toml)")
	cmd.Flags().IntVar(&batch, "batch", 0, "Writes per action (default from ripple.toml)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed for mutation order")

	return cmd
}

// validateBench reports bad flag values as CLI errors; the same bounds are
// enforced on the config file by config.Validate.
func validateBench(b config.BenchConfig) error {
	switch {
	case b.Atoms < 1:
		return errors.New("E201").WithField("--atoms").WithDetail("must be at least 1")
	case b.Depth < 0:
		return errors.New("E201").WithField("--depth").WithDetail("must not be negative")
	case b.Mutations < 0:
		return errors.New("E201").WithField("--mutations").WithDetail("must not be negative")
	case b.Batch < 1:
		return errors.New("E201").WithField("--batch").WithDetail("must be at least 1")
	}
	return nil
}

func runBench(ctx context.Context, out, logOut io.Writer, cfg *config.Config, seed uint64) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := telemetry.Prometheus(
		telemetry.WithRegistry(reg),
		telemetry.WithNamespace(cfg.Metrics.Namespace),
	)

	var srv *metricsServer
	if cfg.Metrics.Addr != "" {
		var err error
		srv, err = startMetricsServer(cfg.Metrics.Addr, reg)
		if err != nil {
			return err
		}
		defer srv.shutdown()
		info(out, "Metrics on http://%s/metrics", srv.addr)
	}

	logger := cfg.Log.NewLogger(logOut)
	rt := newRuntime(cfg, logger, metrics)

	b := cfg.Bench
	buildStart := time.Now()
	g := buildGraph(rt, b.Atoms, b.Depth)
	buildTime := time.Since(buildStart)
	defer g.dispose()

	res := g.mutate(b.Mutations, b.Batch, seed)
	if res.Mutations == 0 {
		warn(out, "No mutations requested, only the graph build was measured")
	}

	success(out, "Graph: %d atoms, %d layers, %d reactions (built in %s)", b.Atoms, b.Depth, len(g.reactions), buildTime)
	info(out, "Mutations:     %d in %d batches", res.Mutations, res.Batches)
	info(out, "Reaction runs: %d", res.ReactionRuns)
	info(out, "Total:         %s", res.Duration)
	info(out, "Per mutation:  %s", res.PerMutation())
	info(out, "Checksum:      %d", g.sum())

	if srv == nil {
		return nil
	}
	info(out, "Press Ctrl+C to stop")
	select {
	case <-ctx.Done():
		return nil
	case err := <-srv.errCh:
		return errors.New("E202").Wrap(err)
	}
}

type metricsServer struct {
	addr  string
	http  *http.Server
	errCh chan error
}

func newMetricsRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return r
}

func startMetricsServer(addr string, reg *prometheus.Registry) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New("E202").WithField(addr).Wrap(err)
	}
	s := &metricsServer{
		addr:  ln.Addr().String(),
		http:  &http.Server{Handler: newMetricsRouter(reg), ReadHeaderTimeout: 5 * time.Second},
		errCh: make(chan error, 1),
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()
	return s, nil
}

func (s *metricsServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.http.Shutdown(ctx)
}
