package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/internal/types"
	"github.com/ishanwen-byte/genevo-go/pkg/config"
	"github.com/ishanwen-byte/genevo-go/pkg/evolver"
	"github.com/ishanwen-byte/genevo-go/pkg/listener"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

const defaultConfigPath = "genevo.yaml"

type runOptions struct {
	configPath     string
	seed           uint64
	logLevel       string
	maxGenerations int
	metricsAddr    string
	resume         bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.Name,
		Short:         constants.Description,
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newRunCmd(), newInitConfigCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve bit strings towards all ones (OneMax)",
		Long: `Run loads the engine configuration, evolves a population of bit strings
whose fitness is the number of set bits and logs the best individual.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runOneMax(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Path to the YAML configuration file")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (0 draws a random one)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	cmd.Flags().IntVar(&opts.maxGenerations, "max-generations", 0, "Stop after this many generations")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Resume from the latest checkpoint")
	return cmd
}

func newInitConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			}
			if err := config.CreateDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// loadConfig reads the configuration file, falling back to the defaults when
// the default path does not exist, then applies the command-line flags.
func loadConfig(cmd *cobra.Command, opts runOptions) (*types.Config, error) {
	manager := config.NewManager()
	if err := manager.Load(opts.configPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
	}

	cfg := manager.GetConfig()
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Engine.Seed = opts.seed
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("max-generations") {
		cfg.Limits.MaxGenerations = opts.maxGenerations
	}
	if flags.Changed("resume") {
		cfg.Checkpoint.Resume = opts.resume
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = opts.metricsAddr
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg types.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == constants.LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// oneMaxProblem scores a genotype by its number of set bits.
func oneMaxProblem(cfg types.ProblemConfig) evolver.Problem[bool] {
	return evolver.Problem[bool]{
		Builder: func(r *rand.Rand) representation.Genotype[bool] {
			chromosomes := make([]representation.Chromosome[bool], cfg.Chromosomes)
			for i := range chromosomes {
				chromosomes[i] = representation.NewBoolChromosome(r, cfg.Genes)
			}
			return representation.NewGenotype(chromosomes...)
		},
		Fitness: func(g representation.Genotype[bool]) (float64, error) {
			n := 0
			for _, b := range g.Flatten() {
				if b {
					n++
				}
			}
			return float64(n), nil
		},
		MutateGene: func(g representation.Gene[bool], _ *rand.Rand) representation.Gene[bool] {
			return g.Duplicate(!g.Value())
		},
	}
}

func runOneMax(ctx context.Context, cfg *types.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cfg.Logging, out)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []evolver.Option[bool]{
		evolver.WithLogger[bool](logger),
		evolver.WithRegisterer[bool](reg),
	}
	stats := listener.NewStats[bool]()
	opts = append(opts, evolver.WithListeners[bool](stats))

	e, closeFn, err := evolver.Assemble(cfg, oneMaxProblem(cfg.Problem), opts...)
	if err != nil {
		return err
	}
	defer closeFn()

	if cfg.Metrics.Enabled && cfg.Metrics.Address != "" {
		srv, err := serveMetrics(cfg.Metrics.Address, reg, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Failed to stop metrics server")
			}
		}()
	}

	state, runErr := e.Run(ctx)

	fields := logrus.Fields{
		"run_id":      e.RunID(),
		"generation":  state.Generation(),
		"evaluations": stats.Evaluations(),
		"elapsed":     stats.Elapsed().Round(time.Millisecond),
	}
	if best, ok := state.Best(); ok {
		fields["best_fitness"] = best.Fitness()
		fields["best"] = best.Genotype().String()
	}
	logger.WithFields(fields).Info("Run summary")
	return runErr
}

// serveMetrics exposes reg on addr/metrics until the returned server is shut
// down. Binding errors are returned before the run starts.
func serveMetrics(addr string, reg *prometheus.Registry, logger *logrus.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger.WithField("addr", ln.Addr().String()).Info("Serving metrics")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	return srv, nil
}
