package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"a3kd/internal/api"
	"a3kd/internal/api/middleware"
	"a3kd/internal/cli"
	"a3kd/internal/config"
	"a3kd/internal/logging"
	"a3kd/internal/telemetry"
	"a3kd/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	metricsNamespace = "a3kd"
	metricsSubsystem = "client"
)

// env is what the persistent pre-run builds for every command.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	logFile  io.Closer
	client   api.Client
	registry *prometheus.Registry
	shutdown telemetry.ShutdownFunc
}

func (e *env) close(ctx context.Context) {
	if e.shutdown != nil && e.logger != nil {
		if err := e.shutdown(ctx); err != nil {
			e.logger.Error("error shutting down tracer provider", slog.Any("error", err))
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var e env
	err := newRootCmd(&e).ExecuteContext(ctx)
	e.close(context.WithoutCancel(ctx))
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	var (
		files  config.Files
		apiURL string
	)

	rootCmd := &cobra.Command{
		Use:           "a3kd",
		Short:         "A3KD experiment console",
		Long:          `a3kd launches and monitors knowledge distillation search experiments. Without a subcommand it opens the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(files, apiURL)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				return err
			}
			e.cfg = cfg

			// The console owns the terminal, so it logs to a file.
			var w io.Writer = cmd.ErrOrStderr()
			if !cmd.HasParent() {
				f, err := logging.OpenFile(cfg.LogFile)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					return err
				}
				e.logFile = f
				w = f
			}
			if e.logger, err = logging.New(w, cfg.LogLevel); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				return err
			}
			slog.SetDefault(e.logger)

			tp, shutdown, err := telemetry.NewTracerProvider(cmd.Context(), cfg.OTLPEndpoint, cfg.ServiceName)
			if err != nil {
				e.logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))
				return err
			}
			e.shutdown = shutdown

			counter, latency, reg := telemetry.MakeMetrics(metricsNamespace, metricsSubsystem)
			e.registry = reg

			var client api.Client = api.NewHTTPClient(api.Config{
				BaseURL:         cfg.APIBaseURL,
				Timeout:         cfg.RequestTimeout,
				TLSVerification: cfg.TLSVerification,
			})
			client = middleware.Logging(e.logger, client)
			client = middleware.Tracing(tp.Tracer(telemetry.TracerName), client)
			client = middleware.Metrics(counter, latency, client)
			e.client = client
			cli.SetClient(client)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd.Context(), e)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&files.Config, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&files.DotEnv, "env-file", ".env", "dotenv file, ignored when missing")
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "u", "", "service base URL (overrides config)")

	rootCmd.AddCommand(
		cli.NewExperimentsCmd(),
		cli.NewModelsCmd(),
		cli.NewHealthCmd(),
	)
	return rootCmd
}

// loadConfig layers the --api-url flag over config.Load.
func loadConfig(files config.Files, apiURL string) (config.Config, error) {
	cfg, err := config.Load(files)
	if err != nil {
		return config.Config{}, err
	}
	if apiURL == "" {
		return cfg, nil
	}
	cfg.APIBaseURL = apiURL
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// runConsole runs the TUI, plus the metrics endpoint when configured, until
// the program exits or ctx is cancelled.
func runConsole(ctx context.Context, e *env) error {
	model := ui.NewAppModel(ui.Options{
		Client:          e.client,
		Logger:          e.logger,
		BaseURL:         e.cfg.APIBaseURL,
		RefreshInterval: e.cfg.RefreshInterval,
		RequestTimeout:  e.cfg.RequestTimeout,
	})
	defer model.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(model.AsTeaModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		// Quitting the console stops the metrics server too.
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("console: %w", err)
		}
		return nil
	})

	if e.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return telemetry.Serve(ctx, e.cfg.MetricsAddr, telemetry.Handler(e.registry), e.logger)
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Error("console exited with error", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
