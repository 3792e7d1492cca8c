package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/fiche-dentaire/config"
	"github.com/giygas/fiche-dentaire/export"
	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/handlers"
	"github.com/giygas/fiche-dentaire/health"
	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/registry"
	"github.com/giygas/fiche-dentaire/report"
	"github.com/giygas/fiche-dentaire/scheduler"
	"github.com/giygas/fiche-dentaire/server"
	"github.com/giygas/fiche-dentaire/session"
	"github.com/giygas/fiche-dentaire/validation"
	"github.com/giygas/fiche-dentaire/wizard"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fiche-dentaire",
		Short:        "Dental hygiene intake form and patient report",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("verbose", false, "Log info messages to the console")

	root.AddCommand(serveCmd())
	root.AddCommand(wizardCmd())
	root.AddCommand(renderCmd())
	return root
}

// setup loads the configuration and starts the logger. The console level of
// the interactive commands stays at warnings unless --verbose is given.
func setup(cmd *cobra.Command, interactive bool) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	consoleLevel := logging.GetConsoleLogLevel(cfg.Env, cfg.LogLevel, verbose)
	if interactive && !verbose {
		consoleLevel = max(consoleLevel, slog.LevelWarn)
	}

	err = logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleLevel:   consoleLevel,
		FileLevel:      logging.GetFileLogLevel(),
		Console:        cmd.ErrOrStderr(),
	})
	if err != nil {
		logging.Warn("File logging disabled", "error", err)
	}
	return cfg, nil
}

// drugValidator returns the configured registry, or a nil interface when
// medication lookups are disabled
func drugValidator(cfg *config.Config) (interfaces.DrugValidator, error) {
	v, err := registry.New(registry.Config{
		BaseURL: cfg.RegistryURL,
		APIKey:  cfg.RegistryAPIKey,
		Timeout: cfg.RegistryTimeout,
		Rate:    cfg.RegistryRate,
	})
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer logging.Close()
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	store := session.NewStore(cfg.SessionTTL)
	sweeper := scheduler.NewScheduler(store, cfg.SessionSweepInterval)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	exporter := export.NewExporter(cfg.OutputDir)
	drugs, err := drugValidator(cfg)
	if err != nil {
		return err
	}
	if drugs == nil {
		logging.Warn("REGISTRY_URL not set, medication validation disabled")
	}

	checker := health.NewHealthChecker(store, exporter, cfg.RegistryConfigured())
	h := handlers.NewHTTPHandler(store, exporter, drugs, validation.NewInputValidator(), checker)
	srv := server.NewServer(cfg, h)

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Starting server", "address", cfg.Address, "port", cfg.Port, "env", cfg.Env)
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
		}
		return err
	case sig := <-quit:
		logging.Info("Shutting down server...", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		return err
	}
	logging.Info("Server shutdown complete")
	return nil
}

func wizardCmd() *cobra.Command {
	var opts wizard.Options

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill the intake form in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer logging.Close()

			opts.Exporter = export.NewExporter(cfg.OutputDir)
			if opts.Drugs, err = drugValidator(cfg); err != nil {
				return err
			}
			opts.Out = cmd.OutOrStdout()

			w, err := wizard.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Run(ctx); err != nil {
				if errors.Is(err, wizard.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Formulaire abandonné.")
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Start from an answers file (YAML)")
	cmd.Flags().StringVar(&opts.Save, "save", "", "Save the answers to a YAML file")
	cmd.Flags().BoolVar(&opts.Accessible, "accessible", false, "Plain prompts for screen readers")
	return cmd
}

func renderCmd() *cobra.Command {
	var (
		answersPath string
		format      string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the report of an answers file",
		Example: "  fiche-dentaire render --answers patient.yaml\n" +
			"  fiche-dentaire render --answers patient.yaml --format pdf --out /tmp",
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := renderFormats(format)
			if err != nil {
				return err
			}

			cfg, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer logging.Close()

			if outDir == "" {
				outDir = cfg.OutputDir
			}
			return render(cmd, answersPath, formats, export.NewExporter(outDir))
		},
	}

	cmd.Flags().StringVar(&answersPath, "answers", "", "Answers file (YAML)")
	cmd.Flags().StringVar(&format, "format", "all", "text, pdf, hygiene or all")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR)")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func renderFormats(format string) ([]string, error) {
	if format == "all" {
		return export.Formats, nil
	}
	for _, f := range export.Formats {
		if f == format {
			return []string{f}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
}

func render(cmd *cobra.Command, path string, formats []string, exporter interfaces.Exporter) error {
	answers, err := form.LoadYAML(path)
	if err != nil {
		return err
	}
	answers = form.Prune(answers)
	entries := report.Assemble(answers)

	for _, f := range formats {
		written, err := export.Write(exporter, f, answers, entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), written)
	}
	return nil
}
