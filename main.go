package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhcgn/circuit-maintenance-parser/cmd"
	"github.com/dhcgn/circuit-maintenance-parser/config"
	"github.com/dhcgn/circuit-maintenance-parser/filter"
	"github.com/dhcgn/circuit-maintenance-parser/input"
	"github.com/dhcgn/circuit-maintenance-parser/output"
	"github.com/dhcgn/circuit-maintenance-parser/provider"
	"github.com/dhcgn/circuit-maintenance-parser/stats"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	rootCmd, err := newRootCmd(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to register CLI flags: %v\n", err)
		return exitError
	}
	rootCmd.SetArgs(args)
	return report(rootCmd.Execute(), stderr)
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "circuit-maintenance-parser",
		Short: "Parse circuit maintenance notifications into structured records",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return fmt.Errorf("%w: %w", config.ErrUsage, err)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg, stderr)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting circuit-maintenance-parser", "parser", cfg.ProviderType, "email", cfg.EmailPath, "raw", cfg.RawPath)

			return run(cfg, stdout, logger)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrUsage, err)
	})

	if err := config.RegisterFlags(rootCmd); err != nil {
		return nil, err
	}
	rootCmd.AddCommand(cmd.NewProvidersCmd())

	return rootCmd, nil
}

func run(cfg config.Config, stdout io.Writer, logger *slog.Logger) error {
	in, err := input.Load(input.Options{
		RawPath:       cfg.RawPath,
		EmailPath:     cfg.EmailPath,
		IncludeHeader: cfg.IncludeHeader,
		IncludeBody:   cfg.IncludeBody,
		ExcludeHeader: cfg.ExcludeHeader,
		ExcludeBody:   cfg.ExcludeBody,
	}, logger)
	if err != nil {
		return err
	}

	collector := stats.NewCollector()
	defer collector.Report(logger)

	p, err := provider.Init(provider.Request{
		Email:  in.Email,
		Raw:    in.Raw,
		Type:   cfg.ProviderType,
		Logger: logger,
		Stats:  collector,
	})
	if err != nil {
		return err
	}
	logger.Debug("provider ready", "provider", p.Type(), "dataParts", len(p.DataParts()))

	notifications, err := p.Process()
	if err != nil {
		return err
	}

	printer := output.NewPrinter(stdout, cfg.Format, output.ColorEnabled(stdout, cfg.NoColor))
	return printer.Print(notifications)
}

// report renders err on stderr and returns the process exit code.
func report(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var (
		unsupported *provider.UnsupportedError
		parsing     *provider.ParsingError
	)
	switch {
	case errors.As(err, &unsupported):
		fmt.Fprintln(stderr, unsupported.Error())
		return exitError
	case errors.As(err, &parsing):
		fmt.Fprintf(stderr, "Parsing failed: %s\n", parsing.Error())
		return exitError
	case isUsage(err):
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

func isUsage(err error) bool {
	return errors.Is(err, config.ErrUsage) ||
		errors.Is(err, input.ErrNoInput) ||
		errors.Is(err, input.ErrConflictingInput) ||
		errors.Is(err, filter.ErrModeConflict)
}

func setupLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel())

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("circuit-maintenance-parser-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(stderr, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(stderr, opts)
	return slog.New(handler), cleanup, nil
}
