package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dhcgn/circuit-maintenance-parser/output"
	"github.com/dhcgn/circuit-maintenance-parser/provider"
)

// ErrUsage marks errors caused by invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// ParserEnv names the environment variable consulted when --parser is not given.
const ParserEnv = "CMP_PARSER"

// Config captures all command-line options of a parse run.
type Config struct {
	RawPath       string
	EmailPath     string
	ProviderType  provider.Type
	Verbosity     int
	Format        output.Format
	NoColor       bool
	LogDir        string
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// LogLevel maps the verbosity count onto a slog level, starting at warn and
// lowering the threshold one step per occurrence.
func (c Config) LogLevel() slog.Level {
	return LevelForVerbosity(c.Verbosity)
}

func LevelForVerbosity(verbosity int) slog.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	return slog.LevelWarn - slog.Level(4*verbosity)
}

func providerTokens() string {
	types := provider.Types()
	tokens := make([]string, 0, len(types))
	for _, t := range types {
		tokens = append(tokens, string(t))
	}
	return strings.Join(tokens, ", ")
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("raw-file", "", "Path to a raw provider data file (e.g. an iCalendar file)")
	flags.String("email-filename", "", "Path to an email message or mbox archive")
	flags.String("parser", string(provider.DefaultType),
		fmt.Sprintf("Provider parser to use: %s (falls back to %s env var)", providerTokens(), ParserEnv))
	flags.CountP("verbose", "v", "Increase log verbosity, may be repeated")
	flags.String("format", string(output.FormatJSON), "Output format: json, yaml")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-dir", "", "Also write logs to a timestamped file in this directory")
	flags.StringArray("include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")

	if err := cmd.MarkFlagFilename("raw-file"); err != nil {
		return err
	}
	return cmd.MarkFlagFilename("email-filename", "eml", "mbox", "msg", "txt")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	return FromFlags(cmd.Flags())
}

// FromFlags reads a Config from a parsed flag set carrying the flags of RegisterFlags.
func FromFlags(flags *pflag.FlagSet) (Config, error) {
	rawPath, err := flags.GetString("raw-file")
	if err != nil {
		return Config{}, err
	}
	emailPath, err := flags.GetString("email-filename")
	if err != nil {
		return Config{}, err
	}
	parserType, err := flags.GetString("parser")
	if err != nil {
		return Config{}, err
	}
	verbosity, err := flags.GetCount("verbose")
	if err != nil {
		return Config{}, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return Config{}, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	includeHeader, err := flags.GetStringArray("include-header")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeHeader, err := flags.GetStringArray("exclude-header")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	if !flags.Changed("parser") {
		if env := strings.TrimSpace(os.Getenv(ParserEnv)); env != "" {
			parserType = env
		}
	}

	outputFormat, err := output.ParseFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: --format: %w", ErrUsage, err)
	}

	if logDir != "" {
		logDir = filepath.Clean(logDir)
	}

	cfg := Config{
		RawPath:       strings.TrimSpace(rawPath),
		EmailPath:     strings.TrimSpace(emailPath),
		ProviderType:  provider.Type(strings.TrimSpace(parserType)),
		Verbosity:     verbosity,
		Format:        outputFormat,
		NoColor:       noColor,
		LogDir:        logDir,
		IncludeHeader: includeHeader,
		IncludeBody:   includeBody,
		ExcludeHeader: excludeHeader,
		ExcludeBody:   excludeBody,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if _, ok := provider.Lookup(cfg.ProviderType); !ok {
		return fmt.Errorf("%w: invalid --parser %q, choose from: %s", ErrUsage, cfg.ProviderType, providerTokens())
	}
	includeActive := len(cfg.IncludeHeader) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeHeader) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("%w: include and exclude flags are mutually exclusive", ErrUsage)
	}
	return nil
}
