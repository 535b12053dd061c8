// Package input loads the single payload a parse run works on: either the raw
// bytes of a provider data file or an email message decoded from a file.
package input

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dhcgn/circuit-maintenance-parser/filter"
	"github.com/dhcgn/circuit-maintenance-parser/model"
)

var (
	ErrNoInput          = errors.New("please define either --email-filename or --raw-file")
	ErrConflictingInput = errors.New("--email-filename and --raw-file are mutually exclusive")
	ErrEmptyInput       = errors.New("input file is empty")
	ErrNoMessage        = errors.New("no email message matched the selection filters")
)

// Options names the input files and the patterns used to pick a message out of an mbox archive.
type Options struct {
	RawPath       string
	EmailPath     string
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// Input holds exactly one loaded source.
type Input struct {
	Raw   []byte
	Email *model.Email
}

// Load reads the configured file and returns the loaded input.
func Load(opts Options, logger *slog.Logger) (Input, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	emailPath := strings.TrimSpace(opts.EmailPath)
	rawPath := strings.TrimSpace(opts.RawPath)

	switch {
	case emailPath != "" && rawPath != "":
		return Input{}, ErrConflictingInput
	case emailPath != "":
		email, err := loadEmail(emailPath, opts, logger)
		if err != nil {
			return Input{}, err
		}
		return Input{Email: email}, nil
	case rawPath != "":
		raw, err := readFile(rawPath)
		if err != nil {
			return Input{}, err
		}
		if len(raw) == 0 {
			return Input{}, fmt.Errorf("%s: %w", rawPath, ErrEmptyInput)
		}
		logger.Debug("loaded raw payload", "path", rawPath, "bytes", len(raw))
		return Input{Raw: raw}, nil
	default:
		return Input{}, ErrNoInput
	}
}

func loadEmail(path string, opts Options, logger *slog.Logger) (*model.Email, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}

	f, err := filter.New(filter.Options{
		IncludeHeader: opts.IncludeHeader,
		IncludeBody:   opts.IncludeBody,
		ExcludeHeader: opts.ExcludeHeader,
		ExcludeBody:   opts.ExcludeBody,
	})
	if err != nil {
		return nil, fmt.Errorf("message filter: %w", err)
	}

	if f.Active() {
		logger.Debug("message filter active", "path", path)
	}

	raw := data
	if isMbox(data) {
		raw, err = selectFromMbox(data, f, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else if !f.Allows(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoMessage)
	}

	email, err := Decode(raw, logger)
	if err != nil {
		return nil, fmt.Errorf("decode email %s: %w", path, err)
	}
	logger.Debug("loaded email", "path", path, "parts", len(email.Parts), "defects", len(email.Defects))
	return email, nil
}

// readFile holds the file open only while its content is read.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return data, nil
}
