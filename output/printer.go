// Package output renders parsed notifications for the terminal.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a --format value.
func ParseFormat(value string) (Format, error) {
	switch f := Format(value); f {
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q, expected %s or %s", ErrUnknownFormat, value, FormatJSON, FormatYAML)
}

// LabelPrefix starts the header line of every notification block.
const LabelPrefix = "Circuit Maintenance Notification #"

// Printer writes notification blocks to one writer.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	if format == "" {
		format = FormatJSON
	}
	return &Printer{out: out, format: format, color: color}
}

// ColorEnabled reports whether ANSI styling should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes one labeled block per notification, numbered from 0.
// Nothing is written when a notification cannot be serialized.
func (p *Printer) Print(notifications []model.Maintenance) error {
	var buf bytes.Buffer
	for idx, m := range notifications {
		body, err := p.serialize(m)
		if err != nil {
			return fmt.Errorf("notification %d: %w", idx, err)
		}

		label := fmt.Sprintf("%s%d", LabelPrefix, idx)
		text := string(bytes.TrimRight(body, "\n"))
		if p.color {
			label = pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(label)
			text = pterm.FgYellow.Sprint(text)
		}
		fmt.Fprintln(&buf, label)
		fmt.Fprintln(&buf, text)
	}

	_, err := p.out.Write(buf.Bytes())
	return err
}

func (p *Printer) serialize(m model.Maintenance) ([]byte, error) {
	switch p.format {
	case FormatYAML:
		return m.ToYAML()
	case FormatJSON:
		return m.ToJSON()
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, p.format)
}
