// Package provider maps provider tokens to the parsers and processors that
// turn one notification input into maintenance records.
package provider

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhcgn/circuit-maintenance-parser/model"
	"github.com/dhcgn/circuit-maintenance-parser/parser"
	"github.com/dhcgn/circuit-maintenance-parser/stats"
)

// Request is the input of Init. Exactly one of Email and Raw must be set.
type Request struct {
	Email *model.Email
	Raw   []byte
	Type  Type

	Logger *slog.Logger
	Stats  *stats.Collector
}

// Validate checks that the request carries exactly one input.
func (r Request) Validate() error {
	hasEmail, hasRaw := r.Email != nil, len(r.Raw) > 0
	switch {
	case hasEmail && hasRaw:
		return fmt.Errorf("%w: both email and raw data given", ErrInvalidRequest)
	case !hasEmail && !hasRaw:
		return fmt.Errorf("%w: neither email nor raw data given", ErrInvalidRequest)
	}
	return nil
}

// Provider is bound to one input and can be processed once.
type Provider struct {
	desc      Descriptor
	parts     []parser.DataPart
	logger    *slog.Logger
	stats     *stats.Collector
	processed bool
}

// Init builds the provider instance for the request.
func Init(req Request) (*Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	desc, ok := Lookup(req.Type)
	if !ok {
		return nil, &UnsupportedError{Type: req.Type}
	}
	if desc.RequiresEmail && req.Email == nil {
		return nil, &IncompatibleInputError{
			Type:   desc.Type,
			Reason: "requires an email message, use --email-filename",
		}
	}

	logger := req.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var parts []parser.DataPart
	if req.Email != nil {
		parts = emailParts(req.Email)
	} else {
		parts = []parser.DataPart{{Type: desc.RawDataType, Content: req.Raw}}
	}

	return &Provider{
		desc:   desc,
		parts:  parts,
		logger: logger.With("provider", string(desc.Type)),
		stats:  req.Stats,
	}, nil
}

// Type returns the token the instance was built for.
func (p *Provider) Type() Type { return p.desc.Type }

// DataParts returns the typed input handed to the parsers.
func (p *Provider) DataParts() []parser.DataPart { return p.parts }

// Process runs the processors in order and returns the notifications of the
// first one that succeeds. On failure no notification is returned.
func (p *Provider) Process() ([]model.Maintenance, error) {
	if p.processed {
		return nil, ErrAlreadyProcessed
	}
	p.processed = true

	for range p.parts {
		p.stats.Record(stats.Event{Type: stats.EventTypeScanned})
	}

	base := model.Maintenance{
		Provider:  string(p.desc.Type),
		Organizer: p.desc.DefaultOrganizer,
		Sequence:  1,
		UID:       "0",
	}

	var causes []error
	for _, proc := range p.desc.Processors {
		results, err := proc.Process(p.parts, base)
		if err == nil {
			err = validateAll(results)
		}
		if err != nil {
			p.logger.Debug("processor failed", "processor", proc.Name(), "err", err)
			p.stats.Record(stats.Event{Type: stats.EventTypeFailure, Processor: proc.Name(), Err: err})
			causes = append(causes, err)
			continue
		}

		p.logger.Info("processor succeeded", "processor", proc.Name(), "notifications", len(results))
		p.stats.Record(stats.Event{Type: stats.EventTypeParsed, Processor: proc.Name()})
		for range results {
			p.stats.Record(stats.Event{Type: stats.EventTypeNotification})
		}
		return results, nil
	}

	perr := &ParsingError{Type: p.desc.Type, Causes: causes}
	p.stats.Record(stats.Event{Type: stats.EventTypeError, Err: perr})
	return nil, perr
}

func validateAll(results []model.Maintenance) error {
	if len(results) == 0 {
		return ErrNoNotifications
	}
	for idx, m := range results {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("notification %d: %w", idx, err)
		}
	}
	return nil
}

func emailParts(email *model.Email) []parser.DataPart {
	parts := make([]parser.DataPart, 0, len(email.Parts)+2)
	for _, part := range email.Parts {
		parts = append(parts, parser.DataPart{Type: strings.ToLower(part.ContentType), Content: part.Body})
	}
	if subject := email.Subject(); subject != "" {
		parts = append(parts, parser.DataPart{Type: parser.TypeEmailSubject, Content: []byte(subject)})
	}
	if date := strings.TrimSpace(email.Header.Get("Date")); date != "" {
		parts = append(parts, parser.DataPart{Type: parser.TypeEmailDate, Content: []byte(date)})
	}
	return parts
}
