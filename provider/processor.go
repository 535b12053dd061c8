package provider

import (
	"strings"

	"github.com/dhcgn/circuit-maintenance-parser/model"
	"github.com/dhcgn/circuit-maintenance-parser/parser"
)

// Processor combines parser results into notifications. base carries the
// provider defaults; parsed data overrides it.
type Processor interface {
	Name() string
	Process(parts []parser.DataPart, base model.Maintenance) ([]model.Maintenance, error)
}

// Simple emits every record of its parser as its own notification.
type Simple struct {
	Parser parser.Parser
}

func (s Simple) Name() string { return "simple(" + s.Parser.Name() + ")" }

func (s Simple) Process(parts []parser.DataPart, base model.Maintenance) ([]model.Maintenance, error) {
	results, err := parser.Run(s.Parser, parts)
	if err != nil {
		return nil, err
	}

	out := make([]model.Maintenance, 0, len(results))
	for _, r := range results {
		rec := base.Clone()
		rec.Merge(r)
		out = append(out, rec)
	}
	return out, nil
}

// Combined merges the records of several parsers into one notification.
// A parser returning more than one record fans the merged data out to one
// notification per record.
type Combined struct {
	Parsers []parser.Parser
}

func (c Combined) Name() string {
	names := make([]string, 0, len(c.Parsers))
	for _, p := range c.Parsers {
		names = append(names, p.Name())
	}
	return "combined(" + strings.Join(names, ",") + ")"
}

func (c Combined) Process(parts []parser.DataPart, base model.Maintenance) ([]model.Maintenance, error) {
	merged := base.Clone()
	var fanout []model.Maintenance

	for _, p := range c.Parsers {
		results, err := parser.Run(p, parts)
		if err != nil {
			return nil, err
		}
		if len(results) == 1 {
			merged.Merge(results[0])
			continue
		}
		fanout = append(fanout, results...)
	}

	if len(fanout) == 0 {
		return []model.Maintenance{merged}, nil
	}
	out := make([]model.Maintenance, 0, len(fanout))
	for _, r := range fanout {
		rec := merged.Clone()
		rec.Merge(r)
		out = append(out, rec)
	}
	return out, nil
}
