// Package parser turns typed chunks of a notification into maintenance data.
package parser

import (
	"errors"
	"fmt"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

// Data part types understood by the parsers.
const (
	TypeCalendar     = "text/calendar"
	TypeICal         = "ical"
	TypeICalendar    = "icalendar"
	TypeHTML         = "text/html"
	TypeText         = "text/plain"
	TypeEmailSubject = "email-header-subject"
	TypeEmailDate    = "email-header-date"
)

var (
	ErrNoData       = errors.New("no data for parser")
	ErrMissingField = errors.New("missing mandatory field")
	ErrNoEvents     = errors.New("no VEVENT found")
)

// DataPart is a typed chunk of input handed to the parsers.
type DataPart struct {
	Type    string
	Content []byte
}

// Parser extracts maintenance data from the data parts it declares.
// A result may carry only some fields; processors merge the pieces.
type Parser interface {
	Name() string
	DataTypes() []string
	Parse(content []byte) ([]model.Maintenance, error)
}

// Accepts reports whether p handles the given data part type.
func Accepts(p Parser, dataType string) bool {
	for _, t := range p.DataTypes() {
		if t == dataType {
			return true
		}
	}
	return false
}

// Run feeds every matching part to p and collects the results in part order.
func Run(p Parser, parts []DataPart) ([]model.Maintenance, error) {
	var (
		results []model.Maintenance
		matched bool
	)
	for _, part := range parts {
		if !Accepts(p, part.Type) {
			continue
		}
		matched = true
		got, err := p.Parse(part.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		results = append(results, got...)
	}
	if !matched {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrNoData)
	}
	return results, nil
}
