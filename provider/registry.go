package provider

import (
	"github.com/dhcgn/circuit-maintenance-parser/parser"
)

// Type is the token selecting a provider on the command line.
type Type string

const (
	TypeICal         Type = "ical"
	TypeEUNetworks   Type = "eunetworks"
	TypeNTT          Type = "ntt"
	TypePacketFabric Type = "packetfabric"
	TypeZayo         Type = "zayo"
	TypeAWS          Type = "aws"

	DefaultType = TypeICal
)

// Descriptor describes how a provider turns input into notifications.
type Descriptor struct {
	Type Type
	// RawDataType is the data part type raw input is handed to parsers as.
	RawDataType      string
	RequiresEmail    bool
	DefaultOrganizer string
	Processors       []Processor
}

func icalProcessors() []Processor {
	return []Processor{Simple{Parser: parser.ICal{}}}
}

var registry = []Descriptor{
	{
		Type:        TypeICal,
		RawDataType: parser.TypeICal,
		Processors:  icalProcessors(),
	},
	{
		Type:             TypeEUNetworks,
		RawDataType:      parser.TypeICal,
		DefaultOrganizer: "noc@eunetworks.com",
		Processors:       icalProcessors(),
	},
	{
		Type:             TypeNTT,
		RawDataType:      parser.TypeICal,
		DefaultOrganizer: "noc@us.ntt.net",
		Processors:       icalProcessors(),
	},
	{
		Type:             TypePacketFabric,
		RawDataType:      parser.TypeICal,
		DefaultOrganizer: "support@packetfabric.com",
		Processors:       icalProcessors(),
	},
	{
		Type:             TypeZayo,
		RequiresEmail:    true,
		DefaultOrganizer: "mr@zayo.com",
		Processors: []Processor{
			Combined{Parsers: []parser.Parser{parser.EmailDate{}, parser.ZayoSubject{}, parser.ZayoHTML{}}},
		},
	},
	{
		Type:             TypeAWS,
		RequiresEmail:    true,
		DefaultOrganizer: "aws-account-notifications@amazon.com",
		Processors: []Processor{
			Combined{Parsers: []parser.Parser{parser.EmailDate{}, parser.AWSSubject{}, parser.AWSText{}}},
		},
	},
}

// Types returns the registered tokens in registration order.
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for _, d := range registry {
		types = append(types, d.Type)
	}
	return types
}

// Lookup returns the descriptor registered for t.
func Lookup(t Type) (Descriptor, bool) {
	for _, d := range registry {
		if d.Type == t {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Descriptors returns a copy of the registry.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), registry...)
}
