package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest   = errors.New("invalid provider request")
	ErrUnsupported      = errors.New("unsupported provider type")
	ErrIncompatible     = errors.New("incompatible input for provider")
	ErrParsing          = errors.New("parsing failed")
	ErrAlreadyProcessed = errors.New("provider instance was already processed")
	ErrNoNotifications  = errors.New("no notification found")
)

// UnsupportedError reports a provider token that is not registered.
type UnsupportedError struct {
	Type Type
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Parser type %s is not supported.", e.Type)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// IncompatibleInputError reports an input kind the provider cannot work on.
type IncompatibleInputError struct {
	Type   Type
	Reason string
}

func (e *IncompatibleInputError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Type, e.Reason)
}

func (e *IncompatibleInputError) Is(target error) bool { return target == ErrIncompatible }

// ParsingError carries every processor failure of one Process call.
// Its message is always a single line.
type ParsingError struct {
	Type   Type
	Causes []error
}

func (e *ParsingError) Error() string {
	prefix := string(e.Type) + ": "
	msgs := make([]string, 0, len(e.Causes))
	for _, cause := range e.Causes {
		msgs = append(msgs, strings.TrimPrefix(singleLine(cause.Error()), prefix))
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("%s: no processor produced a notification", e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Type, strings.Join(msgs, "; "))
}

func (e *ParsingError) Is(target error) bool { return target == ErrParsing }

func (e *ParsingError) Unwrap() []error { return e.Causes }

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
