// Package stats counts what a parse run did and logs a summary of it.
package stats

import (
	"log/slog"
	"time"
)

type EventType string

const (
	EventTypeScanned      EventType = "scanned"
	EventTypeParsed       EventType = "parsed"
	EventTypeNotification EventType = "notification"
	EventTypeFailure      EventType = "processor_failure"
	EventTypeError        EventType = "error"
)

type Event struct {
	Type      EventType
	Processor string
	Err       error
}

type Summary struct {
	Scanned       int
	Parsed        int
	Notifications int
	Failures      int
	Errors        int
	LastError     error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"parsed", s.Parsed,
		"notifications", s.Notifications,
		"processorFailures", s.Failures,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector accumulates events of a single run. The zero value is ready to use
// and a nil *Collector ignores every event.
type Collector struct {
	summary Summary
	started time.Time
}

func NewCollector() *Collector {
	return &Collector{started: time.Now()}
}

func (c *Collector) Record(evt Event) {
	if c == nil {
		return
	}
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeParsed:
		c.summary.Parsed++
	case EventTypeNotification:
		c.summary.Notifications++
	case EventTypeFailure:
		c.summary.Failures++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	if c == nil {
		return Summary{}
	}
	return c.summary
}

// Report logs the summary once at debug level.
func (c *Collector) Report(logger *slog.Logger) {
	if c == nil || logger == nil {
		return
	}
	attrs := c.summary.LogAttrs()
	if !c.started.IsZero() {
		attrs = append(attrs, "duration", time.Since(c.started))
	}
	logger.Debug("stats summary", attrs...)
}
