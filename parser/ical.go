package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

const (
	propProvider      = "X-MAINTNOTE-PROVIDER"
	propAccount       = "X-MAINTNOTE-ACCOUNT"
	propMaintenanceID = "X-MAINTNOTE-MAINTENANCE-ID"
	propObjectID      = "X-MAINTNOTE-OBJECT-ID"
	propImpact        = "X-MAINTNOTE-IMPACT"
	propStatus        = "X-MAINTNOTE-STATUS"
)

var icalMandatory = []string{
	propProvider,
	propAccount,
	propMaintenanceID,
	string(ics.PropertyDtstart),
	string(ics.PropertyDtend),
	string(ics.PropertyDtstamp),
}

// ICal reads maintenance events written in the BCOP iCalendar format.
type ICal struct{}

func (ICal) Name() string { return "ical" }

func (ICal) DataTypes() []string {
	return []string{TypeCalendar, TypeICal, TypeICalendar}
}

// Parse returns one maintenance per VEVENT of the calendar.
func (ICal) Parse(content []byte) ([]model.Maintenance, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	results := make([]model.Maintenance, 0, len(events))
	for idx, event := range events {
		m, err := parseEvent(event)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", idx, err)
		}
		results = append(results, m)
	}
	return results, nil
}

func parseEvent(event *ics.VEvent) (model.Maintenance, error) {
	var (
		m         model.Maintenance
		impact    model.Impact
		objectIDs []string
		seen      = make(map[string]bool)
	)

	for _, prop := range event.Properties {
		token := strings.ToUpper(prop.IANAToken)
		value := strings.TrimSpace(prop.Value)
		seen[token] = true

		switch token {
		case propProvider:
			m.Provider = value
		case propAccount:
			m.Account = value
		case propMaintenanceID:
			m.MaintenanceID = value
		case propObjectID:
			if value != "" {
				objectIDs = append(objectIDs, value)
			}
		case propImpact:
			i, err := model.ParseImpact(value)
			if err != nil {
				return m, fmt.Errorf("%s: %w", token, err)
			}
			impact = i
		case propStatus:
			s, err := model.ParseStatus(value)
			if err != nil {
				return m, fmt.Errorf("%s: %w", token, err)
			}
			m.Status = s
		case string(ics.PropertySummary):
			m.Summary = value
		case string(ics.PropertyOrganizer):
			m.Organizer = organizerAddress(value)
		case string(ics.PropertyUid):
			m.UID = value
		case string(ics.PropertySequence):
			seq, err := strconv.Atoi(value)
			if err != nil {
				return m, fmt.Errorf("%s %q: %w", token, value, err)
			}
			m.Sequence = seq
		case string(ics.PropertyDtstart), string(ics.PropertyDtend), string(ics.PropertyDtstamp):
			t, err := propertyTime(prop)
			if err != nil {
				return m, fmt.Errorf("%s: %w", token, err)
			}
			switch token {
			case string(ics.PropertyDtstart):
				m.Start = t.Unix()
			case string(ics.PropertyDtend):
				m.End = t.Unix()
			default:
				m.Stamp = t.Unix()
			}
		}
	}

	for _, name := range icalMandatory {
		if !seen[name] {
			return m, fmt.Errorf("%s: %w", name, ErrMissingField)
		}
	}

	if m.Status == "" {
		m.Status = model.StatusTentative
	}
	for _, id := range objectIDs {
		m.Circuits = append(m.Circuits, model.NewCircuitImpact(id, impact))
	}
	return m, nil
}

func organizerAddress(value string) string {
	if len(value) >= len("mailto:") && strings.EqualFold(value[:len("mailto:")], "mailto:") {
		return value[len("mailto:"):]
	}
	return value
}

// propertyTime reads a DATE or DATE-TIME value, honoring a TZID parameter.
func propertyTime(prop ics.IANAProperty) (time.Time, error) {
	value := strings.TrimSpace(prop.Value)

	loc := time.UTC
	if tzid := prop.ICalParameters[string(ics.ParameterTzid)]; len(tzid) > 0 {
		l, err := time.LoadLocation(strings.Trim(tzid[0], `"`))
		if err != nil {
			return time.Time{}, fmt.Errorf("time zone %q: %w", tzid[0], err)
		}
		loc = l
	}

	if strings.HasSuffix(value, "Z") {
		return time.Parse("20060102T150405Z", value)
	}
	if t, err := time.ParseInLocation("20060102T150405", value, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("20060102", value, loc)
}
