package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

var (
	ErrUnknownSubject = errors.New("subject does not announce a known maintenance state")
	ErrNoWindow       = errors.New("maintenance window not found")

	zayoTicketRe = regexp.MustCompile(`TTN-[0-9]+`)
	zayoWindowRe = regexp.MustCompile(`^(.+?)\s+to\s+(.+?)(?:\s*\(\s*([^)]*?)\s*\))?\s*$`)

	zayoWindowLayouts = []string{"02-Jan-2006 15:04", "2006-01-02 15:04", "01/02/2006 15:04"}
)

// Subject keywords, most specific first.
var zayoSubjectStatus = []struct {
	keyword string
	status  model.Status
}{
	{"COMPLETED", model.StatusCompleted},
	{"END OF WINDOW", model.StatusCompleted},
	{"CANCELLED", model.StatusCancelled},
	{"CANCELED", model.StatusCancelled},
	{"RESCHEDULE", model.StatusRescheduled},
	{"START MAINTENANCE", model.StatusInProcess},
	{"MAINTENANCE NOTIFICATION", model.StatusConfirmed},
}

// ZayoSubject reads the maintenance state and ticket from a Zayo subject line.
type ZayoSubject struct{}

func (ZayoSubject) Name() string { return "zayo-subject" }

func (ZayoSubject) DataTypes() []string { return []string{TypeEmailSubject} }

func (ZayoSubject) Parse(content []byte) ([]model.Maintenance, error) {
	subject := strings.ToUpper(string(content))

	var m model.Maintenance
	for _, s := range zayoSubjectStatus {
		if strings.Contains(subject, s.keyword) {
			m.Status = s.status
			break
		}
	}
	if m.Status == "" {
		return nil, fmt.Errorf("%q: %w", content, ErrUnknownSubject)
	}
	m.MaintenanceID = zayoTicketRe.FindString(subject)
	return []model.Maintenance{m}, nil
}

// ZayoHTML reads the labeled fields and the circuit table of a Zayo notification body.
type ZayoHTML struct{}

func (ZayoHTML) Name() string { return "zayo-html" }

func (ZayoHTML) DataTypes() []string { return []string{TypeHTML} }

func (ZayoHTML) Parse(content []byte) ([]model.Maintenance, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		m         model.Maintenance
		windowErr error
		hasWindow bool
	)
	doc.Find("b").Each(func(_ int, label *goquery.Selection) {
		name := strings.TrimSpace(label.Text())
		value := labelValue(label)
		switch name {
		case "Maintenance Ticket #:":
			m.MaintenanceID = value
		case "Customer:":
			m.Account = value
		case "Reason for Maintenance:":
			m.Summary = value
		case "Maintenance Window:":
			if hasWindow {
				return
			}
			start, end, err := parseZayoWindow(value)
			if err != nil {
				windowErr = err
				return
			}
			m.Start, m.End = start.Unix(), end.Unix()
			hasWindow = true
		}
	})

	if m.MaintenanceID == "" {
		return nil, fmt.Errorf("maintenance ticket: %w", ErrMissingField)
	}
	if !hasWindow {
		if windowErr != nil {
			return nil, windowErr
		}
		return nil, ErrNoWindow
	}

	m.Circuits = zayoCircuits(doc)
	return []model.Maintenance{m}, nil
}

// labelValue is the text following label up to the next label or line break.
func labelValue(label *goquery.Selection) string {
	var (
		value   strings.Builder
		reading bool
	)
	label.Parent().Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if !reading {
			reading = node.IsSelection(label)
			return true
		}
		switch goquery.NodeName(node) {
		case "b", "br":
			return false
		}
		value.WriteString(node.Text())
		return true
	})
	return strings.Join(strings.Fields(value.String()), " ")
}

func parseZayoWindow(value string) (time.Time, time.Time, error) {
	match := zayoWindowRe.FindStringSubmatch(value)
	if match == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window %q: %w", value, ErrNoWindow)
	}

	loc := time.UTC
	if tz := strings.TrimSpace(match[3]); tz != "" && !strings.EqualFold(tz, "GMT") && !strings.EqualFold(tz, "UTC") {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("window time zone %q: %w", tz, err)
		}
		loc = l
	}

	start, err := parseInLayouts(match[1], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseInLayouts(match[2], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseInLayouts(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range zayoWindowLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func zayoCircuits(doc *goquery.Document) []model.CircuitImpact {
	var circuits []model.CircuitImpact
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		headers := cellTexts(rows.First())
		idCol, impactCol := indexFold(headers, "Circuit Id"), indexFold(headers, "Expected Impact")
		if idCol < 0 {
			return
		}
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row)
			if idCol >= len(cells) || cells[idCol] == "" {
				return
			}
			var impact model.Impact
			if impactCol >= 0 && impactCol < len(cells) {
				impact = zayoImpact(cells[impactCol])
			}
			circuits = append(circuits, model.NewCircuitImpact(cells[idCol], impact))
		})
	})
	return circuits
}

func cellTexts(row *goquery.Selection) []string {
	return row.Find("th, td").Map(func(_ int, cell *goquery.Selection) string {
		return strings.Join(strings.Fields(cell.Text()), " ")
	})
}

func indexFold(values []string, want string) int {
	for idx, v := range values {
		if strings.EqualFold(v, want) {
			return idx
		}
	}
	return -1
}

func zayoImpact(value string) model.Impact {
	value = strings.ToLower(value)
	switch {
	case strings.Contains(value, "no expected impact"):
		return model.ImpactNoImpact
	case strings.Contains(value, "degraded"):
		return model.ImpactDegraded
	default:
		return model.ImpactOutage
	}
}
