package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

var (
	ErrNoAccount   = errors.New("AWS account id not found")
	ErrUnknownZone = errors.New("unknown time zone abbreviation")

	awsAccountRe = regexp.MustCompile(`\[AWS Account ?I?D?: ?([0-9]+)\]`)
	awsWindowRe  = regexp.MustCompile(
		`([A-Z][a-z]{2}, [0-9]{1,2} [A-Z][a-z]{2,9} [0-9]{4} [0-9]{2}:[0-9]{2}:[0-9]{2} [A-Z]{2,3}) to ` +
			`([A-Z][a-z]{2}, [0-9]{1,2} [A-Z][a-z]{2,9} [0-9]{4} [0-9]{2}:[0-9]{2}:[0-9]{2} [A-Z]{2,3})`)
	awsCircuitRe = regexp.MustCompile(`^[a-z]{5}-[a-z0-9]{8}`)

	awsTimeLayouts = []string{"Mon, 2 Jan 2006 15:04:05", "Mon, 2 January 2006 15:04:05"}
	awsZones       = map[string]*time.Location{
		"UTC": time.UTC,
		"GMT": time.UTC,
		"EST": time.FixedZone("EST", -5*3600),
		"EDT": time.FixedZone("EDT", -4*3600),
		"PST": time.FixedZone("PST", -8*3600),
		"PDT": time.FixedZone("PDT", -7*3600),
	}
)

// AWSSubject reads the account id from an AWS notification subject.
type AWSSubject struct{}

func (AWSSubject) Name() string { return "aws-subject" }

func (AWSSubject) DataTypes() []string { return []string{TypeEmailSubject} }

func (AWSSubject) Parse(content []byte) ([]model.Maintenance, error) {
	match := awsAccountRe.FindSubmatch(content)
	if match == nil {
		return nil, fmt.Errorf("%q: %w", content, ErrNoAccount)
	}
	return []model.Maintenance{{Account: string(match[1])}}, nil
}

// AWSText reads the window and affected connections from an AWS plain text body.
// AWS sends no ticket number, so the maintenance id is derived from the circuits and window.
type AWSText struct{}

func (AWSText) Name() string { return "aws-text" }

func (AWSText) DataTypes() []string { return []string{TypeText} }

func (AWSText) Parse(content []byte) ([]model.Maintenance, error) {
	var (
		m         model.Maintenance
		hasWindow bool
		ids       []string
	)
	m.Status = model.StatusConfirmed

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)

		if strings.Contains(lower, "has been cancelled") || strings.Contains(lower, "has been canceled") {
			m.Status = model.StatusCancelled
		}
		if m.Summary == "" && strings.Contains(lower, "planned maintenance") {
			m.Summary = line
		}
		if !hasWindow {
			if match := awsWindowRe.FindStringSubmatch(line); match != nil {
				start, err := parseAWSTime(match[1])
				if err != nil {
					return nil, err
				}
				end, err := parseAWSTime(match[2])
				if err != nil {
					return nil, err
				}
				m.Start, m.End = start.Unix(), end.Unix()
				hasWindow = true
			}
		}
		if id := awsCircuitRe.FindString(line); id != "" {
			ids = append(ids, id)
			m.Circuits = append(m.Circuits, model.NewCircuitImpact(id, model.ImpactOutage))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !hasWindow {
		return nil, ErrNoWindow
	}

	seed := strings.Join(ids, "") + strconv.FormatInt(m.Start, 10) + strconv.FormatInt(m.End, 10)
	m.MaintenanceID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
	return []model.Maintenance{m}, nil
}

// parseAWSTime resolves the trailing zone abbreviation against awsZones.
func parseAWSTime(value string) (time.Time, error) {
	idx := strings.LastIndexByte(value, ' ')
	if idx < 0 {
		return time.Time{}, fmt.Errorf("unrecognized time %q", value)
	}
	clock, zone := value[:idx], value[idx+1:]
	loc, ok := awsZones[zone]
	if !ok {
		return time.Time{}, fmt.Errorf("time %q: %w", value, ErrUnknownZone)
	}
	for _, layout := range awsTimeLayouts {
		if t, err := time.ParseInLocation(layout, clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
