package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Status is the lifecycle state of a maintenance.
type Status string

const (
	StatusTentative   Status = "TENTATIVE"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusInProcess   Status = "IN-PROCESS"
	StatusCompleted   Status = "COMPLETED"
	StatusRescheduled Status = "RE-SCHEDULED"
	StatusUnknown     Status = "UNKNOWN"
)

// Impact describes what happens to a circuit during a maintenance.
type Impact string

const (
	ImpactNoImpact          Impact = "NO-IMPACT"
	ImpactReducedRedundancy Impact = "REDUCED-REDUNDANCY"
	ImpactDegraded          Impact = "DEGRADED"
	ImpactOutage            Impact = "OUTAGE"
)

var (
	ErrEmptyField      = errors.New("field must not be empty")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidImpact   = errors.New("invalid impact")
	ErrNoCircuits      = errors.New("at least one circuit has to be included in the maintenance")
	ErrEndBeforeStart  = errors.New("end time happens before start time")
	ErrEmptyCircuitID  = errors.New("circuit id must not be empty")
	ErrUnknownProperty = errors.New("unknown value")
)

// ParseStatus maps a textual status onto a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("%w %q: %w", ErrUnknownProperty, value, ErrInvalidStatus)
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTentative, StatusConfirmed, StatusCancelled, StatusInProcess,
		StatusCompleted, StatusRescheduled, StatusUnknown:
		return true
	}
	return false
}

// ParseImpact maps a textual impact onto an Impact.
func ParseImpact(value string) (Impact, error) {
	i := Impact(strings.ToUpper(strings.TrimSpace(value)))
	if !i.Valid() {
		return "", fmt.Errorf("%w %q: %w", ErrUnknownProperty, value, ErrInvalidImpact)
	}
	return i, nil
}

// Valid reports whether i is one of the known impacts.
func (i Impact) Valid() bool {
	switch i {
	case ImpactNoImpact, ImpactReducedRedundancy, ImpactDegraded, ImpactOutage:
		return true
	}
	return false
}

// CircuitImpact ties a circuit identifier to the impact it will suffer.
type CircuitImpact struct {
	CircuitID string `json:"circuit_id" yaml:"circuit_id"`
	Impact    Impact `json:"impact" yaml:"impact"`
}

// NewCircuitImpact returns a CircuitImpact, defaulting the impact to an outage.
func NewCircuitImpact(circuitID string, impact Impact) CircuitImpact {
	if impact == "" {
		impact = ImpactOutage
	}
	return CircuitImpact{CircuitID: strings.TrimSpace(circuitID), Impact: impact}
}

// Maintenance is one parsed circuit maintenance notification.
// Fields are declared in alphabetical order so the JSON output has sorted keys.
type Maintenance struct {
	Account       string          `json:"account" yaml:"account"`
	Circuits      []CircuitImpact `json:"circuits" yaml:"circuits"`
	End           int64           `json:"end" yaml:"end"`
	MaintenanceID string          `json:"maintenance_id" yaml:"maintenance_id"`
	Organizer     string          `json:"organizer" yaml:"organizer"`
	Provider      string          `json:"provider" yaml:"provider"`
	Sequence      int             `json:"sequence" yaml:"sequence"`
	Stamp         int64           `json:"stamp" yaml:"stamp"`
	Start         int64           `json:"start" yaml:"start"`
	Status        Status          `json:"status" yaml:"status"`
	Summary       string          `json:"summary" yaml:"summary"`
	UID           string          `json:"uid" yaml:"uid"`
}

// Merge copies every non-zero field of other onto m. Circuits are appended.
func (m *Maintenance) Merge(other Maintenance) {
	if other.Account != "" {
		m.Account = other.Account
	}
	if len(other.Circuits) > 0 {
		m.Circuits = append(m.Circuits, other.Circuits...)
	}
	if other.End != 0 {
		m.End = other.End
	}
	if other.MaintenanceID != "" {
		m.MaintenanceID = other.MaintenanceID
	}
	if other.Organizer != "" {
		m.Organizer = other.Organizer
	}
	if other.Provider != "" {
		m.Provider = other.Provider
	}
	if other.Sequence != 0 {
		m.Sequence = other.Sequence
	}
	if other.Stamp != 0 {
		m.Stamp = other.Stamp
	}
	if other.Start != 0 {
		m.Start = other.Start
	}
	if other.Status != "" {
		m.Status = other.Status
	}
	if other.Summary != "" {
		m.Summary = other.Summary
	}
	if other.UID != "" {
		m.UID = other.UID
	}
}

// Clone returns a copy of m that does not share the circuit slice.
func (m Maintenance) Clone() Maintenance {
	c := m
	c.Circuits = append([]CircuitImpact(nil), m.Circuits...)
	return c
}

// Validate checks the invariants every emitted notification must satisfy.
func (m Maintenance) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"provider", m.Provider},
		{"account", m.Account},
		{"maintenance_id", m.MaintenanceID},
		{"organizer", m.Organizer},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s: %w", r.name, ErrEmptyField)
		}
	}

	if !m.Status.Valid() {
		return fmt.Errorf("status %q: %w", m.Status, ErrInvalidStatus)
	}

	for idx, c := range m.Circuits {
		if c.CircuitID == "" {
			return fmt.Errorf("circuit %d: %w", idx, ErrEmptyCircuitID)
		}
		if !c.Impact.Valid() {
			return fmt.Errorf("circuit %s impact %q: %w", c.CircuitID, c.Impact, ErrInvalidImpact)
		}
	}
	if len(m.Circuits) == 0 && m.Status != StatusCancelled && m.Status != StatusCompleted {
		return ErrNoCircuits
	}

	if m.Start != 0 && m.End < m.Start {
		return ErrEndBeforeStart
	}
	return nil
}

// ToJSON renders m as indented JSON.
func (m Maintenance) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m.withCircuitList(), "", "  ")
}

// ToYAML renders m as a YAML document.
func (m Maintenance) ToYAML() ([]byte, error) {
	return yaml.Marshal(m.withCircuitList())
}

// withCircuitList makes a record without circuits render an empty list instead of null.
func (m Maintenance) withCircuitList() Maintenance {
	if m.Circuits == nil {
		m.Circuits = []CircuitImpact{}
	}
	return m
}
