package parser

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

// EmailDate takes the notification stamp from the Date header.
type EmailDate struct{}

func (EmailDate) Name() string { return "email-date" }

func (EmailDate) DataTypes() []string { return []string{TypeEmailDate} }

func (EmailDate) Parse(content []byte) ([]model.Maintenance, error) {
	t, err := mail.ParseDate(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("date header %q: %w", content, err)
	}
	return []model.Maintenance{{Stamp: t.Unix()}}, nil
}
