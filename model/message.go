package model

import (
	"strings"

	"github.com/emersion/go-message/mail"
)

// Email is an electronic-mail message decomposed into its header and decoded leaf parts.
type Email struct {
	Header  mail.Header
	Parts   []Part
	Defects []string
}

// Part is one decoded leaf of a MIME tree.
type Part struct {
	ContentType string
	Params      map[string]string
	Filename    string
	Attachment  bool
	Body        []byte
}

// Subject returns the decoded Subject header, falling back to the raw value.
func (e *Email) Subject() string {
	subject, err := e.Header.Subject()
	if err != nil {
		return strings.TrimSpace(e.Header.Get("Subject"))
	}
	return strings.TrimSpace(subject)
}

// PartsOfType returns the parts whose media type matches contentType.
func (e *Email) PartsOfType(contentType string) []Part {
	var parts []Part
	for _, p := range e.Parts {
		if strings.EqualFold(p.ContentType, contentType) {
			parts = append(parts, p)
		}
	}
	return parts
}
