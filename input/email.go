package input

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

// Decode parses raw RFC 5322 bytes into an Email. Unknown charsets or transfer
// encodings and truncated multipart bodies are recorded as defects; only an
// unreadable header block is an error.
func Decode(raw []byte, logger *slog.Logger) (*model.Email, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entity, err := message.Read(bytes.NewReader(raw))
	email := &model.Email{}
	if err != nil {
		if entity == nil || !isRecoverable(err) {
			return nil, err
		}
		addDefect(email, logger, "top-level entity", err)
	}
	email.Header = mail.Header{Header: entity.Header}

	walkErr := entity.Walk(func(path []int, part *message.Entity, err error) error {
		if err != nil {
			addDefect(email, logger, fmt.Sprintf("part %v", path), err)
			if part == nil {
				return nil
			}
		}
		if part.MultipartReader() != nil {
			return nil
		}
		email.Parts = append(email.Parts, readPart(part, path, email, logger))
		return nil
	})
	if walkErr != nil {
		addDefect(email, logger, "multipart body", walkErr)
	}

	return email, nil
}

func readPart(part *message.Entity, path []int, email *model.Email, logger *slog.Logger) model.Part {
	p := model.Part{ContentType: "text/plain"}

	if value := part.Header.Get("Content-Type"); value != "" {
		mediaType, params, err := part.Header.ContentType()
		if err != nil {
			addDefect(email, logger, fmt.Sprintf("part %v content type", path), err)
		} else {
			p.ContentType = strings.ToLower(mediaType)
			p.Params = params
		}
	}

	if value := part.Header.Get("Content-Disposition"); value != "" {
		disposition, params, err := part.Header.ContentDisposition()
		if err == nil {
			p.Attachment = strings.EqualFold(disposition, "attachment")
			p.Filename = params["filename"]
		}
	}
	if p.Filename == "" && p.Params != nil {
		p.Filename = p.Params["name"]
	}

	body, err := io.ReadAll(part.Body)
	if err != nil {
		addDefect(email, logger, fmt.Sprintf("part %v body", path), err)
	}
	p.Body = body
	return p
}

func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func addDefect(email *model.Email, logger *slog.Logger, where string, err error) {
	defect := fmt.Sprintf("%s: %v", where, err)
	email.Defects = append(email.Defects, defect)
	logger.Warn("email decoded with defects", "where", where, "err", err)
}
