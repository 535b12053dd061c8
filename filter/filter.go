// Package filter selects email messages by matching regular expressions
// against their header block and body.
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrModeConflict = errors.New("include and exclude filters are mutually exclusive")

// Options captures the selection patterns.
type Options struct {
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

type mode int

const (
	modeAll mode = iota
	modeInclude
	modeExclude
)

type patterns struct {
	header []*regexp.Regexp
	body   []*regexp.Regexp
}

func (p patterns) match(header, body string) bool {
	return matchAny(p.header, header) || matchAny(p.body, body)
}

// Filter decides whether a raw message is selected.
type Filter struct {
	mode    mode
	include patterns
	exclude patterns
}

// New compiles the options into a Filter.
func New(opts Options) (*Filter, error) {
	var (
		f   Filter
		err error
	)
	if f.include.header, err = compile("include-header", opts.IncludeHeader); err != nil {
		return nil, err
	}
	if f.include.body, err = compile("include-body", opts.IncludeBody); err != nil {
		return nil, err
	}
	if f.exclude.header, err = compile("exclude-header", opts.ExcludeHeader); err != nil {
		return nil, err
	}
	if f.exclude.body, err = compile("exclude-body", opts.ExcludeBody); err != nil {
		return nil, err
	}

	includeActive := len(f.include.header) > 0 || len(f.include.body) > 0
	excludeActive := len(f.exclude.header) > 0 || len(f.exclude.body) > 0
	switch {
	case includeActive && excludeActive:
		return nil, ErrModeConflict
	case includeActive:
		f.mode = modeInclude
	case excludeActive:
		f.mode = modeExclude
	}
	return &f, nil
}

// Active reports whether any pattern was configured.
func (f *Filter) Active() bool {
	return f.mode != modeAll
}

// Allows reports whether the raw message passes the filter.
func (f *Filter) Allows(raw []byte) bool {
	if f.mode == modeAll {
		return true
	}
	header, body := SplitRawMessage(raw)
	switch f.mode {
	case modeInclude:
		return f.include.match(string(header), string(body))
	case modeExclude:
		return !f.exclude.match(string(header), string(body))
	}
	return true
}

// SplitRawMessage splits a raw email message into header and body parts.
func SplitRawMessage(raw []byte) (header, body []byte) {
	if len(raw) == 0 {
		return nil, nil
	}

	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx >= 0 {
		return raw[:idx], raw[idx+4:]
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx >= 0 {
		return raw[:idx], raw[idx+2:]
	}

	return raw, nil
}

func compile(name string, exprs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern %q: %w", name, expr, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
