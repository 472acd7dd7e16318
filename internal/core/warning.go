package core

import (
	"fmt"
	"io"
)

type WarningKind string

const (
	WarnMalformedLine WarningKind = "malformed_line"
	WarnBadCount      WarningKind = "bad_count"
	WarnDuplicate     WarningKind = "duplicate"
	WarnLookup        WarningKind = "lookup"
)

// Warning is a recoverable problem noticed while building a report. Warnings
// never stop the run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Line    int         `json:"line,omitempty"`
	Subject string      `json:"subject,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

type WarningSink interface {
	Warn(Warning)
}

// WarningList collects warnings in memory.
type WarningList []Warning

func (l *WarningList) Warn(w Warning) { *l = append(*l, w) }


// WriterSink prints each warning as a "warning: ..." line.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Warn(w Warning) {
	fmt.Fprintf(s.W, "warning: %s\n", w)
}

type discardSink struct{}

func (discardSink) Warn(Warning) {}

// Discard drops every warning.
var Discard WarningSink = discardSink{}
