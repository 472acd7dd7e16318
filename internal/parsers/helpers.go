package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

const recordFields = 5

type Line struct {
	Number int
	Text   string
}

// SplitLines numbers the lines of a fully buffered input, starting at 1.
func SplitLines(data []byte) []Line {
	var lines []Line
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	n := 0
	for sc.Scan() {
		n++
		lines = append(lines, Line{Number: n, Text: strings.TrimRight(sc.Text(), "\r")})
	}
	return lines
}

func ParseCount(val string) *int64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseLine classifies one input line. Blank lines return ok=false with no
// warning; malformed lines return ok=false with a warning.
func ParseLine(lineNo int, text string) (core.UsageRecord, *core.Warning, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return core.UsageRecord{}, nil, false
	}
	if len(fields) != recordFields {
		return core.UsageRecord{}, &core.Warning{
			Kind:    core.WarnMalformedLine,
			Line:    lineNo,
			Message: fmt.Sprintf("expected %d fields, found %d: %q", recordFields, len(fields), text),
		}, false
	}

	count := ParseCount(fields[4])
	if count == nil {
		return core.UsageRecord{}, &core.Warning{
			Kind:    core.WarnBadCount,
			Line:    lineNo,
			Message: fmt.Sprintf("count %q is not an integer: %q", fields[4], text),
		}, false
	}

	return core.UsageRecord{
		Line:       lineNo,
		Datacenter: fields[0],
		Host:       fields[1],
		Category:   fields[2],
		Subject:    fields[3],
		Count:      *count,
	}, nil, true
}

// IsNodeSubject reports whether a record with this subject belongs to the node
// view instead of the user view.
func IsNodeSubject(subject string) bool {
	return core.UsageRecord{Subject: subject}.IsNodeRecord()
}

type KeyValue struct {
	Key   string
	Value string
}

// ParseRecords splits "key: value" output into records separated by blank
// lines. Records with no pairs are dropped.
func ParseRecords(out string) [][]KeyValue {
	var records [][]KeyValue
	var cur []KeyValue
	flush := func() {
		if len(cur) > 0 {
			records = append(records, cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, ParseKeyValues(line)...)
	}
	flush()
	return records
}

// ParseKeyValues reads "key: value" lines, skipping blanks, comments and lines
// without a colon. Order and repeated keys are preserved.
func ParseKeyValues(out string) []KeyValue {
	var kvs []KeyValue
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		kvs = append(kvs, KeyValue{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return kvs
}
