package core

import (
	"fmt"
	"math"
)

// Node-level subjects. Records carrying one of these describe a storage node
// rather than a user.
const (
	SubjectNode      = "-"
	SubjectSnapshots = "snapshots"
)

// CategorySnapshots is the node category used for records whose subject is
// SubjectSnapshots, regardless of the category field on the line.
const CategorySnapshots = "snapshots"

// DefaultSpecialIdentifiers are pseudo-users that never go to identity
// resolution and are shown verbatim.
var DefaultSpecialIdentifiers = []string{"tmp", "snapshots", "tombstone"}

type UsageRecord struct {
	Line       int    `json:"line"`
	Datacenter string `json:"datacenter"`
	Host       string `json:"host"`
	Category   string `json:"category"`
	Subject    string `json:"subject"`
	Count      int64  `json:"count"`
}

// NodeLabel is the key records are grouped under in the node view.
func (r UsageRecord) NodeLabel() string {
	return r.Datacenter + " " + r.Host
}

func (r UsageRecord) IsNodeRecord() bool {
	return r.Subject == SubjectNode || r.Subject == SubjectSnapshots
}

// Percent is a percentage that may be absent. nil means there was nothing to
// divide by, which is not the same as 0%.
type Percent *float64

func PercentOf(part, whole float64) Percent {
	if whole == 0 {
		return nil
	}
	p := 100 * part / whole
	return &p
}

type UserDetail struct {
	Identifier        string  `json:"identifier"`
	RawCount          int64   `json:"raw_count"`
	PercentOfTotal    Percent `json:"percent_of_total"`
	CumulativePercent Percent `json:"cumulative_percent"`
	Gigabytes         string  `json:"gigabytes"`
}

// RoundTenths rounds to one decimal place, half away from zero on the x10 value.
func RoundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}

// KilobytesToGigabytes renders a user count the way the user table shows it.
func KilobytesToGigabytes(count int64) string {
	return fmt.Sprintf("%.1f", RoundTenths(float64(count)/1024))
}

const bytesPerGiB = 1024 * 1024 * 1024

// BytesToGiB converts a node byte count to whole gigabytes.
func BytesToGiB(n float64) int64 {
	return int64(math.Round(n / bytesPerGiB))
}

type SpecialSet map[string]bool

func NewSpecialSet(ids []string) SpecialSet {
	s := make(SpecialSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func (s SpecialSet) Contains(id string) bool {
	return s[id]
}
