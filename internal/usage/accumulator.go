package usage

import (
	"github.com/janekbaraniewski/storagereport/internal/core"
	"github.com/janekbaraniewski/storagereport/internal/parsers"
)

type Stats struct {
	Lines       int
	UserRecords int
	NodeRecords int
	Rejected    int
}

// Accumulator routes every valid record to exactly one of the user or node
// views. It is built fresh for each run.
type Accumulator struct {
	Users *UserAccumulator
	Nodes *NodeAccumulator
	sink  core.WarningSink
	stats Stats
}

func NewAccumulator(sink core.WarningSink) *Accumulator {
	if sink == nil {
		sink = core.Discard
	}
	return &Accumulator{
		Users: NewUserAccumulator(),
		Nodes: NewNodeAccumulator(sink),
		sink:  sink,
	}
}

func (a *Accumulator) Add(rec core.UsageRecord) {
	if parsers.IsNodeSubject(rec.Subject) {
		a.Nodes.Add(rec)
		a.stats.NodeRecords++
		return
	}
	a.Users.Add(rec)
	a.stats.UserRecords++
}

// Ingest parses a complete input buffer in a single pass.
func (a *Accumulator) Ingest(data []byte) Stats {
	for _, line := range parsers.SplitLines(data) {
		a.stats.Lines++
		rec, warn, ok := parsers.ParseLine(line.Number, line.Text)
		if warn != nil {
			a.sink.Warn(*warn)
			a.stats.Rejected++
		}
		if !ok {
			continue
		}
		a.Add(rec)
	}
	return a.stats
}

func (a *Accumulator) Stats() Stats { return a.stats }
