package report

import (
	"slices"
	"strings"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

// NodeSource is the read side of the node accumulator.
type NodeSource interface {
	Nodes() []string
	Categories(node string) map[string]int64
}

// NodeLayout names the categories the node table derives its columns from.
type NodeLayout struct {
	DatasetPrefix string
	PoolUsed      string
	PoolAvail     string
	CrashCategory string
	// CrashUnitFactor converts the crash category into the pool's units.
	CrashUnitFactor int64
}

func DefaultNodeLayout() NodeLayout {
	return NodeLayout{
		DatasetPrefix:   "zones/",
		PoolUsed:        "zones:used",
		PoolAvail:       "zones:avail",
		CrashCategory:   "/var/crash",
		CrashUnitFactor: 1024,
	}
}

type NodeSummary struct {
	Node    string
	UsedGB  int64
	TotalGB int64
	Used    core.Percent
	Manta   core.Percent
	Snaps   core.Percent
	Crash   core.Percent
	Rest    core.Percent
}

// SummarizeNode derives the node table row for one node. Percentages that
// would divide by zero are nil.
func SummarizeNode(node string, cats map[string]int64, l NodeLayout) NodeSummary {
	used := float64(cats[l.PoolUsed])
	total := used + float64(cats[l.PoolAvail])

	var dataset int64
	for k, v := range cats {
		if strings.HasPrefix(k, l.DatasetPrefix) {
			dataset += v
		}
	}
	crash := float64(cats[l.CrashCategory] * l.CrashUnitFactor)

	s := NodeSummary{
		Node:    node,
		UsedGB:  core.BytesToGiB(used),
		TotalGB: core.BytesToGiB(total),
		Used:    core.PercentOf(used, total),
		Manta:   core.PercentOf(float64(dataset), used),
		Crash:   core.PercentOf(crash, used),
	}

	// Rest is taken before snapshots are split out of Manta, so snapshot
	// space counts as unaccounted here.
	if s.Manta != nil && s.Crash != nil {
		rest := 100 - (*s.Manta + *s.Crash)
		s.Rest = &rest
	}

	// Dataset usage already includes snapshot space.
	if snaps, ok := cats[core.CategorySnapshots]; ok {
		s.Snaps = core.PercentOf(float64(snaps), used)
		if s.Snaps != nil && s.Manta != nil {
			manta := *s.Manta - *s.Snaps
			s.Manta = &manta
		}
	}
	return s
}

func SummarizeNodes(src NodeSource, l NodeLayout) []NodeSummary {
	nodes := slices.Sorted(slices.Values(src.Nodes()))
	out := make([]NodeSummary, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, SummarizeNode(node, src.Categories(node), l))
	}
	return out
}
