package usage

import (
	"fmt"
	"maps"
	"sort"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

// NodeAccumulator records one value per (node, category). A repeated pair
// replaces the earlier value and produces a duplicate warning.
type NodeAccumulator struct {
	nodes map[string]map[string]int64
	sink  core.WarningSink
}

func NewNodeAccumulator(sink core.WarningSink) *NodeAccumulator {
	if sink == nil {
		sink = core.Discard
	}
	return &NodeAccumulator{
		nodes: make(map[string]map[string]int64),
		sink:  sink,
	}
}

func (a *NodeAccumulator) Add(rec core.UsageRecord) {
	node := rec.NodeLabel()
	category := rec.Category
	if rec.Subject == core.SubjectSnapshots {
		category = core.CategorySnapshots
	}

	cats, ok := a.nodes[node]
	if !ok {
		cats = make(map[string]int64)
		a.nodes[node] = cats
	}
	if prev, exists := cats[category]; exists {
		a.sink.Warn(core.Warning{
			Kind:    core.WarnDuplicate,
			Line:    rec.Line,
			Subject: node,
			Message: fmt.Sprintf("node %q: duplicate value for %q (was %d, now %d)", node, category, prev, rec.Count),
		})
	}
	cats[category] = rec.Count
}

// Nodes returns node labels in ascending order.
func (a *NodeAccumulator) Nodes() []string {
	nodes := lo.Keys(a.nodes)
	sort.Strings(nodes)
	return nodes
}

func (a *NodeAccumulator) Len() int { return len(a.nodes) }

// Categories returns a copy of the category values recorded for node.
func (a *NodeAccumulator) Categories(node string) map[string]int64 {
	return maps.Clone(a.nodes[node])
}
