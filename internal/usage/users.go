// Package usage accumulates parsed usage records into the per-user and
// per-node views the report is built from.
package usage

import (
	"sort"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

const DefaultMaxUsers = 30

// UserAccumulator sums record counts per user identifier.
type UserAccumulator struct {
	totals     map[string]int64
	order      []string
	grandTotal int64
}

func NewUserAccumulator() *UserAccumulator {
	return &UserAccumulator{totals: make(map[string]int64)}
}

func (a *UserAccumulator) Add(rec core.UsageRecord) {
	if _, seen := a.totals[rec.Subject]; !seen {
		a.order = append(a.order, rec.Subject)
	}
	a.totals[rec.Subject] += rec.Count
	a.grandTotal += rec.Count
}

// GrandTotal is the sum of every count added, including users whose own
// total ends up non-positive.
func (a *UserAccumulator) GrandTotal() int64 { return a.grandTotal }

func (a *UserAccumulator) Len() int { return len(a.totals) }

func (a *UserAccumulator) Total(id string) int64 { return a.totals[id] }

// Ranked returns every user with a positive total, largest first. Ties keep
// the order in which users were first seen.
func (a *UserAccumulator) Ranked() []core.UserDetail {
	ids := lo.Filter(a.order, func(id string, _ int) bool {
		return a.totals[id] > 0
	})
	sort.SliceStable(ids, func(i, j int) bool {
		return a.totals[ids[i]] > a.totals[ids[j]]
	})

	details := make([]core.UserDetail, 0, len(ids))
	var cumulative float64
	for _, id := range ids {
		count := a.totals[id]
		d := core.UserDetail{
			Identifier: id,
			RawCount:   count,
			Gigabytes:  core.KilobytesToGigabytes(count),
		}
		if pct := core.PercentOf(float64(count), float64(a.grandTotal)); pct != nil {
			cumulative += *pct
			cum := cumulative
			d.PercentOfTotal = pct
			d.CumulativePercent = &cum
		}
		details = append(details, d)
	}
	return details
}

// Finalize ranks users and keeps the first maxUsers of them. Cumulative
// percentages are computed over the full ranking before truncation.
func (a *UserAccumulator) Finalize(maxUsers int) []core.UserDetail {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}
	details := a.Ranked()
	if len(details) > maxUsers {
		details = details[:maxUsers]
	}
	return details
}
