// Package report renders the per-user and per-node storage tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/storagereport/internal/core"
	"github.com/janekbaraniewski/storagereport/internal/identity"
)

const defaultGaugeWidth = 20

type Options struct {
	// LabelWidth cuts user labels to this many cells. Zero leaves them whole.
	LabelWidth int
	Gauges     bool
	GaugeWidth int
	Layout     NodeLayout
}

type Input struct {
	Users      []core.UserDetail
	TotalUsers int
	GrandTotal int64
	Names      identity.Names
	Special    core.SpecialSet
	Nodes      NodeSource
}

type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	if opts.GaugeWidth <= 0 {
		opts.GaugeWidth = defaultGaugeWidth
	}
	if opts.Layout == (NodeLayout{}) {
		opts.Layout = DefaultNodeLayout()
	}
	return &Renderer{opts: opts}
}

// Render writes the user table, the node table and the legend to w. Styling
// is only emitted when w is a terminal.
func (r *Renderer) Render(w io.Writer, in Input) error {
	lr := lipgloss.NewRenderer(w)
	st := newStyles(lr)

	var b strings.Builder
	r.writeUsers(&b, st, in)
	b.WriteString("\n")
	r.writeNodes(&b, st, lr, in.Nodes)
	b.WriteString("\n")
	r.writeLegend(&b, st)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(lr *lipgloss.Renderer) styles {
	return styles{
		title:  lr.NewStyle().Bold(true),
		header: lr.NewStyle().Bold(true).Underline(true),
		dim:    lr.NewStyle().Foreground(colorDim),
	}
}

func (r *Renderer) writeUsers(b *strings.Builder, st styles, in Input) {
	total := in.TotalUsers
	if total < len(in.Users) {
		total = len(in.Users)
	}
	b.WriteString(st.title.Render(fmt.Sprintf("Storage used by user: top %d of %d (%s GB total)",
		len(in.Users), total, core.KilobytesToGigabytes(in.GrandTotal))))
	b.WriteString("\n\n")

	b.WriteString(st.header.Render(fmt.Sprintf("%9s %5s %6s  %s", "GB", "%", "CUM%", "USER")))
	b.WriteString("\n")
	if len(in.Users) == 0 {
		b.WriteString(st.dim.Render("(no user records)"))
		b.WriteString("\n")
		return
	}
	for _, u := range in.Users {
		label := in.Names.Label(u.Identifier, in.Special)
		fmt.Fprintf(b, "%9s %5s %6s  %s\n",
			u.Gigabytes,
			userPercent(u.PercentOfTotal),
			userPercent(u.CumulativePercent),
			r.fitLabel(label),
		)
	}
}

func (r *Renderer) writeNodes(b *strings.Builder, st styles, lr *lipgloss.Renderer, src NodeSource) {
	var rows []NodeSummary
	if src != nil {
		rows = SummarizeNodes(src, r.opts.Layout)
	}

	b.WriteString(st.title.Render(fmt.Sprintf("Storage used by node: %d %s", len(rows), plural(len(rows), "node", "nodes"))))
	b.WriteString("\n\n")

	nodeWidth := lipgloss.Width("NODE")
	for _, row := range rows {
		nodeWidth = max(nodeWidth, lipgloss.Width(row.Node))
	}

	header := fmt.Sprintf("%s %6s %6s %7s %7s %7s %7s %7s",
		padRight("NODE", nodeWidth), "USED", "TOTAL", "%USED", "%MANTA", "%SNAPS", "%CRASH", "%REST")
	b.WriteString(st.header.Render(header))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(st.dim.Render("(no node records)"))
		b.WriteString("\n")
		return
	}

	for _, row := range rows {
		fmt.Fprintf(b, "%s %6s %6s %7s %7s %7s %7s %7s",
			padRight(row.Node, nodeWidth),
			strconv.FormatInt(row.UsedGB, 10),
			strconv.FormatInt(row.TotalGB, 10),
			nodePercent(row.Used),
			nodePercent(row.Manta),
			nodePercent(row.Snaps),
			nodePercent(row.Crash),
			nodePercent(row.Rest),
		)
		if r.opts.Gauges {
			b.WriteString("  ")
			b.WriteString(RenderUsageGauge(lr, row.Used, r.opts.GaugeWidth))
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) writeLegend(b *strings.Builder, st styles) {
	l := r.opts.Layout
	b.WriteString(st.title.Render("Legend:"))
	b.WriteString("\n")
	lines := [][2]string{
		{"USED", "space used in the zpool, GiB"},
		{"TOTAL", "used plus available space in the zpool, GiB"},
		{"%USED", "USED as a percentage of TOTAL"},
		{"%MANTA", fmt.Sprintf("datasets under %q as a percentage of USED, snapshots excluded", l.DatasetPrefix)},
		{"%SNAPS", `snapshots as a percentage of USED ("?" when not reported)`},
		{"%CRASH", fmt.Sprintf("crash dumps in %q as a percentage of USED", l.CrashCategory)},
		{"%REST", "USED not accounted for by datasets or crash dumps, snapshots included"},
	}
	for _, line := range lines {
		fmt.Fprintf(b, "  %-7s %s\n", line[0], line[1])
	}
}

func (r *Renderer) fitLabel(label string) string {
	if r.opts.LabelWidth <= 0 || lipgloss.Width(label) <= r.opts.LabelWidth {
		return label
	}
	return ansi.Cut(label, 0, r.opts.LabelWidth)
}

func userPercent(p core.Percent) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p)
}

func nodePercent(p core.Percent) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func padRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
