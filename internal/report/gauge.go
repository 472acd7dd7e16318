package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

var (
	colorOK   = lipgloss.Color("#a6e3a1")
	colorWarn = lipgloss.Color("#f9e2af")
	colorCrit = lipgloss.Color("#f38ba8")
	colorDim  = lipgloss.Color("#6c7086")
)

// Used-space thresholds, in percent, at which a gauge turns warn / crit.
const (
	gaugeWarnAt = 80.0
	gaugeCritAt = 90.0
)

// RenderUsageGauge draws a bar that fills left to right as usedPercent grows.
// A nil percentage renders an empty dimmed track.
func RenderUsageGauge(r *lipgloss.Renderer, usedPercent core.Percent, width int) string {
	if width < 5 {
		width = 5
	}
	trackStyle := r.NewStyle().Foreground(colorDim)

	if usedPercent == nil {
		return trackStyle.Render(strings.Repeat("·", width))
	}
	pct := *usedPercent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(width))
	empty := width - filled

	var color lipgloss.Color
	switch {
	case pct >= gaugeCritAt:
		color = colorCrit
	case pct >= gaugeWarnAt:
		color = colorWarn
	default:
		color = colorOK
	}

	filledStyle := r.NewStyle().Foreground(color)
	return filledStyle.Render(strings.Repeat("█", filled)) +
		trackStyle.Render(strings.Repeat("░", empty))
}
