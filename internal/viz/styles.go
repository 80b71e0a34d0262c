package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/curvesim/internal/dynamo"
)

var (
	Panel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 2)
	Title       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(16)
	MetricValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	Good        = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Warn        = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	Bad         = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// ProgressBar renders fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if fraction >= 1 {
		return Good.Render(bar)
	}
	return Warn.Render(bar)
}

// driftStyle colours a relative error against the conservation tolerance.
func driftStyle(v, tol float64) lipgloss.Style {
	switch {
	case v <= tol:
		return Good
	case v <= 100*tol:
		return Warn
	}
	return Bad
}

func metricLine(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

// RenderSummary is the styled report printed after a run.
func RenderSummary(title string, s dynamo.Summary, tol float64) string {
	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n\n")
	b.WriteString(metricLine("Steps", fmt.Sprintf("%d", s.Steps)))
	b.WriteString(metricLine("Final time", fmt.Sprintf("%.4f", s.FinalTime)))
	b.WriteString(metricLine("Collisions", fmt.Sprintf("%d", s.Collisions)))
	b.WriteString(metricLine("Stalled steps", fmt.Sprintf("%d", s.Stalls)))
	b.WriteString(metricLine("Projections", fmt.Sprintf("%d", s.Projections)))

	b.WriteString(MetricLabel.Render("Energy drift") +
		driftStyle(s.EnergyDrift, tol).Render(fmt.Sprintf("%.3e", s.EnergyDrift)) + "\n")
	b.WriteString(MetricLabel.Render("Momentum drift") +
		driftStyle(s.MomentumDrift, tol).Render(fmt.Sprintf("%.3e", s.MomentumDrift)) + "\n")

	if s.Collisions > 0 {
		b.WriteString(metricLine("Energy err", fmt.Sprintf("%.2e ± %.2e (max %.2e)",
			s.MeanEnergyError, s.StdEnergyError, s.MaxEnergyError)))
		b.WriteString(metricLine("Momentum err", fmt.Sprintf("%.2e ± %.2e (max %.2e)",
			s.MeanMomentumError, s.StdMomentumError, s.MaxMomentumError)))
	}

	violations := Good.Render("0")
	if s.Violations > 0 {
		violations = Bad.Render(fmt.Sprintf("%d", s.Violations))
	}
	b.WriteString(MetricLabel.Render("Violations") + violations)
	return Panel.Render(b.String())
}
