// Package viz renders terminal plots and styled summaries for histograms
// and solve results.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/skraemer/detsens/internal/hist"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// PlotMarginal renders the probability density of a histogram's marginal
// along dim as a terminal graph over the finite bins.
func PlotMarginal(h *hist.Histogram, dim int, caption string) (string, error) {
	probs, err := h.Marginal(dim)
	if err != nil {
		return "", err
	}
	widths, err := h.Bins(dim, hist.Width)
	if err != nil {
		return "", err
	}

	var density []float64
	for i, p := range probs {
		if math.IsInf(widths[i], 0) {
			continue
		}
		density = append(density, p/widths[i])
	}
	if len(density) < 2 {
		return "", fmt.Errorf("viz: dimension %d has too few finite bins to plot", dim)
	}

	graph := asciigraph.Plot(density,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(caption),
	)
	return graphStyle.Render(graph), nil
}

// PlotCurve renders y values as a terminal graph.
func PlotCurve(ys []float64, caption string) string {
	graph := asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(caption),
	)
	return graphStyle.Render(graph)
}

// Summary renders a styled key/value block.
func Summary(title string, pairs [][2]string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for _, kv := range pairs {
		b.WriteString(labelStyle.Render(kv[0]))
		b.WriteString(valueStyle.Render(kv[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// Warn renders a warning line.
func Warn(msg string) string {
	return warnStyle.Render(msg)
}
