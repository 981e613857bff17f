package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// PlotResiduals renders a residual trace. Traces longer than width are
// resampled by asciigraph.
func PlotResiduals(residuals []float64, width, height int, caption string) string {
	if len(residuals) == 0 {
		return Subtle.Render("no samples")
	}
	return asciigraph.Plot(residuals,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// MetricsTable renders metrics sorted by name, one per line.
func MetricsTable(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(MetricLabel.Render(name) + MetricValue.Render(fmt.Sprintf("%.6g", values[name])) + "\n")
	}
	return Panel.Render(strings.TrimSuffix(b.String(), "\n"))
}
