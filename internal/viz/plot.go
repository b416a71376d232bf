// Package viz renders simulation results in the terminal: static
// asciigraph charts and a bubbletea live view.
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// Plot renders one series as an ascii chart.
func Plot(series []float64, caption string) string {
	return asciigraph.Plot(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotAll renders every series, sorted by name, capped at max charts.
func PlotAll(results map[string][]float64, max int) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	if max > 0 && len(names) > max {
		names = names[:max]
	}

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s\n\n", Plot(results[name], name))
	}
	return b.String()
}

// PlotSweep charts one variable's final value against the sampled
// initial values of a sensitivity sweep.
func PlotSweep(samples []float64, runs map[float64]map[string][]float64, variable string) string {
	finals := make([]float64, 0, len(samples))
	for _, s := range samples {
		series := runs[s][variable]
		if len(series) == 0 {
			finals = append(finals, 0)
			continue
		}
		finals = append(finals, series[len(series)-1])
	}
	caption := fmt.Sprintf("final %s across %d samples", variable, len(samples))
	return Plot(finals, caption)
}
