// Package viz renders recorded and live drive trajectories in the
// terminal, as static ascii charts or as an interactive watch view.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotHeight = 10
	plotWidth  = 80
	maxPlots   = 6
)

// Trace charts a single series.
func Trace(data []float64, caption string) string {
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// Trajectory charts every state column of a recorded episode followed by
// the reference track. Plots beyond maxPlots columns are dropped.
func Trajectory(states [][]float64, references []float64, names []string) string {
	if len(states) == 0 {
		return ""
	}

	var b strings.Builder

	numVars := len(states[0])
	if numVars > maxPlots {
		numVars = maxPlots
	}

	for col := 0; col < numVars; col++ {
		data := make([]float64, len(states))
		for i := range states {
			if col < len(states[i]) {
				data[i] = states[i][col]
			}
		}

		caption := fmt.Sprintf("x%d", col)
		if col < len(names) {
			caption = names[col]
		}
		b.WriteString(Trace(data, caption))
		b.WriteString("\n\n")
	}

	if len(references) > 0 {
		b.WriteString(Trace(references, "reference"))
		b.WriteString("\n")
	}

	return b.String()
}
