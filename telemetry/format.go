package telemetry

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/simledger/output"
)

// slowThreshold marks operations that are highlighted in reports.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes a timer and its children as a tree:
//
//	process transactions.csv: 125ms
//	├─ load: 85ms
//	│  └─ decode: 45ms
//	└─ write summary: 40ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	duration := node.duration()
	timing := formatDuration(duration)
	tree := prefix + branch

	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, duration >= slowThreshold)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatCounters writes counters sorted by name.
func formatCounters(w io.Writer, counters map[string]int, styles *output.Styles) {
	if len(counters) == 0 {
		return
	}

	names := maps.Keys(counters)
	slices.Sort(names)

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, name := range names {
		value := fmt.Sprintf("%d", counters[name])
		if styles != nil {
			value = styles.Amount(value)
		}
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", width, name, value)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		ms := float64(d) / float64(time.Millisecond)
		return fmt.Sprintf("%.0fms", ms)
	}
	s := float64(d) / float64(time.Second)
	return fmt.Sprintf("%.2fs", s)
}
