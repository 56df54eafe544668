package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/beancount-complete/output"
)

// slowOperation is the duration from which an operation is highlighted.
const slowOperation = 100 * time.Millisecond

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	check main.yaml: 125ms
//	├─ loader.load: 85ms
//	│  └─ loader.parse main.yaml: 45ms
//	└─ ledger.completion (1200 transactions): 40ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	timing := formatDuration(root.duration())
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.name), timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, timing)
	}

	for i, child := range root.children {
		isLast := i == len(root.children)-1
		formatNode(w, child, "", isLast, styles)
	}
}

// formatNode recursively formats a node and its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.duration()

	// Choose tree characters
	var branch, extension string
	if isLast {
		branch = "└─ "
		extension = "   "
	} else {
		branch = "├─ "
		extension = "│  "
	}

	if styles != nil {
		treeChars := styles.Dim(prefix + branch)
		timing := styles.Timing(formatDuration(duration), duration >= slowOperation)
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", treeChars, node.name, timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, formatDuration(duration))
	}

	childPrefix := prefix + extension
	for i, child := range node.children {
		childIsLast := i == len(node.children)-1
		formatNode(w, child, childPrefix, childIsLast, styles)
	}
}

// formatDuration formats a duration for display.
// Shows milliseconds for < 1s, seconds for >= 1s.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		ms := float64(d) / float64(time.Millisecond)
		return fmt.Sprintf("%.0fms", ms)
	}
	s := float64(d) / float64(time.Second)
	return fmt.Sprintf("%.2fs", s)
}
