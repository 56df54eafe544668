package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/beancount-complete/output"
)

// TimingCollector collects hierarchical timing data.
// It builds a tree structure of timers that can be reported as a nested view.
// It is safe for concurrent use.
type TimingCollector struct {
	root    *timerNode
	current *timerNode
	styles  *output.Styles
	mu      sync.Mutex
}

// timerNode represents a single timed operation in the tree.
type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

// duration returns the elapsed time of the node; running timers report the time so far.
func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return time.Since(n.start)
	}
	return n.end.Sub(n.start)
}

// Option configures a TimingCollector.
type Option func(*TimingCollector)

// WithStyles adds terminal styling to the report.
func WithStyles(styles *output.Styles) Option {
	return func(c *TimingCollector) {
		c.styles = styles
	}
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector(opts ...Option) *TimingCollector {
	c := &TimingCollector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins timing an operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{
		name:  name,
		start: time.Now(),
	}

	// If this is the first timer, it becomes the root
	if c.root == nil {
		c.root = node
		c.current = node
	} else {
		// Add as child of current node
		node.parent = c.current
		c.current.children = append(c.current.children, node)
		c.current = node
	}

	return &timingTimer{
		collector: c,
		node:      node,
	}
}

// Report outputs the timing tree to a writer.
// Implemented in format.go
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}

	formatTimingTree(w, c.root, c.styles)
}

// timingTimer is a Timer implementation that records to a TimingCollector.
type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()

	// Move current back to parent
	if t.node.parent != nil && t.collector.current == t.node {
		t.collector.current = t.node.parent
	}
}

// Child creates a nested timer.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{
		name:   name,
		start:  time.Now(),
		parent: t.node,
	}

	t.node.children = append(t.node.children, node)

	return &timingTimer{
		collector: t.collector,
		node:      node,
	}
}
