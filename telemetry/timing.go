package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/simledger/output"
)

// TimingCollector records a tree of timed operations and a set of named
// counters. It is safe for concurrent use.
type TimingCollector struct {
	mu       sync.Mutex
	roots    []*timerNode
	current  *timerNode
	counters map[string]int
	now      func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{
		counters: make(map[string]int),
		now:      time.Now,
	}
}

// Start begins timing an operation. The timer is nested under the most
// recently started timer that has not ended yet.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{
		name:   name,
		start:  c.now(),
		parent: c.current,
	}

	if c.current == nil {
		c.roots = append(c.roots, node)
	} else {
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Count adds delta to the named counter.
func (c *TimingCollector) Count(name string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counters[name] += delta
}

// Counter returns the current value of the named counter.
func (c *TimingCollector) Counter(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counters[name]
}

// Report writes the timing tree followed by the counters.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
	formatCounters(w, c.counters, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
	once      sync.Once
}

// End stops the timer. Calling End more than once has no effect.
func (t *timingTimer) End() {
	t.once.Do(func() {
		c := t.collector
		c.mu.Lock()
		defer c.mu.Unlock()

		t.node.end = c.now()
		if c.current == t.node {
			c.current = t.node.parent
		}
	})
}

// Child creates a timer nested under t, regardless of which timer is current.
func (t *timingTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{
		name:   name,
		start:  c.now(),
		parent: t.node,
	}
	t.node.children = append(t.node.children, node)
	c.current = node

	return &timingTimer{collector: c, node: node}
}
