package ledger

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Stats counts the transactions a ledger applied and rejected.
type Stats struct {
	Applied int
	// Rejected maps an error kind (see ErrorKind) to its count.
	Rejected map[string]int
}

func newStats() Stats {
	return Stats{Rejected: make(map[string]int)}
}

func (s *Stats) record(err error) {
	if err == nil {
		s.Applied++
		return
	}
	if s.Rejected == nil {
		s.Rejected = make(map[string]int)
	}
	s.Rejected[ErrorKind(err)]++
}

// RejectedTotal returns the number of rejected transactions.
func (s Stats) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// Total returns the number of executed transactions.
func (s Stats) Total() int {
	return s.Applied + s.RejectedTotal()
}

// Kinds returns the rejected error kinds in sorted order.
func (s Stats) Kinds() []string {
	kinds := maps.Keys(s.Rejected)
	slices.Sort(kinds)
	return kinds
}

// Merge adds the counts of other to s.
func (s *Stats) Merge(other Stats) {
	s.Applied += other.Applied
	for kind, n := range other.Rejected {
		if s.Rejected == nil {
			s.Rejected = make(map[string]int)
		}
		s.Rejected[kind] += n
	}
}

func (s Stats) clone() Stats {
	c := Stats{Applied: s.Applied, Rejected: make(map[string]int, len(s.Rejected))}
	for kind, n := range s.Rejected {
		c.Rejected[kind] = n
	}
	return c
}
