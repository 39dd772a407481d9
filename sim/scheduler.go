package sim

import (
	"sort"
)

// readyLess is the PSRT-IO dispatch order: remaining burst (ascending), then
// arrival time (ascending), then ID (ascending). It is a total order over
// distinct processes, so the dispatch sequence never depends on insertion order.
func readyLess(a, b *Process) bool {
	if a.RemainingBurst != b.RemainingBurst {
		return a.RemainingBurst < b.RemainingBurst
	}
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.ID < b.ID
}

// arrivalLess orders pending arrivals by arrival time, then ID.
func arrivalLess(a, b *Process) bool {
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.ID < b.ID
}

// OrderReady sorts processes in-place by the dispatch order.
func OrderReady(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		return readyLess(procs[i], procs[j])
	})
}

// shouldPreempt reports whether candidate must take the CPU from running.
// Ties never preempt.
func shouldPreempt(running, candidate *Process) bool {
	return running != nil && candidate != nil && candidate.RemainingBurst < running.RemainingBurst
}
