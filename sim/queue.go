// Implements the three queues owned by the simulator: pending arrivals,
// the ready queue and the IO wait queue.

package sim

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// === ArrivalQueue ===

// ArrivalQueue holds processes that have not arrived yet, ordered by
// arrival time then ID.
type ArrivalQueue struct {
	queue []*Process
}

// NewArrivalQueue builds an arrival queue over procs. The input slice is not modified.
func NewArrivalQueue(procs []*Process) *ArrivalQueue {
	q := &ArrivalQueue{queue: append([]*Process(nil), procs...)}
	sort.SliceStable(q.queue, func(i, j int) bool {
		return arrivalLess(q.queue[i], q.queue[j])
	})
	return q
}

// Len returns the number of pending arrivals.
func (aq *ArrivalQueue) Len() int {
	return len(aq.queue)
}

// Peek returns the earliest pending arrival without removing it.
// Returns nil if the queue is empty.
func (aq *ArrivalQueue) Peek() *Process {
	if len(aq.queue) == 0 {
		return nil
	}
	return aq.queue[0]
}

// PopArrived removes and returns the earliest arrival if it is due at or before now.
// Returns nil otherwise.
func (aq *ArrivalQueue) PopArrived(now int64) *Process {
	next := aq.Peek()
	if next == nil || next.ArrivalTime > now {
		return nil
	}
	aq.queue = aq.queue[1:]
	return next
}

// === ReadyQueue ===

// readyHeap implements heap.Interface over the dispatch order.
type readyHeap []*Process

func (h readyHeap) Len() int           { return len(h) }
func (h readyHeap) Less(i, j int) bool { return readyLess(h[i], h[j]) }
func (h readyHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x any) {
	*h = append(*h, x.(*Process))
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// ReadyQueue holds processes waiting for the CPU. The head is always the
// process with the smallest (remaining burst, arrival time, ID).
// A process's key does not change while it is queued, so the heap never needs fixing.
type ReadyQueue struct {
	h readyHeap
}

// Push adds a process to the ready queue.
func (rq *ReadyQueue) Push(p *Process) {
	if p == nil {
		panic("ReadyQueue.Push: process must not be nil")
	}
	heap.Push(&rq.h, p)
}

// Pop removes and returns the head of the queue, or nil if empty.
func (rq *ReadyQueue) Pop() *Process {
	if len(rq.h) == 0 {
		return nil
	}
	return heap.Pop(&rq.h).(*Process)
}

// Peek returns the head without removing it, or nil if empty.
func (rq *ReadyQueue) Peek() *Process {
	if len(rq.h) == 0 {
		return nil
	}
	return rq.h[0]
}

// Len returns the number of ready processes.
func (rq *ReadyQueue) Len() int {
	return len(rq.h)
}

// Ordered returns a copy of the queue contents in dispatch order.
func (rq *ReadyQueue) Ordered() []*Process {
	out := append([]*Process(nil), rq.h...)
	OrderReady(out)
	return out
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range rq.Ordered() {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "P%d(%d)", p.ID, p.RemainingBurst)
	}
	sb.WriteString("]")
	return sb.String()
}

// === IOQueue ===

// IOWait pairs a remaining IO countdown with the blocked process.
type IOWait struct {
	Remaining int64
	Process   *Process
}

// IOQueue holds processes blocked on IO.
type IOQueue struct {
	waits []*IOWait
}

// Enqueue blocks p for duration ticks.
func (iq *IOQueue) Enqueue(p *Process, duration int64) {
	iq.waits = append(iq.waits, &IOWait{Remaining: duration, Process: p})
}

// Len returns the number of blocked processes.
func (iq *IOQueue) Len() int {
	return len(iq.waits)
}

// PopFinished sorts the queue by remaining countdown and removes every entry
// whose countdown has reached zero, in queue order.
func (iq *IOQueue) PopFinished() []*Process {
	sort.SliceStable(iq.waits, func(i, j int) bool {
		return iq.waits[i].Remaining < iq.waits[j].Remaining
	})
	var done []*Process
	for len(iq.waits) > 0 && iq.waits[0].Remaining == 0 {
		done = append(done, iq.waits[0].Process)
		iq.waits = iq.waits[1:]
	}
	return done
}

// Tick decrements every remaining countdown by one.
func (iq *IOQueue) Tick() {
	for _, w := range iq.waits {
		w.Remaining--
	}
}

// Items returns the queue contents. Callers MUST NOT modify the slice.
func (iq *IOQueue) Items() []*IOWait {
	return iq.waits
}
