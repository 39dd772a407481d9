package sim

import "fmt"

// SegmentState is the state label recorded in a process timeline.
type SegmentState string

const (
	SegmentWaiting SegmentState = "waiting"
	SegmentRunning SegmentState = "running"
	SegmentIO      SegmentState = "io"
)

// Interval is one entry of a process's state history. End is meaningful only once Open is false.
type Interval struct {
	State SegmentState
	Start int64
	End   int64
	Open  bool
}

// Segment is a closed, non-empty timeline interval handed to renderers.
type Segment struct {
	State SegmentState `json:"state" yaml:"state"`
	Start int64        `json:"start" yaml:"start"`
	End   int64        `json:"end" yaml:"end"`
}

// ProcessTimeline is the ordered list of segments covering [arrival, completion) of one process.
type ProcessTimeline struct {
	ID       int       `json:"id" yaml:"id"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// segmentFor maps a process state to the timeline label it records.
// Completed and new have no timeline presence.
var segmentFor = map[ProcessState]SegmentState{
	StateReady:   SegmentWaiting,
	StateRunning: SegmentRunning,
	StateBlocked: SegmentIO,
}

// validTransitions is the process state machine.
var validTransitions = map[ProcessState]map[ProcessState]bool{
	StateNew:     {StateReady: true},
	StateReady:   {StateRunning: true},
	StateRunning: {StateReady: true, StateBlocked: true, StateCompleted: true},
	StateBlocked: {StateReady: true, StateCompleted: true},
}

// transition moves the process to state `to`, closing the open history
// interval and opening a new one at tick `at`.
func (p *Process) transition(to ProcessState, at int64) error {
	if !validTransitions[p.State][to] {
		return fmt.Errorf("%w: process %d: illegal transition %s -> %s at tick %d",
			ErrInvariantViolation, p.ID, p.State, to, at)
	}
	p.closeOpen(at)
	if seg, ok := segmentFor[to]; ok {
		p.History = append(p.History, Interval{State: seg, Start: at, Open: true})
	}
	p.State = to
	return nil
}

// closeOpen ends every open interval at tick `at`.
func (p *Process) closeOpen(at int64) {
	for i := range p.History {
		if p.History[i].Open {
			p.History[i].End = at
			p.History[i].Open = false
		}
	}
}

// Timeline returns the closed, non-empty history segments in order.
// Zero-length intervals (e.g. admitted and dispatched on the same tick) are dropped.
func (p *Process) Timeline() ProcessTimeline {
	tl := ProcessTimeline{ID: p.ID, Segments: make([]Segment, 0, len(p.History))}
	for _, iv := range p.History {
		if iv.Open || iv.End <= iv.Start {
			continue
		}
		tl.Segments = append(tl.Segments, Segment{State: iv.State, Start: iv.Start, End: iv.End})
	}
	return tl
}
