package trace

import (
	"fmt"
	"strings"
)

// EventKind labels what happened to a process during a tick.
type EventKind string

const (
	EventArrival    EventKind = "arrival"     // admitted to the ready queue
	EventIODone     EventKind = "io-done"     // IO finished, back to ready queue
	EventIOFinal    EventKind = "io-final"    // IO finished with no CPU work left
	EventPreempted  EventKind = "preempted"   // lost the CPU to a shorter burst
	EventDispatched EventKind = "dispatched"  // took the CPU
	EventIOStart    EventKind = "io-start"    // burst ended, blocked on IO
	EventNextBurst  EventKind = "next-burst"  // burst ended, next CPU burst queued
	EventCompleted  EventKind = "completed"   // last CPU burst ended
	EventIdle       EventKind = "idle"        // no process held the CPU
)

// EventRecord is a single scheduler decision within a tick.
// Value carries the burst length, remaining time or IO duration relevant to Kind.
type EventRecord struct {
	Kind      EventKind `json:"kind" yaml:"kind"`
	ProcessID int       `json:"process_id,omitempty" yaml:"process_id,omitempty"`
	Value     int64     `json:"value,omitempty" yaml:"value,omitempty"`
}

func (e EventRecord) String() string {
	switch e.Kind {
	case EventArrival:
		return fmt.Sprintf("Process %d arrived with burst %d.", e.ProcessID, e.Value)
	case EventIODone:
		return fmt.Sprintf("Process %d IO completed, back to ready queue with next burst %d.", e.ProcessID, e.Value)
	case EventIOFinal:
		return fmt.Sprintf("Process %d has completed all bursts.", e.ProcessID)
	case EventPreempted:
		return fmt.Sprintf("Process %d preempted (remaining: %d).", e.ProcessID, e.Value)
	case EventDispatched:
		return fmt.Sprintf("Process %d is running (remaining: %d).", e.ProcessID, e.Value)
	case EventIOStart:
		return fmt.Sprintf("Process %d needs IO for %d time units.", e.ProcessID, e.Value)
	case EventNextBurst:
		return fmt.Sprintf("Process %d starting next CPU burst (%d).", e.ProcessID, e.Value)
	case EventCompleted:
		return fmt.Sprintf("Process %d completed.", e.ProcessID)
	case EventIdle:
		return "CPU idle."
	default:
		return fmt.Sprintf("%s P%d (%d).", e.Kind, e.ProcessID, e.Value)
	}
}

// StepRecord captures everything the scheduler did in one tick.
// Running is the ID of the process that executed this tick, 0 if the CPU was idle.
type StepRecord struct {
	Clock   int64         `json:"clock" yaml:"clock"`
	Events  []EventRecord `json:"events" yaml:"events"`
	Running int           `json:"running,omitempty" yaml:"running,omitempty"`
	Ready   []int         `json:"ready,omitempty" yaml:"ready,omitempty"` // ready queue in dispatch order after the tick
	Blocked []int         `json:"blocked,omitempty" yaml:"blocked,omitempty"`
}

func (s StepRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Time %d:", s.Clock)
	for _, e := range s.Events {
		sb.WriteString(" ")
		sb.WriteString(e.String())
	}
	return sb.String()
}
