// Defines the Process struct that models one schedulable unit in the simulation.
// Tracks arrival time, the CPU/IO burst chain, execution progress and state history.

package sim

import (
	"fmt"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNew       ProcessState = "new"
	StateReady     ProcessState = "ready"
	StateRunning   ProcessState = "running"
	StateBlocked   ProcessState = "blocked"
	StateCompleted ProcessState = "completed"
)

// Process models a single process's lifecycle in the simulation.
// Each process has:
// - an arrival time and an ordered burst chain (CPU and IO bursts consumed in lockstep)
// - an execution cursor for the in-progress CPU burst
// - state tracking and a history of state intervals
// - result fields filled in once it completes
type Process struct {
	ID          int   // Unique positive identifier
	ArrivalTime int64 // Tick at which the process enters the ready queue

	cpuBursts []int64 // pending CPU bursts, front is next
	ioBursts  []int64 // pending IO bursts, front is next

	TotalBurstTime     int64 // Sum of all CPU bursts, fixed once bursts are added
	RemainingTotalTime int64 // CPU time still owed across all bursts
	RemainingBurst     int64 // Remaining time of the in-progress CPU burst

	Completed bool
	State     ProcessState
	History   []Interval // append-only state intervals

	CompletionTime int64
	TurnaroundTime int64 // CompletionTime - ArrivalTime
	WaitingTime    int64 // TurnaroundTime - TotalBurstTime
}

// NewProcess creates a process in the "new" state with an empty burst chain.
func NewProcess(id int, arrivalTime int64) *Process {
	return &Process{
		ID:          id,
		ArrivalTime: arrivalTime,
		State:       StateNew,
	}
}

// AddCPUBurst appends a CPU burst to the chain.
func (p *Process) AddCPUBurst(duration int64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: process %d: cpu burst must be positive, got %d", ErrInvalidInput, p.ID, duration)
	}
	p.cpuBursts = append(p.cpuBursts, duration)
	p.TotalBurstTime += duration
	p.RemainingTotalTime += duration
	return nil
}

// AddIOBurst appends an IO burst to the chain.
func (p *Process) AddIOBurst(duration int64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: process %d: io burst must be positive, got %d", ErrInvalidInput, p.ID, duration)
	}
	p.ioBursts = append(p.ioBursts, duration)
	return nil
}

// StartNextBurst loads the next CPU burst into the execution cursor.
// With no bursts left the cursor is zeroed and the process is marked completed.
// State and history are left to the simulator.
func (p *Process) StartNextBurst() {
	if len(p.cpuBursts) > 0 {
		p.RemainingBurst = p.cpuBursts[0]
		p.cpuBursts = p.cpuBursts[1:]
		return
	}
	p.RemainingBurst = 0
	p.Completed = true
}

// HasMoreBursts reports whether CPU bursts remain in the chain.
func (p *Process) HasMoreBursts() bool {
	return len(p.cpuBursts) > 0
}

// HasPendingIO reports whether IO bursts remain in the chain.
func (p *Process) HasPendingIO() bool {
	return len(p.ioBursts) > 0
}

// popIOBurst removes and returns the next IO burst.
func (p *Process) popIOBurst() int64 {
	d := p.ioBursts[0]
	p.ioBursts = p.ioBursts[1:]
	return d
}

// finish stamps the result fields.
func (p *Process) finish(now int64) {
	p.State = StateCompleted
	p.Completed = true
	p.RemainingBurst = 0
	p.CompletionTime = now
	p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.TotalBurstTime
}

// This method returns a human-readable string representation of a Process.
func (p Process) String() string {
	return fmt.Sprintf("Process: (ID: %d, State: %s, RemainingBurst: %d, ArrivalTime: %d)", p.ID, p.State, p.RemainingBurst, p.ArrivalTime)
}
