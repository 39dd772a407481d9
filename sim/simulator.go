// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/psrt-sim/psrt-sim/sim/trace"
)

// Simulator is the run context of one PSRT-IO simulation: the clock, the
// three queues, the running slot and the step trace. A Simulator is built
// from immutable specs, runs once, and is not safe for concurrent use.
type Simulator struct {
	RunID string
	Clock int64
	// Processes in caller order; every result and timeline follows this order.
	Processes []*Process
	Arrivals  *ArrivalQueue
	ReadyQ    *ReadyQueue
	IOQ       *IOQueue
	// Running is the process holding the CPU, nil when idle.
	Running        *Process
	CompletedCount int
	BusyTicks      int64
	Trace          *trace.SimulationTrace
	// Metrics is populated once Run returns without error.
	Metrics *Metrics

	tickBudget     int64
	needReschedule bool
	ran            bool
}

// NewSimulator validates specs and builds a fresh simulation over new Process
// entities. The specs are not retained or modified.
func NewSimulator(specs []ProcessSpec, cfg SimConfig) (*Simulator, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	procs := make([]*Process, 0, len(specs))
	var lastArrival, totalBursts int64
	for _, s := range specs {
		p, err := s.Build()
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
		lastArrival = max(lastArrival, s.ArrivalTime)
		for _, b := range s.Bursts {
			totalBursts += b
		}
	}

	return &Simulator{
		RunID:      runID,
		Processes:  procs,
		Arrivals:   NewArrivalQueue(procs),
		ReadyQ:     &ReadyQueue{},
		IOQ:        &IOQueue{},
		Trace:      trace.NewSimulationTrace(runID, cfg.Trace),
		// busy ticks are bounded by total CPU, idle ticks by the last arrival plus total IO
		tickBudget: lastArrival + totalBursts + 1,
	}, nil
}

// Done reports whether every process has completed.
func (sim *Simulator) Done() bool {
	return sim.CompletedCount == len(sim.Processes)
}

// Run executes ticks until every process completes, then closes any open
// history interval at the final clock and aggregates metrics.
// With zero processes it returns immediately with empty metrics.
func (sim *Simulator) Run() error {
	if sim.ran {
		return ErrAlreadyRun
	}
	sim.ran = true
	logrus.Infof("Starting PSRT-IO run %s with %d processes", sim.RunID, len(sim.Processes))

	for !sim.Done() {
		if sim.Clock > sim.tickBudget {
			return fmt.Errorf("%w: run exceeded %d ticks with %d/%d processes completed",
				ErrInvariantViolation, sim.tickBudget, sim.CompletedCount, len(sim.Processes))
		}
		if err := sim.Step(); err != nil {
			return err
		}
	}

	for _, p := range sim.Processes {
		p.closeOpen(sim.Clock)
	}

	m, err := NewMetrics(sim.Processes, sim.Clock, sim.BusyTicks)
	if err != nil {
		return err
	}
	sim.Metrics = m
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
	return nil
}

// Step simulates a single tick: admit arrivals, resolve IO, count down IO,
// preempt, dispatch, execute, advance the clock. Callers normally use Run.
func (sim *Simulator) Step() error {
	now := sim.Clock
	sim.needReschedule = false
	rec := trace.StepRecord{Clock: now}

	if err := sim.admitArrivals(now, &rec); err != nil {
		return err
	}
	if err := sim.resolveIO(now, &rec); err != nil {
		return err
	}
	sim.IOQ.Tick()
	if err := sim.preempt(now, &rec); err != nil {
		return err
	}
	if err := sim.dispatch(now, &rec); err != nil {
		return err
	}
	if err := sim.execute(now, &rec); err != nil {
		return err
	}
	if err := sim.checkInvariants(now); err != nil {
		return err
	}

	if sim.Trace.Enabled() {
		for _, p := range sim.ReadyQ.Ordered() {
			rec.Ready = append(rec.Ready, p.ID)
		}
		for _, w := range sim.IOQ.Items() {
			rec.Blocked = append(rec.Blocked, w.Process.ID)
		}
		sim.Trace.RecordStep(rec)
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("[tick %07d] %s ready=%s", now, rec.String(), sim.ReadyQ)
	}

	sim.Clock++
	return nil
}

// admitArrivals moves every process due at or before now into the ready queue.
func (sim *Simulator) admitArrivals(now int64, rec *trace.StepRecord) error {
	for p := sim.Arrivals.PopArrived(now); p != nil; p = sim.Arrivals.PopArrived(now) {
		p.StartNextBurst()
		if err := p.transition(StateReady, now); err != nil {
			return err
		}
		sim.ReadyQ.Push(p)
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventArrival, ProcessID: p.ID, Value: p.RemainingBurst})
		if shouldPreempt(sim.Running, p) {
			sim.needReschedule = true
		}
	}
	return nil
}

// resolveIO returns processes whose IO countdown reached zero to the ready
// queue, or completes them if no CPU work is left.
func (sim *Simulator) resolveIO(now int64, rec *trace.StepRecord) error {
	for _, p := range sim.IOQ.PopFinished() {
		p.StartNextBurst()
		if !p.Completed {
			if err := p.transition(StateReady, now); err != nil {
				return err
			}
			sim.ReadyQ.Push(p)
			rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventIODone, ProcessID: p.ID, Value: p.RemainingBurst})
			if shouldPreempt(sim.Running, p) {
				sim.needReschedule = true
			}
			continue
		}
		if err := sim.complete(p, now); err != nil {
			return err
		}
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventIOFinal, ProcessID: p.ID})
	}
	return nil
}

// preempt returns the running process to the ready queue when a strictly
// shorter burst is waiting. At most one preemption happens per tick.
func (sim *Simulator) preempt(now int64, rec *trace.StepRecord) error {
	p := sim.Running
	if p == nil {
		return nil
	}
	if !sim.needReschedule && !shouldPreempt(p, sim.ReadyQ.Peek()) {
		return nil
	}
	if err := p.transition(StateReady, now); err != nil {
		return err
	}
	sim.ReadyQ.Push(p)
	sim.Running = nil
	rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventPreempted, ProcessID: p.ID, Value: p.RemainingBurst})
	return nil
}

// dispatch gives a free CPU to the head of the ready queue.
func (sim *Simulator) dispatch(now int64, rec *trace.StepRecord) error {
	if sim.Running != nil || sim.ReadyQ.Len() == 0 {
		return nil
	}
	p := sim.ReadyQ.Pop()
	if err := p.transition(StateRunning, now); err != nil {
		return err
	}
	sim.Running = p
	rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventDispatched, ProcessID: p.ID, Value: p.RemainingBurst})
	return nil
}

// execute runs the CPU for one tick. When the running burst finishes, the
// process moves to IO, back to the ready queue, or to completion, all at now+1.
func (sim *Simulator) execute(now int64, rec *trace.StepRecord) error {
	p := sim.Running
	if p == nil {
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventIdle})
		return nil
	}
	if p.State != StateRunning {
		return fmt.Errorf("%w: process %d holds the CPU in state %s at tick %d", ErrInvariantViolation, p.ID, p.State, now)
	}

	p.RemainingBurst--
	p.RemainingTotalTime--
	sim.BusyTicks++
	rec.Running = p.ID
	if p.RemainingBurst > 0 {
		return nil
	}

	end := now + 1
	switch {
	case p.HasPendingIO():
		d := p.popIOBurst()
		if err := p.transition(StateBlocked, end); err != nil {
			return err
		}
		sim.IOQ.Enqueue(p, d)
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventIOStart, ProcessID: p.ID, Value: d})
	case p.HasMoreBursts():
		p.StartNextBurst()
		if err := p.transition(StateReady, end); err != nil {
			return err
		}
		sim.ReadyQ.Push(p)
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventNextBurst, ProcessID: p.ID, Value: p.RemainingBurst})
	default:
		if err := sim.complete(p, end); err != nil {
			return err
		}
		rec.Events = append(rec.Events, trace.EventRecord{Kind: trace.EventCompleted, ProcessID: p.ID})
	}
	sim.Running = nil
	return nil
}

// complete moves p to the terminal state and stamps its results at tick at.
func (sim *Simulator) complete(p *Process, at int64) error {
	if err := p.transition(StateCompleted, at); err != nil {
		return err
	}
	p.finish(at)
	sim.CompletedCount++
	if sim.CompletedCount > len(sim.Processes) {
		return fmt.Errorf("%w: completed count %d exceeds process count %d", ErrInvariantViolation, sim.CompletedCount, len(sim.Processes))
	}
	logrus.Debugf("[tick %07d] P%d completed: TAT=%d WT=%d", at, p.ID, p.TurnaroundTime, p.WaitingTime)
	return nil
}

// checkInvariants fails fast on inconsistent scheduler state.
func (sim *Simulator) checkInvariants(now int64) error {
	running := 0
	for _, p := range sim.Processes {
		if p.State == StateRunning {
			running++
			if p != sim.Running {
				return fmt.Errorf("%w: process %d is running but does not hold the CPU at tick %d", ErrInvariantViolation, p.ID, now)
			}
		}
		if p.RemainingTotalTime < 0 {
			return fmt.Errorf("%w: process %d has negative remaining time %d", ErrInvariantViolation, p.ID, p.RemainingTotalTime)
		}
		if (p.State == StateCompleted) != p.Completed {
			return fmt.Errorf("%w: process %d completed flag %v disagrees with state %s", ErrInvariantViolation, p.ID, p.Completed, p.State)
		}
	}
	if running > 1 {
		return fmt.Errorf("%w: %d processes running at tick %d", ErrInvariantViolation, running, now)
	}
	if sim.Running != nil && running == 0 {
		return fmt.Errorf("%w: CPU held by process %d in state %s at tick %d", ErrInvariantViolation, sim.Running.ID, sim.Running.State, now)
	}
	// every process is pending, ready, blocked, running or completed, exactly once
	held := 0
	if sim.Running != nil {
		held = 1
	}
	if n := sim.Arrivals.Len() + sim.ReadyQ.Len() + sim.IOQ.Len() + held + sim.CompletedCount; n != len(sim.Processes) {
		return fmt.Errorf("%w: %d processes accounted for in queues, want %d at tick %d", ErrInvariantViolation, n, len(sim.Processes), now)
	}
	return nil
}

// Timelines returns each process's closed timeline, in caller order.
func (sim *Simulator) Timelines() []ProcessTimeline {
	out := make([]ProcessTimeline, len(sim.Processes))
	for i, p := range sim.Processes {
		out[i] = p.Timeline()
	}
	return out
}

// Result bundles everything a renderer needs from one run.
type Result struct {
	RunID     string              `json:"run_id" yaml:"run_id"`
	Metrics   *Metrics            `json:"metrics" yaml:"metrics"`
	Timelines []ProcessTimeline   `json:"timelines" yaml:"timelines"`
	Summary   *trace.TraceSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Trace     []trace.StepRecord  `json:"trace,omitempty" yaml:"trace,omitempty"`
	Log       []string            `json:"log,omitempty" yaml:"log,omitempty"`
}

// Simulate builds a Simulator over specs, runs it and returns the result.
func Simulate(specs []ProcessSpec, cfg SimConfig) (*Result, error) {
	s, err := NewSimulator(specs, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	res := &Result{
		RunID:     s.RunID,
		Metrics:   s.Metrics,
		Timelines: s.Timelines(),
	}
	if s.Trace.Enabled() {
		res.Summary = trace.Summarize(s.Trace)
		res.Trace = s.Trace.Steps
		res.Log = s.Trace.Lines()
	}
	return res, nil
}
