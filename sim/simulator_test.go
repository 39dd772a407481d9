package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psrt-sim/psrt-sim/sim/internal/testutil"
	"github.com/psrt-sim/psrt-sim/sim/trace"
)

func mustSimulate(t *testing.T, specs []ProcessSpec) *Result {
	t.Helper()
	res, err := Simulate(specs, NewSimConfig(trace.TraceLevelSteps))
	require.NoError(t, err)
	return res
}

func resultByID(t *testing.T, m *Metrics, id int) ProcessResult {
	t.Helper()
	for _, r := range m.Results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no result for process %d", id)
	return ProcessResult{}
}

// assertTimelineCovers checks that each timeline is contiguous, non-overlapping
// and spans exactly [arrival, completion).
func assertTimelineCovers(t *testing.T, res *Result) {
	t.Helper()
	for i, tl := range res.Timelines {
		r := res.Metrics.Results[i]
		require.Equal(t, r.ID, tl.ID)
		if r.CompletionTime == r.ArrivalTime {
			continue
		}
		require.NotEmpty(t, tl.Segments, "P%d has no segments", tl.ID)
		assert.Equal(t, r.ArrivalTime, tl.Segments[0].Start, "P%d first segment", tl.ID)
		assert.Equal(t, r.CompletionTime, tl.Segments[len(tl.Segments)-1].End, "P%d last segment", tl.ID)
		for j := 1; j < len(tl.Segments); j++ {
			assert.Equal(t, tl.Segments[j-1].End, tl.Segments[j].Start, "P%d gap or overlap at segment %d", tl.ID, j)
		}
	}
}

// assertConservation checks running time equals CPU demand and io time equals IO demand per process.
func assertConservation(t *testing.T, specs []ProcessSpec, res *Result) {
	t.Helper()
	for i, s := range specs {
		var running, io int64
		for _, seg := range res.Timelines[i].Segments {
			switch seg.State {
			case SegmentRunning:
				running += seg.End - seg.Start
			case SegmentIO:
				io += seg.End - seg.Start
			}
		}
		var wantIO int64
		for _, d := range s.IOBursts() {
			wantIO += d
		}
		assert.Equal(t, s.TotalBurstTime(), running, "P%d running time", s.ID)
		assert.Equal(t, wantIO, io, "P%d io time", s.ID)
	}
}

func TestSimulate_LateShorterArrival_Preempts(t *testing.T) {
	// GIVEN P1@0 burst 5 and P2@1 burst 3
	specs := []ProcessSpec{NewProcessSpec(1, 0, 5), NewProcessSpec(2, 1, 3)}

	// WHEN simulated
	res := mustSimulate(t, specs)

	// THEN P2 preempts P1 at tick 1 and finishes first
	p1 := resultByID(t, res.Metrics, 1)
	p2 := resultByID(t, res.Metrics, 2)
	assert.Equal(t, int64(4), p2.CompletionTime)
	assert.Equal(t, int64(3), p2.TurnaroundTime)
	assert.Equal(t, int64(0), p2.WaitingTime)
	assert.Equal(t, int64(8), p1.CompletionTime)
	assert.Equal(t, int64(8), p1.TurnaroundTime)
	assert.Equal(t, int64(3), p1.WaitingTime)
	assert.Equal(t, []Segment{
		{State: SegmentRunning, Start: 0, End: 1},
		{State: SegmentWaiting, Start: 1, End: 4},
		{State: SegmentRunning, Start: 4, End: 8},
	}, res.Timelines[0].Segments)
	assert.Equal(t, 1, res.Summary.Preemptions)
}

func TestSimulate_IOBurst_BlockedForExactDuration(t *testing.T) {
	// GIVEN a single process [3, io 2, 5]
	s := NewProcessSpec(1, 0, 3)
	s.AddIO(2, 5)

	// WHEN simulated
	res := mustSimulate(t, []ProcessSpec{s})

	// THEN it runs 0-3, blocks 3-5, runs 5-10
	assert.Equal(t, []Segment{
		{State: SegmentRunning, Start: 0, End: 3},
		{State: SegmentIO, Start: 3, End: 5},
		{State: SegmentRunning, Start: 5, End: 10},
	}, res.Timelines[0].Segments)
	r := res.Metrics.Results[0]
	assert.Equal(t, int64(10), r.CompletionTime)
	assert.Equal(t, int64(2), r.WaitingTime, "waiting includes IO time")
	assert.Equal(t, int64(8), res.Metrics.BusyTicks)
	assert.Equal(t, 2, res.Summary.IdleTicks)
}

func TestSimulate_EmptyInput_ZeroResults(t *testing.T) {
	// GIVEN no processes
	// WHEN simulated
	res := mustSimulate(t, nil)

	// THEN there are no results, averages are zero and no tick executed
	assert.Empty(t, res.Metrics.Results)
	assert.Equal(t, 0.0, res.Metrics.AvgTurnaroundTime)
	assert.Equal(t, 0.0, res.Metrics.AvgWaitingTime)
	assert.Equal(t, int64(0), res.Metrics.Makespan)
	assert.Empty(t, res.Timelines)
	assert.Empty(t, res.Trace)
}

func TestSimulate_EqualBursts_TieBreakByArrivalThenID(t *testing.T) {
	// GIVEN three equal bursts; P3 arrives first, P1 and P2 tie on arrival
	specs := []ProcessSpec{
		NewProcessSpec(2, 1, 2),
		NewProcessSpec(1, 1, 2),
		NewProcessSpec(3, 0, 2),
	}

	// WHEN simulated
	res := mustSimulate(t, specs)

	// THEN P3 is never preempted by an equal burst, then P1 runs before P2
	assert.Equal(t, int64(2), resultByID(t, res.Metrics, 3).CompletionTime)
	assert.Equal(t, int64(4), resultByID(t, res.Metrics, 1).CompletionTime)
	assert.Equal(t, int64(6), resultByID(t, res.Metrics, 2).CompletionTime)
	assert.Equal(t, 0, res.Summary.Preemptions)

	// THEN results keep caller order
	assert.Equal(t, []int{2, 1, 3}, []int{res.Metrics.Results[0].ID, res.Metrics.Results[1].ID, res.Metrics.Results[2].ID})
}

func TestSimulate_IdleGapBeforeArrival(t *testing.T) {
	// GIVEN a single process arriving at tick 3
	res := mustSimulate(t, []ProcessSpec{NewProcessSpec(1, 3, 2)})

	// THEN the CPU idles for 3 ticks and the process never waits
	r := res.Metrics.Results[0]
	assert.Equal(t, int64(5), r.CompletionTime)
	assert.Equal(t, int64(0), r.WaitingTime)
	assert.Equal(t, 3, res.Summary.IdleTicks)
	assert.Equal(t, "Time 0: CPU idle.", res.Log[0])
	assert.InDelta(t, 0.4, res.Metrics.CPUUtilization, 1e-9)
}

func TestSimulate_SameInputTwice_IdenticalOutput(t *testing.T) {
	// GIVEN the default five-process workload
	specs := defaultSpecs()

	// WHEN simulated twice from the same input
	a := mustSimulate(t, specs)
	b := mustSimulate(t, specs)

	// THEN everything except the run ID is identical
	a.RunID, b.RunID = "", ""
	assert.Equal(t, a, b)
}

func TestSimulate_InputNotMutated(t *testing.T) {
	specs := defaultSpecs()
	before := make([][]int64, len(specs))
	for i, s := range specs {
		before[i] = append([]int64(nil), s.Bursts...)
	}

	mustSimulate(t, specs)

	for i, s := range specs {
		assert.Equal(t, before[i], s.Bursts, "P%d bursts changed", s.ID)
	}
}

func TestSimulate_CoverageAndConservation(t *testing.T) {
	tests := []struct {
		name  string
		specs []ProcessSpec
	}{
		{"default", defaultSpecs()},
		{"all io", func() []ProcessSpec {
			a := NewProcessSpec(1, 0, 1)
			a.AddIO(4, 1)
			a.AddIO(2, 2)
			b := NewProcessSpec(2, 0, 1)
			b.AddIO(1, 1)
			return []ProcessSpec{a, b}
		}()},
		{"staggered", []ProcessSpec{
			NewProcessSpec(1, 0, 7),
			NewProcessSpec(2, 2, 4),
			NewProcessSpec(3, 4, 1),
			NewProcessSpec(4, 5, 4),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustSimulate(t, tt.specs)
			assertTimelineCovers(t, res)
			assertConservation(t, tt.specs, res)
			for _, r := range res.Metrics.Results {
				assert.Equal(t, r.CompletionTime-r.ArrivalTime, r.TurnaroundTime)
				assert.Equal(t, r.TurnaroundTime-r.TotalBurstTime, r.WaitingTime)
				assert.GreaterOrEqual(t, r.WaitingTime, int64(0))
			}
		})
	}
}

func TestSimulator_Step_AtMostOneRunning(t *testing.T) {
	// GIVEN a simulator over the default workload
	s, err := NewSimulator(defaultSpecs(), NewSimConfig(trace.TraceLevelNone))
	require.NoError(t, err)

	// WHEN stepped tick by tick
	for !s.Done() {
		require.NoError(t, s.Step())

		// THEN at most one process is running, and it is the CPU holder
		running := 0
		for _, p := range s.Processes {
			if p.State == StateRunning {
				running++
				assert.Same(t, s.Running, p)
			}
		}
		assert.LessOrEqual(t, running, 1, "tick %d", s.Clock)
		require.Less(t, s.Clock, int64(100), "run did not terminate")
	}
	assert.Equal(t, len(s.Processes), s.CompletedCount)
}

func TestSimulator_Run_Twice_ErrAlreadyRun(t *testing.T) {
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 1)}, SimConfig{RunID: "fixed"})
	require.NoError(t, err)
	require.NoError(t, s.Run())
	assert.Equal(t, "fixed", s.RunID)
	assert.True(t, errors.Is(s.Run(), ErrAlreadyRun))
}

func TestNewSimulator_InvalidInput_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		specs []ProcessSpec
	}{
		{"duplicate id", []ProcessSpec{NewProcessSpec(1, 0, 1), NewProcessSpec(1, 0, 2)}},
		{"zero burst", []ProcessSpec{NewProcessSpec(1, 0, 0)}},
		{"negative arrival", []ProcessSpec{NewProcessSpec(1, -1, 3)}},
		{"trailing io", []ProcessSpec{{ID: 1, Bursts: []int64{2, 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator(tt.specs, SimConfig{})
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestNewSimulator_GeneratesRunID(t *testing.T) {
	a, err := NewSimulator(nil, SimConfig{})
	require.NoError(t, err)
	b, err := NewSimulator(nil, SimConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.RunID, a.Trace.RunID)
}

func TestSimulate_TraceDisabled_NoLog(t *testing.T) {
	res, err := Simulate(defaultSpecs(), SimConfig{})
	require.NoError(t, err)
	assert.Nil(t, res.Summary)
	assert.Empty(t, res.Trace)
	assert.Empty(t, res.Log)
}

func TestSimulate_StepLog_MatchesEventText(t *testing.T) {
	res := mustSimulate(t, defaultSpecs())
	require.Len(t, res.Log, 20)
	assert.Equal(t, "Time 0: Process 1 arrived with burst 3. Process 1 is running (remaining: 3).", res.Log[0])
	assert.Equal(t, "Time 1: Process 2 arrived with burst 1. Process 1 preempted (remaining: 2). Process 2 is running (remaining: 1). Process 2 completed.", res.Log[1])
	assert.Equal(t, "Time 3: Process 4 arrived with burst 2. Process 1 needs IO for 2 time units.", res.Log[3])
	assert.Equal(t, "Time 6: Process 1 IO completed, back to ready queue with next burst 5. Process 4 is running (remaining: 2).", res.Log[6])
	assert.Equal(t, "Time 19: Process 1 completed.", res.Log[19])
}

func TestSimulate_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			specs := make([]ProcessSpec, len(tc.Processes))
			for i, gp := range tc.Processes {
				specs[i] = ProcessSpec{ID: gp.ID, ArrivalTime: gp.ArrivalTime, Bursts: gp.Bursts}
			}
			res := mustSimulate(t, specs)

			m := res.Metrics
			assert.Equal(t, tc.Metrics.CompletedProcesses, m.CompletedProcesses, "completed_processes")
			assert.Equal(t, tc.Metrics.Makespan, m.Makespan, "makespan")
			assert.Equal(t, tc.Metrics.BusyTicks, m.BusyTicks, "busy_ticks")
			assert.Equal(t, tc.Metrics.Dispatches, res.Summary.Dispatches, "dispatches")
			assert.Equal(t, tc.Metrics.Preemptions, res.Summary.Preemptions, "preemptions")
			testutil.AssertFloat64Equal(t, "avg_turnaround_time", tc.Metrics.AvgTurnaroundTime, m.AvgTurnaroundTime, 1e-9)
			testutil.AssertFloat64Equal(t, "avg_waiting_time", tc.Metrics.AvgWaitingTime, m.AvgWaitingTime, 1e-9)

			for _, want := range tc.Results {
				got := resultByID(t, m, want.ID)
				assert.Equal(t, want.CompletionTime, got.CompletionTime, "P%d completion", want.ID)
				assert.Equal(t, want.TurnaroundTime, got.TurnaroundTime, "P%d turnaround", want.ID)
				assert.Equal(t, want.WaitingTime, got.WaitingTime, "P%d waiting", want.ID)
			}
			for i, want := range tc.Timelines {
				got := res.Timelines[i]
				require.Equal(t, want.ID, got.ID)
				require.Len(t, got.Segments, len(want.Segments), "P%d segments: %+v", want.ID, got.Segments)
				for j, ws := range want.Segments {
					assert.Equal(t, Segment{State: SegmentState(ws.State), Start: ws.Start, End: ws.End}, got.Segments[j], "P%d segment %d", want.ID, j)
				}
			}
		})
	}
}

func defaultSpecs() []ProcessSpec {
	p1 := NewProcessSpec(1, 0, 3)
	p1.AddIO(2, 5)
	p3 := NewProcessSpec(3, 2, 2)
	p3.AddIO(3, 1)
	p5 := NewProcessSpec(5, 4, 4)
	p5.AddIO(1, 2)
	return []ProcessSpec{p1, NewProcessSpec(2, 1, 1), p3, NewProcessSpec(4, 3, 2), p5}
}

func TestSimulator_Step_StrayRunningProcess_InvariantViolation(t *testing.T) {
	// GIVEN P1 holding the CPU and P2 queued behind it
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 3), NewProcessSpec(2, 0, 3)}, SimConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Step())
	require.Same(t, s.Processes[0], s.Running)

	// WHEN the queued process is marked running without holding the CPU
	s.Processes[1].State = StateRunning
	err = s.Step()

	// THEN the tick aborts
	assert.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
	assert.Contains(t, err.Error(), "process 2 is running but does not hold the CPU")
}

func TestSimulator_Step_CPUHolderNotRunning_InvariantViolation(t *testing.T) {
	// GIVEN P1 holding the CPU mid-burst
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 3)}, SimConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Step())

	// WHEN its state no longer says running
	s.Running.State = StateReady
	err = s.Step()

	// THEN execution refuses to run it
	assert.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
	assert.Contains(t, err.Error(), "holds the CPU in state ready")
}

func TestSimulator_Run_TickBudgetExhausted_InvariantViolation(t *testing.T) {
	// GIVEN a three-tick workload with a budget of one tick
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 3)}, SimConfig{})
	require.NoError(t, err)
	s.tickBudget = 1

	// WHEN run
	err = s.Run()

	// THEN the run aborts without metrics
	assert.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
	assert.Contains(t, err.Error(), "run exceeded 1 ticks with 0/1 processes completed")
	assert.Nil(t, s.Metrics)
}

func TestSimulator_Complete_CountOverflow_InvariantViolation(t *testing.T) {
	// GIVEN a running process and a completed count already at the process count
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 3)}, SimConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Step())
	s.CompletedCount = len(s.Processes)

	// WHEN the process completes
	err = s.complete(s.Running, 1)

	// THEN the overflow is reported
	assert.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
}

func TestSimulator_Step_ProcessQueuedTwice_InvariantViolation(t *testing.T) {
	// GIVEN P1 holding the CPU
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 3)}, SimConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Step())

	// WHEN it is also pushed onto the ready queue
	s.ReadyQ.Push(s.Processes[0])
	err = s.Step()

	// THEN queue accounting no longer matches the process count
	assert.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
	assert.Contains(t, err.Error(), "2 processes accounted for in queues, want 1")
}

func TestSimulator_Step_PendingArrivalsAccounted(t *testing.T) {
	// GIVEN a process arriving later than the first tick
	s, err := NewSimulator([]ProcessSpec{NewProcessSpec(1, 0, 1), NewProcessSpec(2, 5, 1)}, SimConfig{})
	require.NoError(t, err)

	// WHEN the first tick runs
	require.NoError(t, s.Step())

	// THEN P2 is still pending and P1 is completed
	assert.Equal(t, 1, s.Arrivals.Len())
	assert.Equal(t, 1, s.CompletedCount)
}
