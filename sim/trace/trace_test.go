package trace

import (
	"testing"
)

func TestSimulationTrace_RecordStep_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for steps
	st := NewSimulationTrace("run-1", TraceConfig{Level: TraceLevelSteps})

	// WHEN a step record is recorded
	st.RecordStep(StepRecord{
		Clock:   3,
		Running: 2,
		Events:  []EventRecord{{Kind: EventDispatched, ProcessID: 2, Value: 4}},
	})

	// THEN the trace contains one step with correct data
	if len(st.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(st.Steps))
	}
	if st.Steps[0].Clock != 3 || st.Steps[0].Running != 2 {
		t.Errorf("unexpected step %+v", st.Steps[0])
	}
	if st.RunID != "run-1" {
		t.Errorf("expected run ID run-1, got %s", st.RunID)
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must not be enabled")
	}
	if NewSimulationTrace("", TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must not be enabled")
	}
	if !NewSimulationTrace("", TraceConfig{Level: TraceLevelSteps}).Enabled() {
		t.Error("level steps must be enabled")
	}
}

func TestStepRecord_String_MatchesLogFormat(t *testing.T) {
	step := StepRecord{
		Clock: 1,
		Events: []EventRecord{
			{Kind: EventArrival, ProcessID: 2, Value: 3},
			{Kind: EventPreempted, ProcessID: 1, Value: 4},
			{Kind: EventDispatched, ProcessID: 2, Value: 3},
		},
	}
	want := "Time 1: Process 2 arrived with burst 3. Process 1 preempted (remaining: 4). Process 2 is running (remaining: 3)."
	if got := step.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestEventRecord_String_AllKinds(t *testing.T) {
	tests := []struct {
		rec  EventRecord
		want string
	}{
		{EventRecord{Kind: EventIODone, ProcessID: 1, Value: 5}, "Process 1 IO completed, back to ready queue with next burst 5."},
		{EventRecord{Kind: EventIOFinal, ProcessID: 1}, "Process 1 has completed all bursts."},
		{EventRecord{Kind: EventIOStart, ProcessID: 3, Value: 2}, "Process 3 needs IO for 2 time units."},
		{EventRecord{Kind: EventNextBurst, ProcessID: 3, Value: 7}, "Process 3 starting next CPU burst (7)."},
		{EventRecord{Kind: EventCompleted, ProcessID: 4}, "Process 4 completed."},
		{EventRecord{Kind: EventIdle}, "CPU idle."},
	}
	for _, tt := range tests {
		t.Run(string(tt.rec.Kind), func(t *testing.T) {
			if got := tt.rec.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimulationTrace_Lines_PreservesOrder(t *testing.T) {
	// GIVEN a trace with two steps
	st := NewSimulationTrace("", TraceConfig{Level: TraceLevelSteps})
	st.RecordStep(StepRecord{Clock: 0, Events: []EventRecord{{Kind: EventIdle}}})
	st.RecordStep(StepRecord{Clock: 1, Events: []EventRecord{{Kind: EventIdle}}})

	// WHEN rendered
	lines := st.Lines()

	// THEN one line per step, in order
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "Time 0: CPU idle." || lines[1] != "Time 1: CPU idle." {
		t.Errorf("unexpected lines %q", lines)
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"steps", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"STEPS", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
