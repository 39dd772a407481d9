// Package trace provides the step-by-step execution trace of a scheduling run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import (
	"strings"
)

// TraceLevel controls the verbosity of step tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps records one StepRecord per simulated tick.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects step records during a run.
type SimulationTrace struct {
	RunID  string
	Config TraceConfig
	Steps  []StepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(runID string, config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:  runID,
		Config: config,
		Steps:  make([]StepRecord, 0),
	}
}

// Enabled reports whether steps should be recorded. Safe on nil.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelSteps
}

// RecordStep appends a step record.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	st.Steps = append(st.Steps, record)
}

// Lines renders every step as one line of text.
func (st *SimulationTrace) Lines() []string {
	if st == nil {
		return nil
	}
	lines := make([]string, len(st.Steps))
	for i, s := range st.Steps {
		lines[i] = s.String()
	}
	return lines
}

func (st *SimulationTrace) String() string {
	return strings.Join(st.Lines(), "\n")
}
