package sim

import "github.com/psrt-sim/psrt-sim/sim/trace"

// SimConfig groups per-run options.
type SimConfig struct {
	Trace trace.TraceConfig // step trace collection (default: none)
	RunID string            // identifier stamped on the trace and report; generated when empty
}

// NewSimConfig creates a SimConfig with the given trace level and a generated run ID.
func NewSimConfig(level trace.TraceLevel) SimConfig {
	return SimConfig{Trace: trace.TraceConfig{Level: level}}
}
