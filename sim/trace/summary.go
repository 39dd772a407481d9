package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Ticks           int         `json:"ticks" yaml:"ticks"`
	BusyTicks       int         `json:"busy_ticks" yaml:"busy_ticks"`
	IdleTicks       int         `json:"idle_ticks" yaml:"idle_ticks"`
	Arrivals        int         `json:"arrivals" yaml:"arrivals"`
	Dispatches      int         `json:"dispatches" yaml:"dispatches"`
	Preemptions     int         `json:"preemptions" yaml:"preemptions"`
	ContextSwitches int         `json:"context_switches" yaml:"context_switches"` // dispatches of a different process than the one dispatched before
	IOStarts        int         `json:"io_starts" yaml:"io_starts"`
	Completions     int         `json:"completions" yaml:"completions"`
	DispatchCounts  map[int]int `json:"dispatch_counts" yaml:"dispatch_counts"` // process ID → number of times it took the CPU
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DispatchCounts: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.Ticks = len(st.Steps)
	lastDispatched := 0
	for _, step := range st.Steps {
		if step.Running != 0 {
			summary.BusyTicks++
		} else {
			summary.IdleTicks++
		}
		for _, e := range step.Events {
			switch e.Kind {
			case EventArrival:
				summary.Arrivals++
			case EventDispatched:
				summary.Dispatches++
				summary.DispatchCounts[e.ProcessID]++
				if lastDispatched != 0 && lastDispatched != e.ProcessID {
					summary.ContextSwitches++
				}
				lastDispatched = e.ProcessID
			case EventPreempted:
				summary.Preemptions++
			case EventIOStart:
				summary.IOStarts++
			case EventCompleted, EventIOFinal:
				summary.Completions++
			}
		}
	}

	return summary
}
