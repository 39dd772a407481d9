// Tracks per-process results and suite-wide averages of a completed run.

package sim

import (
	"fmt"
	"io"
	"slices"
)

// ProcessResult is the per-process output record.
type ProcessResult struct {
	ID             int   `json:"id" yaml:"id"`
	ArrivalTime    int64 `json:"arrival_time" yaml:"arrival_time"`
	TotalBurstTime int64 `json:"total_burst_time" yaml:"total_burst_time"`
	CompletionTime int64 `json:"completion_time" yaml:"completion_time"`
	TurnaroundTime int64 `json:"turnaround_time" yaml:"turnaround_time"`
	WaitingTime    int64 `json:"waiting_time" yaml:"waiting_time"`
}

// Metrics aggregates statistics about the simulation for final reporting.
// Averages are exact; rounding happens only when printing.
type Metrics struct {
	Results            []ProcessResult `json:"results" yaml:"results"`
	CompletedProcesses int             `json:"completed_processes" yaml:"completed_processes"`
	TotalTurnaround    int64           `json:"total_turnaround" yaml:"total_turnaround"`
	TotalWaiting       int64           `json:"total_waiting" yaml:"total_waiting"`
	AvgTurnaroundTime  float64         `json:"avg_turnaround_time" yaml:"avg_turnaround_time"`
	AvgWaitingTime     float64         `json:"avg_waiting_time" yaml:"avg_waiting_time"`
	P90TurnaroundTime  float64         `json:"p90_turnaround_time" yaml:"p90_turnaround_time"`
	P90WaitingTime     float64         `json:"p90_waiting_time" yaml:"p90_waiting_time"`

	Makespan       int64   `json:"makespan" yaml:"makespan"`               // final clock
	BusyTicks      int64   `json:"busy_ticks" yaml:"busy_ticks"`           // ticks the CPU executed a process
	CPUUtilization float64 `json:"cpu_utilization" yaml:"cpu_utilization"` // BusyTicks / Makespan
	Throughput     float64 `json:"throughput" yaml:"throughput"`           // processes per tick
}

// NewMetrics aggregates results over procs. Every process must be completed.
func NewMetrics(procs []*Process, makespan, busyTicks int64) (*Metrics, error) {
	m := &Metrics{
		Results:   make([]ProcessResult, 0, len(procs)),
		Makespan:  makespan,
		BusyTicks: busyTicks,
	}
	turnarounds := make([]int64, 0, len(procs))
	waits := make([]int64, 0, len(procs))
	for _, p := range procs {
		if p.State != StateCompleted {
			return nil, fmt.Errorf("%w: metrics requested while process %d is %s", ErrInvariantViolation, p.ID, p.State)
		}
		m.Results = append(m.Results, ProcessResult{
			ID:             p.ID,
			ArrivalTime:    p.ArrivalTime,
			TotalBurstTime: p.TotalBurstTime,
			CompletionTime: p.CompletionTime,
			TurnaroundTime: p.TurnaroundTime,
			WaitingTime:    p.WaitingTime,
		})
		m.TotalTurnaround += p.TurnaroundTime
		m.TotalWaiting += p.WaitingTime
		turnarounds = append(turnarounds, p.TurnaroundTime)
		waits = append(waits, p.WaitingTime)
	}
	m.CompletedProcesses = len(m.Results)
	m.AvgTurnaroundTime = CalculateMean(turnarounds)
	m.AvgWaitingTime = CalculateMean(waits)
	slices.Sort(turnarounds)
	slices.Sort(waits)
	m.P90TurnaroundTime = CalculatePercentile(turnarounds, 90)
	m.P90WaitingTime = CalculatePercentile(waits, 90)
	if makespan > 0 {
		m.CPUUtilization = float64(busyTicks) / float64(makespan)
		m.Throughput = float64(m.CompletedProcesses) / float64(makespan)
	}
	return m, nil
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Completed Processes     : %d\n", m.CompletedProcesses)
	if m.CompletedProcesses > 0 {
		fmt.Fprintf(w, "Average Turnaround Time : %s ticks\n", FormatAverage(m.AvgTurnaroundTime))
		fmt.Fprintf(w, "Average Waiting Time    : %s ticks\n", FormatAverage(m.AvgWaitingTime))
		fmt.Fprintf(w, "P90 Turnaround Time     : %s ticks\n", FormatAverage(m.P90TurnaroundTime))
		fmt.Fprintf(w, "P90 Waiting Time        : %s ticks\n", FormatAverage(m.P90WaitingTime))
		fmt.Fprintf(w, "Makespan                : %d ticks\n", m.Makespan)
		fmt.Fprintf(w, "CPU Utilization         : %.1f%%\n", m.CPUUtilization*100)
		fmt.Fprintf(w, "Throughput              : %.3f processes/tick\n", m.Throughput)
	}
}
