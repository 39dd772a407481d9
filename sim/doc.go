// Package sim provides the tick-driven PSRT-IO scheduling engine: preemptive
// shortest-remaining-time CPU scheduling over processes whose work alternates
// CPU and IO bursts.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (new → ready → running → blocked → completed)
//   - timeline.go: the state machine and the per-process interval history
//   - simulator.go: the tick loop (admit, resolve IO, preempt, dispatch, execute)
//
// # Layout
//
//   - spec.go: ProcessSpec, the immutable caller input, and its validation
//   - queue.go: arrival, ready (min-heap) and IO wait queues
//   - scheduler.go: the dispatch order and the preemption rule
//   - metrics.go: per-process results and suite averages
//   - sim/trace/: step trace records and their summary
//   - sim/workload/: YAML workload files, presets and the random generator
//
// Every run builds fresh Process values from its specs, so the same input
// always yields the same schedule.
package sim
