package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	sim "github.com/psrt-sim/psrt-sim/sim"
)

var validFormats = []string{"table", "json", "yaml"}

func isValidFormat(f string) bool {
	for _, v := range validFormats {
		if f == v {
			return true
		}
	}
	return false
}

// Colors
var (
	accent  = lipgloss.Color("#FF5F87")
	muted   = lipgloss.Color("#666666")
	running = lipgloss.Color("#00CC66")
	waiting = lipgloss.Color("#D7AF00")
	blocked = lipgloss.Color("#5F87FF")
)

// maxGanttColumns bounds the chart width; longer runs skip the chart.
const maxGanttColumns = 500

var ganttGlyphs = map[sim.SegmentState]string{
	sim.SegmentRunning: "█",
	sim.SegmentWaiting: "░",
	sim.SegmentIO:      "▒",
}

// reportEntry is one workload's result in machine-readable output.
type reportEntry struct {
	Workload string      `json:"workload" yaml:"workload"`
	Result   *sim.Result `json:"result" yaml:"result"`
}

// writeReport renders every result in the requested format.
func writeReport(w io.Writer, format string, workloads []namedWorkload, results []*sim.Result) error {
	if len(workloads) != len(results) {
		return fmt.Errorf("have %d results for %d workloads", len(results), len(workloads))
	}
	entries := make([]reportEntry, len(results))
	for i, res := range results {
		entries[i] = reportEntry{Workload: workloads[i].Name, Result: res}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table", "":
		for i, e := range entries {
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderText(w, e)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// renderText prints the results table, the Gantt chart, the metrics block
// and, when traced, the step log.
func renderText(w io.Writer, e reportEntry) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	dim := r.NewStyle().Foreground(muted)
	res := e.Result

	fmt.Fprintln(w, title.Render("Workload "+e.Workload)+dim.Render(" (run "+res.RunID+")"))
	fmt.Fprintln(w, resultsTable(r, res.Metrics).Render())
	fmt.Fprintln(w)
	switch {
	case res.Metrics.Makespan > maxGanttColumns:
		fmt.Fprintln(w, dim.Render(fmt.Sprintf("Timeline omitted: makespan %d exceeds %d columns", res.Metrics.Makespan, maxGanttColumns)))
		fmt.Fprintln(w)
	case res.Metrics.Makespan > 0:
		fmt.Fprintln(w, title.Render("Timeline"))
		fmt.Fprint(w, renderGantt(r, res.Timelines, res.Metrics.Makespan))
		fmt.Fprintln(w)
	}
	res.Metrics.Print(w)
	if s := res.Summary; s != nil {
		fmt.Fprintf(w, "Dispatches              : %d\n", s.Dispatches)
		fmt.Fprintf(w, "Preemptions             : %d\n", s.Preemptions)
		fmt.Fprintf(w, "Context Switches        : %d\n", s.ContextSwitches)
		fmt.Fprintf(w, "Idle Ticks              : %d\n", s.IdleTicks)
	}
	if len(res.Log) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, title.Render("Step log"))
		for _, line := range res.Log {
			fmt.Fprintln(w, line)
		}
	}
}

// resultsTable builds the per-process table with a trailing averages row.
func resultsTable(r *lipgloss.Renderer, m *sim.Metrics) *table.Table {
	headerStyle := r.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)
	avgStyle := cellStyle.Foreground(accent).Bold(true)

	rows := make([][]string, 0, len(m.Results)+1)
	for _, pr := range m.Results {
		rows = append(rows, []string{
			fmt.Sprintf("P%d", pr.ID),
			strconv.FormatInt(pr.ArrivalTime, 10),
			strconv.FormatInt(pr.TotalBurstTime, 10),
			strconv.FormatInt(pr.CompletionTime, 10),
			strconv.FormatInt(pr.TurnaroundTime, 10),
			strconv.FormatInt(pr.WaitingTime, 10),
		})
	}
	rows = append(rows, []string{"Average", "", "", "",
		sim.FormatAverage(m.AvgTurnaroundTime), sim.FormatAverage(m.AvgWaitingTime)})
	avgRow := len(rows) - 1

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(muted)).
		Headers("Process", "Arrival", "Burst", "Completion", "Turnaround", "Waiting").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case avgRow:
				return avgStyle
			}
			return cellStyle
		})
}

// renderGantt draws one row per process, one column per tick, followed by
// a time axis and a legend.
func renderGantt(r *lipgloss.Renderer, timelines []sim.ProcessTimeline, makespan int64) string {
	styles := map[sim.SegmentState]lipgloss.Style{
		sim.SegmentRunning: r.NewStyle().Foreground(running),
		sim.SegmentWaiting: r.NewStyle().Foreground(waiting),
		sim.SegmentIO:      r.NewStyle().Foreground(blocked),
	}

	labelWidth := 0
	for _, tl := range timelines {
		labelWidth = max(labelWidth, len(fmt.Sprintf("P%d", tl.ID)))
	}

	var sb strings.Builder
	for _, tl := range timelines {
		fmt.Fprintf(&sb, "%-*s │", labelWidth, fmt.Sprintf("P%d", tl.ID))
		var cursor int64
		for _, seg := range tl.Segments {
			if seg.Start > cursor {
				sb.WriteString(strings.Repeat(" ", int(seg.Start-cursor)))
			}
			sb.WriteString(styles[seg.State].Render(strings.Repeat(ganttGlyphs[seg.State], int(seg.End-seg.Start))))
			cursor = seg.End
		}
		if makespan > cursor {
			sb.WriteString(strings.Repeat(" ", int(makespan-cursor)))
		}
		sb.WriteString("│\n")
	}
	fmt.Fprintf(&sb, "%s  %s\n", strings.Repeat(" ", labelWidth), ganttAxis(makespan))
	fmt.Fprintf(&sb, "%s  %s running  %s waiting  %s io\n", strings.Repeat(" ", labelWidth),
		styles[sim.SegmentRunning].Render(ganttGlyphs[sim.SegmentRunning]),
		styles[sim.SegmentWaiting].Render(ganttGlyphs[sim.SegmentWaiting]),
		styles[sim.SegmentIO].Render(ganttGlyphs[sim.SegmentIO]))
	return sb.String()
}

// ganttAxis labels every fifth tick, e.g. "0    5    10".
func ganttAxis(makespan int64) string {
	axis := []byte(strings.Repeat(" ", int(makespan)+1))
	for t := int64(0); t <= makespan; t += 5 {
		label := strconv.FormatInt(t, 10)
		if int(t)+len(label) > len(axis) {
			axis = append(axis, strings.Repeat(" ", int(t)+len(label)-len(axis))...)
		}
		copy(axis[t:], label)
	}
	return strings.TrimRight(string(axis), " ")
}
