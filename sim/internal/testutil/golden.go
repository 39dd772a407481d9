// Package testutil provides shared test infrastructure for the PSRT-IO simulator.
// It holds the golden dataset types and assertion helpers used across
// sim/ and sim/workload/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenProcess is one process of a golden workload.
type GoldenProcess struct {
	ID          int     `json:"id"`
	ArrivalTime int64   `json:"arrival_time"`
	Bursts      []int64 `json:"bursts"`
}

// GoldenResult is the expected per-process outcome.
type GoldenResult struct {
	ID             int   `json:"id"`
	CompletionTime int64 `json:"completion_time"`
	TurnaroundTime int64 `json:"turnaround_time"`
	WaitingTime    int64 `json:"waiting_time"`
}

// GoldenSegment is one expected timeline interval.
type GoldenSegment struct {
	State string `json:"state"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// GoldenTimeline is the expected timeline of one process.
type GoldenTimeline struct {
	ID       int             `json:"id"`
	Segments []GoldenSegment `json:"segments"`
}

// GoldenTestCase represents a single test case from the golden dataset.
type GoldenTestCase struct {
	Name      string           `json:"name"`
	Preset    string           `json:"preset"`
	Processes []GoldenProcess  `json:"processes"`
	Metrics   GoldenMetrics    `json:"metrics"`
	Results   []GoldenResult   `json:"results"`
	Timelines []GoldenTimeline `json:"timelines,omitempty"`
}

// GoldenMetrics represents the expected aggregate metrics of a golden test case.
type GoldenMetrics struct {
	// Exact match metrics (integers)
	CompletedProcesses int   `json:"completed_processes"`
	Makespan           int64 `json:"makespan"`
	BusyTicks          int64 `json:"busy_ticks"`
	Dispatches         int   `json:"dispatches"`
	Preemptions        int   `json:"preemptions"`

	// Averages, compared with tolerance
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
