// Package workload loads, validates and generates process workloads for the
// PSRT-IO simulator. Workloads are YAML documents listing processes with
// their arrival time and CPU/IO burst chain.
package workload

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/psrt-sim/psrt-sim/sim"
)

// CurrentVersion is the workload schema version written by this package.
const CurrentVersion = "1"

// WorkloadSpec is the top-level workload document.
// Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version   string         `yaml:"version"`
	Name      string         `yaml:"name,omitempty"`
	Processes []ProcessEntry `yaml:"processes"`
}

// ProcessEntry describes one process. The chain is given either as a flat
// alternating list (Bursts) or as a first CPU burst followed by IO/CPU pairs
// (Burst + IO), never both.
type ProcessEntry struct {
	ID          int       `yaml:"id"`
	ArrivalTime int64     `yaml:"arrival_time"`
	Bursts      []int64   `yaml:"bursts,omitempty"`
	Burst       int64     `yaml:"burst,omitempty"`
	IO          []IOEntry `yaml:"io,omitempty"`
}

// IOEntry is an IO wait followed by the CPU burst that runs after it.
type IOEntry struct {
	Wait int64 `yaml:"wait"`
	CPU  int64 `yaml:"cpu"`
}

var validVersions = map[string]bool{
	"":  true, // empty defaults to CurrentVersion
	"1": true,
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	spec, err := ParseWorkloadSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseWorkloadSpec decodes a YAML workload document with strict field checking.
func ParseWorkloadSpec(data []byte) (*WorkloadSpec, error) {
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		if err == io.EOF {
			return &WorkloadSpec{Version: CurrentVersion}, nil
		}
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = CurrentVersion
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid, including the
// process-level rules enforced by the simulator.
func (s *WorkloadSpec) Validate() error {
	if !validVersions[s.Version] {
		return fmt.Errorf("unknown workload version %q; valid: 1", s.Version)
	}
	if len(s.Processes) == 0 {
		logrus.Warnf("workload %q has no processes; the run will be empty", s.Name)
	}
	specs, err := s.ProcessSpecs()
	if err != nil {
		return err
	}
	return sim.ValidateSpecs(specs)
}

func (e *ProcessEntry) validateShape(idx int) error {
	prefix := fmt.Sprintf("processes[%d]", idx)
	hasFlat := len(e.Bursts) > 0
	hasPairs := e.Burst != 0 || len(e.IO) > 0
	if hasFlat && hasPairs {
		return fmt.Errorf("%w: %s: use either bursts or burst/io, not both", sim.ErrInvalidInput, prefix)
	}
	if !hasFlat && !hasPairs {
		return fmt.Errorf("%w: %s: no cpu burst given", sim.ErrInvalidInput, prefix)
	}
	return nil
}

// ProcessSpec converts the entry to the simulator input type.
func (e ProcessEntry) ProcessSpec() sim.ProcessSpec {
	if len(e.Bursts) > 0 {
		return sim.ProcessSpec{ID: e.ID, ArrivalTime: e.ArrivalTime, Bursts: append([]int64(nil), e.Bursts...)}
	}
	ps := sim.NewProcessSpec(e.ID, e.ArrivalTime, e.Burst)
	for _, pair := range e.IO {
		ps.AddIO(pair.Wait, pair.CPU)
	}
	return ps
}

// ProcessSpecs converts every entry, in document order.
func (s *WorkloadSpec) ProcessSpecs() ([]sim.ProcessSpec, error) {
	out := make([]sim.ProcessSpec, 0, len(s.Processes))
	for i := range s.Processes {
		if err := s.Processes[i].validateShape(i); err != nil {
			return nil, err
		}
		out = append(out, s.Processes[i].ProcessSpec())
	}
	return out, nil
}

// FromProcessSpecs builds a workload document from simulator specs using the flat burst form.
func FromProcessSpecs(name string, specs []sim.ProcessSpec) *WorkloadSpec {
	ws := &WorkloadSpec{Version: CurrentVersion, Name: name, Processes: make([]ProcessEntry, 0, len(specs))}
	for _, s := range specs {
		ws.Processes = append(ws.Processes, ProcessEntry{
			ID:          s.ID,
			ArrivalTime: s.ArrivalTime,
			Bursts:      append([]int64(nil), s.Bursts...),
		})
	}
	return ws
}

// Marshal renders the spec as YAML.
func (s *WorkloadSpec) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
