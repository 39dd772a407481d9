package workload

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/psrt-sim/psrt-sim/sim"
)

// GeneratorSpec parameterizes synthetic workload generation.
// Durations are drawn uniformly from [Min, Max]; arrivals from [0, MaxArrival].
type GeneratorSpec struct {
	Seed         int64 `yaml:"seed"`
	NumProcesses int   `yaml:"num_processes"`
	MaxArrival   int64 `yaml:"max_arrival"`
	CPUMin       int64 `yaml:"cpu_min"`
	CPUMax       int64 `yaml:"cpu_max"`
	IOMin        int64 `yaml:"io_min"`
	IOMax        int64 `yaml:"io_max"`
	MaxIOBursts  int   `yaml:"max_io_bursts"` // upper bound on IO bursts per process
}

// DefaultGeneratorSpec returns a small mixed workload configuration.
func DefaultGeneratorSpec(seed int64) GeneratorSpec {
	return GeneratorSpec{
		Seed:         seed,
		NumProcesses: 5,
		MaxArrival:   10,
		CPUMin:       1,
		CPUMax:       8,
		IOMin:        1,
		IOMax:        4,
		MaxIOBursts:  2,
	}
}

// Validate checks the generator parameters.
func (g GeneratorSpec) Validate() error {
	if g.NumProcesses < 0 {
		return fmt.Errorf("num_processes must be non-negative, got %d", g.NumProcesses)
	}
	if g.MaxArrival < 0 {
		return fmt.Errorf("max_arrival must be non-negative, got %d", g.MaxArrival)
	}
	if g.CPUMin <= 0 || g.CPUMax < g.CPUMin {
		return fmt.Errorf("cpu range must satisfy 0 < min <= max, got [%d, %d]", g.CPUMin, g.CPUMax)
	}
	if g.MaxIOBursts < 0 {
		return fmt.Errorf("max_io_bursts must be non-negative, got %d", g.MaxIOBursts)
	}
	if g.MaxIOBursts > 0 && (g.IOMin <= 0 || g.IOMax < g.IOMin) {
		return fmt.Errorf("io range must satisfy 0 < min <= max, got [%d, %d]", g.IOMin, g.IOMax)
	}
	return nil
}

// Generate produces a reproducible workload: the same GeneratorSpec always
// yields the same processes. IDs are 1..NumProcesses.
func Generate(g GeneratorSpec) (*WorkloadSpec, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(g.Seed)
	arrivals := rng.ForStream(streamArrival)
	cpu := rng.ForStream(streamCPU)
	io := rng.ForStream(streamIO)

	specs := make([]sim.ProcessSpec, 0, g.NumProcesses)
	for i := 0; i < g.NumProcesses; i++ {
		ps := sim.NewProcessSpec(i+1, arrivals.Int63n(g.MaxArrival+1), uniform(cpu, g.CPUMin, g.CPUMax))
		numIO := 0
		if g.MaxIOBursts > 0 {
			numIO = io.Intn(g.MaxIOBursts + 1)
		}
		for j := 0; j < numIO; j++ {
			ps.AddIO(uniform(io, g.IOMin, g.IOMax), uniform(cpu, g.CPUMin, g.CPUMax))
		}
		specs = append(specs, ps)
	}
	logrus.Debugf("generated %d processes with seed %d", len(specs), g.Seed)
	return FromProcessSpecs(fmt.Sprintf("generated-%d", g.Seed), specs), nil
}

// uniform draws an integer from [lo, hi].
func uniform(rng *rand.Rand, lo, hi int64) int64 {
	return lo + rng.Int63n(hi-lo+1)
}
