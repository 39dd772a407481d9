package workload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/psrt-sim/psrt-sim/sim"
)

// Built-in workload presets. Each returns a fresh, valid WorkloadSpec.
var presets = map[string]func() *WorkloadSpec{
	"default": PresetDefault,
	"preempt": PresetPreempt,
	"io":      PresetIO,
}

// PresetDefault is the five-process example mixing IO-bound and CPU-only processes.
func PresetDefault() *WorkloadSpec {
	p1 := sim.NewProcessSpec(1, 0, 3)
	p1.AddIO(2, 5)
	p2 := sim.NewProcessSpec(2, 1, 1)
	p3 := sim.NewProcessSpec(3, 2, 2)
	p3.AddIO(3, 1)
	p4 := sim.NewProcessSpec(4, 3, 2)
	p5 := sim.NewProcessSpec(5, 4, 4)
	p5.AddIO(1, 2)
	return FromProcessSpecs("default", []sim.ProcessSpec{p1, p2, p3, p4, p5})
}

// PresetPreempt is two CPU-only processes where the later arrival preempts the first.
func PresetPreempt() *WorkloadSpec {
	return FromProcessSpecs("preempt", []sim.ProcessSpec{
		sim.NewProcessSpec(1, 0, 5),
		sim.NewProcessSpec(2, 1, 3),
	})
}

// PresetIO is a single process with one IO burst between two CPU bursts.
func PresetIO() *WorkloadSpec {
	p := sim.NewProcessSpec(1, 0, 3)
	p.AddIO(2, 5)
	return FromProcessSpecs("io", []sim.ProcessSpec{p})
}

// PresetNames returns the registered preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named preset.
func Preset(name string) (*WorkloadSpec, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}
