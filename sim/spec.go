package sim

import (
	"fmt"
	"math"
)

// ProcessSpec is the immutable description of one process supplied by the caller.
// Bursts alternates CPU and IO durations and must start and end with a CPU burst:
// [cpu1, io1, cpu2, ..., cpuN].
type ProcessSpec struct {
	ID          int     `json:"id" yaml:"id"`
	ArrivalTime int64   `json:"arrival_time" yaml:"arrival_time"`
	Bursts      []int64 `json:"bursts" yaml:"bursts"`
}

// NewProcessSpec creates a spec with a single CPU burst.
func NewProcessSpec(id int, arrivalTime int64, cpuBurst int64) ProcessSpec {
	return ProcessSpec{ID: id, ArrivalTime: arrivalTime, Bursts: []int64{cpuBurst}}
}

// AddIO appends an IO burst followed by the CPU burst that runs after it.
func (s *ProcessSpec) AddIO(ioBurst, cpuBurst int64) {
	s.Bursts = append(s.Bursts, ioBurst, cpuBurst)
}

// CPUBursts returns the CPU durations of the chain in order.
func (s ProcessSpec) CPUBursts() []int64 {
	out := make([]int64, 0, len(s.Bursts)/2+1)
	for i := 0; i < len(s.Bursts); i += 2 {
		out = append(out, s.Bursts[i])
	}
	return out
}

// IOBursts returns the IO durations of the chain in order.
func (s ProcessSpec) IOBursts() []int64 {
	out := make([]int64, 0, len(s.Bursts)/2)
	for i := 1; i < len(s.Bursts); i += 2 {
		out = append(out, s.Bursts[i])
	}
	return out
}

// TotalBurstTime returns the sum of the CPU bursts.
func (s ProcessSpec) TotalBurstTime() int64 {
	var total int64
	for _, b := range s.CPUBursts() {
		total += b
	}
	return total
}

// Validate checks a single spec in isolation.
func (s ProcessSpec) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: process id must be positive, got %d", ErrInvalidInput, s.ID)
	}
	if s.ArrivalTime < 0 {
		return fmt.Errorf("%w: process %d: arrival time must be non-negative, got %d", ErrInvalidInput, s.ID, s.ArrivalTime)
	}
	if len(s.Bursts) == 0 {
		return fmt.Errorf("%w: process %d: burst chain is empty", ErrInvalidInput, s.ID)
	}
	if len(s.Bursts)%2 == 0 {
		return fmt.Errorf("%w: process %d: burst chain must start and end with a cpu burst, got %d entries", ErrInvalidInput, s.ID, len(s.Bursts))
	}
	for i, b := range s.Bursts {
		if b <= 0 {
			kind := "cpu"
			if i%2 == 1 {
				kind = "io"
			}
			return fmt.Errorf("%w: process %d: %s burst #%d must be positive, got %d", ErrInvalidInput, s.ID, kind, i, b)
		}
	}
	return nil
}

// ValidateSpecs checks every spec and rejects duplicate IDs. The last arrival
// plus every burst of the workload must fit in an int64 tick count.
func ValidateSpecs(specs []ProcessSpec) error {
	seen := make(map[int]bool, len(specs))
	var lastArrival, total int64
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate process id %d", ErrInvalidInput, s.ID)
		}
		seen[s.ID] = true
		lastArrival = max(lastArrival, s.ArrivalTime)
		for _, b := range s.Bursts {
			if b > math.MaxInt64-1-total {
				return fmt.Errorf("%w: process %d: total burst time overflows the tick counter", ErrInvalidInput, s.ID)
			}
			total += b
		}
	}
	if lastArrival > math.MaxInt64-1-total {
		return fmt.Errorf("%w: last arrival %d plus total burst time %d overflows the tick counter", ErrInvalidInput, lastArrival, total)
	}
	return nil
}

// Build materialises a fresh Process from the spec.
func (s ProcessSpec) Build() (*Process, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p := NewProcess(s.ID, s.ArrivalTime)
	for i, b := range s.Bursts {
		var err error
		if i%2 == 0 {
			err = p.AddCPUBurst(b)
		} else {
			err = p.AddIOBurst(b)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}
