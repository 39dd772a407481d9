package workload

import (
	"hash/fnv"
	"math/rand"
)

// RNG stream names used by Generate.
const (
	streamArrival = "arrival"
	streamCPU     = "cpu"
	streamIO      = "io"
)

// PartitionedRNG provides deterministic, isolated RNG streams per concern,
// so widening the IO range never reshuffles arrival times.
//
// Derivation formula: seed XOR fnv1a64(streamName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:    seed,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns a deterministically-seeded RNG for the named stream.
// The same name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.streams[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
