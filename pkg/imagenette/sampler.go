// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"fmt"
	"math/rand"
)

// Sampler produces the index order a Loader walks in one epoch.
type Sampler interface {
	// Indices returns the sample indices for the current epoch, given the
	// dataset length.
	Indices(n int) []int

	// SetEpoch advances the epoch number, which reseeds shuffling samplers.
	SetEpoch(epoch int)
}

// sequentialSampler yields 0..n-1 in order.
type sequentialSampler struct{}

func (sequentialSampler) Indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (sequentialSampler) SetEpoch(int) {}

// shuffleSampler yields a permutation of 0..n-1 reseeded each epoch.
type shuffleSampler struct {
	seed  int64
	epoch int
}

func (s *shuffleSampler) Indices(n int) []int {
	rng := rand.New(rand.NewSource(s.seed + int64(s.epoch)))
	return rng.Perm(n)
}

func (s *shuffleSampler) SetEpoch(epoch int) { s.epoch = epoch }

// DistributedSampler shards a dataset across a fixed number of worker ranks
// so each rank sees a disjoint, equal-size slice per epoch.
//
// The dataset is padded by wrapping around so the total divides evenly by
// the number of replicas; with shuffling enabled the base permutation is
// reseeded from (seed, epoch) via SetEpoch, so all ranks agree on the
// assignment as long as they advance epochs together.
type DistributedSampler struct {
	rank        int
	numReplicas int
	shuffle     bool
	seed        int64
	epoch       int
}

// NewDistributedSampler builds a sampler for the given rank out of
// numReplicas total ranks.
func NewDistributedSampler(rank, numReplicas int, shuffle bool, seed int64) (*DistributedSampler, error) {
	if numReplicas <= 0 {
		return nil, fmt.Errorf("numReplicas must be positive, got %d", numReplicas)
	}
	if rank < 0 || rank >= numReplicas {
		return nil, fmt.Errorf("rank %d out of range [0,%d)", rank, numReplicas)
	}
	return &DistributedSampler{
		rank:        rank,
		numReplicas: numReplicas,
		shuffle:     shuffle,
		seed:        seed,
	}, nil
}

// Indices returns this rank's shard for the current epoch.
func (s *DistributedSampler) Indices(n int) []int {
	var base []int
	if s.shuffle {
		rng := rand.New(rand.NewSource(s.seed + int64(s.epoch)))
		base = rng.Perm(n)
	} else {
		base = make([]int, n)
		for i := range base {
			base[i] = i
		}
	}

	perReplica := (n + s.numReplicas - 1) / s.numReplicas
	total := perReplica * s.numReplicas
	// Pad by wrapping so every rank gets exactly perReplica indices.
	// The remainder can exceed len(base) when n < numReplicas, so pad
	// in chunks of at most len(base).
	for len(base) < total {
		k := total - len(base)
		if k > n {
			k = n
		}
		base = append(base, base[:k]...)
	}

	out := make([]int, 0, perReplica)
	for i := s.rank; i < total; i += s.numReplicas {
		out = append(out, base[i])
	}
	return out
}

// SetEpoch sets the epoch used to reseed the shuffle.
func (s *DistributedSampler) SetEpoch(epoch int) { s.epoch = epoch }
