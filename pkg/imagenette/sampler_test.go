// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistributedSamplerShards(t *testing.T) {
	const n, world = 11, 4

	perRank := make([][]int, world)
	counts := map[int]int{}
	for rank := 0; rank < world; rank++ {
		s, err := NewDistributedSampler(rank, world, false, 0)
		require.NoError(t, err)
		perRank[rank] = s.Indices(n)
		for _, idx := range perRank[rank] {
			counts[idx]++
		}
	}

	// Equal-size shards: ceil(11/4) = 3 each.
	for rank := 0; rank < world; rank++ {
		require.Len(t, perRank[rank], 3)
	}
	// All dataset indices covered; padding repeats at most one extra time.
	require.Len(t, counts, n)
	for idx, c := range counts {
		require.LessOrEqual(t, c, 2, "index %d assigned %d times", idx, c)
	}
}

func TestDistributedSamplerSmallDataset(t *testing.T) {
	// Fewer samples than replicas: padding wraps the single index so
	// every rank still gets a full shard.
	const n, world = 1, 4
	for rank := 0; rank < world; rank++ {
		s, err := NewDistributedSampler(rank, world, false, 0)
		require.NoError(t, err)
		require.Equal(t, []int{0}, s.Indices(n))
	}

	// Two samples across three ranks wrap in order.
	s, err := NewDistributedSampler(2, 3, false, 0)
	require.NoError(t, err)
	require.Equal(t, []int{0}, s.Indices(2))
}

func TestDistributedSamplerEpochReshuffle(t *testing.T) {
	s, err := NewDistributedSampler(0, 2, true, 9)
	require.NoError(t, err)

	first := s.Indices(20)
	s.SetEpoch(1)
	second := s.Indices(20)
	require.NotEqual(t, first, second)

	// Same epoch, same order: all ranks can agree on the assignment.
	s.SetEpoch(1)
	require.Equal(t, second, s.Indices(20))
}

func TestDistributedSamplerValidation(t *testing.T) {
	_, err := NewDistributedSampler(2, 2, false, 0)
	require.Error(t, err)
	_, err = NewDistributedSampler(0, 0, false, 0)
	require.Error(t, err)
}

func TestShuffleSamplerDeterminism(t *testing.T) {
	a := &shuffleSampler{seed: 3}
	b := &shuffleSampler{seed: 3}
	require.Equal(t, a.Indices(50), b.Indices(50))

	a.SetEpoch(1)
	require.NotEqual(t, a.Indices(50), b.Indices(50))
}
