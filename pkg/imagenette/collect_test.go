// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelMap(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"n02979186": {1, 1},
		"n01440764": {1, 0},
	})
	// A class present only on the validation side still gets a label.
	writeFile(t, filepath.Join(root, "val", "n03888257", "img_000.jpg"))

	labels, err := LabelMap(filepath.Join(root, "train"), filepath.Join(root, "val"))
	require.NoError(t, err)

	// Sorted union of both pools, dense zero-based.
	require.Equal(t, map[string]int{
		"n01440764": 0,
		"n02979186": 1,
		"n03888257": 2,
	}, labels)
}

func TestCollect(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {3, 0},
		"class_b": {2, 0},
	})
	trainDir := filepath.Join(root, "train")

	labels, err := LabelMap(trainDir)
	require.NoError(t, err)

	set, err := Collect(trainDir, labels)
	require.NoError(t, err)
	require.Len(t, set, 5)

	counts := set.ClassCounts()
	require.Equal(t, 3, counts[labels["class_a"]])
	require.Equal(t, 2, counts[labels["class_b"]])

	// Every path is unique.
	require.Len(t, set.Paths(), 5)
}

func TestCollectMissingClassMapping(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {1, 0},
	})

	_, err := Collect(filepath.Join(root, "train"), map[string]int{"other": 0})
	var missing *MissingClassError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "class_a", missing.Class)
}
