// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeDataset creates a train/val directory tree. counts maps class name to
// [trainCount, valCount].
func makeDataset(t *testing.T, counts map[string][2]int) string {
	t.Helper()
	root := t.TempDir()
	for class, n := range counts {
		for i := 0; i < n[0]; i++ {
			writeFile(t, filepath.Join(root, "train", class, fmt.Sprintf("img_%03d.jpg", i)))
		}
		for i := 0; i < n[1]; i++ {
			writeFile(t, filepath.Join(root, "val", class, fmt.Sprintf("img_%03d.jpg", i)))
		}
	}
	// Both subdirectories must exist even if a class has zero files on a side.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "train"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "val"), 0o755))
	return root
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func pathSet(set AnnotationSet) map[string]struct{} {
	return set.Paths()
}

func TestSplit(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {10, 4},
		"class_b": {6, 2},
	})

	splits, err := Split(root, 7)
	require.NoError(t, err)

	train := splits[SplitTrain]
	validation := splits[SplitValidation]
	search := splits[SplitSearch]
	test := splits[SplitTest]

	t.Run("test takes half of each validation class", func(t *testing.T) {
		counts := test.ClassCounts()
		require.Equal(t, 2, counts[0]) // class_a: 4 val -> 2 test
		require.Equal(t, 1, counts[1]) // class_b: 2 val -> 1 test
	})

	t.Run("search matches test class sizes", func(t *testing.T) {
		require.Equal(t, test.ClassCounts(), search.ClassCounts())
	})

	t.Run("splits are disjoint and exhaustive", func(t *testing.T) {
		for p := range pathSet(search) {
			_, ok := pathSet(train)[p]
			require.False(t, ok, "path %s in both train and search", p)
		}
		for p := range pathSet(test) {
			_, ok := pathSet(validation)[p]
			require.False(t, ok, "path %s in both validation and test", p)
		}
		require.Equal(t, 16, len(train)+len(search))
		require.Equal(t, 6, len(validation)+len(test))
	})

	t.Run("labels follow sorted class names", func(t *testing.T) {
		for _, s := range append(append(AnnotationSet{}, train...), search...) {
			if filepath.Base(filepath.Dir(s.Path)) == "class_a" {
				require.Equal(t, 0, s.Label)
			} else {
				require.Equal(t, 1, s.Label)
			}
		}
	})
}

func TestSplitDeterminism(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {10, 4},
		"class_b": {6, 2},
		"class_c": {8, 6},
	})

	first, err := Split(root, 42)
	require.NoError(t, err)
	second, err := Split(root, 42)
	require.NoError(t, err)

	for _, name := range SplitNames {
		require.Equal(t, pathSet(first[name]), pathSet(second[name]), "split %s differs between runs", name)
	}

	// A different seed should move at least one path in some split.
	other, err := Split(root, 43)
	require.NoError(t, err)
	same := true
	for _, name := range SplitNames {
		if len(pathSet(first[name])) != len(pathSet(other[name])) {
			same = false
			break
		}
		for p := range pathSet(first[name]) {
			if _, ok := pathSet(other[name])[p]; !ok {
				same = false
			}
		}
	}
	require.False(t, same, "different seeds produced identical splits")
}

func TestSplitOddCountsRoundHalfUp(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {5, 3},
		"class_b": {4, 1},
	})

	splits, err := Split(root, 1)
	require.NoError(t, err)

	testCounts := splits[SplitTest].ClassCounts()
	valCounts := splits[SplitValidation].ClassCounts()

	// 3 validation samples -> 2 test, 1 validation.
	require.Equal(t, 2, testCounts[0])
	require.Equal(t, 1, valCounts[0])

	// A single-sample class yields one test row and zero validation rows.
	require.Equal(t, 1, testCounts[1])
	require.Equal(t, 0, valCounts[1])
}

func TestSplitInfeasible(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {10, 4},
	})
	// class_c exists only on the validation side.
	writeFile(t, filepath.Join(root, "val", "class_c", "img_000.jpg"))

	_, err := Split(root, 7)
	var infeasible *InfeasibleSplitError
	require.ErrorAs(t, err, &infeasible)
	require.Equal(t, "class_c", infeasible.Class)
	require.Equal(t, 1, infeasible.Need)
	require.Equal(t, 0, infeasible.Have)
}

func TestSplitLabelConsistencyAcrossFiles(t *testing.T) {
	root := makeDataset(t, map[string][2]int{
		"class_a": {4, 2},
		"class_b": {4, 2},
	})

	splits, err := Split(root, 3)
	require.NoError(t, err)

	out := t.TempDir()
	paths, err := WriteAnnotations(splits, out)
	require.NoError(t, err)

	labelFor := map[string]int{}
	for _, name := range SplitNames {
		set, err := ReadAnnotation(paths[name])
		require.NoError(t, err)
		for _, s := range set {
			class := filepath.Base(filepath.Dir(s.Path))
			if prev, ok := labelFor[class]; ok {
				require.Equal(t, prev, s.Label, "class %s has inconsistent labels across files", class)
			} else {
				labelFor[class] = s.Label
			}
		}
	}
	require.Equal(t, map[string]int{"class_a": 0, "class_b": 1}, labelFor)
}
