// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"math/rand"
	"path/filepath"
	"sort"
)

// Split carves the dataset under datasetDir into four disjoint annotation
// sets: train, validation, search and test.
//
// datasetDir must contain "train" and "val" subdirectories whose immediate
// children are class folders. The algorithm:
//
//  1. Build the label map from the sorted union of class names in both pools.
//  2. For each class, move half of the validation pool into test. Odd counts
//     round half up: a class with n validation samples contributes
//     (n+1)/2 test rows, so a single-sample class yields one test row and
//     zero validation rows.
//  3. validation = validation pool minus test, by exact path difference.
//  4. For each class present in test, draw the same number of rows from the
//     training pool into search. A class missing from the training pool (or
//     smaller than its test count) makes the split infeasible and returns
//     *InfeasibleSplitError.
//  5. train = training pool minus search.
//
// Membership of every set is a deterministic function of the directory
// contents and seed: per-class sampling shuffles the lexicographically
// sorted path list with a generator seeded from (seed, label), so directory
// iteration order never leaks into the result. Row order within a set is not
// guaranteed.
func Split(datasetDir string, seed int64) (map[string]AnnotationSet, error) {
	trainDir := filepath.Join(datasetDir, "train")
	valDir := filepath.Join(datasetDir, "val")

	labels, err := LabelMap(trainDir, valDir)
	if err != nil {
		return nil, err
	}
	classOf := make(map[int]string, len(labels))
	for name, label := range labels {
		classOf[label] = name
	}

	trainPool, err := Collect(trainDir, labels)
	if err != nil {
		return nil, err
	}
	valPool, err := Collect(valDir, labels)
	if err != nil {
		return nil, err
	}

	// Half of each validation class, rounded half up.
	test := sampleHalf(valPool, seed)
	validation := difference(valPool, test)

	search, err := sampleMatching(trainPool, test.ClassCounts(), classOf, seed)
	if err != nil {
		return nil, err
	}
	train := difference(trainPool, search)

	return map[string]AnnotationSet{
		SplitTrain:      train,
		SplitValidation: validation,
		SplitSearch:     search,
		SplitTest:       test,
	}, nil
}

// sampleHalf draws (n+1)/2 samples per class, uniformly without replacement.
func sampleHalf(pool AnnotationSet, seed int64) AnnotationSet {
	var out AnnotationSet
	for _, label := range sortedLabels(pool) {
		paths := classPaths(pool, label)
		k := (len(paths) + 1) / 2
		for _, p := range samplePaths(paths, k, seed, label) {
			out = append(out, Sample{Path: p, Label: label})
		}
	}
	return out
}

// sampleMatching draws counts[label] samples per class from pool. Every
// label in counts must exist in pool with at least that many samples.
func sampleMatching(pool AnnotationSet, counts map[int]int, classOf map[int]string, seed int64) (AnnotationSet, error) {
	labels := make([]int, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	var out AnnotationSet
	for _, label := range labels {
		need := counts[label]
		paths := classPaths(pool, label)
		if len(paths) < need {
			return nil, &InfeasibleSplitError{
				Class: classOf[label],
				Label: label,
				Need:  need,
				Have:  len(paths),
			}
		}
		for _, p := range samplePaths(paths, need, seed, label) {
			out = append(out, Sample{Path: p, Label: label})
		}
	}
	return out, nil
}

// samplePaths picks k paths uniformly without replacement. The input is
// sorted before shuffling so the draw depends only on (seed, label) and the
// path set itself.
func samplePaths(paths []string, k int, seed int64, label int) []string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	rng := rand.New(rand.NewSource(seed + int64(label)*0x9E3779B9))
	rng.Shuffle(len(sorted), func(i, j int) {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	})
	return sorted[:k]
}

// difference returns the samples of a whose paths are not in b.
func difference(a, b AnnotationSet) AnnotationSet {
	drop := b.Paths()
	var out AnnotationSet
	for _, s := range a {
		if _, ok := drop[s.Path]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedLabels(set AnnotationSet) []int {
	seen := set.ClassCounts()
	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

func classPaths(set AnnotationSet, label int) []string {
	var out []string
	for _, s := range set {
		if s.Label == label {
			out = append(out, s.Path)
		}
	}
	return out
}
