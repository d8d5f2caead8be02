// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"os"
	"path/filepath"
	"sort"
)

// LabelMap builds the canonical class-name enumeration for a set of split
// directories: the sorted union of their immediate subdirectory names mapped
// to dense zero-based labels.
//
// Building the map from the union guarantees the same class gets the same
// integer in every split, even when a class is absent from one of the pools.
func LabelMap(dirs ...string) (map[string]int, error) {
	names := make(map[string]struct{})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				names[e.Name()] = struct{}{}
			}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	labels := make(map[string]int, len(sorted))
	for i, name := range sorted {
		labels[name] = i
	}
	return labels, nil
}

// Collect walks a split directory whose immediate children are class-name
// subdirectories and emits one Sample per contained file.
//
// Row order follows directory iteration order and is not part of the
// contract; callers should compare sets, not sequences. A class directory
// with no entry in labels fails fast with a *MissingClassError.
func Collect(splitDir string, labels map[string]int) (AnnotationSet, error) {
	entries, err := os.ReadDir(splitDir)
	if err != nil {
		return nil, err
	}

	var out AnnotationSet
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label, ok := labels[e.Name()]
		if !ok {
			return nil, &MissingClassError{Class: e.Name(), Dir: splitDir}
		}

		classDir := filepath.Join(splitDir, e.Name())
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			out = append(out, Sample{
				Path:  filepath.ToSlash(filepath.Join(classDir, f.Name())),
				Label: label,
			})
		}
	}
	return out, nil
}
