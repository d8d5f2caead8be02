// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// annotationHeader is the header row of every annotation file.
var annotationHeader = []string{"filepath", "label"}

// WriteAnnotation serializes an annotation set to a CSV file with the header
// "filepath,label", one record per sample. An existing file at path is
// overwritten. Paths containing the delimiter are quoted by the CSV writer.
func WriteAnnotation(set AnnotationSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(annotationHeader); err != nil {
		f.Close()
		return err
	}
	for _, s := range set {
		if err := w.Write([]string{s.Path, strconv.Itoa(s.Label)}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadAnnotation parses an annotation CSV written by WriteAnnotation.
func ReadAnnotation(path string) (AnnotationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 || rows[0][0] != annotationHeader[0] || rows[0][1] != annotationHeader[1] {
		return nil, fmt.Errorf("parse %s: missing %q header", path, "filepath,label")
	}

	set := make(AnnotationSet, 0, len(rows)-1)
	for _, row := range rows[1:] {
		label, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("parse %s: bad label %q: %w", path, row[1], err)
		}
		set = append(set, Sample{Path: row[0], Label: label})
	}
	return set, nil
}

// WriteAnnotations persists the four splits as CSV files under projectDir
// and returns the file path per split name.
func WriteAnnotations(splits map[string]AnnotationSet, projectDir string) (map[string]string, error) {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(SplitNames))
	for _, name := range SplitNames {
		set, ok := splits[name]
		if !ok {
			return nil, fmt.Errorf("missing %q split", name)
		}
		p := filepath.Join(projectDir, name+".csv")
		if err := WriteAnnotation(set, p); err != nil {
			return nil, err
		}
		paths[name] = p
	}
	return paths, nil
}
