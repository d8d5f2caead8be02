// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"errors"
	"fmt"
)

// Common errors returned by the library.
var (
	// ErrUnknownDataset is returned when a dataset identifier is not in the
	// built-in registry.
	ErrUnknownDataset = errors.New("unknown dataset identifier")

	// ErrEmptyAnnotation is returned when an annotation file contains no rows.
	ErrEmptyAnnotation = errors.New("annotation file contains no samples")
)

// PathTraversalError is returned when an archive member would be extracted
// outside the destination root. Extraction aborts before any byte of the
// offending member is written; callers should treat it as a security
// incident, never as a skippable condition.
type PathTraversalError struct {
	Member string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("archive member %q escapes the extraction root", e.Member)
}

// MissingClassError is returned when a class directory has no entry in the
// label map. Given that the map is built from the union of class names this
// should not occur, but the collector fails fast rather than guessing.
type MissingClassError struct {
	Class string
	Dir   string
}

func (e *MissingClassError) Error() string {
	return fmt.Sprintf("class %q found under %s has no label mapping", e.Class, e.Dir)
}

// InfeasibleSplitError is returned when a validation-side class has no (or
// not enough) samples in the training pool to draw a matching search subset.
type InfeasibleSplitError struct {
	Class string
	Label int
	Need  int
	Have  int
}

func (e *InfeasibleSplitError) Error() string {
	return fmt.Sprintf("split infeasible for class %q (label %d): need %d training samples, have %d",
		e.Class, e.Label, e.Need, e.Have)
}

// DownloadError wraps a transport error with the URL it occurred on.
// Network failures are never retried; they propagate to the caller after
// the partial archive has been cleaned up.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// VerificationError is returned when the archive checksum does not match.
type VerificationError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for %s: sha256 mismatch (expected %s, got %s)",
		e.Path, e.Expected, e.Actual)
}
