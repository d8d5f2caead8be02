// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"fmt"
	"time"
)

// Dataset describes a remote dataset archive.
//
// ID doubles as the directory name the archive unpacks to under the root
// directory, so `Ensure` can skip the download when `<root>/<ID>` already
// exists.
type Dataset struct {
	// ID is the dataset identifier, e.g. "imagenette2-160".
	ID string

	// URL is the archive location. Plain HTTP(S) GET, no authentication.
	URL string

	// SHA256 is an optional hex digest of the archive. When non-empty the
	// downloaded file is verified before extraction.
	SHA256 string
}

// Sample is a single annotated image: a file path plus its integer label.
//
// Labels are dense zero-based indices assigned by sorting the union of
// class-folder names lexicographically (see LabelMap).
type Sample struct {
	Path  string
	Label int
}

// AnnotationSet is an ordered collection of samples belonging to one split.
// Within a set every path is unique.
type AnnotationSet []Sample

// Paths returns the set of file paths contained in the annotation set.
func (a AnnotationSet) Paths() map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for _, s := range a {
		out[s.Path] = struct{}{}
	}
	return out
}

// ClassCounts returns the number of samples per label.
func (a AnnotationSet) ClassCounts() map[int]int {
	out := make(map[int]int)
	for _, s := range a {
		out[s.Label]++
	}
	return out
}

// ProgressEvent represents a progress update during fetch or extraction.
//
// The Event field indicates the type of event:
//   - "download_start": the archive download has started
//   - "download_progress": periodic progress update during download
//   - "verify": checksum verification of the archive
//   - "extract": archive extraction has started
//   - "skip": the dataset directory already exists, nothing to do
//   - "done": the dataset is ready on disk
//   - "error": an error occurred
type ProgressEvent struct {
	// Time is when the event occurred (UTC).
	Time time.Time `json:"time"`

	// Event is the event type identifier.
	Event string `json:"event"`

	// Dataset is the dataset being processed.
	Dataset string `json:"dataset,omitempty"`

	// Path is the local file or directory the event refers to.
	Path string `json:"path,omitempty"`

	// Downloaded is the cumulative bytes downloaded so far.
	Downloaded int64 `json:"downloaded,omitempty"`

	// Total is the total expected size in bytes (0 when unknown).
	Total int64 `json:"total,omitempty"`

	// Message contains additional context or error details.
	Message string `json:"message,omitempty"`
}

// ProgressFunc is a callback for receiving progress events.
//
// Implement this to display progress in a UI or log events. The callback may
// be invoked from the goroutine performing the download and should be cheap.
type ProgressFunc func(ProgressEvent)

// Split names produced by the stratified splitter.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitSearch     = "search"
	SplitTest       = "test"
)

// SplitNames lists the four split names in their canonical order.
var SplitNames = []string{SplitTrain, SplitValidation, SplitSearch, SplitTest}

// Normalization holds the per-channel mean and standard deviation applied
// when converting an image to a tensor.
type Normalization struct {
	Mean [3]float32
	Std  [3]float32
}

// DefaultNormalization returns the ImageNet normalization constants.
func DefaultNormalization() Normalization {
	return Normalization{
		Mean: [3]float32{0.485, 0.456, 0.406},
		Std:  [3]float32{0.229, 0.224, 0.225},
	}
}

func (n Normalization) validate() error {
	for i := 0; i < 3; i++ {
		if n.Std[i] == 0 {
			return fmt.Errorf("normalization std for channel %d is zero", i)
		}
	}
	return nil
}
