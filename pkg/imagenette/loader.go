// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	// Register decoders for the dataset image formats.
	_ "image/jpeg"
	_ "image/png"
)

// AnnotationDataset is a lazy dataset backed by an annotation CSV: images
// are opened, decoded and transformed only when an item is fetched.
type AnnotationDataset struct {
	samples   AnnotationSet
	rootDir   string
	transform Transform
}

// NewAnnotationDataset reads an annotation file and wraps it as a dataset.
// When rootDir is non-empty, relative sample paths resolve against it.
func NewAnnotationDataset(annotationPath string, transform Transform, rootDir string) (*AnnotationDataset, error) {
	samples, err := ReadAnnotation(annotationPath)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: %w", annotationPath, ErrEmptyAnnotation)
	}
	return &AnnotationDataset{samples: samples, rootDir: rootDir, transform: transform}, nil
}

// Len returns the number of samples.
func (d *AnnotationDataset) Len() int { return len(d.samples) }

// At decodes and transforms sample i.
func (d *AnnotationDataset) At(i int) (*Tensor, int, error) {
	if i < 0 || i >= len(d.samples) {
		return nil, 0, fmt.Errorf("sample index %d out of range [0,%d)", i, len(d.samples))
	}
	s := d.samples[i]

	path := s.Path
	if d.rootDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(d.rootDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	t, err := d.transform.Apply(img)
	if err != nil {
		return nil, 0, err
	}
	return t, s.Label, nil
}

// Batch is one batch of transformed samples. Images[i] corresponds to
// Labels[i].
type Batch struct {
	Images []*Tensor
	Labels []int
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// BatchSize is the number of samples per batch. Required, must be > 0.
	BatchSize int

	// Shuffle reshuffles the iteration order at every Reset. Ignored when a
	// custom Sampler is provided.
	Shuffle bool

	// DropLast discards a final batch smaller than BatchSize.
	DropLast bool

	// NumWorkers bounds how many images are decoded concurrently per batch.
	// Values <= 1 decode sequentially.
	NumWorkers int

	// Seed seeds the shuffling sampler.
	Seed int64

	// Sampler overrides the default index order, e.g. a DistributedSampler
	// for multi-rank training.
	Sampler Sampler
}

// Loader iterates a dataset in batches. One full pass per epoch: Next
// returns io.EOF when the epoch is exhausted and Reset starts the next one.
type Loader struct {
	dataset *AnnotationDataset
	opts    LoaderOptions
	sampler Sampler

	mu    sync.Mutex
	order []int
	pos   int
	epoch int
}

// NewLoader builds a batched loader over the dataset.
func NewLoader(dataset *AnnotationDataset, opts LoaderOptions) (*Loader, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}

	sampler := opts.Sampler
	if sampler == nil {
		if opts.Shuffle {
			sampler = &shuffleSampler{seed: opts.Seed}
		} else {
			sampler = sequentialSampler{}
		}
	}

	l := &Loader{dataset: dataset, opts: opts, sampler: sampler}
	l.order = sampler.Indices(dataset.Len())
	return l, nil
}

// Len returns the number of batches in one epoch.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.order) / l.opts.BatchSize
	if !l.opts.DropLast && len(l.order)%l.opts.BatchSize != 0 {
		n++
	}
	return n
}

// Next returns the next batch, or io.EOF when the epoch is exhausted.
func (l *Loader) Next() (*Batch, error) {
	l.mu.Lock()
	remaining := len(l.order) - l.pos
	if remaining == 0 || (l.opts.DropLast && remaining < l.opts.BatchSize) {
		l.mu.Unlock()
		return nil, io.EOF
	}
	size := l.opts.BatchSize
	if remaining < size {
		size = remaining
	}
	indices := l.order[l.pos : l.pos+size]
	l.pos += size
	l.mu.Unlock()

	batch := &Batch{
		Images: make([]*Tensor, size),
		Labels: make([]int, size),
	}

	var g errgroup.Group
	if l.opts.NumWorkers > 1 {
		g.SetLimit(l.opts.NumWorkers)
	} else {
		g.SetLimit(1)
	}
	for i, idx := range indices {
		i, idx := i, idx
		g.Go(func() error {
			t, label, err := l.dataset.At(idx)
			if err != nil {
				return err
			}
			batch.Images[i] = t
			batch.Labels[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Reset starts the next epoch, advancing the sampler's epoch counter so
// shuffling samplers produce a fresh order.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.epoch++
	l.sampler.SetEpoch(l.epoch)
	l.order = l.sampler.Indices(l.dataset.Len())
	l.pos = 0
}

// BuildLoader is the one-call assembler: it reads the annotation file, wraps
// it with the transform and returns a batched loader.
func BuildLoader(annotationPath string, transform Transform, opts LoaderOptions) (*Loader, error) {
	ds, err := NewAnnotationDataset(annotationPath, transform, "")
	if err != nil {
		return nil, err
	}
	return NewLoader(ds, opts)
}
