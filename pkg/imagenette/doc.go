// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

/*
Package imagenette prepares image-classification datasets for training
pipelines: it downloads and safely extracts dataset archives, partitions the
images into train/validation/search/test splits recorded as CSV annotation
files, and wraps the annotations into batched, optionally distributed data
loaders.

# Quick Start

Download Imagenette, split it and iterate batches:

	package main

	import (
		"context"
		"io"
		"log"

		"github.com/dataprep/imagenette/pkg/imagenette"
	)

	func main() {
		ds, _ := imagenette.Imagenette("imagenette2-160")
		dir, err := imagenette.Ensure(context.Background(), "./datasets", ds, nil)
		if err != nil {
			log.Fatal(err)
		}

		splits, err := imagenette.Split(dir, 42)
		if err != nil {
			log.Fatal(err)
		}
		paths, err := imagenette.WriteAnnotations(splits, "./project")
		if err != nil {
			log.Fatal(err)
		}

		norm := imagenette.DefaultNormalization()
		tf, _ := imagenette.TrainTransform(224, norm, 42)
		loader, err := imagenette.BuildLoader(paths["train"], tf, imagenette.LoaderOptions{
			BatchSize:  32,
			Shuffle:    true,
			NumWorkers: 4,
		})
		if err != nil {
			log.Fatal(err)
		}

		for {
			batch, err := loader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Fatal(err)
			}
			_ = batch // feed to the training step
		}
	}

# Splits

Split carves the extracted dataset into four disjoint annotation sets. The
test set takes half of every validation class (odd counts round half up), the
search set mirrors the test per-class sizes out of the training pool, and the
remainders stay as validation and train. Membership is deterministic in the
seed; a validation class absent from the training pool fails with
InfeasibleSplitError.

# Safety

Archive extraction rejects members that would escape the destination root
(absolute names, ".." components, escaping links) with PathTraversalError,
and the downloaded archive is removed whether or not the fetch succeeds.
*/
package imagenette
