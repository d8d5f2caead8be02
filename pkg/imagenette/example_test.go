// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette_test

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dataprep/imagenette/pkg/imagenette"
)

func ExampleEnsure() {
	ds, err := imagenette.Imagenette("imagenette2-160")
	if err != nil {
		fmt.Println(err)
		return
	}

	// Progress callback
	progress := func(e imagenette.ProgressEvent) {
		switch e.Event {
		case "download_start":
			fmt.Println("Downloading archive...")
		case "extract":
			fmt.Println("Extracting...")
		case "done":
			fmt.Println("Ready:", e.Path)
		}
	}

	dir, err := imagenette.Ensure(context.Background(), "./example_datasets", ds, progress)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	_ = dir

	// Cleanup
	os.RemoveAll("./example_datasets")
}

func ExampleSplit() {
	splits, err := imagenette.Split("./datasets/imagenette2-160", 42)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	paths, err := imagenette.WriteAnnotations(splits, "./project")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, name := range imagenette.SplitNames {
		fmt.Printf("%s -> %s\n", name, paths[name])
	}
}

func ExampleBuildLoader() {
	norm := imagenette.DefaultNormalization()
	transform, err := imagenette.TrainTransform(224, norm, 42)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	loader, err := imagenette.BuildLoader("./project/train.csv", transform, imagenette.LoaderOptions{
		BatchSize:  32,
		Shuffle:    true,
		NumWorkers: 4,
		Seed:       42,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for {
		batch, err := loader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		_ = batch // feed to the training step
	}
	loader.Reset() // next epoch
}

func ExampleNewDistributedSampler() {
	sampler, err := imagenette.NewDistributedSampler(0, 4, true, 42)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	transform, _ := imagenette.ValidationTransform(224, imagenette.DefaultNormalization())
	loader, err := imagenette.BuildLoader("./project/validation.csv", transform, imagenette.LoaderOptions{
		BatchSize: 32,
		Sampler:   sampler,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	_ = loader
}
