// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"fmt"
	"net/http"
	"time"
)

// FastAIEndpoint hosts the Imagenette/Imagewoof archives.
const FastAIEndpoint = "https://s3.amazonaws.com/fast-ai-imageclas"

// ImageNet10kURL is the fixed location of the ImageNet-10k subset archive.
const ImageNet10kURL = "https://gitlab.expasoft.com/a.yanchenko/enot-public-data/-/raw/main/tutorials/datasets/imagenet10k.tar.gz"

// ImagenetteKinds lists the archive variants published by fast.ai.
var ImagenetteKinds = []string{
	"imagenette2",
	"imagenette2-320",
	"imagenette2-160",
	"imagewoof2",
	"imagewoof2-320",
	"imagewoof2-160",
}

// Imagenette returns the Dataset for one of the fast.ai Imagenette variants.
func Imagenette(kind string) (Dataset, error) {
	for _, k := range ImagenetteKinds {
		if k == kind {
			return Dataset{
				ID:  kind,
				URL: fmt.Sprintf("%s/%s.tgz", FastAIEndpoint, kind),
			}, nil
		}
	}
	return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, kind)
}

// ImageNet10k returns the Dataset for the 10k-image ImageNet subset.
func ImageNet10k() Dataset {
	return Dataset{ID: "imagenet10k", URL: ImageNet10kURL}
}

// Lookup resolves a dataset identifier against the built-in registry.
func Lookup(id string) (Dataset, error) {
	if id == "imagenet10k" {
		return ImageNet10k(), nil
	}
	return Imagenette(id)
}

// buildHTTPClient creates an HTTP client with sensible defaults.
func buildHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr}
}
