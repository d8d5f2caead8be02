// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"image"
	"math"
	"math/rand"
	"sync"

	"github.com/disintegration/imaging"
)

// Tensor is a CHW float32 image tensor.
type Tensor struct {
	Data     []float32
	Channels int
	Height   int
	Width    int
}

// At returns the value at (channel, y, x).
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[c*t.Height*t.Width+y*t.Width+x]
}

// Transform converts a decoded image into a tensor.
//
// Implementations with random behavior keep their own seeded generator and
// are safe for concurrent use by loader workers.
type Transform interface {
	Apply(img image.Image) (*Tensor, error)
}

// trainTransform performs random resized crop + random horizontal flip +
// normalization, mirroring the usual ImageNet training pipeline.
type trainTransform struct {
	inputSize int
	norm      Normalization

	mu  sync.Mutex
	rng *rand.Rand
}

// TrainTransform returns the training preset: a random crop of random scale
// and aspect ratio resized to inputSize, a random horizontal flip, and
// conversion to a tensor normalized with norm.
func TrainTransform(inputSize int, norm Normalization, seed int64) (Transform, error) {
	if err := norm.validate(); err != nil {
		return nil, err
	}
	return &trainTransform{
		inputSize: inputSize,
		norm:      norm,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

func (t *trainTransform) Apply(img image.Image) (*Tensor, error) {
	t.mu.Lock()
	crop := randomResizedCrop(img, t.inputSize, t.rng)
	flip := t.rng.Intn(2) == 1
	t.mu.Unlock()

	if flip {
		crop = imaging.FlipH(crop)
	}
	return toTensor(crop, t.norm), nil
}

// validationTransform performs the deterministic evaluation pipeline:
// resize the short side to inputSize/0.875, center-crop to inputSize,
// normalize.
type validationTransform struct {
	inputSize int
	norm      Normalization
}

// ValidationTransform returns the deterministic evaluation preset.
func ValidationTransform(inputSize int, norm Normalization) (Transform, error) {
	if err := norm.validate(); err != nil {
		return nil, err
	}
	return &validationTransform{inputSize: inputSize, norm: norm}, nil
}

func (t *validationTransform) Apply(img image.Image) (*Tensor, error) {
	resized := resizeShortSide(img, int(float64(t.inputSize)/0.875))
	cropped := imaging.CropCenter(resized, t.inputSize, t.inputSize)
	return toTensor(cropped, t.norm), nil
}

// randomResizedCrop samples a crop of random area (8%-100%) and aspect ratio
// (3/4 to 4/3), falling back to a center crop when no valid geometry is
// found, then resizes to size x size.
func randomResizedCrop(img image.Image, size int, rng *rand.Rand) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	area := float64(w * h)

	for attempt := 0; attempt < 10; attempt++ {
		targetArea := area * (0.08 + rng.Float64()*0.92)
		logRatio := math.Log(3.0/4.0) + rng.Float64()*(math.Log(4.0/3.0)-math.Log(3.0/4.0))
		ratio := math.Exp(logRatio)

		cw := int(math.Round(math.Sqrt(targetArea * ratio)))
		ch := int(math.Round(math.Sqrt(targetArea / ratio)))
		if cw <= 0 || ch <= 0 || cw > w || ch > h {
			continue
		}

		x := rng.Intn(w - cw + 1)
		y := rng.Intn(h - ch + 1)
		crop := imaging.Crop(img, image.Rect(bounds.Min.X+x, bounds.Min.Y+y, bounds.Min.X+x+cw, bounds.Min.Y+y+ch))
		return imaging.Resize(crop, size, size, imaging.Linear)
	}

	// Fallback: largest centered square.
	side := w
	if h < side {
		side = h
	}
	crop := imaging.CropCenter(img, side, side)
	return imaging.Resize(crop, size, size, imaging.Linear)
}

// resizeShortSide scales the image so its shorter side equals target,
// preserving aspect ratio.
func resizeShortSide(img image.Image, target int) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < h {
		return imaging.Resize(img, target, 0, imaging.Linear)
	}
	return imaging.Resize(img, 0, target, imaging.Linear)
}

// toTensor converts an image to a CHW float32 tensor, scaling channel values
// to [0,1] and applying per-channel normalization.
func toTensor(img *image.NRGBA, norm Normalization) *Tensor {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	t := &Tensor{
		Data:     make([]float32, 3*h*w),
		Channels: 3,
		Height:   h,
		Width:    w,
	}
	plane := h * w
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				v := float32(row[x*4+c]) / 255.0
				t.Data[c*plane+y*w+x] = (v - norm.Mean[c]) / norm.Std[c]
			}
		}
	}
	return t
}
