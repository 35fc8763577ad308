package voxelmarch

import (
	"errors"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrAtlasTooLarge is returned when a volume cannot be laid out as a slice
// atlas within the requested image size, even after downsampling.
var ErrAtlasTooLarge = errors.New("volume does not fit in slice atlas")

// minAtlasSize is the smallest atlas edge PlanAtlas accepts.
const minAtlasSize = 16

// AtlasLayout describes how the Z slices of a volume are tiled into a single
// 2D image. Slice z sits in column z%Cols, row z/Cols. Step is the
// downsampling factor applied on every axis (1 = full resolution).
type AtlasLayout struct {
	SliceW, SliceH int
	Slices         int
	Cols, Rows     int
	Step           int
}

// Width returns the atlas image width in pixels.
func (l AtlasLayout) Width() int { return l.Cols * l.SliceW }

// Height returns the atlas image height in pixels.
func (l AtlasLayout) Height() int { return l.Rows * l.SliceH }

// SliceOrigin returns the top-left pixel of slice z.
func (l AtlasLayout) SliceOrigin(z int) (x, y int) {
	return (z % l.Cols) * l.SliceW, (z / l.Cols) * l.SliceH
}

// Dims returns the voxel dimensions stored in the atlas, after downsampling.
func (l AtlasLayout) Dims() [3]int {
	return [3]int{l.SliceW, l.SliceH, l.Slices}
}

// PlanAtlas picks the smallest downsampling step whose slice grid fits in a
// maxSize x maxSize image, and for that step the column count that keeps the
// atlas closest to square.
func PlanAtlas(dims [3]int, maxSize int) (AtlasLayout, error) {
	if maxSize < minAtlasSize {
		return AtlasLayout{}, fmt.Errorf("%w: max size %d below %d", ErrAtlasTooLarge, maxSize, minAtlasSize)
	}
	for i, d := range dims {
		if d <= 0 {
			return AtlasLayout{}, fmt.Errorf("plan atlas: dimension %d is %d", i, d)
		}
	}

	maxDim := max(dims[0], dims[1], dims[2])
	for step := 1; step <= maxDim; step++ {
		sw := ceilDiv(dims[0], step)
		sh := ceilDiv(dims[1], step)
		n := ceilDiv(dims[2], step)
		if sw > maxSize || sh > maxSize {
			continue
		}

		best := AtlasLayout{}
		bestEdge := math.MaxInt
		maxCols := min(n, maxSize/sw)
		for cols := 1; cols <= maxCols; cols++ {
			rows := ceilDiv(n, cols)
			w, h := cols*sw, rows*sh
			if h > maxSize {
				continue
			}
			if edge := max(w, h); edge < bestEdge {
				bestEdge = edge
				best = AtlasLayout{SliceW: sw, SliceH: sh, Slices: n, Cols: cols, Rows: rows, Step: step}
			}
		}
		if bestEdge != math.MaxInt {
			return best, nil
		}
	}
	return AtlasLayout{}, fmt.Errorf("%w: %dx%dx%d in %dpx", ErrAtlasTooLarge, dims[0], dims[1], dims[2], maxSize)
}

// PackAtlas lays v out according to l as RGBA8 pixels. The voxel value is
// written to R, G and B with opaque alpha. When l.Step > 1 each atlas voxel
// holds the maximum of its Step^3 source block, so thin bright structures
// are not averaged away.
func PackAtlas(v *Volume, l AtlasLayout) []byte {
	w := l.Width()
	pix := make([]byte, 4*w*l.Height())
	for z := 0; z < l.Slices; z++ {
		ox, oy := l.SliceOrigin(z)
		for y := 0; y < l.SliceH; y++ {
			row := ((oy+y)*w + ox) * 4
			for x := 0; x < l.SliceW; x++ {
				var b byte
				if l.Step == 1 {
					b = v.Data[(z*v.Dims[1]+y)*v.Dims[0]+x]
				} else {
					b = blockMax(v, x*l.Step, y*l.Step, z*l.Step, l.Step)
				}
				i := row + x*4
				pix[i] = b
				pix[i+1] = b
				pix[i+2] = b
				pix[i+3] = 0xff
			}
		}
	}
	return pix
}

// blockMax returns the largest voxel in the step^3 block starting at
// (x0, y0, z0), ignoring the part of the block outside the grid.
func blockMax(v *Volume, x0, y0, z0, step int) byte {
	x1 := min(x0+step, v.Dims[0])
	y1 := min(y0+step, v.Dims[1])
	z1 := min(z0+step, v.Dims[2])
	var m byte
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			base := (z*v.Dims[1] + y) * v.Dims[0]
			for x := x0; x < x1; x++ {
				m = max(m, v.Data[base+x])
			}
		}
	}
	return m
}

// VolumeTexture is a volume uploaded to the GPU as a slice atlas.
type VolumeTexture struct {
	Layout AtlasLayout
	Image  *ebiten.Image
}

// NewVolumeTexture plans an atlas no larger than maxSize on either edge,
// packs v into it and uploads the pixels.
func NewVolumeTexture(v *Volume, maxSize int) (*VolumeTexture, error) {
	l, err := PlanAtlas(v.Dims, maxSize)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImage(l.Width(), l.Height())
	img.WritePixels(PackAtlas(v, l))
	return &VolumeTexture{Layout: l, Image: img}, nil
}

// Dispose releases the GPU image. The texture must not be used afterwards.
func (t *VolumeTexture) Dispose() {
	if t.Image != nil {
		t.Image.Deallocate()
		t.Image = nil
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
