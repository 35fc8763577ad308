package voxelmarch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrBadHeader is returned when a volume header is missing a field or
	// holds a value outside its valid range.
	ErrBadHeader = errors.New("bad volume header")
	// ErrShortVolume is returned when the raw file holds fewer bytes than the
	// header's dimensions require.
	ErrShortVolume = errors.New("volume data shorter than header dimensions")
	// ErrVolumeSize is returned when the raw file holds more bytes than the
	// header's dimensions require.
	ErrVolumeSize = errors.New("volume data longer than header dimensions")
)

// maxVoxelCount bounds the volumes we agree to allocate (1 GiB at one byte
// per voxel).
const maxVoxelCount = 1 << 30

// Header describes a raw scalar volume: its grid dimensions and the physical
// size of one voxel along each axis.
type Header struct {
	Dims      [3]int
	VoxelSize [3]float32
}

// Box is an axis-aligned box in volume space.
type Box struct {
	Min, Max mgl32.Vec3
}

// Size returns Max - Min.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box. Points on a face are inside.
func (b Box) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ParseHeader reads a volume header: three integer dimensions followed by
// three voxel sizes, separated by any whitespace. Content after the sixth
// field is ignored.
func ParseHeader(r io.Reader) (Header, error) {
	var h Header
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(name string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read %s: %w", name, err)
			}
			return "", fmt.Errorf("%w: missing %s", ErrBadHeader, name)
		}
		return sc.Text(), nil
	}

	for i, name := range [3]string{"dimX", "dimY", "dimZ"} {
		tok, err := next(name)
		if err != nil {
			return Header{}, err
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return Header{}, fmt.Errorf("%w: %s %q is not an integer", ErrBadHeader, name, tok)
		}
		if n <= 0 {
			return Header{}, fmt.Errorf("%w: %s must be positive, got %d", ErrBadHeader, name, n)
		}
		h.Dims[i] = n
	}
	for i, name := range [3]string{"voxelX", "voxelY", "voxelZ"} {
		tok, err := next(name)
		if err != nil {
			return Header{}, err
		}
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return Header{}, fmt.Errorf("%w: %s %q is not a number", ErrBadHeader, name, tok)
		}
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return Header{}, fmt.Errorf("%w: %s must be positive and finite, got %v", ErrBadHeader, name, f)
		}
		h.VoxelSize[i] = float32(f)
	}

	n := 1
	for _, d := range h.Dims {
		if d > maxVoxelCount/n {
			return Header{}, fmt.Errorf("%w: %dx%dx%d voxels exceeds limit", ErrBadHeader, h.Dims[0], h.Dims[1], h.Dims[2])
		}
		n *= d
	}
	return h, nil
}

// ReadHeaderFile opens path and parses it with ParseHeader.
func ReadHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("open header: %w", err)
	}
	defer f.Close()

	h, err := ParseHeader(f)
	if err != nil {
		return Header{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return h, nil
}

// VoxelCount returns dimX*dimY*dimZ, which is also the byte size of the raw
// volume.
func (h Header) VoxelCount() int {
	return h.Dims[0] * h.Dims[1] * h.Dims[2]
}

// Extent returns the physical size of the volume: dims times voxel size.
func (h Header) Extent() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(h.Dims[0]) * h.VoxelSize[0],
		float32(h.Dims[1]) * h.VoxelSize[1],
		float32(h.Dims[2]) * h.VoxelSize[2],
	}
}

// Bounds returns the volume-space bounding box. The box starts at the origin
// and its max corner equals Extent.
func (h Header) Bounds() Box {
	return Box{Max: h.Extent()}
}

// TextureMatrix returns the scale that maps a volume-space position inside
// Bounds to a [0,1]^3 texture coordinate.
func (h Header) TextureMatrix() mgl32.Mat4 {
	e := h.Extent()
	return mgl32.Scale3D(1/e[0], 1/e[1], 1/e[2])
}

// TexSize returns the grid dimensions as a vector with w = 0.
func (h Header) TexSize() mgl32.Vec4 {
	return mgl32.Vec4{float32(h.Dims[0]), float32(h.Dims[1]), float32(h.Dims[2]), 0}
}

// Volume is a loaded scalar volume, one byte per voxel, X fastest then Y
// then Z.
type Volume struct {
	Header
	Data []byte
}

// NewVolume wraps data with h after checking that the sizes agree.
func NewVolume(h Header, data []byte) (*Volume, error) {
	switch n := h.VoxelCount(); {
	case len(data) < n:
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrShortVolume, len(data), n)
	case len(data) > n:
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrVolumeSize, len(data), n)
	}
	return &Volume{Header: h, Data: data}, nil
}

// ReadVoxels reads exactly h.VoxelCount() bytes from r. A reader that ends
// early yields ErrShortVolume; one with bytes left over yields ErrVolumeSize.
func ReadVoxels(r io.Reader, h Header) ([]byte, error) {
	data := make([]byte, h.VoxelCount())
	n, err := io.ReadFull(r, data)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: read %d of %d bytes", ErrShortVolume, n, len(data))
		}
		return nil, fmt.Errorf("read voxels: %w", err)
	}
	var probe [1]byte
	if m, _ := r.Read(probe[:]); m > 0 {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrVolumeSize, len(data))
	}
	return data, nil
}

// LoadVolume reads headerName and rawName from dir.
func LoadVolume(dir, headerName, rawName string) (*Volume, error) {
	h, err := ReadHeaderFile(filepath.Join(dir, headerName))
	if err != nil {
		return nil, err
	}

	rawPath := filepath.Join(dir, rawName)
	f, err := os.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("open volume: %w", err)
	}
	defer f.Close()

	data, err := ReadVoxels(bufio.NewReaderSize(f, 1<<20), h)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawPath, err)
	}
	return &Volume{Header: h, Data: data}, nil
}

// At returns the voxel at grid position (x, y, z), clamping each coordinate
// to the grid.
func (v *Volume) At(x, y, z int) byte {
	x = clampInt(x, 0, v.Dims[0]-1)
	y = clampInt(y, 0, v.Dims[1]-1)
	z = clampInt(z, 0, v.Dims[2]-1)
	return v.Data[(z*v.Dims[1]+y)*v.Dims[0]+x]
}

// Sample returns the trilinearly filtered value at texture coordinate p
// (each axis in [0,1], voxel centers at (i+0.5)/dim), normalized to [0,1].
// Addressing clamps at the edges.
func (v *Volume) Sample(p mgl32.Vec3) float32 {
	var c [3]float32
	var i0 [3]int
	var f [3]float32
	for a := 0; a < 3; a++ {
		c[a] = p[a]*float32(v.Dims[a]) - 0.5
		fl := float32(math.Floor(float64(c[a])))
		i0[a] = int(fl)
		f[a] = c[a] - fl
	}
	at := func(dx, dy, dz int) float32 {
		return float32(v.At(i0[0]+dx, i0[1]+dy, i0[2]+dz))
	}
	x00 := lerp(at(0, 0, 0), at(1, 0, 0), f[0])
	x10 := lerp(at(0, 1, 0), at(1, 1, 0), f[0])
	x01 := lerp(at(0, 0, 1), at(1, 0, 1), f[0])
	x11 := lerp(at(0, 1, 1), at(1, 1, 1), f[0])
	y0 := lerp(x00, x10, f[1])
	y1 := lerp(x01, x11, f[1])
	return lerp(y0, y1, f[2]) / 255
}

// Histogram counts voxels per value.
func (v *Volume) Histogram() [256]int {
	var hist [256]int
	for _, b := range v.Data {
		hist[b]++
	}
	return hist
}

// Range returns the smallest and largest voxel value.
func (v *Volume) Range() (lo, hi byte) {
	if len(v.Data) == 0 {
		return 0, 0
	}
	lo, hi = 255, 0
	for _, b := range v.Data {
		lo = min(lo, b)
		hi = max(hi, b)
	}
	return lo, hi
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
