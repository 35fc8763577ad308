package voxelmarch

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to Ebitengine.
type Color struct {
	R, G, B, A float64
}

// ColorFromHex builds a Color from a 0xRRGGBBAA value, the format the
// clear color is usually written in.
func ColorFromHex(rgba uint32) Color {
	return Color{
		R: float64(rgba>>24&0xff) / 255,
		G: float64(rgba>>16&0xff) / 255,
		B: float64(rgba>>8&0xff) / 255,
		A: float64(rgba&0xff) / 255,
	}
}

// RGBA returns the premultiplied color.RGBA for c.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// vec3 returns the straight RGB components as float32, the layout Kage
// uniforms expect.
func (c Color) vec3() []float32 {
	return []float32{float32(c.R), float32(c.G), float32(c.B)}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Inset returns r shrunk by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: max(r.Width-2*d, 0), Height: max(r.Height-2*d, 0)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
