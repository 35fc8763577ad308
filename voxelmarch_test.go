package voxelmarch

import (
	"image/color"
	"testing"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

func TestRectInset(t *testing.T) {
	r := Rect{10, 20, 100, 50}.Inset(5)
	if r != (Rect{15, 25, 90, 40}) {
		t.Errorf("Inset(5) = %v", r)
	}
	r = Rect{0, 0, 4, 4}.Inset(3)
	if r.Width != 0 || r.Height != 0 {
		t.Errorf("over-inset size = %vx%v, want 0x0", r.Width, r.Height)
	}
}

// --- Color ---

func TestColorFromHex(t *testing.T) {
	c := ColorFromHex(0x303030ff)
	if !approxEqual(c.R, 48.0/255, epsilon) || !approxEqual(c.G, 48.0/255, epsilon) ||
		!approxEqual(c.B, 48.0/255, epsilon) || c.A != 1 {
		t.Errorf("ColorFromHex(0x303030ff) = %+v", c)
	}
	if got := c.RGBA(); got != (color.RGBA{0x30, 0x30, 0x30, 0xff}) {
		t.Errorf("RGBA() = %v, want {48 48 48 255}", got)
	}
}

func TestColorRGBAPremultiplies(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 0.5}.RGBA()
	want := color.RGBA{R: 128, G: 64, B: 0, A: 128}
	if got != want {
		t.Errorf("RGBA() = %v, want %v", got, want)
	}
}

func TestColorRGBAClamps(t *testing.T) {
	got := Color{R: 2, G: -1, B: 0.5, A: 1}.RGBA()
	if got.R != 255 || got.G != 0 {
		t.Errorf("RGBA() = %v, want R=255 G=0", got)
	}
}
