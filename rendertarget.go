package voxelmarch

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// minRenderScale is the smallest fraction of the window the volume may be
// ray marched at.
const minRenderScale = 0.1

// renderTarget is the offscreen image the volume is ray marched into when
// Config.RenderScale is below 1. It is reallocated only when the scaled size
// changes.
type renderTarget struct {
	img  *ebiten.Image
	w, h int
}

// scaledSize returns the pixel size of a w x h viewport rendered at scale,
// never smaller than 1x1.
func scaledSize(w, h int, scale float64) (int, int) {
	if scale >= 1 {
		return max(w, 1), max(h, 1)
	}
	sw := int(math.Ceil(float64(w) * scale))
	sh := int(math.Ceil(float64(h) * scale))
	return max(sw, 1), max(sh, 1)
}

// acquire returns a cleared w x h image.
func (t *renderTarget) acquire(w, h int) *ebiten.Image {
	if t.img != nil && t.w == w && t.h == h {
		t.img.Clear()
		return t.img
	}
	t.dispose()
	t.img = ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
	t.w, t.h = w, h
	return t.img
}

// blit stretches the target over the dst rectangle starting at the origin
// with size (w, h).
func (t *renderTarget) blit(dst *ebiten.Image, w, h int) {
	if t.img == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(w)/float64(t.w), float64(h)/float64(t.h))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(t.img, &op)
}

func (t *renderTarget) dispose() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
	t.w, t.h = 0, 0
}
