package voxelmarch

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Layout constants for the settings panel, in screen pixels. The debug font
// is 6x16 per glyph.
const (
	panelMargin      = 10
	panelPadding     = 8
	panelTitleHeight = 22
	sliderRowHeight  = 44
	sliderTrackH     = 12
	sliderHitSlop    = 6
	separatorGap     = 6
	glyphHeight      = 16
)

var (
	panelBgColor     = color.RGBA{R: 30, G: 30, B: 30, A: 200}
	panelTitleColor  = color.RGBA{R: 60, G: 60, B: 70, A: 230}
	separatorColor   = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	trackColor       = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	trackActiveColor = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	fillColor        = color.RGBA{R: 60, G: 130, B: 200, A: 255}
	knobColor        = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// Slider edits a float32 in [Min, Max], quantized to Step.
type Slider struct {
	Label          string
	Min, Max, Step float32
	Value          *float32

	track    Rect
	dragging bool
}

// Set stores v, quantized to Step and clamped to [Min, Max]. It reports
// whether the stored value changed.
func (s *Slider) Set(v float32) bool {
	q := s.quantize(v)
	if *s.Value == q {
		return false
	}
	*s.Value = q
	return true
}

// Nudge moves the value by n steps.
func (s *Slider) Nudge(n int) bool {
	return s.Set(*s.Value + float32(n)*s.Step)
}

// Fraction returns the value's position within [Min, Max] as [0, 1].
func (s *Slider) Fraction() float32 {
	if s.Max <= s.Min {
		return 0
	}
	return (*s.Value - s.Min) / (s.Max - s.Min)
}

// Dragging reports whether the slider currently owns the pointer.
func (s *Slider) Dragging() bool {
	return s.dragging
}

func (s *Slider) quantize(v float32) float32 {
	if s.Step > 0 {
		v = s.Min + float32(math.Round(float64((v-s.Min)/s.Step)))*s.Step
	}
	return min(max(v, s.Min), s.Max)
}

// valueAt maps a screen X coordinate on the track to a slider value.
func (s *Slider) valueAt(x float64) float32 {
	if s.track.Width <= 0 {
		return s.Min
	}
	f := clamp01((x - s.track.X) / s.track.Width)
	return s.Min + float32(f)*(s.Max-s.Min)
}

func (s *Slider) hitRect() Rect {
	return Rect{
		X:      s.track.X - sliderHitSlop,
		Y:      s.track.Y - sliderHitSlop,
		Width:  s.track.Width + 2*sliderHitSlop,
		Height: s.track.Height + 2*sliderHitSlop,
	}
}

// Panel is a small immediate-mode settings window anchored to the top-right
// corner of the screen. It holds a column of sliders separated by lines.
type Panel struct {
	Title   string
	Bounds  Rect
	Sliders []*Slider
	Visible bool

	wasPressed bool
}

// NewSettingsPanel creates the "Settings" panel with an isovalue slider
// bound to iso, sized for a screenW x screenH window.
func NewSettingsPanel(screenW, screenH int, iso *float32) *Panel {
	p := &Panel{
		Title:   "Settings",
		Visible: true,
		Sliders: []*Slider{{
			Label: "isovalue",
			Min:   0,
			Max:   1,
			Step:  0.001,
			Value: iso,
		}},
	}
	p.Layout(screenW, screenH)
	return p
}

// Layout anchors the panel at (w - w/5 - 10, 10) with size (w/5, h/2) and
// positions the slider tracks inside it.
func (p *Panel) Layout(screenW, screenH int) {
	w := screenW / 5
	p.Bounds = Rect{
		X:      float64(screenW - w - panelMargin),
		Y:      panelMargin,
		Width:  float64(w),
		Height: float64(screenH / 2),
	}
	inner := p.Bounds.Inset(panelPadding)
	y := p.Bounds.Y + panelTitleHeight + separatorGap
	for _, s := range p.Sliders {
		s.track = Rect{
			X:      inner.X,
			Y:      y + glyphHeight + 4,
			Width:  inner.Width,
			Height: sliderTrackH,
		}
		y += sliderRowHeight
	}
}

// Captured reports whether a slider is being dragged.
func (p *Panel) Captured() bool {
	for _, s := range p.Sliders {
		if s.dragging {
			return true
		}
	}
	return false
}

// Update feeds one frame of pointer input to the panel and reports whether a
// slider value changed because of it.
func (p *Panel) Update(ptr PointerState) bool {
	if !p.Visible {
		p.wasPressed = ptr.Pressed
		return false
	}
	justPressed := ptr.Pressed && !p.wasPressed
	p.wasPressed = ptr.Pressed

	changed := false
	for _, s := range p.Sliders {
		switch {
		case justPressed && s.hitRect().Contains(ptr.X, ptr.Y):
			s.dragging = true
			changed = s.Set(s.valueAt(ptr.X)) || changed
		case s.dragging && ptr.Pressed:
			changed = s.Set(s.valueAt(ptr.X)) || changed
		case s.dragging:
			s.dragging = false
		}
	}

	if ptr.Wheel != 0 && p.Bounds.Contains(ptr.X, ptr.Y) {
		if s := p.sliderNear(ptr.Y); s != nil {
			n := 1
			if ptr.Wheel < 0 {
				n = -1
			}
			changed = s.Nudge(n) || changed
		}
	}
	return changed
}

// sliderNear returns the slider whose row contains y, or the first slider.
func (p *Panel) sliderNear(y float64) *Slider {
	if len(p.Sliders) == 0 {
		return nil
	}
	for _, s := range p.Sliders {
		if y >= s.track.Y-glyphHeight-4 && y <= s.track.Y+s.track.Height+sliderHitSlop {
			return s
		}
	}
	return p.Sliders[0]
}

// Draw renders the panel onto dst.
func (p *Panel) Draw(dst *ebiten.Image) {
	if !p.Visible {
		return
	}
	b := p.Bounds
	vector.DrawFilledRect(dst, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), panelBgColor, false)
	vector.DrawFilledRect(dst, float32(b.X), float32(b.Y), float32(b.Width), panelTitleHeight, panelTitleColor, false)
	ebitenutil.DebugPrintAt(dst, p.Title, int(b.X)+panelPadding, int(b.Y)+3)

	y := b.Y + panelTitleHeight + separatorGap/2
	p.drawSeparator(dst, y)
	for _, s := range p.Sliders {
		p.drawSlider(dst, s)
		y = s.track.Y + s.track.Height + separatorGap
		p.drawSeparator(dst, y)
	}
}

func (p *Panel) drawSeparator(dst *ebiten.Image, y float64) {
	x0 := float32(p.Bounds.X + panelPadding)
	x1 := float32(p.Bounds.X + p.Bounds.Width - panelPadding)
	vector.StrokeLine(dst, x0, float32(y), x1, float32(y), 1, separatorColor, false)
}

func (p *Panel) drawSlider(dst *ebiten.Image, s *Slider) {
	t := s.track
	label := fmt.Sprintf("%s  %.3f", s.Label, *s.Value)
	ebitenutil.DebugPrintAt(dst, label, int(t.X), int(t.Y)-glyphHeight-2)

	bg := trackColor
	if s.dragging {
		bg = trackActiveColor
	}
	vector.DrawFilledRect(dst, float32(t.X), float32(t.Y), float32(t.Width), float32(t.Height), bg, false)

	fw := float32(t.Width) * s.Fraction()
	vector.DrawFilledRect(dst, float32(t.X), float32(t.Y), fw, float32(t.Height), fillColor, false)

	kx := float32(t.X) + fw
	vector.DrawFilledRect(dst, kx-2, float32(t.Y)-2, 4, float32(t.Height)+4, knobColor, false)
}
