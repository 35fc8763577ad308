package voxelmarch

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerState is one frame of pointer input: cursor position in screen
// pixels, whether the left button is held, and the vertical wheel delta.
type PointerState struct {
	X, Y    float64
	Pressed bool
	Wheel   float64
}

// InputSource supplies the per-frame input the app reacts to.
type InputSource interface {
	Pointer() PointerState
	KeyJustPressed(key ebiten.Key) bool
}

// ebitenInput reads input from Ebitengine.
type ebitenInput struct{}

func (ebitenInput) Pointer() PointerState {
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	return PointerState{
		X:       float64(x),
		Y:       float64(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Wheel:   wy,
	}
}

func (ebitenInput) KeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
