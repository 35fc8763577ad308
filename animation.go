package voxelmarch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Preset glides use this duration and easing.
const (
	presetDuration = 0.35 // seconds
	presetCount    = 9
)

var presetEase ease.TweenFunc = ease.OutCubic

// ValueTween animates a single float32 toward a target. Call Update(dt)
// each frame; the tween writes the value and sets Done when it arrives.
//
// There is no global animation manager. The owner calls Update itself.
type ValueTween struct {
	tween  *gween.Tween
	target *float32
	Done   bool
}

// TweenValue creates a tween that moves *target from its current value to
// `to` over duration seconds using the easing function.
func TweenValue(target *float32, to float32, duration float32, fn ease.TweenFunc) *ValueTween {
	return &ValueTween{
		tween:  gween.New(*target, to, duration, fn),
		target: target,
	}
}

// Update advances the tween by dt seconds and writes the value.
func (t *ValueTween) Update(dt float32) {
	if t.Done {
		return
	}
	val, finished := t.tween.Update(dt)
	*t.target = val
	t.Done = finished
}

// Cancel stops the tween, leaving the value where it is.
func (t *ValueTween) Cancel() {
	t.Done = true
}

// PresetIsovalue returns the isovalue bound to number key k (1..9): k/10.
// Out-of-range keys clamp to the nearest preset.
func PresetIsovalue(k int) float32 {
	k = clampInt(k, 1, presetCount)
	return float32(k) / 10
}
