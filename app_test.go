package voxelmarch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// scriptedInput is an InputSource that replays fixed pointer state and a
// set of keys pressed this frame.
type scriptedInput struct {
	ptr  PointerState
	keys map[ebiten.Key]bool
}

func (s *scriptedInput) Pointer() PointerState { return s.ptr }

func (s *scriptedInput) KeyJustPressed(k ebiten.Key) bool { return s.keys[k] }

func (s *scriptedInput) press(keys ...ebiten.Key) {
	s.keys = make(map[ebiten.Key]bool, len(keys))
	for _, k := range keys {
		s.keys[k] = true
	}
}

func newTestApp(t *testing.T) (*App, *scriptedInput) {
	t.Helper()
	h := testHeader()
	vol := rampVolume(h)
	l, err := PlanAtlas(h.Dims, 64)
	if err != nil {
		t.Fatal(err)
	}
	a := newApp(DefaultConfig(), vol, &VolumeTexture{Layout: l})
	in := &scriptedInput{}
	a.SetInputSource(in)
	return a, in
}

const frameDT = float32(1.0 / 60)

func TestNewAppState(t *testing.T) {
	a, _ := newTestApp(t)
	if a.Isovalue != 0.225 {
		t.Errorf("Isovalue = %f, want 0.225", a.Isovalue)
	}
	if a.valueLo != 0 || a.valueHi != 73 {
		t.Errorf("range = %d..%d, want 0..73", a.valueLo, a.valueHi)
	}
	if a.panel.Sliders[0].Value != &a.Isovalue {
		t.Error("slider is not bound to the app isovalue")
	}
}

func TestAppClockAdvancesUnlessPaused(t *testing.T) {
	a, in := newTestApp(t)
	for i := 0; i < 3; i++ {
		if err := a.update(frameDT); err != nil {
			t.Fatal(err)
		}
	}
	if !approxEqual(float64(a.Clock()), 3*float64(frameDT), 1e-6) {
		t.Errorf("Clock = %f, want %f", a.Clock(), 3*frameDT)
	}

	in.press(ebiten.KeySpace)
	_ = a.update(frameDT)
	in.press()
	held := a.Clock()
	_ = a.update(frameDT)
	if !a.Paused() || a.Clock() != held {
		t.Errorf("paused=%v clock=%f, want paused at %f", a.Paused(), a.Clock(), held)
	}
}

func TestAppEscapeTerminates(t *testing.T) {
	a, in := newTestApp(t)
	in.press(ebiten.KeyEscape)
	if err := a.update(frameDT); !errors.Is(err, ebiten.Termination) {
		t.Errorf("err = %v, want ebiten.Termination", err)
	}
}

func TestAppRequestQuit(t *testing.T) {
	a, _ := newTestApp(t)
	a.RequestQuit()
	if err := a.update(frameDT); !errors.Is(err, ebiten.Termination) {
		t.Errorf("err = %v, want ebiten.Termination", err)
	}
}

func TestAppPresetKeyGlides(t *testing.T) {
	a, in := newTestApp(t)
	in.press(ebiten.KeyDigit7)
	_ = a.update(frameDT)
	in.press()
	if a.tween == nil {
		t.Fatal("digit key should start a glide")
	}
	if a.Isovalue <= 0.225 || a.Isovalue >= 0.7 {
		t.Errorf("first glide frame = %f, want between start and target", a.Isovalue)
	}
	for i := 0; i < 60; i++ {
		_ = a.update(frameDT)
	}
	if !approxEqual(float64(a.Isovalue), 0.7, 1e-4) {
		t.Errorf("Isovalue = %f, want 0.7", a.Isovalue)
	}
	if a.tween != nil {
		t.Error("finished glide should be dropped")
	}
}

func TestAppDragCancelsGlide(t *testing.T) {
	a, _ := newTestApp(t)
	a.GlidePreset(9)
	tr := a.panel.Sliders[0].track
	a.InjectDrag(tr.X, tr.Y+1, tr.X+tr.Width/4, tr.Y+1, 3)

	for a.pendingInput() > 0 {
		_ = a.update(frameDT)
	}
	if a.tween != nil {
		t.Error("dragging the slider should cancel the glide")
	}
	// Press at the track start, one move halfway, release: the move sets it.
	if !approxEqual(float64(a.Isovalue), 0.125, 1e-3) {
		t.Errorf("Isovalue = %f, want 0.125", a.Isovalue)
	}
}

func TestAppPageKeys(t *testing.T) {
	a, in := newTestApp(t)
	in.press(ebiten.KeyPageUp)
	_ = a.update(frameDT)
	if !approxEqual(float64(a.Isovalue), 0.235, 1e-6) {
		t.Errorf("PgUp: Isovalue = %f, want 0.235", a.Isovalue)
	}
	in.press(ebiten.KeyPageDown)
	_ = a.update(frameDT)
	_ = a.update(frameDT)
	if !approxEqual(float64(a.Isovalue), 0.215, 1e-6) {
		t.Errorf("PgDn: Isovalue = %f, want 0.215", a.Isovalue)
	}
}

func TestAppF12QueuesScreenshot(t *testing.T) {
	a, in := newTestApp(t)
	in.press(ebiten.KeyF12)
	_ = a.update(frameDT)
	if len(a.screenshotQueue) != 1 {
		t.Errorf("queue = %v, want one entry", a.screenshotQueue)
	}
}

func TestAppSetIsovalueClamps(t *testing.T) {
	a, _ := newTestApp(t)
	a.GlidePreset(3)
	a.SetIsovalue(2)
	if a.Isovalue != 1 || a.tween != nil {
		t.Errorf("Isovalue=%f tween=%v, want 1 and no glide", a.Isovalue, a.tween)
	}
}

func TestAppLayoutResizes(t *testing.T) {
	a, _ := newTestApp(t)
	w, h := a.Layout(640, 480)
	if w != 640 || h != 480 {
		t.Errorf("Layout = %dx%d, want 640x480", w, h)
	}
	if a.camera.Viewport.Width != 640 || a.camera.Viewport.Height != 480 {
		t.Errorf("camera viewport = %v", a.camera.Viewport)
	}
	if a.panel.Bounds.Width != 128 {
		t.Errorf("panel width = %f, want 128", a.panel.Bounds.Width)
	}
}

func TestAppRunsScript(t *testing.T) {
	a, _ := newTestApp(t)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "isovalue", "value": 0.5},
		{"action": "pause"},
		{"action": "quit"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	a.SetTestRunner(runner)

	var last error
	for i := 0; i < 3 && last == nil; i++ {
		last = a.update(frameDT)
	}
	if !errors.Is(last, ebiten.Termination) {
		t.Errorf("err = %v, want ebiten.Termination", last)
	}
	if a.Isovalue != 0.5 || !a.Paused() {
		t.Errorf("Isovalue=%f paused=%v", a.Isovalue, a.Paused())
	}
}

func TestAppFrameInfo(t *testing.T) {
	a, _ := newTestApp(t)
	info := a.frameInfo()
	if info.Header.Dims != a.volume.Dims || info.ValueHi != 73 || info.Isovalue != a.Isovalue {
		t.Errorf("frameInfo = %+v", info)
	}
}

func TestNewAppErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 0
	if _, err := NewApp(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}

	cfg = DefaultConfig()
	cfg.VolumeDir = t.TempDir()
	if _, err := NewApp(cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want a missing-file error", err)
	}

	cfg.VolumeDir = filepath.Join(t.TempDir(), "nowhere")
	if _, err := NewApp(cfg); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestAppRenderScaleShrinksViewport(t *testing.T) {
	h := testHeader()
	l, err := PlanAtlas(h.Dims, 64)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.RenderScale = 0.5
	a := newApp(cfg, rampVolume(h), &VolumeTexture{Layout: l})
	if vp := a.camera.Viewport; vp.Width != 640 || vp.Height != 360 {
		t.Errorf("viewport = %v, want 640x360", vp)
	}
	a.Layout(801, 601)
	if vp := a.camera.Viewport; vp.Width != 401 || vp.Height != 301 {
		t.Errorf("viewport = %v, want 401x301", vp)
	}
	// The panel stays in window coordinates.
	if a.panel.Bounds.Width != 160 {
		t.Errorf("panel width = %f, want 160", a.panel.Bounds.Width)
	}
}
