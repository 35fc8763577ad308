package voxelmarch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// pageSteps is how many slider steps PgUp/PgDn move the isovalue.
const pageSteps = 10

var presetKeys = [presetCount]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// App is the ray-march sample. It owns the volume, its GPU texture, the
// camera and the settings panel, and implements ebiten.Game.
type App struct {
	cfg Config

	volume   *Volume
	texture  *VolumeTexture
	renderer *Renderer
	camera   *Camera
	panel    *Panel
	target   renderTarget

	// Isovalue is the current surface threshold in [0, 1].
	Isovalue float32
	tween    *ValueTween

	input       InputSource
	injectQueue []PointerState
	runner      *TestRunner

	screenshotQueue []string

	clock  float32
	paused bool
	quit   bool

	width, height int

	lastFrame time.Time
	frameTime time.Duration
	stats     debugStats

	valueLo, valueHi byte
}

// NewApp loads the volume named by cfg, uploads it and prepares the scene.
// Close releases the GPU resources.
func NewApp(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vol, err := LoadVolume(cfg.VolumeDir, cfg.HeaderFile, cfg.RawFile)
	if err != nil {
		return nil, err
	}
	tex, err := NewVolumeTexture(vol, cfg.MaxAtlasSize)
	if err != nil {
		return nil, fmt.Errorf("upload volume: %w", err)
	}
	a := newApp(cfg, vol, tex)
	if cfg.Script != "" {
		runner, err := LoadTestScriptFile(cfg.Script)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.runner = runner
	}
	if cfg.Debug {
		l := tex.Layout
		logStderr("volume %v, atlas %dx%d (step %d)", vol.Dims, l.Width(), l.Height(), l.Step)
	}
	return a, nil
}

// newApp wires an app around an already loaded volume and texture.
func newApp(cfg Config, vol *Volume, tex *VolumeTexture) *App {
	a := &App{
		cfg:      cfg,
		volume:   vol,
		texture:  tex,
		renderer: NewRenderer(vol.Header, tex, cfg.Steps),
		camera:   NewVolumeCamera(vol.Header, marchViewport(cfg.Width, cfg.Height, cfg.RenderScale)),
		Isovalue: cfg.Isovalue,
		input:    ebitenInput{},
		width:    cfg.Width,
		height:   cfg.Height,
	}
	a.panel = NewSettingsPanel(cfg.Width, cfg.Height, &a.Isovalue)
	a.valueLo, a.valueHi = vol.Range()
	return a
}

// SetInputSource replaces the input the app reads each frame.
func (a *App) SetInputSource(in InputSource) {
	a.input = in
}

// SetTestRunner attaches a script that drives the app from Update.
func (a *App) SetTestRunner(r *TestRunner) {
	a.runner = r
}

// SetIsovalue sets the isovalue immediately, cancelling any glide.
func (a *App) SetIsovalue(v float32) {
	a.stopTween()
	a.panel.Sliders[0].Set(v)
}

// GlidePreset starts a glide to the isovalue bound to number key k.
func (a *App) GlidePreset(k int) {
	a.tween = TweenValue(&a.Isovalue, PresetIsovalue(k), presetDuration, presetEase)
}

// TogglePause stops or resumes the rotation.
func (a *App) TogglePause() {
	a.paused = !a.paused
}

// RequestQuit ends the game loop at the next Update.
func (a *App) RequestQuit() {
	a.quit = true
}

// Paused reports whether the rotation is stopped.
func (a *App) Paused() bool {
	return a.paused
}

// Clock returns the rotation time in seconds.
func (a *App) Clock() float32 {
	return a.clock
}

func (a *App) pendingInput() int {
	return len(a.injectQueue)
}

func (a *App) stopTween() {
	if a.tween != nil {
		a.tween.Cancel()
		a.tween = nil
	}
}

func (a *App) keyJustPressed(k ebiten.Key) bool {
	return a.input != nil && a.input.KeyJustPressed(k)
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	return a.update(1 / float32(ebiten.TPS()))
}

func (a *App) update(dt float32) error {
	if a.runner != nil {
		a.runner.step(a)
	}
	if a.quit || a.keyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if a.keyJustPressed(ebiten.KeySpace) {
		a.TogglePause()
	}
	for i, k := range presetKeys {
		if a.keyJustPressed(k) {
			a.GlidePreset(i + 1)
		}
	}
	if a.keyJustPressed(ebiten.KeyPageUp) {
		a.stopTween()
		a.panel.Sliders[0].Nudge(pageSteps)
	}
	if a.keyJustPressed(ebiten.KeyPageDown) {
		a.stopTween()
		a.panel.Sliders[0].Nudge(-pageSteps)
	}
	if a.keyJustPressed(ebiten.KeyF12) {
		a.Screenshot("f12")
	}

	if a.panel.Update(a.nextPointer()) || a.panel.Captured() {
		a.stopTween()
	}
	if a.tween != nil {
		a.tween.Update(dt)
		if a.tween.Done {
			a.tween = nil
		}
	}

	if !a.paused {
		a.clock += dt
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	now := time.Now()
	if !a.lastFrame.IsZero() {
		a.frameTime = now.Sub(a.lastFrame)
	}
	a.lastFrame = now

	screen.Fill(ClearColor.RGBA())
	model := ModelMatrix(a.volume.Header, a.clock)
	if a.cfg.RenderScale < 1 {
		vp := a.camera.Viewport
		off := a.target.acquire(int(vp.Width), int(vp.Height))
		a.renderer.Draw(off, a.camera, model, a.Isovalue)
		a.target.blit(screen, a.width, a.height)
	} else {
		a.renderer.Draw(screen, a.camera, model, a.Isovalue)
	}
	a.panel.Draw(screen)
	info := a.frameInfo()
	if a.cfg.Debug {
		info.FPS, info.TPS = ebiten.ActualFPS(), ebiten.ActualTPS()
		a.stats.record(a.frameTime)
		a.stats.debugLog(os.Stderr, now, info.Stats)
	}
	drawOverlay(screen, info, a.cfg.Debug)
	a.flushScreenshots(screen)
}

func (a *App) frameInfo() FrameInfo {
	return FrameInfo{
		FrameTime: a.frameTime,
		Header:    a.volume.Header,
		Layout:    a.texture.Layout,
		ValueLo:   a.valueLo,
		ValueHi:   a.valueHi,
		Isovalue:  a.Isovalue,
		Stats:     a.renderer.Stats(),
		Paused:    a.paused,
	}
}

// Layout implements ebiten.Game. The screen follows the window size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.camera.SetViewport(marchViewport(w, h, a.cfg.RenderScale))
	a.panel.Layout(w, h)
}

// marchViewport is the camera viewport for a w x h window: the window
// itself, or the scaled offscreen target.
func marchViewport(w, h int, scale float64) Rect {
	sw, sh := scaledSize(w, h, scale)
	return Rect{Width: float64(sw), Height: float64(sh)}
}

// Close releases the renderer, the offscreen target and the volume texture.
func (a *App) Close() {
	a.target.dispose()
	if a.renderer != nil {
		a.renderer.Dispose()
	}
	if a.texture != nil {
		a.texture.Dispose()
	}
}

// Run opens the window and runs the sample until it is closed or Esc is
// pressed.
func Run(cfg Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.VSync)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
