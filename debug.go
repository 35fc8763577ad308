package voxelmarch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	overlayTitle       = "voxelmarch/examples/voxel-raymarch"
	overlayDescription = "Description: isosurface ray marching of a scalar volume."

	// debugLogInterval is how often frame stats go to stderr in debug mode.
	debugLogInterval = time.Second
)

// FrameInfo is the state shown by the debug overlay for one frame.
type FrameInfo struct {
	FrameTime time.Duration
	Header    Header
	Layout    AtlasLayout
	ValueLo   byte
	ValueHi   byte
	Isovalue  float32
	Stats     RenderStats
	Paused    bool

	// FPS and TPS are the measured rates, shown in debug mode.
	FPS, TPS float64
}

// overlayLines formats the overlay text. The first three lines are always
// shown; the rest only in debug mode.
func overlayLines(info FrameInfo, debug bool) []string {
	ms := float64(info.FrameTime) / float64(time.Millisecond)
	lines := []string{
		overlayTitle,
		overlayDescription,
		fmt.Sprintf("Frame: % 7.3f[ms]", ms),
	}
	if !debug {
		return lines
	}
	h := info.Header
	l := info.Layout
	lines = append(lines,
		fmt.Sprintf("FPS: %.1f  TPS: %.1f", info.FPS, info.TPS),
		fmt.Sprintf("Volume: %dx%dx%d  voxel %.3gx%.3gx%.3g", h.Dims[0], h.Dims[1], h.Dims[2],
			h.VoxelSize[0], h.VoxelSize[1], h.VoxelSize[2]),
		fmt.Sprintf("Atlas: %dx%d px, %dx%d slices, step %d", l.Width(), l.Height(), l.Cols, l.Rows, l.Step),
		fmt.Sprintf("Values: %d..%d  isovalue %.3f", info.ValueLo, info.ValueHi, info.Isovalue),
		fmt.Sprintf("Triangles: %d  culled: %d  fallback: %v", info.Stats.Triangles, info.Stats.Culled, info.Stats.Fallback),
	)
	if info.Paused {
		lines = append(lines, "Paused")
	}
	return lines
}

// drawOverlay prints the overlay lines starting one text row below the top
// edge.
func drawOverlay(dst *ebiten.Image, info FrameInfo, debug bool) {
	for i, line := range overlayLines(info, debug) {
		ebitenutil.DebugPrintAt(dst, line, 0, (i+1)*glyphHeight)
	}
}

// debugStats accumulates frame timings between debug log lines.
type debugStats struct {
	frames   int
	elapsed  time.Duration
	worst    time.Duration
	lastSent time.Time
}

func (d *debugStats) record(frame time.Duration) {
	d.frames++
	d.elapsed += frame
	d.worst = max(d.worst, frame)
}

// debugLog writes accumulated stats to w once per debugLogInterval and
// resets the accumulators. Reports whether a line was written.
func (d *debugStats) debugLog(w io.Writer, now time.Time, stats RenderStats) bool {
	if d.lastSent.IsZero() {
		d.lastSent = now
		return false
	}
	if now.Sub(d.lastSent) < debugLogInterval || d.frames == 0 {
		return false
	}
	avg := d.elapsed / time.Duration(d.frames)
	_, _ = fmt.Fprintf(w,
		"[voxelmarch] frames: %d | avg: %v | worst: %v | triangles: %d | culled: %d | fallback: %v\n",
		d.frames, avg, d.worst, stats.Triangles, stats.Culled, stats.Fallback)
	*d = debugStats{lastSent: now}
	return true
}

// logStderr writes a prefixed diagnostic line to stderr.
func logStderr(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[voxelmarch] "+format+"\n", args...)
}
