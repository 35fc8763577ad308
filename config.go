package voxelmarch

import (
	"errors"
	"flag"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ClearColor is the background behind the volume.
var ClearColor = ColorFromHex(0x303030ff)

// Config holds the start-up settings of the sample.
type Config struct {
	Title         string
	Width, Height int

	// VolumeDir holds HeaderFile (dimensions and voxel size as text) and
	// RawFile (one byte per voxel, X fastest).
	VolumeDir  string
	HeaderFile string
	RawFile    string

	Isovalue     float32
	Steps        int
	MaxAtlasSize int
	// RenderScale is the fraction of the window resolution the volume is
	// ray marched at; the result is stretched to fill the window.
	RenderScale float64

	VSync bool
	Debug bool

	ScreenshotDir string
	// Script is an optional JSON test script run from the first frame.
	Script string
}

// DefaultConfig returns the settings the sample starts with.
func DefaultConfig() Config {
	return Config{
		Title:         "voxelmarch - voxel ray march",
		Width:         1280,
		Height:        720,
		VolumeDir:     "volumes",
		HeaderFile:    "vismale.dat",
		RawFile:       "vismale.raw",
		Isovalue:      0.225,
		Steps:         256,
		MaxAtlasSize:  4096,
		RenderScale:   1,
		VSync:         true,
		ScreenshotDir: "screenshots",
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.HeaderFile == "" || c.RawFile == "":
		return fmt.Errorf("%w: volume header and raw file names are required", ErrInvalidConfig)
	case c.Isovalue < 0 || c.Isovalue > 1:
		return fmt.Errorf("%w: isovalue %g outside [0, 1]", ErrInvalidConfig, c.Isovalue)
	case c.Steps < 1 || c.Steps > MaxSteps:
		return fmt.Errorf("%w: steps %d outside [1, %d]", ErrInvalidConfig, c.Steps, MaxSteps)
	case c.MaxAtlasSize < minAtlasSize:
		return fmt.Errorf("%w: atlas size %d below %d", ErrInvalidConfig, c.MaxAtlasSize, minAtlasSize)
	case !(c.RenderScale >= minRenderScale && c.RenderScale <= 1):
		return fmt.Errorf("%w: render scale %g outside [%g, 1]", ErrInvalidConfig, c.RenderScale, minRenderScale)
	}
	return nil
}

// RegisterFlags binds the config fields to command-line flags on fs, using
// the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Title, "title", c.Title, "window title")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.StringVar(&c.VolumeDir, "volumes", c.VolumeDir, "directory holding the volume files")
	fs.StringVar(&c.HeaderFile, "header", c.HeaderFile, "volume header file name")
	fs.StringVar(&c.RawFile, "raw", c.RawFile, "raw voxel file name")
	fs.Func("isovalue", fmt.Sprintf("initial isovalue in [0, 1] (default %g)", c.Isovalue), func(s string) error {
		var v float32
		if _, err := fmt.Sscan(s, &v); err != nil {
			return err
		}
		c.Isovalue = v
		return nil
	})
	fs.IntVar(&c.Steps, "steps", c.Steps, "ray-march samples per ray")
	fs.IntVar(&c.MaxAtlasSize, "atlas", c.MaxAtlasSize, "maximum slice atlas edge in pixels")
	fs.Float64Var(&c.RenderScale, "scale", c.RenderScale, "ray-march resolution as a fraction of the window")
	fs.BoolVar(&c.VSync, "vsync", c.VSync, "enable vsync")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "show extra overlay lines and log frame stats")
	fs.StringVar(&c.ScreenshotDir, "screenshots", c.ScreenshotDir, "screenshot output directory")
	fs.StringVar(&c.Script, "script", c.Script, "JSON test script to run")
}
