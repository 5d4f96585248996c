package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/instance"
)

// ErrInvalidConfig wraps every field-level validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	// MaxTickRate is the highest accepted engine tick rate, in ticks per second.
	MaxTickRate = 10_000
	// MaxFrameLimit is the highest accepted render frame cap, in frames per second.
	MaxFrameLimit = 10_000
)

// Config is the file-backed configuration for the voxel demo.
// Fields missing from a file keep the values from Default.
type Config struct {
	Window WindowConfig        `toml:"window" yaml:"window"`
	Camera CameraConfig        `toml:"camera" yaml:"camera"`
	Grid   instance.GridConfig `toml:"grid" yaml:"grid"`
	Engine EngineConfig        `toml:"engine" yaml:"engine"`
}

// WindowConfig sizes and titles the window and picks the present mode.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// CameraConfig is the initial orbit pose, its bounds, its projection and the input speeds.
// Optional bounds use pointers so that an absent key leaves that side open.
type CameraConfig struct {
	Distance float32    `toml:"distance" yaml:"distance"`
	Pitch    float32    `toml:"pitch" yaml:"pitch"`
	Yaw      float32    `toml:"yaw" yaml:"yaw"`
	Target   [3]float32 `toml:"target" yaml:"target"`

	MinDistance *float32 `toml:"min_distance" yaml:"min_distance"`
	MaxDistance *float32 `toml:"max_distance" yaml:"max_distance"`
	MinPitch    float32  `toml:"min_pitch" yaml:"min_pitch"`
	MaxPitch    float32  `toml:"max_pitch" yaml:"max_pitch"`
	MinYaw      *float32 `toml:"min_yaw" yaml:"min_yaw"`
	MaxYaw      *float32 `toml:"max_yaw" yaml:"max_yaw"`

	Fov  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`

	RotateSpeed float32 `toml:"rotate_speed" yaml:"rotate_speed"`
	ZoomSpeed   float32 `toml:"zoom_speed" yaml:"zoom_speed"`
	// ZoomEasing is the number of seconds each scroll step is eased over; 0 disables easing.
	ZoomEasing float32 `toml:"zoom_easing" yaml:"zoom_easing"`
}

// EngineConfig controls the loop rates and the initial flicker state.
type EngineConfig struct {
	// TickRate is the number of fixed updates per second; every update advances the flicker window once.
	TickRate int `toml:"tick_rate" yaml:"tick_rate"`
	// FrameLimit caps rendered frames per second; 0 renders as fast as the present mode allows.
	FrameLimit int `toml:"frame_limit" yaml:"frame_limit"`
	// Flicker starts the demo with voxel flicker enabled.
	Flicker bool `toml:"flicker" yaml:"flicker"`
	// ClearColor is the RGBA background colour.
	ClearColor [4]float64 `toml:"clear_color" yaml:"clear_color"`
	// Profile logs FPS and memory statistics once per second.
	Profile bool `toml:"profile" yaml:"profile"`
}

// Default returns the demo's stock configuration: a 5x5x2 grid viewed from distance 2.
func Default() Config {
	bounds := camera.DefaultOrbitCameraBounds()
	return Config{
		Window: WindowConfig{
			Title:  "oxy-voxel",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			Distance:    2.0,
			Pitch:       1.5,
			Yaw:         1.25,
			MinDistance: camera.Bound(1.1),
			MinPitch:    bounds.MinPitch,
			MaxPitch:    bounds.MaxPitch,
			Fov:         math.Pi / 2,
			Near:        0.1,
			Far:         1000,
			RotateSpeed: 0.005,
			ZoomSpeed:   0.1,
		},
		Grid: instance.DefaultGridConfig(),
		Engine: EngineConfig{
			TickRate:   60,
			ClearColor: [4]float64{0.1, 0.2, 0.3, 1.0},
		},
	}
}

// Bounds converts the camera section into OrbitCameraBounds.
//
// Returns:
//   - camera.OrbitCameraBounds: the configured bounds
func (c CameraConfig) Bounds() camera.OrbitCameraBounds {
	return camera.OrbitCameraBounds{
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
		MinPitch:    c.MinPitch,
		MaxPitch:    c.MaxPitch,
		MinYaw:      c.MinYaw,
		MaxYaw:      c.MaxYaw,
	}
}

// Validate reports every invalid field at once.
//
// Returns:
//   - error: nil when the config is usable, otherwise a joined error whose parts wrap ErrInvalidConfig
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}

	if err := c.Camera.Bounds().Validate(); err != nil {
		invalid("camera: %w", err)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= math.Pi {
		invalid("camera fov %v must lie in (0, pi)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		invalid("camera clip planes near %v far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.ZoomEasing < 0 {
		invalid("camera zoom easing %v must be >= 0", c.Camera.ZoomEasing)
	}

	if err := c.Grid.Validate(); err != nil {
		invalid("grid: %w", err)
	}

	if c.Engine.TickRate <= 0 || c.Engine.TickRate > MaxTickRate {
		invalid("engine tick rate %d must lie in [1, %d]", c.Engine.TickRate, MaxTickRate)
	}
	if c.Engine.FrameLimit < 0 || c.Engine.FrameLimit > MaxFrameLimit {
		invalid("engine frame limit %d must lie in [0, %d]", c.Engine.FrameLimit, MaxFrameLimit)
	}

	return errors.Join(errs...)
}
