package instance

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// ErrInvalidGrid is returned by GridConfig.Validate for grids that would produce no instances
// or more instances than a uint32 instance index can address.
var ErrInvalidGrid = errors.New("invalid instance grid")

// MaxGridInstances caps the pool size so every instance index fits the draw call's uint32.
const MaxGridInstances = math.MaxUint32

// Instance is one placement of the shared cube mesh.
type Instance struct {
	Position [3]float32
	Rotation [3]float32 // Euler angles in radians, applied Y * X * Z
	Scale    float32
}

// ModelMatrix returns the instance's model-to-world transform (column-major).
// A zero Scale is treated as 1.
func (i Instance) ModelMatrix() [16]float32 {
	var m [16]float32
	s := common.Coalesce(i.Scale, 1)
	common.BuildModelMatrix(m[:],
		i.Position[0], i.Position[1], i.Position[2],
		i.Rotation[0], i.Rotation[1], i.Rotation[2],
		s, s, s,
	)
	return m
}

// GridConfig describes a rows x cols x planes block of cubes.
// Rows run along X, Cols along Z and Planes stack along Y; every plane is one depth layer.
type GridConfig struct {
	Rows    uint32  `toml:"rows" yaml:"rows"`
	Cols    uint32  `toml:"cols" yaml:"cols"`
	Planes  uint32  `toml:"planes" yaml:"planes"`
	Spacing float32 `toml:"spacing" yaml:"spacing"`
}

// DefaultGridConfig returns a 5x5x2 grid with 0.2 spacing.
func DefaultGridConfig() GridConfig {
	return GridConfig{Rows: 5, Cols: 5, Planes: 2, Spacing: 0.2}
}

// LayerSize returns the number of instances in one plane.
func (g GridConfig) LayerSize() uint32 {
	return g.Rows * g.Cols
}

// PoolSize returns the total number of instances in the grid.
func (g GridConfig) PoolSize() uint32 {
	return g.Rows * g.Cols * g.Planes
}

// Validate reports every dimension that would leave the grid empty, and a pool too large
// for LayerSize and PoolSize to represent.
//
// Returns:
//   - error: nil for a usable grid, otherwise errors wrapping ErrInvalidGrid
func (g GridConfig) Validate() error {
	var errs []error
	if g.Rows == 0 {
		errs = append(errs, fmt.Errorf("%w: rows must be > 0", ErrInvalidGrid))
	}
	if g.Cols == 0 {
		errs = append(errs, fmt.Errorf("%w: cols must be > 0", ErrInvalidGrid))
	}
	if g.Planes == 0 {
		errs = append(errs, fmt.Errorf("%w: planes must be > 0", ErrInvalidGrid))
	}
	if g.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("%w: spacing %v must be > 0", ErrInvalidGrid, g.Spacing))
	}
	// uint64 cannot overflow here: each factor is below 2^32 and the checked layer is too.
	if layer := uint64(g.Rows) * uint64(g.Cols); layer > MaxGridInstances {
		errs = append(errs, fmt.Errorf("%w: %d x %d layer exceeds %d instances", ErrInvalidGrid, g.Rows, g.Cols, uint64(MaxGridInstances)))
	} else if pool := layer * uint64(g.Planes); pool > MaxGridInstances {
		errs = append(errs, fmt.Errorf("%w: %d x %d x %d grid exceeds %d instances", ErrInvalidGrid, g.Rows, g.Cols, g.Planes, uint64(MaxGridInstances)))
	}
	return errors.Join(errs...)
}

// NewGrid lays the instances out plane by plane, then column by column, then row by row,
// so instances [k*LayerSize, (k+1)*LayerSize) are exactly plane k. The block is centred
// on the origin along X and Z and starts half a block below it along Y.
//
// Parameters:
//   - cfg: the grid dimensions
//
// Returns:
//   - []Instance: PoolSize instances
//   - error: the Validate error for an unusable grid
func NewGrid(cfg GridConfig) ([]Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	offsetX := float32(cfg.Rows) * cfg.Spacing / 2
	offsetY := float32(cfg.Planes) * cfg.Spacing / 2
	offsetZ := float32(cfg.Cols) * cfg.Spacing / 2

	instances := make([]Instance, 0, cfg.PoolSize())
	for y := range cfg.Planes {
		for z := range cfg.Cols {
			for x := range cfg.Rows {
				instances = append(instances, Instance{
					Position: [3]float32{
						float32(x)*cfg.Spacing - offsetX,
						float32(y)*cfg.Spacing - offsetY,
						float32(z)*cfg.Spacing - offsetZ,
					},
					Scale: 1,
				})
			}
		}
	}
	return instances, nil
}
