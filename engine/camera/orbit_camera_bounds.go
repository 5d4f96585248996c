package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/chewxy/math32"
)

// ErrInvalidBounds is returned by OrbitCameraBounds.Validate for bounds that cannot
// keep the camera off its target or away from the poles.
var ErrInvalidBounds = errors.New("invalid orbit camera bounds")

// OrbitCameraBounds constrains how an OrbitCamera may move.
// Nil optional fields leave that side of the range open.
type OrbitCameraBounds struct {
	// MinDistance is the closest the eye may get to the target. When nil the floor is common.Epsilon.
	// It may be smaller than common.Epsilon but must be positive.
	MinDistance *float32
	// MaxDistance is the farthest the eye may get from the target. When nil the range is unbounded.
	MaxDistance *float32
	// MinPitch must lie in (-PI/2, 0].
	MinPitch float32
	// MaxPitch must lie in [0, PI/2).
	MaxPitch float32
	// MinYaw optionally limits the orbit on one side, typically within [-PI, 0].
	MinYaw *float32
	// MaxYaw optionally limits the orbit on the other side, typically within [0, PI].
	MaxYaw *float32
}

// DefaultOrbitCameraBounds returns bounds that only keep the pitch strictly inside
// (-PI/2, PI/2) and the distance above common.Epsilon.
//
// Returns:
//   - OrbitCameraBounds: the default bounds
func DefaultOrbitCameraBounds() OrbitCameraBounds {
	return OrbitCameraBounds{
		MinPitch: -math.Pi/2 + common.Epsilon,
		MaxPitch: math.Pi/2 - common.Epsilon,
	}
}

// Bound returns a pointer to v, for filling the optional fields of OrbitCameraBounds.
//
// Parameters:
//   - v: the bound value
//
// Returns:
//   - *float32: pointer to a copy of v
func Bound(v float32) *float32 {
	return &v
}

// DistanceRange returns the effective closed distance interval.
// A MinDistance below common.Epsilon is honoured as long as it is positive; a non-positive
// one, which Validate rejects, falls back to common.Epsilon.
//
// Returns:
//   - lo: MinDistance, or common.Epsilon when unset or not positive
//   - hi: MaxDistance, or common.MaxFloat32 when unset
func (b OrbitCameraBounds) DistanceRange() (lo, hi float32) {
	lo, hi = common.Epsilon, common.MaxFloat32
	if b.MinDistance != nil && *b.MinDistance > 0 {
		lo = *b.MinDistance
	}
	if b.MaxDistance != nil {
		hi = *b.MaxDistance
	}
	return lo, hi
}

// ClampDistance clamps d into DistanceRange.
func (b OrbitCameraBounds) ClampDistance(d float32) float32 {
	lo, hi := b.DistanceRange()
	return common.Clamp(d, lo, hi)
}

// ClampPitch clamps p into [MinPitch, MaxPitch].
func (b OrbitCameraBounds) ClampPitch(p float32) float32 {
	return common.Clamp(p, b.MinPitch, b.MaxPitch)
}

// ClampYaw applies whichever yaw bounds are set. Each side is independent.
// A NaN or infinite yaw has no orbit position and is treated as 0 before the bounds apply.
func (b OrbitCameraBounds) ClampYaw(y float32) float32 {
	if math32.IsNaN(y) || math32.IsInf(y, 0) {
		y = 0
	}
	if b.MinYaw != nil && y < *b.MinYaw {
		y = *b.MinYaw
	}
	if b.MaxYaw != nil && y > *b.MaxYaw {
		y = *b.MaxYaw
	}
	return y
}

// Validate reports every bound that would let the eye reach the target,
// pass through a pole, or describe an empty range.
//
// Returns:
//   - error: nil when the bounds are usable, otherwise an error wrapping ErrInvalidBounds
func (b OrbitCameraBounds) Validate() error {
	var errs []error
	if b.MinDistance != nil && *b.MinDistance <= 0 {
		errs = append(errs, fmt.Errorf("%w: min distance %v must be > 0", ErrInvalidBounds, *b.MinDistance))
	}
	if b.MinDistance != nil && b.MaxDistance != nil && *b.MinDistance > *b.MaxDistance {
		errs = append(errs, fmt.Errorf("%w: min distance %v exceeds max distance %v", ErrInvalidBounds, *b.MinDistance, *b.MaxDistance))
	}
	if b.MinPitch <= -math.Pi/2 || b.MaxPitch >= math.Pi/2 {
		errs = append(errs, fmt.Errorf("%w: pitch range [%v, %v] must lie strictly inside (-pi/2, pi/2)", ErrInvalidBounds, b.MinPitch, b.MaxPitch))
	}
	if b.MinPitch > b.MaxPitch {
		errs = append(errs, fmt.Errorf("%w: min pitch %v exceeds max pitch %v", ErrInvalidBounds, b.MinPitch, b.MaxPitch))
	}
	if b.MinYaw != nil && b.MaxYaw != nil && *b.MinYaw > *b.MaxYaw {
		errs = append(errs, fmt.Errorf("%w: min yaw %v exceeds max yaw %v", ErrInvalidBounds, *b.MinYaw, *b.MaxYaw))
	}
	return errors.Join(errs...)
}
