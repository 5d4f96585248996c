package common

import (
	"math"

	"github.com/chewxy/math32"
)

// Epsilon is the difference between 1 and the next representable float32.
// It is the smallest distance an orbit camera may keep from its target.
const Epsilon float32 = 1.1920929e-07

// MaxFloat32 is the largest finite float32, used as the open upper bound for clamps.
const MaxFloat32 float32 = math.MaxFloat32

// Clamp limits v to the closed interval [lo, hi].
// When lo > hi the result is lo, so the lower bound always wins. NaN also maps to lo.
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - T: the clamped value
func Clamp[T ~float32 | ~float64 | ~int | ~uint32](v, lo, hi T) T {
	if v != v { // NaN
		return lo
	}
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// TransformPoint multiplies the point (x, y, z, 1) by a column-major 4x4 matrix
// and returns the homogeneous result.
//
// Parameters:
//   - m: the matrix (16 elements, column-major)
//   - x, y, z: the point to transform
//
// Returns:
//   - [4]float32: the transformed homogeneous point
func TransformPoint(m []float32, x, y, z float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*x + m[4+row]*y + m[8+row]*z + m[12+row]
	}
	return out
}

// Perspective creates a right-handed perspective projection matrix that maps
// view-space depth onto the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY, posZ: translation in world space
//   - rotX, rotY, rotZ: rotation angles in radians around each axis
//   - scaleX, scaleY, scaleZ: scale factors along each axis
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	sx, cx := math32.Sincos(rotX)
	sy, cy := math32.Sincos(rotY)
	sz, cz := math32.Sincos(rotZ)

	// R = Ry * Rx * Rz, column-major
	out[0] = (cy*cz + sy*sx*sz) * scaleX
	out[1] = (cx * sz) * scaleX
	out[2] = (-sy*cz + cy*sx*sz) * scaleX
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scaleY
	out[5] = (cx * cz) * scaleY
	out[6] = (sy*sz + cy*sx*cz) * scaleY
	out[7] = 0

	out[8] = (sy * cx) * scaleZ
	out[9] = (-sx) * scaleZ
	out[10] = (cy * cx) * scaleZ
	out[11] = 0

	out[12] = posX
	out[13] = posY
	out[14] = posZ
	out[15] = 1
}

// LookAt creates a right-handed view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space, with the
// camera looking down its local -Z axis.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := z0*z0 + z1*z1 + z2*z2
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / math32.Sqrt(val)
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = x0*x0 + x1*x1 + x2*x2
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / math32.Sqrt(val)
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// SphericalToCartesian converts an orbit offset given as distance, pitch and yaw into
// a cartesian vector. Yaw is measured from +Z toward +X and pitch from the horizontal
// plane, so (d, 0, 0) maps to (0, 0, d).
//
// Parameters:
//   - distance: radial distance
//   - pitch: elevation angle in radians
//   - yaw: azimuth angle in radians
//
// Returns:
//   - [3]float32: the cartesian offset
func SphericalToCartesian(distance, pitch, yaw float32) [3]float32 {
	sinPitch, cosPitch := math32.Sincos(pitch)
	sinYaw, cosYaw := math32.Sincos(yaw)
	return [3]float32{
		distance * sinYaw * cosPitch,
		distance * sinPitch,
		distance * cosYaw * cosPitch,
	}
}
