package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	Key0   = 48  // 0 key (ASCII), toggles voxel flicker
	KeyR   = 82  // R key (ASCII), resets the orbit camera
	KeyEsc = 256 // Escape key (GLFW)
)

// Mouse buttons reported by the window layer.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
