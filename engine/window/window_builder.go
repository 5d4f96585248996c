package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client area size. Non-positive values keep the default.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithSizeLimits bounds how far the user may resize the window.
// The limits are widened if necessary to contain the initial size.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed client area in pixels
//   - maxWidth, maxHeight: the largest allowed client area in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}
