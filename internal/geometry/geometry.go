// Package geometry computes crop rectangles and resize targets for deriving
// image variants. All functions are pure: they operate on pixel dimensions
// and percentage-based focal points and never touch the filesystem or the
// image engine.
package geometry

import "math"

// Rect is a crop window inside a source image. X and Y are the offsets of
// the window's top-left corner.
type Rect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Size is a resize target in pixels.
type Size struct {
	Width  int
	Height int
}

// Focal is a percentage-based (x%, y%) coordinate marking the region of an
// image to preserve when cropping to a different aspect ratio. (50, 50) is
// the center.
type Focal struct {
	X float64
	Y float64
}

// Center is the default focal point.
var Center = Focal{X: 50, Y: 50}

// round is nearest-integer rounding with ties away from zero. All geometry
// in this package rounds this way, consistently.
func round(f float64) int {
	return int(math.Round(f))
}

// Crop computes the crop window and resize target needed to bring a
// width x height image to targetWidth x targetHeight while preserving the
// focal point.
//
// When the target is wider than the source, the height is trimmed and the
// removed rows are split around focal.Y; when the target is taller, the
// width is trimmed around focal.X; when the aspect ratios match, no crop is
// returned. A resize target is returned only when the (possibly cropped)
// dimensions still differ from the target; the caller must apply it as a
// fit-within resize that never enlarges.
func Crop(width, height, targetWidth, targetHeight int, focal Focal) (*Rect, *Size) {
	targetRatio := float64(targetWidth) / float64(targetHeight)
	actualRatio := float64(width) / float64(height)

	cropWidth := width
	cropHeight := height
	cropX := 0
	cropY := 0

	if targetRatio > actualRatio {
		// Wider target: trim top/bottom.
		cropHeight = round(float64(height) * actualRatio / targetRatio)
		deltaH := height - cropHeight
		cropY = round(float64(deltaH) * focal.Y / 100.0)
	}
	if targetRatio < actualRatio {
		// Taller target: trim the sides.
		cropWidth = round(float64(width) * targetRatio / actualRatio)
		deltaW := width - cropWidth
		cropX = round(float64(deltaW) * focal.X / 100.0)
	}

	var crop *Rect
	if cropWidth != width || cropHeight != height {
		crop = &Rect{Width: cropWidth, Height: cropHeight, X: cropX, Y: cropY}
	}

	var resize *Size
	if targetWidth != cropWidth || targetHeight != cropHeight {
		resize = &Size{Width: targetWidth, Height: targetHeight}
	}

	return crop, resize
}

// Window positions a fixed winWidth x winHeight window inside a
// width x height image so that the window sits at the focal point. Unlike
// Crop, the window size is taken as-is; the source is assumed to be at
// least as large as the window.
func Window(width, height, winWidth, winHeight int, focal Focal) Rect {
	return Rect{
		Width:  winWidth,
		Height: winHeight,
		X:      round(float64(width-winWidth) * focal.X / 100.0),
		Y:      round(float64(height-winHeight) * focal.Y / 100.0),
	}
}

// Scale multiplies a dimension by a factor and rounds to whole pixels.
func Scale(dim int, factor float64) int {
	return round(float64(dim) * factor)
}
