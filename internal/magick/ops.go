package magick

import (
	"fmt"

	"github.com/buddhist-uni/big-imgs/internal/geometry"
)

// DefaultOptions are the shared encode options applied once per pipeline,
// right after the decode. method is 0-6 = fast-quality; pass is the number
// of passes used to approach the target PSNR and should stay between 3 and
// 7; -strip removes metadata.
func DefaultOptions() []string {
	return []string{
		"-strip",
		"-define", "webp:method=6",
		"-define", "webp:pass=5",
		"-define", "webp:target-psnr=49",
	}
}

// CropOp renders a crop window as engine arguments. +repage drops the
// virtual canvas offset left behind by -crop so later writes start clean.
func CropOp(r geometry.Rect) []string {
	return []string{
		"-crop", fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y),
		"+repage",
	}
}

// ResizeFitOp renders a "fit within, never enlarge" resize.
func ResizeFitOp(s geometry.Size) []string {
	return []string{"-resize", fmt.Sprintf("%dx%d>", s.Width, s.Height)}
}

// ResizeWidthOp renders a proportional resize to an exact width.
func ResizeWidthOp(width int) []string {
	return []string{"-resize", fmt.Sprintf("%d", width)}
}

// GeometryOps renders the output of geometry.Crop as engine arguments:
// the crop (if any) followed by the fit resize (if any).
func GeometryOps(crop *geometry.Rect, resize *geometry.Size) []string {
	var ops []string
	if crop != nil {
		ops = append(ops, CropOp(*crop)...)
	}
	if resize != nil {
		ops = append(ops, ResizeFitOp(*resize)...)
	}
	return ops
}
