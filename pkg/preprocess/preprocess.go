package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Config controls OCR image normalization. The zero value disables
// preprocessing entirely (identity transform); DefaultConfig returns the
// settings that work well for photographed pages.
type Config struct {
	Enabled bool
	// Adaptive selects mean-adaptive thresholding; when false a fixed global
	// threshold is used instead.
	Adaptive bool
	// Threshold is the fixed global threshold (used when Adaptive is false).
	Threshold uint8
	// Window and Bias tune the adaptive threshold neighborhood.
	Window int
	Bias   int
	// Deskew rotates the image by the detected dominant text angle.
	Deskew   bool
	MaxAngle float64
}

// DefaultConfig enables adaptive thresholding without deskew. Adaptive is the
// default because lighting varies across photographed pages; a fixed threshold
// only behaves on flat scans.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Adaptive:  true,
		Threshold: 180,
		Window:    35,
		Bias:      11,
		MaxAngle:  5,
	}
}

// Apply normalizes img for OCR according to cfg. It is a pure function of its
// inputs: when cfg.Enabled is false the input is returned unchanged, and
// re-applying the same fixed-threshold config to its own output is a no-op
// (a binarized image is a fixed point of re-binarization).
func Apply(img image.Image, cfg Config) image.Image {
	if !cfg.Enabled {
		return img
	}
	gray := imaging.Grayscale(img)
	var out *image.NRGBA
	if cfg.Adaptive {
		out = adaptiveThreshold(gray, cfg.Window, cfg.Bias)
	} else {
		out = binarize(gray, cfg.Threshold)
	}
	if cfg.Deskew {
		if angle := estimateSkew(out, cfg.MaxAngle); angle != 0 {
			rotated := imaging.Rotate(out, angle, color.NRGBA{255, 255, 255, 255})
			if cfg.Adaptive {
				out = adaptiveThreshold(rotated, cfg.Window, cfg.Bias)
			} else {
				out = binarize(rotated, cfg.Threshold)
			}
		}
	}
	return out
}

// binarize performs a global threshold on a grayscale image. Pixels at or
// below the threshold become black, everything else white.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// adaptiveThreshold performs a mean adaptive threshold using an integral
// image so the neighborhood mean is O(1) per pixel.
func adaptiveThreshold(img image.Image, window int, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := int((r + g + b) / 3 >> 8)
			rowSum += v
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			A := ints[y0*w+x0]
			B := ints[y0*w+x1]
			C := ints[y1*w+x0]
			D := ints[y1*w+x1]
			sum := D - B - C + A
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			rv, gv, bv, _ := img.At(x, y).RGBA()
			pix := int((rv + gv + bv) / 3 >> 8)
			th := mean - bias
			if th < 0 {
				th = 0
			}
			var c color.NRGBA
			if pix < th {
				c = color.NRGBA{0, 0, 0, 255}
			} else {
				c = color.NRGBA{255, 255, 255, 255}
			}
			out.Set(x, y, c)
		}
	}
	return out
}
