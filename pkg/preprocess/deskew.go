package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// estimateSkew searches for the rotation (in degrees, within ±maxAngle) that
// maximizes the variance of horizontal projection profiles. Text lines produce
// strongly peaked row sums when horizontal, so the best-scoring angle is the
// correction to apply. Returns 0 when no candidate beats the unrotated image.
func estimateSkew(img *image.NRGBA, maxAngle float64) float64 {
	if maxAngle <= 0 {
		return 0
	}
	// Work on a small copy; projection variance is scale-invariant enough.
	small := img
	if img.Bounds().Dy() > 400 {
		small = imaging.Resize(img, 0, 400, imaging.NearestNeighbor)
	}
	best := 0.0
	bestScore := profileVariance(small)
	for angle := -maxAngle; angle <= maxAngle+1e-9; angle += 0.5 {
		if angle == 0 {
			continue
		}
		rot := imaging.Rotate(small, angle, color.NRGBA{255, 255, 255, 255})
		if score := profileVariance(rot); score > bestScore {
			bestScore = score
			best = angle
		}
	}
	return best
}

// profileVariance computes the variance of per-row black pixel counts.
func profileVariance(img *image.NRGBA) float64 {
	b := img.Bounds()
	h := b.Dy()
	if h == 0 {
		return 0
	}
	rows := make([]float64, h)
	var total float64
	for y := 0; y < h; y++ {
		count := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y+b.Min.Y).RGBA()
			if r+g+bl < 3*0x8000 {
				count++
			}
		}
		rows[y] = float64(count)
		total += float64(count)
	}
	mean := total / float64(h)
	var variance float64
	for _, v := range rows {
		d := v - mean
		variance += d * d
	}
	return variance / float64(h)
}
