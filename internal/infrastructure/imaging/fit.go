package imaging

import "math"

// Fit returns the size an image of curW x curH is scaled to under the
// (maxW, maxH) bound. Only one side is pinned to its bound: the width when the
// image is landscape or square and too wide, otherwise the height when it is
// too tall. resize is false when the image already fits.
func Fit(curW, curH, maxW, maxH int) (w, h int, resize bool) {
	switch {
	case curW <= maxW && curH <= maxH:
		return curW, curH, false
	case curW >= curH && curW > maxW:
		return maxW, scale(curH, maxW, curW), true
	case curH > maxH:
		return scale(curW, maxH, curH), maxH, true
	default:
		return curW, curH, false
	}
}

func scale(v, num, den int) int {
	s := int(math.Round(float64(v) * float64(num) / float64(den)))
	if s < 1 {
		return 1
	}

	return s
}
