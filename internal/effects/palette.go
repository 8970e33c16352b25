package effects

import (
	"image/color"
	"math/rand"
)

var (
	confettiColors = []color.NRGBA{
		{R: 255, G: 214, B: 10, A: 255},
		{R: 255, G: 87, B: 87, A: 255},
		{R: 72, G: 219, B: 251, A: 255},
		{R: 29, G: 209, B: 161, A: 255},
		{R: 243, G: 104, B: 224, A: 255},
		{R: 255, G: 159, B: 67, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}

	heartColors = []color.NRGBA{
		{R: 255, G: 64, B: 129, A: 255},
		{R: 255, G: 105, B: 180, A: 255},
		{R: 233, G: 30, B: 99, A: 255},
		{R: 255, G: 138, B: 173, A: 255},
	}
	heartGlow = color.NRGBA{R: 255, G: 80, B: 150, A: 140}

	boltColors = []color.NRGBA{
		{R: 120, G: 190, B: 255, A: 255},
		{R: 170, G: 130, B: 255, A: 255},
		{R: 255, G: 240, B: 160, A: 255},
		{R: 120, G: 255, B: 220, A: 255},
	}
	rocketColor = color.NRGBA{R: 255, G: 230, B: 180, A: 255}

	sparkleColors = []color.NRGBA{
		{R: 255, G: 250, B: 205, A: 255},
		{R: 255, G: 215, B: 0, A: 255},
		{R: 200, G: 230, B: 255, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}

	balloonColors = []color.NRGBA{
		{R: 239, G: 83, B: 80, A: 255},
		{R: 66, G: 165, B: 245, A: 255},
		{R: 102, G: 187, B: 106, A: 255},
		{R: 255, G: 202, B: 40, A: 255},
		{R: 171, G: 71, B: 188, A: 255},
	}
	stringColor = color.NRGBA{R: 230, G: 230, B: 230, A: 200}
)

func pick(rng *rand.Rand, colors []color.NRGBA) color.NRGBA {
	return colors[rng.Intn(len(colors))]
}

// between returns a uniform value in [lo, hi).
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
