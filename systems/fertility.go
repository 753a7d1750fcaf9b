package systems

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// FertilityField is a static noise map biasing where food sprouts.
type FertilityField struct {
	noise  opensimplex.Noise
	scale  float64
	floor  float64
	width  float64
	height float64
	margin float64
}

// NewFertilityField creates a field over a width x height world. Sampled
// points stay margin units away from the edges.
func NewFertilityField(seed int64, width, height, scale, floor, margin float64) *FertilityField {
	return &FertilityField{
		noise:  opensimplex.NewNormalized(seed),
		scale:  scale,
		floor:  floor,
		width:  width,
		height: height,
		margin: margin,
	}
}

// At returns the fertility in [floor, 1] at a world position.
func (f *FertilityField) At(x, y float64) float64 {
	v := octaveNoise(f.noise, x, y, 3, f.scale, 0.5)
	return f.floor + (1-f.floor)*Clamp(v, 0, 1)
}

// Sample draws a point inside the margins, accepting candidates with
// probability equal to their fertility. After attempts rejections the last
// candidate is returned so a spawn always happens.
func (f *FertilityField) Sample(rng *rand.Rand, attempts int) (float64, float64) {
	var x, y float64
	for i := 0; i < max(attempts, 1); i++ {
		x = f.margin + rng.Float64()*(f.width-2*f.margin)
		y = f.margin + rng.Float64()*(f.height-2*f.margin)
		if rng.Float64() < f.At(x, y) {
			break
		}
	}
	return x, y
}

// octaveNoise layers several frequencies of noise, normalized to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
