package cloth

import "github.com/aquilax/go-perlin"

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// WindParams configures the gust field. A zero Strength disables it.
type WindParams struct {
	Strength float64
	Scale    float64
	Speed    float64
	Seed     int64
}

func DefaultWindParams() WindParams {
	return WindParams{
		Strength: 0,
		Scale:    0.02,
		Speed:    0.05,
		Seed:     1,
	}
}

// Wind is a smooth, time-varying force field sampled from Perlin noise. Gusts
// blow mostly along +x with a weaker vertical component.
type Wind struct {
	noise *perlin.Perlin
	t     float64
}

func NewWind(seed int64) *Wind {
	return &Wind{noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}
}

// Force returns the wind force at pos for the current time.
func (w *Wind) Force(p WindParams, pos Vec2) Vec2 {
	if p.Strength == 0 {
		return Vec2{}
	}
	tx := w.t * p.Speed
	gx := w.noise.Noise2D(pos.X*p.Scale+tx, pos.Y*p.Scale)
	gy := w.noise.Noise2D(pos.X*p.Scale, pos.Y*p.Scale+tx+100)
	return Vec2{X: p.Strength * (0.5 + gx), Y: p.Strength * 0.25 * gy}
}

func (w *Wind) Advance(dt float64) { w.t += dt }
