// World generation using layered simplex noise.
// Generates elevation and moisture, then derives terrain.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	WaterLevel  float64 // Elevation threshold for water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable arena for 8–16 parties.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      24,
		Seed:        0,
		WaterLevel:  0.18,
		MountainLvl: 0.78,
	}
}

// SmallTestConfig returns a tiny, fully buildable-leaning arena for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      8,
		Seed:        42,
		WaterLevel:  -1,
		MountainLvl: 2,
	}
}

// Generate creates a complete arena map with terrain.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
			moist := octaveNoise(moistNoise, x, y, 3, 0.06, 0.5)

			// Arena shaping: raise the rim so the edge reads as mountains
			// instead of open sea.
			dist := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			if dist > 0.9 {
				elev += (dist - 0.9) * 3
			}

			m.Set(&Hex{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, moist, cfg),
				Elevation: elev,
				Moisture:  moist,
			})
		}
	}

	return m
}

func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	if elev < cfg.WaterLevel {
		return TerrainWater
	}
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if elev > 0.6 {
		return TerrainHills
	}
	if moist > 0.55 {
		return TerrainForest
	}
	return TerrainPlains
}

// octaveNoise generates fractal noise by layering multiple frequencies.
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

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, hex := range m.Hexes {
		counts[hex.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainMountain:
		return "Mountain"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
