// Settlement placement: finds starting anchors for every party in the arena.
package world

import (
	"math/rand"
	"sort"
)

// SettlementSeed holds the starting anchor of one party.
type SettlementSeed struct {
	Coord HexCoord
	Score float64 // Desirability score
	Name  string
}

// PlaceSettlements picks count anchors with a free footprint, spread as far
// apart as the map allows. The minimum spacing shrinks until every party fits;
// fewer seeds than requested are returned only when the map is full.
func PlaceSettlements(m *Map, count, footprint int, seed int64) []SettlementSeed {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	coords := make([]HexCoord, 0, len(m.Hexes))
	for coord := range m.Hexes {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})

	var candidates []scored
	for _, coord := range coords {
		if !m.FootprintFree(coord, footprint, 0) {
			continue
		}
		candidates = append(candidates, scored{coord, settlementScore(m, coord, m.Get(coord)) + rng.Float64()*0.5})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].coord.Q != candidates[j].coord.Q {
			return candidates[i].coord.Q < candidates[j].coord.Q
		}
		return candidates[i].coord.R < candidates[j].coord.R
	})

	var seeds []SettlementSeed
	for minDist := m.Radius; minDist > 2*footprint && len(seeds) < count; minDist-- {
		seeds = seeds[:0]
		for _, c := range candidates {
			if len(seeds) >= count {
				break
			}
			if tooClose(c.coord, seeds, minDist) {
				continue
			}
			seeds = append(seeds, SettlementSeed{Coord: c.coord, Score: c.score})
		}
	}

	names := generateNames(rng, len(seeds))
	for i := range seeds {
		seeds[i].Name = names[i]
	}
	return seeds
}

// settlementScore prefers open ground with buildable room around it.
func settlementScore(m *Map, coord HexCoord, hex *Hex) float64 {
	score := 0.0
	switch hex.Terrain {
	case TerrainPlains:
		score += 3.0
	case TerrainForest:
		score += 2.0
	case TerrainHills:
		score += 1.5
	default:
		return 0
	}

	for _, nc := range coord.Neighbors() {
		nh := m.Get(nc)
		if nh != nil && nh.Terrain.Buildable() {
			score += 0.3
		}
	}
	return score
}

func tooClose(coord HexCoord, existing []SettlementSeed, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural settlement names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
