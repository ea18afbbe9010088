// Package world provides the hex grid the sandbox host places settlements on.
// Uses axial coordinates (q, r) for the hex grid.
package world

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Scale multiplies both components by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, always buildable
	TerrainForest                  // Buildable
	TerrainHills                   // Buildable
	TerrainMountain                // Impassable for structures
	TerrainWater                   // Lakes and sea
)

// Buildable reports whether a structure footprint may cover this terrain.
func (t Terrain) Buildable() bool {
	return t == TerrainPlains || t == TerrainForest || t == TerrainHills
}

// Hex represents a single tile on the world map.
type Hex struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	Elevation float64 `json:"elevation"` // 0.0 (sea level) to 1.0 (peak)
	Moisture  float64 `json:"moisture"`  // 0.0 (arid) to 1.0 (wet)

	// Entity whose structure covers this hex; 0 when free.
	Occupant uint64 `json:"occupant,omitempty"`
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// Ring returns the hexes exactly radius steps from center, walking the ring
// counter-clockwise from the south-west corner. Radius 0 yields the center.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius <= 0 {
		return []HexCoord{center}
	}
	ring := make([]HexCoord, 0, 6*radius)
	cur := center.Add(HexNeighborDirections[4].Scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			ring = append(ring, cur)
			cur = cur.Add(HexNeighborDirections[side])
		}
	}
	return ring
}

// Spiral returns center followed by every ring out to radius, innermost first.
// This is the probe order used when looking for a free placement cell.
func Spiral(center HexCoord, radius int) []HexCoord {
	out := []HexCoord{center}
	for k := 1; k <= radius; k++ {
		out = append(out, Ring(center, k)...)
	}
	return out
}

// Disk returns every hex within radius of center (center included).
func Disk(center HexCoord, radius int) []HexCoord {
	return Spiral(center, radius)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
