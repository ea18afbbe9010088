package world

import "fmt"

// Map holds the complete hex grid world state.
type Map struct {
	Hexes  map[HexCoord]*Hex `json:"-"` // All hexes keyed by coordinate
	Radius int               `json:"radius"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Hexes:  make(map[HexCoord]*Hex),
		Radius: radius,
	}
}

// Get returns the hex at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Hex {
	return m.Hexes[coord]
}

// Set places a hex at the given coordinate.
func (m *Map) Set(hex *Hex) {
	m.Hexes[hex.Coord] = hex
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(coord, HexCoord{}) <= m.Radius
}

// FootprintFree reports whether every hex within footprint of center exists,
// is buildable and is not covered by another structure. A hex occupied by
// owner itself counts as free.
func (m *Map) FootprintFree(center HexCoord, footprint int, owner uint64) bool {
	for _, c := range Disk(center, footprint) {
		hex := m.Get(c)
		if hex == nil || !hex.Terrain.Buildable() {
			return false
		}
		if hex.Occupant != 0 && hex.Occupant != owner {
			return false
		}
	}
	return true
}

// Occupy marks the footprint around center as covered by owner.
func (m *Map) Occupy(center HexCoord, footprint int, owner uint64) {
	for _, c := range Disk(center, footprint) {
		if hex := m.Get(c); hex != nil {
			hex.Occupant = owner
		}
	}
}

// Release clears every hex covered by owner.
func (m *Map) Release(owner uint64) {
	for _, hex := range m.Hexes {
		if hex.Occupant == owner {
			hex.Occupant = 0
		}
	}
}

// HexCount returns the total number of hexes in the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.Radius, m.HexCount())
}
