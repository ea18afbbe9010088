package social

// Resource enumerates the stockpiled resource kinds a settlement holds.
type Resource uint8

const (
	Gold Resource = iota
	Wood
	Stone
	Food
)

// Resources lists every resource kind in a stable order.
var Resources = [...]Resource{Gold, Wood, Stone, Food}

// ResourceName returns a human-readable name for a resource kind.
func ResourceName(r Resource) string {
	switch r {
	case Gold:
		return "gold"
	case Wood:
		return "wood"
	case Stone:
		return "stone"
	case Food:
		return "food"
	default:
		return "unknown"
	}
}

// Stock is a bundle of resources plus population.
type Stock struct {
	Amounts    [len(Resources)]int `json:"amounts"`
	Population int                 `json:"population"`
}

// Get returns the amount held of r.
func (s Stock) Get(r Resource) int {
	return s.Amounts[r]
}

// Set overwrites the amount held of r.
func (s *Stock) Set(r Resource, v int) {
	s.Amounts[r] = v
}

// Total returns the sum of resources, excluding population.
func (s Stock) Total() int {
	n := 0
	for _, v := range s.Amounts {
		n += v
	}
	return n
}

// IsZero reports whether the bundle carries nothing.
func (s Stock) IsZero() bool {
	return s.Total() == 0 && s.Population == 0
}

// Value returns the bundle's worth in resource units, weighting each head of
// population by populationValue.
func (s Stock) Value(populationValue float64) float64 {
	return float64(s.Total()) + float64(s.Population)*populationValue
}

// Add returns s + o.
func (s Stock) Add(o Stock) Stock {
	for i := range s.Amounts {
		s.Amounts[i] += o.Amounts[i]
	}
	s.Population += o.Population
	return s
}

// Sub returns s - o.
func (s Stock) Sub(o Stock) Stock {
	for i := range s.Amounts {
		s.Amounts[i] -= o.Amounts[i]
	}
	s.Population -= o.Population
	return s
}
