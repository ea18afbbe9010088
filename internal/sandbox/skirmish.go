package sandbox

import (
	"github.com/talgya/feudal-ffa/internal/engine"
	"github.com/talgya/feudal-ffa/internal/social"
)

// Hostile reports whether a may attack b.
type Hostile func(a, b uint64) bool

// Skirmish plays one tick of combat. Each standing settlement has a one in
// four chance to strike a random hostile settlement; every hit is handed to
// deliver before the castle is razed so the attacker gets the credit.
// Returns the number of hits.
func (h *Host) Skirmish(hostile Hostile, deliver func(engine.DamageEvent)) int {
	hits := 0
	for _, a := range h.order {
		att := h.settlements[a]
		if !att.Alive || h.rng.IntRange(0, 3) != 0 {
			continue
		}

		var targets []uint64
		for _, b := range h.order {
			if b != a && h.settlements[b].Alive && hostile(a, b) {
				targets = append(targets, b)
			}
		}
		if len(targets) == 0 {
			continue
		}
		vic := h.settlements[targets[h.rng.IntRange(0, len(targets)-1)]]

		ev := engine.DamageEvent{
			Attacker:      a,
			Victim:        vic.Entity,
			Amount:        float64(h.rng.IntRange(10, 40)) + att.UnitsValue*0.01,
			MainStructure: h.rng.IntRange(0, 2) == 0,
		}
		deliver(ev)
		hits++

		vic.UnitsValue = max(0, vic.UnitsValue-ev.Amount*0.1)
		if ev.MainStructure {
			vic.CastleHP -= ev.Amount
			if vic.CastleHP <= 0 {
				h.DestroyCastle(vic.Entity)
			}
		}
	}
	return hits
}

// Harvest credits every standing settlement with one round of production and
// lets it rebuild a little of its army.
func (h *Host) Harvest() {
	for _, id := range h.order {
		st := h.settlements[id]
		if !st.Alive {
			continue
		}
		var yield social.Stock
		for _, r := range social.Resources {
			yield.Set(r, h.rng.IntRange(5, 15))
		}
		yield.Population = 1
		st.Stock = st.Stock.Add(yield)
		st.UnitsValue += 5
	}
}
