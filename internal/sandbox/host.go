// Package sandbox is an in-memory game host: settlements on a hex arena with
// stockpiles, armies and castles. It backs the ffasim command and the engine
// tests.
package sandbox

import (
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/engine"
	"github.com/talgya/feudal-ffa/internal/entropy"
	"github.com/talgya/feudal-ffa/internal/social"
	"github.com/talgya/feudal-ffa/internal/world"
)

// DefaultCastleHP is the hit points of a freshly placed castle.
const DefaultCastleHP = 1000

// Settlement is the host-side state of one party.
type Settlement struct {
	Entity uint64
	Name   string
	Origin world.HexCoord
	Castle world.HexCoord

	Stock          social.Stock
	UnitsValue     float64
	SalaryPeriod   uint64
	CastleHP       float64
	Alive          bool
	Indestructible bool

	Inbox []string
}

// Host implements engine.Host in memory.
type Host struct {
	Map       *world.Map
	Footprint int

	rng         entropy.Source
	settlements map[uint64]*Settlement
	order       []uint64
	stances     map[[2]uint64]diplomacy.Stance

	Broadcasts []string
	Winners    []uint64
}

var _ engine.Host = (*Host)(nil)

// New creates a host with one settlement per seed. Entity ids start at 1 in
// seed order.
func New(m *world.Map, seeds []world.SettlementSeed, footprint int, rng entropy.Source) *Host {
	h := &Host{
		Map:         m,
		Footprint:   footprint,
		rng:         rng,
		settlements: make(map[uint64]*Settlement),
		stances:     make(map[[2]uint64]diplomacy.Stance),
	}
	for i, seed := range seeds {
		entity := uint64(i + 1)
		st := &Settlement{
			Entity:       entity,
			Name:         seed.Name,
			Origin:       seed.Coord,
			Castle:       seed.Coord,
			SalaryPeriod: 250,
			CastleHP:     DefaultCastleHP,
			Alive:        true,
		}
		st.Stock.Population = 20
		for _, r := range social.Resources {
			st.Stock.Set(r, 200)
		}
		st.UnitsValue = 500
		h.settlements[entity] = st
		h.order = append(h.order, entity)
		m.Occupy(seed.Coord, footprint, entity)
	}
	return h
}

// Settlement returns the host state for entity, or nil.
func (h *Host) Settlement(entity uint64) *Settlement {
	return h.settlements[entity]
}

// Entities returns every entity id in creation order.
func (h *Host) Entities() []uint64 {
	return append([]uint64(nil), h.order...)
}

func (h *Host) Parties() []engine.Party {
	out := make([]engine.Party, 0, len(h.order))
	for _, id := range h.order {
		st := h.settlements[id]
		out = append(out, engine.Party{Entity: id, Name: st.Name, Origin: st.Origin})
	}
	return out
}

func (h *Host) Stance(from, to uint64) diplomacy.Stance {
	return h.stances[[2]uint64{from, to}]
}

func (h *Host) SetStance(from, to uint64, s diplomacy.Stance) {
	h.stances[[2]uint64{from, to}] = s
}

func (h *Host) Stock(entity uint64) social.Stock {
	if st := h.settlements[entity]; st != nil {
		return st.Stock
	}
	return social.Stock{}
}

func (h *Host) Deposit(entity uint64, s social.Stock) {
	if st := h.settlements[entity]; st != nil {
		st.Stock = st.Stock.Add(s)
	}
}

func (h *Host) Withdraw(entity uint64, s social.Stock) {
	if st := h.settlements[entity]; st != nil {
		st.Stock = st.Stock.Sub(s)
	}
}

func (h *Host) UnitsValue(entity uint64) float64 {
	if st := h.settlements[entity]; st != nil {
		return st.UnitsValue
	}
	return 0
}

func (h *Host) SalaryPeriod(entity uint64) uint64 {
	if st := h.settlements[entity]; st != nil {
		return st.SalaryPeriod
	}
	return 0
}

func (h *Host) SetIndestructible(entity uint64, on bool) {
	if st := h.settlements[entity]; st != nil {
		st.Indestructible = on
	}
}

func (h *Host) CastleAlive(entity uint64) bool {
	st := h.settlements[entity]
	return st != nil && st.Alive
}

func (h *Host) CanPlace(entity uint64, footprint int, cell world.HexCoord) bool {
	return h.Map.InBounds(cell) && h.Map.FootprintFree(cell, footprint, entity)
}

func (h *Host) PlaceCastle(entity uint64, footprint int, cell world.HexCoord) bool {
	st := h.settlements[entity]
	if st == nil || !h.CanPlace(entity, footprint, cell) {
		return false
	}
	h.Map.Release(entity)
	h.Map.Occupy(cell, footprint, entity)
	st.Castle = cell
	st.CastleHP = DefaultCastleHP
	st.Alive = true
	return true
}

func (h *Host) Notify(entity uint64, msg string) {
	if st := h.settlements[entity]; st != nil {
		st.Inbox = append(st.Inbox, msg)
	}
}

func (h *Host) Broadcast(msg string) {
	h.Broadcasts = append(h.Broadcasts, msg)
}

func (h *Host) RandInt(lo, hi int) int {
	return h.rng.IntRange(lo, hi)
}

func (h *Host) DeclareVictory(winners []uint64) {
	h.Winners = append([]uint64(nil), winners...)
	slog.Info("victory declared", "winners", len(winners))
}

// DestroyCastle razes entity's castle and frees its footprint.
func (h *Host) DestroyCastle(entity uint64) {
	st := h.settlements[entity]
	if st == nil {
		return
	}
	st.Alive = false
	st.CastleHP = 0
	h.Map.Release(entity)
}
