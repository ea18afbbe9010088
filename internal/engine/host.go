package engine

import (
	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
	"github.com/talgya/feudal-ffa/internal/world"
)

// Party is a settlement discovered by the host at match start.
type Party struct {
	Entity uint64
	Name   string
	Origin world.HexCoord
}

// Host is the narrow slice of the game engine the simulation consumes.
// Every call is synchronous and assumed not to block.
type Host interface {
	diplomacy.Source

	// Parties lists the settlements competing in the match.
	Parties() []Party

	Stock(entity uint64) social.Stock
	Deposit(entity uint64, s social.Stock)
	Withdraw(entity uint64, s social.Stock)
	// UnitsValue is the replacement cost of every combat unit the entity owns.
	UnitsValue(entity uint64) float64
	// SalaryPeriod is the entity's own tax/salary interval in ticks.
	SalaryPeriod(entity uint64) uint64
	// SetIndestructible stops the entity from self-destructing its settlement.
	SetIndestructible(entity uint64, on bool)

	// CastleAlive reports whether the entity's main structure stands.
	CastleAlive(entity uint64) bool
	CanPlace(entity uint64, footprint int, cell world.HexCoord) bool
	PlaceCastle(entity uint64, footprint int, cell world.HexCoord) bool

	// Notify and Broadcast are fire-and-forget.
	Notify(entity uint64, msg string)
	Broadcast(msg string)

	// RandInt returns a uniform integer in [lo, hi].
	RandInt(lo, hi int) int

	DeclareVictory(winners []uint64)
}

// DamageEvent is delivered by the host once per damage application.
type DamageEvent struct {
	Attacker      uint64  // host entity id
	Victim        uint64  // host entity id
	Amount        float64 // damage applied
	MainStructure bool    // the victim's castle took the hit
}
