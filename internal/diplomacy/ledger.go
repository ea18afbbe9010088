// Package diplomacy stores the symmetric War/Neutral/Alliance relation between
// pairs of participants.
package diplomacy

import "fmt"

// Stance is the diplomatic state between two parties.
type Stance uint8

const (
	War Stance = iota
	Neutral
	Alliance
)

// String returns the stance name used in logs and snapshots.
func (s Stance) String() string {
	switch s {
	case War:
		return "war"
	case Neutral:
		return "neutral"
	case Alliance:
		return "alliance"
	default:
		return fmt.Sprintf("stance(%d)", uint8(s))
	}
}

// Source is the authoritative relation store owned by the host engine.
// It is directional; the Ledger keeps both directions in step.
type Source interface {
	Stance(from, to uint64) Stance
	SetStance(from, to uint64, s Stance)
}

// pairKey is an order-independent key for two ids.
type pairKey struct {
	lo, hi uint64
}

func keyOf(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Ledger is the only writer of relationship state. Reads are served from a
// cache keyed by the sorted pair; a miss is resolved once from the Source.
type Ledger struct {
	src   Source
	cache map[pairKey]Stance
}

// NewLedger wraps src.
func NewLedger(src Source) *Ledger {
	return &Ledger{
		src:   src,
		cache: make(map[pairKey]Stance),
	}
}

// Get returns the stance between a and b. Get(a, b) == Get(b, a).
func (l *Ledger) Get(a, b uint64) Stance {
	if a == b {
		return Alliance
	}
	k := keyOf(a, b)
	if s, ok := l.cache[k]; ok {
		return s
	}
	// Read through the canonical direction so an asymmetric host value
	// cannot leak two different answers.
	s := l.src.Stance(k.lo, k.hi)
	l.cache[k] = s
	return s
}

// Set writes s for both directions and refreshes the cache entry.
func (l *Ledger) Set(a, b uint64, s Stance) {
	if a == b {
		return
	}
	k := keyOf(a, b)
	if cur, ok := l.cache[k]; ok && cur == s {
		return
	}
	l.src.SetStance(a, b, s)
	l.src.SetStance(b, a, s)
	l.cache[k] = s
}

// Invalidate drops every cached entry.
func (l *Ledger) Invalidate() {
	clear(l.cache)
}

// Cached returns the number of cached pairs.
func (l *Ledger) Cached() int {
	return len(l.cache)
}
