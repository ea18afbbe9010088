package engine

import (
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
)

// OnDamage applies one combat damage report from the host. It credits the
// attacker, converts damage into power score and escalates a neutral pair to
// war unless a truce protects them. Returns whether the event was applied.
func (s *Simulation) OnDamage(ev DamageEvent) bool {
	if s.GameOver || ev.Amount <= 0 || ev.Attacker == ev.Victim {
		return false
	}
	a, err := s.ParticipantByEntity(ev.Attacker)
	if err != nil {
		// Wildlife and other non-party entities.
		return false
	}
	v, err := s.ParticipantByEntity(ev.Victim)
	if err != nil {
		return false
	}
	if a.Eliminated || v.Eliminated {
		return false
	}

	at, err := s.TeamOf(a)
	if err != nil {
		slog.Error("damage: attacker has no team", "participant", a.ID, "error", err)
		return false
	}
	vt, err := s.TeamOf(v)
	if err != nil {
		slog.Error("damage: victim has no team", "participant", v.ID, "error", err)
		return false
	}

	switch s.Diplomacy.Get(a.Entity, v.Entity) {
	case diplomacy.Alliance:
		return false
	case diplomacy.Neutral:
		if !at.InTruce(s.LastTick) && !vt.InTruce(s.LastTick) {
			s.setTeamStance(at, vt, diplomacy.War)
		}
	}

	a.CreditDamage(v.ID, ev.Amount, ev.MainStructure)
	a.Battle.DamageDealt += ev.Amount
	v.Battle.DamageTaken += ev.Amount
	if ev.MainStructure {
		a.Battle.CastleHits++
	}

	c := s.Config.Combat
	gain := ev.Amount * c.DamagePowerRate
	if at.RivalID == vt.ID {
		gain *= c.RivalMultiplier
	}
	if v.ID == s.BountyTarget {
		gain *= c.BountyMultiplier
	}
	a.PowerScore += gain
	v.PowerScore -= ev.Amount * c.DamagePowerLoss
	return true
}
