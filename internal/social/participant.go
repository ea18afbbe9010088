// Package social provides the participant and team records of a match and
// the pure arithmetic of the feudal economy.
package social

import (
	"math"

	"github.com/talgya/feudal-ffa/internal/world"
)

// ParticipantID is the stable identifier of a competing party.
type ParticipantID int

// BattleStats are per-cycle counters reported by the battle summary.
type BattleStats struct {
	DamageDealt float64 `json:"damage_dealt"`
	DamageTaken float64 `json:"damage_taken"`
	CastleHits  int     `json:"castle_hits"`
	Kills       int     `json:"kills"`
}

// Participant is one competing party bound to one host settlement.
type Participant struct {
	ID     ParticipantID  `json:"id"`
	Entity uint64         `json:"entity"` // host settlement id
	Name   string         `json:"name"`
	Origin world.HexCoord `json:"origin"` // original anchor, respawn probes start here

	PowerScore float64 `json:"power_score"`
	Eliminated bool    `json:"eliminated"`

	// Membership. LeaderID equals ID when the participant leads its team.
	TeamID   TeamID        `json:"team_id"`
	LeaderID ParticipantID `json:"leader_id"`

	// Credit per victim: all damage, and damage to the victim's castle only.
	DamageTo       map[ParticipantID]float64 `json:"damage_to"`
	CastleDamageTo map[ParticipantID]float64 `json:"castle_damage_to"`

	// Leader of the team this participant is told to fight; 0 = none.
	RivalTarget ParticipantID `json:"rival_target"`

	NextRewardTick uint64 `json:"next_reward_tick"`

	Battle BattleStats `json:"battle"`
}

// NewParticipant creates an unaffiliated participant.
func NewParticipant(id ParticipantID, entity uint64, name string, origin world.HexCoord) *Participant {
	return &Participant{
		ID:             id,
		Entity:         entity,
		Name:           name,
		Origin:         origin,
		DamageTo:       make(map[ParticipantID]float64),
		CastleDamageTo: make(map[ParticipantID]float64),
	}
}

// IsLeader reports whether p leads its team.
func (p *Participant) IsLeader() bool {
	return p.LeaderID == p.ID
}

// IsSubordinate reports whether p is bound to a leader other than itself.
func (p *Participant) IsSubordinate() bool {
	return p.LeaderID != 0 && p.LeaderID != p.ID
}

// CreditDamage records amount of damage dealt to victim.
func (p *Participant) CreditDamage(victim ParticipantID, amount float64, castle bool) {
	p.DamageTo[victim] += amount
	if castle {
		p.CastleDamageTo[victim] += amount
	}
}

// ForgetVictim zeroes both damage accumulators against victim.
func (p *Participant) ForgetVictim(victim ParticipantID) {
	delete(p.DamageTo, victim)
	delete(p.CastleDamageTo, victim)
}

// Limits is the per-kind ceiling a subordinate may keep before paying tribute.
type Limits struct {
	Resource   int
	Population int
}

// TributeLimits returns the ceilings for a subordinate with the given power.
// Negative power counts as zero and no ceiling drops below zero.
func TributeLimits(power, baseLimit, powerFactor, basePop, popFactor float64) Limits {
	power = max(0, power)
	return Limits{
		Resource:   max(0, int(math.Floor(baseLimit+powerFactor*power))),
		Population: max(0, int(math.Floor(basePop+popFactor*power))),
	}
}

// Tribute returns the part of held above lim. Every amount is >= 0.
func Tribute(held Stock, lim Limits) Stock {
	var t Stock
	for _, r := range Resources {
		t.Set(r, max(0, held.Get(r)-lim.Resource))
	}
	t.Population = max(0, held.Population-lim.Population)
	return t
}

// ExchangeAllowed reports whether moving points of power from leader to
// subordinate leaves the leader ahead by at least points. This keeps a
// tribute payment from flipping leadership.
func ExchangeAllowed(leaderPower, subordinatePower, points float64) bool {
	if points <= 0 {
		return false
	}
	return (leaderPower-points)-subordinatePower >= points
}

// RewardPoints returns the power points converted by a reward payout, or 0
// when power is below minPower.
func RewardPoints(power, minPower, percent float64) float64 {
	if power < minPower {
		return 0
	}
	return power * percent / 100
}
