// Feudal economy: tribute, generosity, power rewards and spoils.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/feudal-ffa/internal/social"
	"github.com/talgya/feudal-ffa/internal/world"
)

func (s *Simulation) limitsFor(p *social.Participant) social.Limits {
	e := s.Config.Economy
	return social.TributeLimits(p.PowerScore,
		e.TributeBaseLimit, e.TributePowerFactor,
		e.TributeBasePopulation, e.TributePopulationFactor)
}

// PayTribute moves a subordinate's holdings above its limits to its leader.
// With power exchange on, part of the resource value comes back as power
// score, but only while the leader stays ahead by at least the amount moved.
// Returns whether any tribute was paid.
func (s *Simulation) PayTribute(p *social.Participant) bool {
	if !p.IsSubordinate() {
		return false
	}
	leader, err := s.participant(p.LeaderID)
	if err != nil {
		slog.Error("tribute", "participant", p.ID, "error", err)
		return false
	}

	tribute := social.Tribute(s.Host.Stock(p.Entity), s.limitsFor(p))
	if tribute.IsZero() {
		return false
	}
	s.Host.Withdraw(p.Entity, tribute)
	s.Host.Deposit(leader.Entity, tribute)

	e := s.Config.Economy
	exchanged := 0.0
	if e.PowerExchange && !s.justPromoted(p) {
		points := float64(tribute.Total()) * e.ExchangeRate
		if social.ExchangeAllowed(leader.PowerScore, p.PowerScore, points) {
			leader.PowerScore -= points
			p.PowerScore += points
			exchanged = points
		}
	}

	slog.Debug("tribute paid",
		"from", p.Name,
		"to", leader.Name,
		"resources", tribute.Total(),
		"population", tribute.Population,
		"power", exchanged,
	)
	return true
}

func (s *Simulation) justPromoted(p *social.Participant) bool {
	t, ok := s.Teams[p.TeamID]
	return ok && t.JustPromoted
}

// ReceiveResources deposits stock into p's settlement.
func (s *Simulation) ReceiveResources(p *social.Participant, stock social.Stock) {
	s.Host.Deposit(p.Entity, stock)
}

// DistributeGenerosity splits the leader's surplus over the generosity
// threshold evenly among subordinates, never lifting one above its own
// tribute limit. Returns whether anything was given.
func (s *Simulation) DistributeGenerosity(t *social.Team) bool {
	if len(t.Subordinates) == 0 {
		return false
	}
	leader, err := s.participant(t.LeaderID)
	if err != nil {
		slog.Error("generosity", "team", t.ID, "error", err)
		return false
	}

	e := s.Config.Economy
	held := s.Host.Stock(leader.Entity)
	subs := t.SubordinateIDs()
	threshold := int(math.Floor(e.GenerosityThreshold))

	gifts := make(map[social.ParticipantID]social.Stock, len(subs))
	for _, r := range social.Resources {
		surplus := held.Get(r) - threshold
		if surplus <= 0 {
			continue
		}
		share := surplus / len(subs)
		if share == 0 {
			continue
		}
		for _, id := range subs {
			sub := s.Participants[id]
			room := max(0, s.limitsFor(sub).Resource-s.Host.Stock(sub.Entity).Get(r))
			g := gifts[id]
			g.Set(r, min(share, room))
			gifts[id] = g
		}
	}

	given := false
	for _, id := range subs {
		gift := gifts[id]
		if gift.IsZero() {
			continue
		}
		sub := s.Participants[id]
		s.Host.Withdraw(leader.Entity, gift)
		s.ReceiveResources(sub, gift)
		given = true

		if e.PowerExchange && !t.JustPromoted {
			points := gift.Value(e.PopulationValue) * e.ExchangeRate
			sub.PowerScore -= points
			leader.PowerScore += points
		}
	}
	return given
}

// GivePowerPointReward converts a share of p's power score into resources and
// population and schedules the next payout. Power score is left untouched.
func (s *Simulation) GivePowerPointReward(p *social.Participant, tick uint64) bool {
	e := s.Config.Economy
	points := social.RewardPoints(p.PowerScore, e.MinRewardPower, e.RewardPercent)
	if points <= 0 {
		return false
	}

	var gift social.Stock
	gift.Set(social.Gold, int(math.Floor(points*e.RewardGoldPerPoint)))
	gift.Population = int(math.Floor(points * e.RewardPopulationPerPoint))
	s.ReceiveResources(p, gift)

	period := s.salaryPeriod(p)
	p.NextRewardTick += period
	if p.NextRewardTick <= tick {
		p.NextRewardTick = tick + period
	}
	return true
}

func (s *Simulation) salaryPeriod(p *social.Participant) uint64 {
	if period := s.Host.SalaryPeriod(p.Entity); period > 0 {
		return period
	}
	return s.Config.CyclePeriod
}

// CurrentPower is the material strength of p: held resources, population
// weighted by its configured value, and the replacement cost of its army.
func (s *Simulation) CurrentPower(p *social.Participant) float64 {
	return s.Host.Stock(p.Entity).Value(s.Config.Economy.PopulationValue) + s.Host.UnitsValue(p.Entity)
}

// RespawnCastle probes cells spiralling out from p's original anchor until
// the host accepts a placement.
func (s *Simulation) RespawnCastle(p *social.Participant) bool {
	r := s.Config.Respawn
	for _, cell := range world.Spiral(p.Origin, r.SearchRadius) {
		if !s.Host.CanPlace(p.Entity, r.Footprint, cell) {
			continue
		}
		if s.Host.PlaceCastle(p.Entity, r.Footprint, cell) {
			slog.Info("castle respawned", "participant", p.Name, "q", cell.Q, "r", cell.R)
			return true
		}
	}
	slog.Warn("no placement for castle", "participant", p.Name, "radius", r.SearchRadius)
	return false
}

// ShareSpoils takes fraction of defeated's power score and hands it to the
// members of t in proportion to their damage credit against defeated (at
// least 1 each). Both damage accumulators against defeated are then cleared
// on every member. Returns the amount taken.
func (s *Simulation) ShareSpoils(t *social.Team, defeated *social.Participant, fraction float64) float64 {
	var members []*social.Participant
	for _, id := range t.Members() {
		if id != defeated.ID {
			members = append(members, s.Participants[id])
		}
	}
	if len(members) == 0 {
		return 0
	}

	taken := fraction * defeated.PowerScore
	defeated.PowerScore -= taken

	credits := make([]float64, len(members))
	total := 0.0
	for i, m := range members {
		credits[i] = max(1, m.DamageTo[defeated.ID])
		total += credits[i]
	}
	for i, m := range members {
		m.PowerScore += taken * credits[i] / total
		m.ForgetVictim(defeated.ID)
	}

	slog.Debug("spoils shared",
		"defeated", defeated.Name,
		"team", t.ID,
		"taken", fmt.Sprintf("%.2f", taken),
		"recipients", len(members),
	)
	return taken
}
