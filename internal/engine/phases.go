// Phase handlers dispatched by the Engine at their cycle offsets.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/feudal-ffa/internal/social"
)

// Phases returns the scheduled handlers with the offsets from the config.
func (s *Simulation) Phases() []Phase {
	o := s.Config.Phases
	return []Phase{
		{Name: "elimination", Offset: o.Elimination, Run: s.DetectEliminations},
		{Name: "migration", Offset: o.Migration, Run: func(tick uint64) { s.ProcessTeamMigrations(tick) }},
		{Name: "truce_expiry", Offset: o.TruceExpiry, Run: s.ExpireTruces},
		{Name: "promotion", Offset: o.Promotion, Run: s.CheckPromotions},
		{Name: "rivals", Offset: o.Rivals, Run: func(tick uint64) { s.AssignRivals(tick) }},
		{Name: "tribute", Offset: o.Tribute, Run: s.CollectTribute},
		{Name: "generosity", Offset: o.Generosity, Run: s.DistributeAllGenerosity},
		{Name: "rewards", Offset: o.Rewards, Run: s.PayRewards},
		{Name: "bounty", Offset: o.Bounty, Run: s.RotateBounty},
		{Name: "coalition", Offset: o.Coalition, Run: s.CheckCoalitions},
		{Name: "battle_summary", Offset: o.BattleSummary, Run: s.SummarizeBattles},
		{Name: "game_end", Offset: o.GameEnd, Run: s.CheckGameEnd},
	}
}

// DetectEliminations flags participants whose castle is gone and clears the
// flag of any the host has rebuilt before conquest ran.
func (s *Simulation) DetectEliminations(tick uint64) {
	s.LastTick = tick
	for _, id := range s.participantIDs() {
		p := s.Participants[id]
		alive := s.Host.CastleAlive(p.Entity)
		switch {
		case !alive && !p.Eliminated:
			p.Eliminated = true
			var killer *social.Participant
			if t, err := s.TeamOf(p); err == nil {
				killer = s.topCastleAttacker(p, t)
			}
			if killer != nil {
				killer.Battle.Kills++
			}
			slog.Info("participant eliminated", "tick", tick, "participant", p.Name)
			s.EmitEvent(Event{
				Tick:        tick,
				Description: fmt.Sprintf("The castle of %s has fallen", p.Name),
				Category:    "elimination",
			})
			s.Host.Broadcast(fmt.Sprintf("The castle of %s has fallen!", p.Name))
		case alive && p.Eliminated:
			p.Eliminated = false
			slog.Info("participant rebuilt", "tick", tick, "participant", p.Name)
		}
	}
	s.updateStats()
}

// ExpireTruces ends every truce whose deadline has passed. Each expiry is
// handled once: the deadline is reset to 0.
func (s *Simulation) ExpireTruces(tick uint64) {
	s.LastTick = tick
	expired := 0
	for _, id := range s.teamIDs() {
		t := s.Teams[id]
		if !t.TruceExpired(tick) {
			continue
		}
		t.TruceUntil = 0
		for _, pid := range t.Members() {
			s.syncStances(s.Participants[pid], tick)
		}
		s.notifyTeam(t, "The truce is over.")
		slog.Info("truce expired", "tick", tick, "team", t.ID)
		expired++
	}
	if expired > 0 {
		s.AssignRivals(tick)
	}
}

// CheckPromotions runs the suzerain check on every team. The one-cycle
// exchange suppression from the previous cycle is lifted first.
func (s *Simulation) CheckPromotions(tick uint64) {
	s.LastTick = tick
	for _, t := range s.Teams {
		t.JustPromoted = false
	}
	for _, id := range s.teamIDs() {
		s.PromoteIfStronger(s.Teams[id], tick)
	}
}

// CollectTribute has every subordinate pay its leader.
func (s *Simulation) CollectTribute(tick uint64) {
	s.LastTick = tick
	if !s.Config.Economy.TributeEnabled {
		return
	}
	paid := 0
	for _, id := range s.participantIDs() {
		p := s.Participants[id]
		if p.Eliminated || !p.IsSubordinate() {
			continue
		}
		if s.PayTribute(p) {
			paid++
		}
	}
	if paid > 0 {
		slog.Info("tribute collected", "tick", tick, "payers", paid)
	}
}

// DistributeAllGenerosity runs generosity for every team.
func (s *Simulation) DistributeAllGenerosity(tick uint64) {
	s.LastTick = tick
	if !s.Config.Economy.GenerosityEnabled {
		return
	}
	for _, id := range s.teamIDs() {
		s.DistributeGenerosity(s.Teams[id])
	}
}

// PayRewards pays every participant whose reward timer has run out.
func (s *Simulation) PayRewards(tick uint64) {
	s.LastTick = tick
	if !s.Config.Economy.RewardsEnabled {
		return
	}
	for _, id := range s.participantIDs() {
		p := s.Participants[id]
		if p.Eliminated || p.NextRewardTick > tick {
			continue
		}
		s.GivePowerPointReward(p, tick)
	}
}

// RotateBounty moves the bounty onto the most powerful active participant
// once the bounty timer runs out.
func (s *Simulation) RotateBounty(tick uint64) {
	s.LastTick = tick
	b := s.Config.Bounty
	if !b.Enabled || tick < s.nextBountyTick {
		return
	}
	s.nextBountyTick = tick + b.Period

	var target *social.Participant
	for _, id := range s.participantIDs() {
		p := s.Participants[id]
		if p.Eliminated || p.ID == s.BountyTarget {
			continue
		}
		if target == nil || p.PowerScore > target.PowerScore {
			target = p
		}
	}
	if target == nil {
		slog.Warn("no bounty candidate", "tick", tick)
		return
	}

	s.BountyTarget = target.ID
	slog.Info("bounty placed", "tick", tick, "target", target.Name, "power", humanize.CommafWithDigits(target.PowerScore, 1))
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("A bounty is placed on %s", target.Name),
		Category:    "bounty",
	})
	s.Host.Broadcast(fmt.Sprintf("Bounty: strike %s for triple glory!", target.Name))
}

// CheckCoalitions runs coalition formation when enabled.
func (s *Simulation) CheckCoalitions(tick uint64) {
	s.LastTick = tick
	if !s.Config.Coalition.Enabled {
		return
	}
	s.ManageCoalitions(tick)
}

// SummarizeBattles logs the per-cycle combat counters and resets them.
func (s *Simulation) SummarizeBattles(tick uint64) {
	s.LastTick = tick
	for _, id := range s.participantIDs() {
		p := s.Participants[id]
		if p.Battle == (social.BattleStats{}) {
			continue
		}
		slog.Info("battle summary",
			"tick", tick,
			"participant", p.Name,
			"team", p.TeamID,
			"dealt", humanize.CommafWithDigits(p.Battle.DamageDealt, 1),
			"taken", humanize.CommafWithDigits(p.Battle.DamageTaken, 1),
			"castle_hits", p.Battle.CastleHits,
			"kills", p.Battle.Kills,
			"power", fmt.Sprintf("%.1f", p.PowerScore),
		)
		p.Battle = social.BattleStats{}
	}
}

// CheckGameEnd declares victory once a single team holds every participant.
func (s *Simulation) CheckGameEnd(tick uint64) {
	s.LastTick = tick
	if s.GameOver || len(s.Teams) != 1 {
		return
	}
	var winner *social.Team
	for _, t := range s.Teams {
		winner = t
	}

	s.GameOver = true
	s.Winner = winner.ID
	entities := make([]uint64, 0, winner.Size())
	for _, id := range winner.Members() {
		entities = append(entities, s.Participants[id].Entity)
	}
	s.Host.DeclareVictory(entities)

	leader := s.Participants[winner.LeaderID]
	slog.Info("match over", "tick", tick, "winner", leader.Name, "team_size", winner.Size())
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s rules the realm", leader.Name),
		Category:    "endgame",
	})
	s.Host.Broadcast(fmt.Sprintf("%s has united the realm. The match is over.", leader.Name))
}
