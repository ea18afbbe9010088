// Conquest resolution: moves eliminated participants into the team of the
// house that brought their castle down.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
)

// ProcessTeamMigrations resolves every participant flagged eliminated at the
// start of the pass. Returns the number of participants that changed team.
func (s *Simulation) ProcessTeamMigrations(tick uint64) int {
	var pending []social.ParticipantID
	for _, id := range s.participantIDs() {
		if s.Participants[id].Eliminated {
			pending = append(pending, id)
		}
	}

	migrated := 0
	for _, id := range pending {
		d := s.Participants[id]
		// Already moved along with an earlier leader in this pass.
		if !d.Eliminated {
			continue
		}
		migrated += s.resolveConquest(d, tick)
	}

	if migrated > 0 {
		s.AssignRivals(tick)
	}
	s.updateStats()
	return migrated
}

// resolveConquest handles one eliminated participant.
func (s *Simulation) resolveConquest(d *social.Participant, tick uint64) int {
	lost, err := s.TeamOf(d)
	if err != nil {
		slog.Error("conquest: defeated has no team", "participant", d.ID, "error", err)
		return 0
	}

	victor := s.topCastleAttacker(d, lost)
	if victor == nil {
		s.restoreInPlace(d, tick)
		return 0
	}
	won, err := s.TeamOf(victor)
	if err != nil {
		slog.Error("conquest: victor has no team", "victor", victor.ID, "defeated", d.ID, "error", err)
		return 0
	}

	c := s.Config.Conquest
	var moved []*social.Participant

	switch {
	case !d.IsLeader():
		s.ShareSpoils(won, d, c.SubordinateSpoilFraction)
		s.RemoveSubordinate(lost, d)
		moved = append(moved, d)

	case s.Config.WeakenMode():
		s.ShareSpoils(won, d, c.WeakenLeaderSpoilFraction)
		released := s.detachAll(lost)
		for _, p := range released[1:] {
			t := s.foundTeam(p)
			s.syncStances(p, tick)
			if p.Eliminated {
				s.RespawnCastle(p)
				p.Eliminated = false
			}
			s.Host.Notify(p.Entity, fmt.Sprintf("%s has fallen. You stand alone.", d.Name))
			slog.Info("subordinate released", "participant", p.Name, "team", t.ID)
		}
		moved = append(moved, d)

	default:
		for _, id := range lost.Members() {
			p := s.Participants[id]
			frac := c.SubordinateSpoilFraction
			if p.ID == lost.LeaderID {
				frac = c.LeaderSpoilFraction
			}
			s.ShareSpoils(won, p, frac)
		}
		moved = s.detachAll(lost)
	}

	for _, p := range moved {
		s.AddSubordinate(won, p, tick)
		p.Eliminated = false
	}
	s.grantTruce(won, tick)
	s.Stats.Conquests++

	leader := s.Participants[won.LeaderID]
	slog.Info("conquest",
		"defeated", d.Name,
		"victor", victor.Name,
		"team", won.ID,
		"moved", len(moved),
		"team_size", won.Size(),
	)
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s conquers %s; %d house(s) now kneel to %s", victor.Name, d.Name, len(moved), leader.Name),
		Category:    "conquest",
	})
	s.Host.Broadcast(fmt.Sprintf("%s has been conquered by %s.", d.Name, victor.Name))
	return len(moved)
}

// topCastleAttacker returns the participant outside lost with the most castle
// damage credited against d, or nil when nobody outside damaged the castle.
func (s *Simulation) topCastleAttacker(d *social.Participant, lost *social.Team) *social.Participant {
	var best *social.Participant
	bestDmg := 0.0
	for _, id := range s.participantIDs() {
		if id == d.ID || lost.Has(id) {
			continue
		}
		p := s.Participants[id]
		if dmg := p.CastleDamageTo[d.ID]; dmg > bestDmg {
			best, bestDmg = p, dmg
		}
	}
	return best
}

// restoreInPlace rebuilds d where it stood without changing its team.
func (s *Simulation) restoreInPlace(d *social.Participant, tick uint64) {
	s.RespawnCastle(d)
	d.Eliminated = false
	s.Host.Notify(d.Entity, "Your castle has been rebuilt.")
	slog.Info("restored in place", "participant", d.Name)
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s rises from its own ruins", d.Name),
		Category:    "conquest",
	})
}

// grantTruce puts t at peace with every other house for the configured span.
func (s *Simulation) grantTruce(t *social.Team, tick uint64) {
	d := s.Config.Conquest.TruceDuration
	if d == 0 {
		return
	}
	t.TruceUntil = tick + d

	for _, oid := range s.teamIDs() {
		if oid == t.ID {
			continue
		}
		s.setTeamStance(t, s.Teams[oid], diplomacy.Neutral)
	}
	for _, id := range t.Members() {
		s.Host.Notify(s.Participants[id].Entity, fmt.Sprintf("Truce declared until tick %d.", t.TruceUntil))
	}
}
