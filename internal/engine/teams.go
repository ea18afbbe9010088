// Team dynamics: founding, membership, suzerain changes and diplomacy fan-out.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
)

// foundTeam creates a single-member team led by p. The team takes p's id when
// that id is free.
func (s *Simulation) foundTeam(p *social.Participant) *social.Team {
	id := social.TeamID(p.ID)
	if _, taken := s.Teams[id]; taken {
		id = s.nextTeamID()
	}
	t := social.NewTeam(id, p.ID)
	s.Teams[id] = t
	p.TeamID = id
	p.LeaderID = p.ID
	p.RivalTarget = 0
	return t
}

func (s *Simulation) nextTeamID() social.TeamID {
	var top social.TeamID
	for id := range s.Teams {
		top = max(top, id)
	}
	for id := range s.Participants {
		top = max(top, social.TeamID(id))
	}
	return top + 1
}

// baseStance is the stance members of a and b hold toward each other outside
// of combat escalation: Alliance inside a team, Neutral while either side is
// in truce, War otherwise.
func (s *Simulation) baseStance(a, b *social.Team, tick uint64) diplomacy.Stance {
	switch {
	case a.ID == b.ID:
		return diplomacy.Alliance
	case a.InTruce(tick) || b.InTruce(tick):
		return diplomacy.Neutral
	default:
		return diplomacy.War
	}
}

// syncStances resets p's stance toward every other participant to the base
// stance between their teams.
func (s *Simulation) syncStances(p *social.Participant, tick uint64) {
	pt, err := s.TeamOf(p)
	if err != nil {
		slog.Error("sync stances", "participant", p.ID, "error", err)
		return
	}
	for _, id := range s.participantIDs() {
		if id == p.ID {
			continue
		}
		o := s.Participants[id]
		ot, err := s.TeamOf(o)
		if err != nil {
			continue
		}
		s.Diplomacy.Set(p.Entity, o.Entity, s.baseStance(pt, ot, tick))
	}
}

// setTeamStance sets st between every member of a and every member of b.
func (s *Simulation) setTeamStance(a, b *social.Team, st diplomacy.Stance) {
	for _, x := range a.Members() {
		for _, y := range b.Members() {
			s.Diplomacy.Set(s.Participants[x].Entity, s.Participants[y].Entity, st)
		}
	}
}

// AddSubordinate binds p to t. p must not belong to another team.
func (s *Simulation) AddSubordinate(t *social.Team, p *social.Participant, tick uint64) {
	if p.TeamID != 0 && p.TeamID != t.ID {
		slog.Error("add subordinate: participant still bound elsewhere",
			"participant", p.ID, "team", p.TeamID, "target", t.ID)
		return
	}
	t.Subordinates[p.ID] = struct{}{}
	p.TeamID = t.ID
	p.LeaderID = t.LeaderID
	p.RivalTarget = 0
	if rival, ok := s.Teams[t.RivalID]; ok {
		p.RivalTarget = rival.LeaderID
	}

	// Alliance with every member, base stance with everyone else.
	s.syncStances(p, tick)

	if p.Eliminated {
		s.RespawnCastle(p)
		leader := s.Participants[t.LeaderID]
		s.Host.Notify(p.Entity, fmt.Sprintf("You now serve %s. Your castle has been rebuilt.", leader.Name))
		p.Eliminated = false
	}
}

// RemoveSubordinate detaches p from t. The team is destroyed if it empties.
func (s *Simulation) RemoveSubordinate(t *social.Team, p *social.Participant) {
	if _, ok := t.Subordinates[p.ID]; !ok {
		return
	}
	delete(t.Subordinates, p.ID)
	detach(p)
	if t.Empty() {
		s.destroyTeam(t)
	}
}

// RemoveLeader detaches t's leader. The strongest subordinate takes over; the
// team is destroyed when nobody is left.
func (s *Simulation) RemoveLeader(t *social.Team) {
	old, ok := s.Participants[t.LeaderID]
	t.LeaderID = 0
	if ok {
		detach(old)
	}

	if len(t.Subordinates) == 0 {
		s.destroyTeam(t)
		return
	}

	var heir *social.Participant
	for _, id := range t.SubordinateIDs() {
		p := s.Participants[id]
		if heir == nil || p.PowerScore > heir.PowerScore {
			heir = p
		}
	}
	delete(t.Subordinates, heir.ID)
	t.LeaderID = heir.ID
	for _, id := range t.Members() {
		s.Participants[id].LeaderID = heir.ID
	}
	if ok {
		s.repointRivalTargets(old.ID, heir.ID)
	}
}

// detachAll removes every member of t and destroys it. The former members are
// returned leader first.
func (s *Simulation) detachAll(t *social.Team) []*social.Participant {
	var out []*social.Participant
	for _, id := range t.Members() {
		p := s.Participants[id]
		detach(p)
		out = append(out, p)
	}
	t.LeaderID = 0
	clear(t.Subordinates)
	s.destroyTeam(t)
	return out
}

func detach(p *social.Participant) {
	p.TeamID = 0
	p.LeaderID = 0
	p.RivalTarget = 0
}

// destroyTeam drops t from the registry and unlinks its rival.
func (s *Simulation) destroyTeam(t *social.Team) {
	if rival, ok := s.Teams[t.RivalID]; ok && rival.RivalID == t.ID {
		rival.RivalID = 0
		for _, id := range rival.Members() {
			s.Participants[id].RivalTarget = 0
		}
	}
	t.RivalID = 0
	delete(s.Teams, t.ID)
}

// PromoteIfStronger hands leadership to the member with the highest power
// score when it beats the leader by at least the configured margin. Returns
// whether leadership changed.
func (s *Simulation) PromoteIfStronger(t *social.Team, tick uint64) bool {
	leader, err := s.participant(t.LeaderID)
	if err != nil {
		slog.Error("promotion check", "team", t.ID, "error", err)
		return false
	}

	strongest := leader
	for _, id := range t.SubordinateIDs() {
		p := s.Participants[id]
		if p.PowerScore > strongest.PowerScore {
			strongest = p
		}
	}
	if strongest == leader {
		return false
	}
	lead := strongest.PowerScore - leader.PowerScore
	if lead <= 0 || lead < s.Config.Economy.PromotionMargin {
		return false
	}

	s.changeSuzerain(t, leader, strongest)
	t.JustPromoted = true
	s.Stats.Promotions++

	slog.Info("suzerain changed",
		"team", t.ID,
		"old", leader.Name,
		"new", strongest.Name,
		"lead", fmt.Sprintf("%.1f", lead),
	)
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s overthrows %s and takes the crown", strongest.Name, leader.Name),
		Category:    "promotion",
	})
	for _, id := range t.Members() {
		s.Host.Notify(s.Participants[id].Entity, fmt.Sprintf("%s is now your suzerain.", strongest.Name))
	}
	return true
}

// changeSuzerain swaps the roles of old and heir and re-points every leader
// and rival reference.
func (s *Simulation) changeSuzerain(t *social.Team, old, heir *social.Participant) {
	delete(t.Subordinates, heir.ID)
	t.Subordinates[old.ID] = struct{}{}
	t.LeaderID = heir.ID
	for _, id := range t.Members() {
		s.Participants[id].LeaderID = heir.ID
	}
	s.repointRivalTargets(old.ID, heir.ID)
}

func (s *Simulation) repointRivalTargets(from, to social.ParticipantID) {
	for _, p := range s.Participants {
		if p.RivalTarget == from {
			p.RivalTarget = to
		}
	}
}
