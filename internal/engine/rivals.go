// Rival pairing: every team outside a truce gets exactly one rival team,
// and the relation is always mutual.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/entropy"
	"github.com/talgya/feudal-ffa/internal/social"
)

// hostRand adapts Host.RandInt to entropy.Source.
type hostRand struct{ h Host }

func (r hostRand) IntRange(lo, hi int) int { return r.h.RandInt(lo, hi) }

// AssignRivals keeps mutually consistent pairs, clears teams under truce and
// randomly pairs everything else. Returns the number of new pairs formed.
func (s *Simulation) AssignRivals(tick uint64) int {
	prev := make(map[social.TeamID]social.TeamID, len(s.Teams))
	var eligible []*social.Team
	for _, id := range s.teamIDs() {
		t := s.Teams[id]
		prev[id] = t.RivalID
		if t.InTruce(tick) {
			s.clearRival(t, prev[id])
			continue
		}
		eligible = append(eligible, t)
	}

	var pool []*social.Team
	for _, t := range eligible {
		if s.stablePair(t, tick) {
			continue
		}
		pool = append(pool, t)
	}
	// Clear before pairing so a half of a broken pair never points at a
	// team that has already been re-paired.
	for _, t := range pool {
		t.RivalID = 0
	}

	entropy.Shuffle(hostRand{s.Host}, len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	formed := 0
	for i := 0; i+1 < len(pool); i += 2 {
		s.linkRivals(pool[i], pool[i+1], prev)
		formed++
	}
	if len(pool)%2 == 1 {
		s.clearRival(pool[len(pool)-1], prev[pool[len(pool)-1].ID])
	}

	if formed > 0 {
		slog.Info("rivals assigned", "tick", tick, "pairs", formed, "teams", len(s.Teams))
	}
	return formed
}

// stablePair reports whether t and its rival still point at each other and
// are both outside a truce.
func (s *Simulation) stablePair(t *social.Team, tick uint64) bool {
	if t.RivalID == 0 {
		return false
	}
	r, ok := s.Teams[t.RivalID]
	return ok && r.RivalID == t.ID && !r.InTruce(tick)
}

// linkRivals makes a and b mutual rivals and notifies both sides when the
// pairing is new.
func (s *Simulation) linkRivals(a, b *social.Team, prev map[social.TeamID]social.TeamID) {
	a.RivalID = b.ID
	b.RivalID = a.ID
	s.pointMembersAt(a, b.LeaderID)
	s.pointMembersAt(b, a.LeaderID)
	s.setTeamStance(a, b, diplomacy.War)

	if prev[a.ID] != b.ID {
		s.notifyTeam(a, fmt.Sprintf("Your rival is now %s.", s.Participants[b.LeaderID].Name))
	}
	if prev[b.ID] != a.ID {
		s.notifyTeam(b, fmt.Sprintf("Your rival is now %s.", s.Participants[a.LeaderID].Name))
	}
	if prev[a.ID] != b.ID || prev[b.ID] != a.ID {
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s and %s are declared rivals", s.Participants[a.LeaderID].Name, s.Participants[b.LeaderID].Name),
			Category:    "rival",
		})
	}
}

// clearRival removes t's rival, notifying only if it had one before.
func (s *Simulation) clearRival(t *social.Team, before social.TeamID) {
	t.RivalID = 0
	s.pointMembersAt(t, 0)
	if before != 0 {
		s.notifyTeam(t, "You no longer have a rival.")
	}
}

func (s *Simulation) pointMembersAt(t *social.Team, target social.ParticipantID) {
	for _, id := range t.Members() {
		s.Participants[id].RivalTarget = target
	}
}

func (s *Simulation) notifyTeam(t *social.Team, msg string) {
	for _, id := range t.Members() {
		s.Host.Notify(s.Participants[id].Entity, msg)
	}
}
