// Coalitions: when one team holds half the field, everyone else unites.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
)

// ManageCoalitions merges every team except a dominant one into the strongest
// of them and sets the two sides as mutual rivals. Returns whether a merge
// happened.
func (s *Simulation) ManageCoalitions(tick uint64) bool {
	active := 0
	for _, p := range s.Participants {
		if !p.Eliminated {
			active++
		}
	}
	if active == 0 {
		return false
	}

	var dominant *social.Team
	for _, id := range s.teamIDs() {
		if t := s.Teams[id]; s.activeMembers(t)*2 >= active {
			dominant = t
			break
		}
	}
	if dominant == nil {
		return false
	}

	var others []*social.Team
	for _, id := range s.teamIDs() {
		if id != dominant.ID {
			others = append(others, s.Teams[id])
		}
	}
	if len(others) < 2 {
		return false
	}

	head := s.strongestTeam(others)
	prev := map[social.TeamID]social.TeamID{head.ID: head.RivalID, dominant.ID: dominant.RivalID}
	head.TruceUntil = 0
	dominant.TruceUntil = 0

	joined := 0
	for _, t := range others {
		if t == head {
			continue
		}
		for _, p := range s.detachAll(t) {
			s.AddSubordinate(head, p, tick)
			joined++
		}
	}

	s.setTeamStance(head, dominant, diplomacy.War)
	s.linkRivals(head, dominant, prev)
	s.updateStats()

	leader := s.Participants[head.LeaderID]
	rival := s.Participants[dominant.LeaderID]
	slog.Info("coalition formed",
		"tick", tick,
		"head", leader.Name,
		"joined", joined,
		"coalition_size", head.Size(),
		"dominant", rival.Name,
		"dominant_size", dominant.Size(),
	)
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("The free houses unite under %s against %s", leader.Name, rival.Name),
		Category:    "coalition",
	})
	s.Host.Broadcast(fmt.Sprintf("A grand coalition led by %s rises against %s!", leader.Name, rival.Name))
	return true
}

// strongestTeam picks the team whose leader has the highest power score,
// breaking ties by material strength and then by lower id.
func (s *Simulation) strongestTeam(teams []*social.Team) *social.Team {
	var best *social.Team
	var bestScore, bestMaterial float64
	for _, t := range teams {
		l := s.Participants[t.LeaderID]
		score, material := l.PowerScore, s.CurrentPower(l)
		if best == nil || score > bestScore || (score == bestScore && material > bestMaterial) {
			best, bestScore, bestMaterial = t, score, material
		}
	}
	return best
}

// activeMembers counts the members of t still holding a castle.
func (s *Simulation) activeMembers(t *social.Team) int {
	n := 0
	for _, id := range t.Members() {
		if p, ok := s.Participants[id]; ok && !p.Eliminated {
			n++
		}
	}
	return n
}
