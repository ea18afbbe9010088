// Simulation owns every registry of a match and wires the feudal systems together.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/feudal-ffa/internal/config"
	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
)

// Consistency faults. Callers log them and skip the update.
var (
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrUnknownTeam        = errors.New("unknown team")
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Simulation holds the complete match state.
type Simulation struct {
	Config    config.Config
	Host      Host
	Diplomacy *diplomacy.Ledger

	Participants map[social.ParticipantID]*social.Participant
	Teams        map[social.TeamID]*social.Team
	byEntity     map[uint64]social.ParticipantID

	Events   []Event // Recent events, oldest first
	LastTick uint64  // Most recent tick processed

	// Rotating bounty.
	BountyTarget   social.ParticipantID
	nextBountyTick uint64

	GameOver bool
	Winner   social.TeamID

	started bool

	Stats SimStats
}

// Event is a notable occurrence in the match.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "conquest", "rival", "economy", "coalition", ...
}

// SimStats tracks aggregate match statistics.
type SimStats struct {
	Teams      int     `json:"teams"`
	Active     int     `json:"active"`
	Eliminated int     `json:"eliminated"`
	TotalPower float64 `json:"total_power"`
	Conquests  int     `json:"conquests"`
	Promotions int     `json:"promotions"`
}

// NewSimulation creates an empty simulation bound to host. FirstRun populates it.
func NewSimulation(cfg config.Config, host Host) *Simulation {
	return &Simulation{
		Config:       cfg,
		Host:         host,
		Diplomacy:    diplomacy.NewLedger(host),
		Participants: make(map[social.ParticipantID]*social.Participant),
		Teams:        make(map[social.TeamID]*social.Team),
		byEntity:     make(map[uint64]social.ParticipantID),
	}
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// FirstRun discovers the parties, founds one team per party, puts everyone at
// war and draws the first rivals. Calling it again is a no-op.
func (s *Simulation) FirstRun(tick uint64) {
	if s.started {
		return
	}
	s.started = true
	s.LastTick = tick
	s.Diplomacy.Invalidate()

	parties := s.Host.Parties()
	sort.Slice(parties, func(i, j int) bool { return parties[i].Entity < parties[j].Entity })

	for i, party := range parties {
		id := social.ParticipantID(i + 1)
		p := social.NewParticipant(id, party.Entity, party.Name, party.Origin)
		p.PowerScore = s.Config.Economy.StartingPower
		p.NextRewardTick = tick + s.salaryPeriod(p)
		s.Participants[id] = p
		s.byEntity[party.Entity] = id
		s.Host.SetIndestructible(party.Entity, true)

		s.foundTeam(p)
	}

	ids := s.participantIDs()
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			s.Diplomacy.Set(s.Participants[a].Entity, s.Participants[b].Entity, diplomacy.War)
		}
	}

	if s.Config.Bounty.Enabled {
		s.nextBountyTick = tick + s.Config.Bounty.Period
	}

	s.AssignRivals(tick)
	s.updateStats()

	slog.Info("match started",
		"tick", tick,
		"participants", len(s.Participants),
		"teams", len(s.Teams),
		"leader_mode", s.Config.Conquest.LeaderMode,
	)
	s.Host.Broadcast(fmt.Sprintf("Free-for-all begins: %d houses, one crown.", len(parties)))
}

// EmitEvent records a notable event, keeping the last maxEvents.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

func (s *Simulation) participant(id social.ParticipantID) (*social.Participant, error) {
	p, ok := s.Participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %d: %w", id, ErrUnknownParticipant)
	}
	return p, nil
}

func (s *Simulation) team(id social.TeamID) (*social.Team, error) {
	t, ok := s.Teams[id]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", id, ErrUnknownTeam)
	}
	return t, nil
}

// ParticipantByEntity resolves a host entity id.
func (s *Simulation) ParticipantByEntity(entity uint64) (*social.Participant, error) {
	id, ok := s.byEntity[entity]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", entity, ErrUnknownParticipant)
	}
	return s.participant(id)
}

// TeamOf returns the team p belongs to.
func (s *Simulation) TeamOf(p *social.Participant) (*social.Team, error) {
	return s.team(p.TeamID)
}

// participantIDs returns every participant id in ascending order. Phases
// iterate over this snapshot so membership changes never skip anyone.
func (s *Simulation) participantIDs() []social.ParticipantID {
	ids := make([]social.ParticipantID, 0, len(s.Participants))
	for id := range s.Participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// teamIDs returns every team id in ascending order.
func (s *Simulation) teamIDs() []social.TeamID {
	ids := make([]social.TeamID, 0, len(s.Teams))
	for id := range s.Teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Simulation) updateStats() {
	s.Stats.Teams = len(s.Teams)
	s.Stats.Active = 0
	s.Stats.Eliminated = 0
	s.Stats.TotalPower = 0
	for _, p := range s.Participants {
		if p.Eliminated {
			s.Stats.Eliminated++
		} else {
			s.Stats.Active++
		}
		s.Stats.TotalPower += p.PowerScore
	}
}
