package social

import "sort"

// TeamID is the identifier of a hierarchy. A team founded by a participant
// takes that participant's id when it is free.
type TeamID int

// Team is a leader plus zero or more subordinates.
type Team struct {
	ID           TeamID                     `json:"id"`
	LeaderID     ParticipantID              `json:"leader_id"`
	Subordinates map[ParticipantID]struct{} `json:"subordinates"`

	// Tick at which the post-conquest truce ends; 0 = none.
	TruceUntil uint64 `json:"truce_until"`

	// Designated rival team; 0 = none.
	RivalID TeamID `json:"rival_id"`

	// Set for one cycle after a change of suzerain; score exchange is
	// skipped while it holds.
	JustPromoted bool `json:"-"`
}

// NewTeam creates a single-member team led by leader.
func NewTeam(id TeamID, leader ParticipantID) *Team {
	return &Team{
		ID:           id,
		LeaderID:     leader,
		Subordinates: make(map[ParticipantID]struct{}),
	}
}

// Has reports whether p is the leader or a subordinate.
func (t *Team) Has(p ParticipantID) bool {
	if p == t.LeaderID {
		return true
	}
	_, ok := t.Subordinates[p]
	return ok
}

// Size returns the member count, leader included.
func (t *Team) Size() int {
	n := len(t.Subordinates)
	if t.LeaderID != 0 {
		n++
	}
	return n
}

// Empty reports whether the team has no members left.
func (t *Team) Empty() bool {
	return t.Size() == 0
}

// Members returns the leader followed by subordinates in ascending id order.
func (t *Team) Members() []ParticipantID {
	out := make([]ParticipantID, 0, t.Size())
	if t.LeaderID != 0 {
		out = append(out, t.LeaderID)
	}
	return append(out, t.SubordinateIDs()...)
}

// SubordinateIDs returns subordinates in ascending id order.
func (t *Team) SubordinateIDs() []ParticipantID {
	out := make([]ParticipantID, 0, len(t.Subordinates))
	for id := range t.Subordinates {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InTruce reports whether the truce is still running at tick.
func (t *Team) InTruce(tick uint64) bool {
	return t.TruceUntil > tick
}

// TruceExpired reports whether a truce was set and has run out at tick.
func (t *Team) TruceExpired(tick uint64) bool {
	return t.TruceUntil > 0 && t.TruceUntil <= tick
}
