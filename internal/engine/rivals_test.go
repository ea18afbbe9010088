package engine_test

import (
	"testing"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/social"
)

func rivalMap(teams map[social.TeamID]*social.Team) map[social.TeamID]social.TeamID {
	out := make(map[social.TeamID]social.TeamID, len(teams))
	for id, tm := range teams {
		out[id] = tm.RivalID
	}
	return out
}

func TestAssignRivalsEven(t *testing.T) {
	sim, host := newMatch(t, 6, nil)

	for id, tm := range sim.Teams {
		if tm.RivalID == 0 {
			t.Fatalf("team %d left without a rival", id)
		}
		if tm.RivalID == id {
			t.Fatalf("team %d is its own rival", id)
		}
		a := member(sim, int(tm.LeaderID))
		b := sim.Participants[sim.Teams[tm.RivalID].LeaderID]
		if st := sim.Diplomacy.Get(a.Entity, b.Entity); st != diplomacy.War {
			t.Fatalf("rivals %d and %d at %s", a.ID, b.ID, st)
		}
	}
	checkInvariants(t, sim, host)
}

func TestAssignRivalsStable(t *testing.T) {
	sim, host := newMatch(t, 6, nil)
	before := rivalMap(sim.Teams)

	for i := 0; i < 5; i++ {
		if formed := sim.AssignRivals(uint64(40 + 100*i)); formed != 0 {
			t.Fatalf("pass %d formed %d new pairs", i, formed)
		}
	}
	after := rivalMap(sim.Teams)
	for id, r := range before {
		if after[id] != r {
			t.Fatalf("team %d rival changed from %d to %d", id, r, after[id])
		}
	}
	checkInvariants(t, sim, host)
}

func TestAssignRivalsOdd(t *testing.T) {
	sim, host := newMatch(t, 5, nil)

	unpaired := 0
	for _, tm := range sim.Teams {
		if tm.RivalID == 0 {
			unpaired++
		}
	}
	if unpaired != 1 {
		t.Fatalf("expected exactly one unpaired team, got %d", unpaired)
	}
	sim.AssignRivals(40)
	checkInvariants(t, sim, host)
}

func TestAssignRivalsSkipsTruce(t *testing.T) {
	sim, host := newMatch(t, 4, nil)
	tm := teamOf(t, sim, 1)
	partner := tm.RivalID
	tm.TruceUntil = 500

	sim.AssignRivals(40)
	if tm.RivalID != 0 {
		t.Fatalf("team in truce kept rival %d", tm.RivalID)
	}
	if member(sim, 1).RivalTarget != 0 {
		t.Fatal("members of a team in truce should have no rival target")
	}
	// The abandoned partner is the odd one out among three eligible teams.
	if sim.Teams[partner].RivalID != 0 {
		t.Fatalf("abandoned team %d re-paired with %d", partner, sim.Teams[partner].RivalID)
	}
	checkInvariants(t, sim, host)
}

func TestAssignRivalsAfterPromotion(t *testing.T) {
	// Four teams after the join, so every team is paired.
	sim, host := newMatch(t, 5, nil)
	join(t, sim, 1, 2)
	sim.AssignRivals(40)

	tm := teamOf(t, sim, 1)
	rival := sim.Teams[tm.RivalID]
	member(sim, 2).PowerScore = 200

	if !sim.PromoteIfStronger(tm, 130) {
		t.Fatal("expected promotion")
	}
	for _, id := range rival.Members() {
		if got := sim.Participants[id].RivalTarget; got != pid(2) {
			t.Fatalf("rival member %d targets %d, expected the new leader", id, got)
		}
	}
	checkInvariants(t, sim, host)
}

func TestAssignRivalsQuietWhenUnchanged(t *testing.T) {
	for _, n := range []int{5, 6} {
		sim, host := newMatch(t, n, nil)
		inboxes := make(map[uint64]int)
		for _, e := range host.Entities() {
			inboxes[e] = len(host.Settlement(e).Inbox)
		}
		events := len(sim.Events)

		sim.AssignRivals(40)
		for _, e := range host.Entities() {
			if got := len(host.Settlement(e).Inbox); got != inboxes[e] {
				t.Errorf("n=%d: entity %d got %d new messages", n, e, got-inboxes[e])
			}
		}
		if len(sim.Events) != events {
			t.Errorf("n=%d: expected no rival events, got %d", n, len(sim.Events)-events)
		}
	}
}
