package engine_test

import (
	"testing"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
)

func TestManageCoalitionsScenario(t *testing.T) {
	sim, host := newMatch(t, 6, nil)
	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	join(t, sim, 4, 5)
	member(sim, 4).PowerScore = 200
	sim.AssignRivals(40)

	if !sim.ManageCoalitions(80) {
		t.Fatal("expected a coalition")
	}
	if len(sim.Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(sim.Teams))
	}
	dominant, head := teamOf(t, sim, 1), teamOf(t, sim, 4)
	if head.LeaderID != pid(4) {
		t.Fatalf("coalition should be led by the strongest leader, got %d", head.LeaderID)
	}
	if head.Size() != 3 || !head.Has(pid(6)) {
		t.Fatalf("coalition should hold 4, 5 and 6, got %v", head.Members())
	}
	if dominant.RivalID != head.ID || head.RivalID != dominant.ID {
		t.Fatalf("expected mutual rivals, got %d and %d", dominant.RivalID, head.RivalID)
	}
	for _, a := range dominant.Members() {
		for _, b := range head.Members() {
			st := sim.Diplomacy.Get(sim.Participants[a].Entity, sim.Participants[b].Entity)
			if st != diplomacy.War {
				t.Fatalf("%d and %d at %s, expected war", a, b, st)
			}
		}
	}
	checkInvariants(t, sim, host)
}

func TestManageCoalitionsNoDominant(t *testing.T) {
	sim, _ := newMatch(t, 6, nil)
	join(t, sim, 1, 2)
	if sim.ManageCoalitions(80) {
		t.Fatal("no team holds half the field")
	}
	if len(sim.Teams) != 5 {
		t.Fatalf("teams should be untouched, got %d", len(sim.Teams))
	}
}

func TestManageCoalitionsSingleChallenger(t *testing.T) {
	sim, _ := newMatch(t, 4, nil)
	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	if sim.ManageCoalitions(80) {
		t.Fatal("one remaining team has nobody to unite with")
	}
}

func TestManageCoalitionsClearsTruce(t *testing.T) {
	sim, host := newMatch(t, 5, nil)
	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	teamOf(t, sim, 1).TruceUntil = 1000
	teamOf(t, sim, 4).TruceUntil = 1000

	if !sim.ManageCoalitions(80) {
		t.Fatal("expected a coalition")
	}
	if teamOf(t, sim, 1).TruceUntil != 0 || teamOf(t, sim, 4).TruceUntil != 0 {
		t.Fatal("both sides should leave their truce")
	}
	checkInvariants(t, sim, host)
}

func TestManageCoalitionsCountsActiveMembers(t *testing.T) {
	sim, _ := newMatch(t, 6, nil)
	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	member(sim, 2).Eliminated = true
	member(sim, 3).Eliminated = true

	if sim.ManageCoalitions(80) {
		t.Fatal("one standing member of four active is not half the field")
	}
	if len(sim.Teams) != 4 {
		t.Fatalf("teams should be untouched, got %d", len(sim.Teams))
	}

	member(sim, 2).Eliminated = false
	member(sim, 3).Eliminated = false
	if !sim.ManageCoalitions(180) {
		t.Fatal("three of six active should trigger a coalition")
	}
}
