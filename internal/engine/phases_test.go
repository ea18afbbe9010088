package engine_test

import (
	"testing"

	"github.com/talgya/feudal-ffa/internal/config"
	"github.com/talgya/feudal-ffa/internal/social"
)

func TestPhasesFollowConfig(t *testing.T) {
	sim, _ := newMatch(t, 2, nil)
	want := make(map[string]uint64)
	for _, ph := range sim.Config.Phases.Ordered() {
		want[ph.Name] = ph.Offset
	}

	phases := sim.Phases()
	if len(phases) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(phases))
	}
	for _, ph := range phases {
		off, ok := want[ph.Name]
		if !ok {
			t.Fatalf("unexpected phase %q", ph.Name)
		}
		if ph.Offset != off {
			t.Errorf("phase %s at %d, config says %d", ph.Name, ph.Offset, off)
		}
	}
}

func TestRotateBounty(t *testing.T) {
	sim, host := newMatch(t, 3, nil)
	member(sim, 2).PowerScore = 300
	member(sim, 3).PowerScore = 200

	sim.RotateBounty(75)
	if sim.BountyTarget != 0 {
		t.Fatal("bounty placed before its timer ran out")
	}

	sim.RotateBounty(1075)
	if sim.BountyTarget != pid(2) {
		t.Fatalf("expected bounty on 2, got %d", sim.BountyTarget)
	}
	if len(host.Broadcasts) == 0 {
		t.Fatal("expected a bounty broadcast")
	}

	sim.RotateBounty(1175)
	if sim.BountyTarget != pid(2) {
		t.Fatal("bounty moved before the period elapsed")
	}

	sim.RotateBounty(2075)
	if sim.BountyTarget != pid(3) {
		t.Fatalf("bounty should rotate off the current target, got %d", sim.BountyTarget)
	}
}

func TestRotateBountyDisabled(t *testing.T) {
	sim, _ := newMatch(t, 3, func(c *config.Config) { c.Bounty.Enabled = false })
	sim.RotateBounty(5000)
	if sim.BountyTarget != 0 {
		t.Fatal("disabled bounty should never be placed")
	}
}

func TestCheckGameEnd(t *testing.T) {
	sim, host := newMatch(t, 3, nil)
	sim.CheckGameEnd(95)
	if sim.GameOver {
		t.Fatal("three teams left, match should go on")
	}

	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	sim.CheckGameEnd(195)
	if !sim.GameOver || sim.Winner != teamOf(t, sim, 1).ID {
		t.Fatalf("expected team %d to win", teamOf(t, sim, 1).ID)
	}
	if len(host.Winners) != 3 {
		t.Fatalf("expected 3 winners declared, got %v", host.Winners)
	}
	events := len(sim.Events)
	sim.CheckGameEnd(295)
	if len(sim.Events) != events {
		t.Fatal("victory should be declared once")
	}
}

func TestCollectTribute(t *testing.T) {
	sim, host := newMatch(t, 3, nil)
	join(t, sim, 1, 2)
	host.Settlement(2).Stock.Set(social.Stone, 1000)
	host.Settlement(3).Stock.Set(social.Stone, 1000)

	sim.CollectTribute(50)
	if got := host.Stock(2).Get(social.Stone); got != 700 {
		t.Fatalf("subordinate should be cut back to 700 stone, got %d", got)
	}
	if got := host.Stock(3).Get(social.Stone); got != 1000 {
		t.Fatalf("an independent leader pays nothing, got %d", got)
	}
	if got := host.Stock(1).Get(social.Stone); got != 500 {
		t.Fatalf("leader expected 500 stone, got %d", got)
	}
}

func TestCollectTributeDisabled(t *testing.T) {
	sim, host := newMatch(t, 2, func(c *config.Config) { c.Economy.TributeEnabled = false })
	join(t, sim, 1, 2)
	host.Settlement(2).Stock.Set(social.Stone, 1000)

	sim.CollectTribute(50)
	if got := host.Stock(2).Get(social.Stone); got != 1000 {
		t.Fatalf("tribute disabled, got %d", got)
	}
}

func TestPayRewardsOnSchedule(t *testing.T) {
	sim, host := newMatch(t, 2, nil)
	p := member(sim, 1)
	gold := host.Stock(p.Entity).Get(social.Gold)

	sim.PayRewards(70)
	if host.Stock(p.Entity).Get(social.Gold) != gold {
		t.Fatal("reward paid before it was due")
	}
	sim.PayRewards(p.NextRewardTick)
	if host.Stock(p.Entity).Get(social.Gold) <= gold {
		t.Fatal("reward should be paid once due")
	}
}

func TestSummarizeBattlesResets(t *testing.T) {
	sim, _ := newMatch(t, 2, nil)
	hit(sim, 1, 2, 50, true)
	sim.SummarizeBattles(90)
	if member(sim, 1).Battle != (social.BattleStats{}) || member(sim, 2).Battle != (social.BattleStats{}) {
		t.Fatal("battle counters should reset every cycle")
	}
}

func TestExpireTrucesRepairsRivals(t *testing.T) {
	sim, host := newMatch(t, 4, nil)
	calm := sim.Teams[social.TeamID(4)]
	calm.TruceUntil = 100
	sim.AssignRivals(50)
	if calm.RivalID != 0 {
		t.Fatal("a team in truce should have no rival")
	}

	sim.ExpireTruces(100)
	for id, tm := range sim.Teams {
		if tm.RivalID == 0 {
			t.Fatalf("team %d left without a rival after the truce", id)
		}
	}
	checkInvariants(t, sim, host)
}
