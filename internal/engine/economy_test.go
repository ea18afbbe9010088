package engine_test

import (
	"testing"

	"github.com/talgya/feudal-ffa/internal/config"
	"github.com/talgya/feudal-ffa/internal/social"
)

// tributeSetup builds leader 1 with subordinate 2 holding 3000 gold above its
// limit of 580.
func tributeSetup(t *testing.T, leaderPower, subPower float64) (*sandboxMatch, *social.Participant, *social.Participant) {
	t.Helper()
	sim, host := newMatch(t, 2, nil)
	join(t, sim, 1, 2)
	l, s := member(sim, 1), member(sim, 2)
	l.PowerScore, s.PowerScore = leaderPower, subPower

	st := host.Settlement(s.Entity)
	st.Stock = social.Stock{}
	st.Stock.Set(social.Gold, 3580)
	host.Settlement(l.Entity).Stock = social.Stock{}
	return &sandboxMatch{sim, host}, l, s
}

func TestPayTributeScenario(t *testing.T) {
	m, l, s := tributeSetup(t, 100, 40)

	if !m.sim.PayTribute(s) {
		t.Fatal("expected tribute to be paid")
	}
	if got := m.host.Stock(s.Entity).Get(social.Gold); got != 580 {
		t.Fatalf("subordinate should keep exactly its limit, got %d", got)
	}
	if got := m.host.Stock(l.Entity).Get(social.Gold); got != 3000 {
		t.Fatalf("leader should receive 3000 gold, got %d", got)
	}
	if !approx(l.PowerScore, 70) || !approx(s.PowerScore, 70) {
		t.Fatalf("expected 70/70 after exchange, got %v/%v", l.PowerScore, s.PowerScore)
	}
	if l.PowerScore < s.PowerScore {
		t.Fatal("exchange must not flip the leader below the subordinate")
	}
}

func TestPayTributeExchangeGuard(t *testing.T) {
	m, l, s := tributeSetup(t, 100, 50)

	if !m.sim.PayTribute(s) {
		t.Fatal("resources should move even when the exchange is refused")
	}
	if l.PowerScore != 100 || s.PowerScore != 50 {
		t.Fatalf("exchange should be refused, got %v/%v", l.PowerScore, s.PowerScore)
	}
}

func TestPayTributeAfterPromotion(t *testing.T) {
	m, l, s := tributeSetup(t, 100, 40)
	teamOf(t, m.sim, 1).JustPromoted = true

	m.sim.PayTribute(s)
	if l.PowerScore != 100 || s.PowerScore != 40 {
		t.Fatalf("exchange must be skipped right after a promotion, got %v/%v", l.PowerScore, s.PowerScore)
	}
}

func TestPayTributeNothingOwed(t *testing.T) {
	m, l, s := tributeSetup(t, 100, 40)
	m.host.Settlement(s.Entity).Stock.Set(social.Gold, 100)

	if m.sim.PayTribute(s) {
		t.Fatal("nothing above the limit, nothing to pay")
	}
	if m.sim.PayTribute(l) {
		t.Fatal("a leader never pays tribute")
	}
}

func TestPayTributeNegativePower(t *testing.T) {
	m, l, s := tributeSetup(t, 100, -400)
	st := m.host.Settlement(s.Entity)
	st.Stock.Set(social.Gold, 50)
	st.Stock.Population = 5

	if m.sim.PayTribute(s) {
		t.Fatal("holdings under the base limit owe nothing")
	}
	if got := m.host.Stock(s.Entity); got.Get(social.Gold) != 50 || got.Population != 5 {
		t.Fatalf("subordinate stock changed: gold=%d pop=%d", got.Get(social.Gold), got.Population)
	}

	st.Stock.Set(social.Gold, 700)
	if !m.sim.PayTribute(s) {
		t.Fatal("expected tribute above the base limit")
	}
	if got := m.host.Stock(s.Entity).Get(social.Gold); got != 500 {
		t.Fatalf("subordinate should keep the base limit, got %d", got)
	}
	if got := m.host.Stock(l.Entity).Get(social.Gold); got != 200 {
		t.Fatalf("leader should receive 200 gold, got %d", got)
	}
}

func TestDistributeGenerosity(t *testing.T) {
	sim, host := newMatch(t, 3, nil)
	join(t, sim, 1, 2)
	join(t, sim, 1, 3)
	tm := teamOf(t, sim, 1)

	for i := 1; i <= 3; i++ {
		host.Settlement(uint64(i)).Stock = social.Stock{}
	}
	host.Settlement(1).Stock.Set(social.Wood, 2400)
	host.Settlement(3).Stock.Set(social.Wood, 600)
	before := member(sim, 1).PowerScore + member(sim, 2).PowerScore + member(sim, 3).PowerScore

	if !sim.DistributeGenerosity(tm) {
		t.Fatal("expected a gift")
	}
	// 400 surplus split two ways; participant 3 has room for 100.
	if got := host.Stock(2).Get(social.Wood); got != 200 {
		t.Fatalf("participant 2 expected 200 wood, got %d", got)
	}
	if got := host.Stock(3).Get(social.Wood); got != 700 {
		t.Fatalf("participant 3 expected 700 wood, got %d", got)
	}
	if got := host.Stock(1).Get(social.Wood); got != 2100 {
		t.Fatalf("leader expected 2100 wood left, got %d", got)
	}
	after := member(sim, 1).PowerScore + member(sim, 2).PowerScore + member(sim, 3).PowerScore
	if !approx(before, after) {
		t.Fatalf("generosity exchange should conserve power, %v -> %v", before, after)
	}
	if member(sim, 1).PowerScore <= sim.Config.Economy.StartingPower {
		t.Fatal("leader should gain power for giving")
	}
}

func TestGivePowerPointReward(t *testing.T) {
	sim, host := newMatch(t, 2, nil)
	p := member(sim, 1)
	p.PowerScore = 200
	host.Settlement(p.Entity).Stock = social.Stock{}
	due := p.NextRewardTick

	if !sim.GivePowerPointReward(p, due) {
		t.Fatal("expected a reward")
	}
	got := host.Stock(p.Entity)
	if got.Get(social.Gold) != 200 || got.Population != 5 {
		t.Fatalf("expected 200 gold and 5 population, got %+v", got)
	}
	if p.PowerScore != 200 {
		t.Fatalf("reward must not spend power, got %v", p.PowerScore)
	}
	if p.NextRewardTick != due+host.SalaryPeriod(p.Entity) {
		t.Fatalf("next reward at %d, expected %d", p.NextRewardTick, due+host.SalaryPeriod(p.Entity))
	}

	p.PowerScore = 5
	if sim.GivePowerPointReward(p, p.NextRewardTick) {
		t.Fatal("no reward below the minimum power")
	}
}

func TestShareSpoilsConservesPower(t *testing.T) {
	sim, _ := newMatch(t, 4, nil)
	join(t, sim, 1, 2)
	won := teamOf(t, sim, 1)
	d := member(sim, 4)

	member(sim, 1).CreditDamage(d.ID, 300, true)
	member(sim, 2).CreditDamage(d.ID, 100, false)
	before := totalPower(sim)

	taken := sim.ShareSpoils(won, d, 0.5)
	if !approx(taken, 50) {
		t.Fatalf("expected 50 taken, got %v", taken)
	}
	if !approx(totalPower(sim), before) {
		t.Fatalf("spoils changed total power: %v -> %v", before, totalPower(sim))
	}
	if !approx(member(sim, 1).PowerScore, 137.5) || !approx(member(sim, 2).PowerScore, 112.5) {
		t.Fatalf("unexpected split %v/%v", member(sim, 1).PowerScore, member(sim, 2).PowerScore)
	}
	if member(sim, 1).DamageTo[d.ID] != 0 || member(sim, 1).CastleDamageTo[d.ID] != 0 {
		t.Fatal("damage credit against the defeated should be cleared")
	}
}

func TestShareSpoilsFloorCredit(t *testing.T) {
	sim, _ := newMatch(t, 3, func(c *config.Config) { c.Economy.StartingPower = 90 })
	join(t, sim, 1, 2)
	d := member(sim, 3)

	sim.ShareSpoils(teamOf(t, sim, 1), d, 1.0/3)
	if !approx(member(sim, 1).PowerScore, 105) || !approx(member(sim, 2).PowerScore, 105) {
		t.Fatalf("members without credit should split evenly, got %v/%v",
			member(sim, 1).PowerScore, member(sim, 2).PowerScore)
	}
}

func TestCurrentPower(t *testing.T) {
	sim, host := newMatch(t, 2, nil)
	st := host.Settlement(1)
	st.Stock = social.Stock{Amounts: [4]int{100, 50, 0, 0}, Population: 3}
	st.UnitsValue = 20

	if got := sim.CurrentPower(member(sim, 1)); !approx(got, 200) {
		t.Fatalf("expected 200, got %v", got)
	}
}
