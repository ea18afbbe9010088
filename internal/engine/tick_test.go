package engine_test

import (
	"testing"

	"github.com/talgya/feudal-ffa/internal/config"
	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/engine"
)

func TestEngineRegister(t *testing.T) {
	e := &engine.Engine{CyclePeriod: 10}
	noop := func(uint64) {}

	if err := e.Register(engine.Phase{Name: "a", Offset: 3, Run: noop}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Register(engine.Phase{Name: "b", Offset: 3, Run: noop}); err == nil {
		t.Fatal("expected error for a taken offset")
	}
	if err := e.Register(engine.Phase{Name: "c", Offset: 10, Run: noop}); err == nil {
		t.Fatal("expected error for an offset outside the cycle")
	}
	if err := (&engine.Engine{}).Register(engine.Phase{Name: "d", Run: noop}); err == nil {
		t.Fatal("expected error for a zero cycle")
	}
}

func TestEngineStepDispatch(t *testing.T) {
	e := &engine.Engine{CyclePeriod: 10}
	var ran []uint64
	var cycles int
	if err := e.Register(engine.Phase{Name: "p", Offset: 4, Run: func(tick uint64) { ran = append(ran, tick) }}); err != nil {
		t.Fatal(err)
	}
	e.AfterCycle = func(uint64) { cycles++ }

	for tick := uint64(1); tick <= 30; tick++ {
		name := e.Step(tick)
		if (tick%10 == 4) != (name == "p") {
			t.Fatalf("tick %d dispatched %q", tick, name)
		}
	}
	if len(ran) != 3 || ran[0] != 4 || ran[1] != 14 || ran[2] != 24 {
		t.Fatalf("unexpected dispatch ticks %v", ran)
	}
	if cycles != 3 {
		t.Fatalf("expected 3 completed cycles, got %d", cycles)
	}
}

func TestEngineDoneStopsDispatch(t *testing.T) {
	e := &engine.Engine{CyclePeriod: 10}
	runs := 0
	before := 0
	done := false
	if err := e.Register(engine.Phase{Name: "p", Offset: 0, Run: func(uint64) { runs++ }}); err != nil {
		t.Fatal(err)
	}
	e.BeforeTick = func(uint64) { before++ }
	e.Done = func() bool { return done }

	e.Step(10)
	done = true
	e.Step(20)
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
	if before != 2 {
		t.Fatalf("BeforeTick should run on every tick, got %d", before)
	}
}

func TestEngineRunBounded(t *testing.T) {
	sim, _ := newMatch(t, 4, nil)
	e, err := engine.NewEngine(sim)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	e.Interval = 0
	e.MaxTicks = 250

	e.Run()
	if e.Tick != 250 || sim.CurrentTick() != 250 {
		t.Fatalf("expected to stop at 250, engine %d, sim %d", e.Tick, sim.CurrentTick())
	}
	if e.Cycle(e.Tick) != 2 {
		t.Fatalf("expected cycle 2, got %d", e.Cycle(e.Tick))
	}
}

// TestMatchKeepsInvariants plays a full sandbox match and checks the
// structural invariants after every cycle.
func TestMatchKeepsInvariants(t *testing.T) {
	for _, mode := range []string{"absorb", "weaken"} {
		t.Run(mode, func(t *testing.T) {
			sim, host := newMatch(t, 6, func(c *config.Config) { c.Conquest.LeaderMode = mode })
			e, err := engine.NewEngine(sim)
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}
			hostile := func(a, b uint64) bool { return sim.Diplomacy.Get(a, b) == diplomacy.War }
			e.BeforeTick = func(tick uint64) {
				if tick%10 == 0 {
					host.Harvest()
				}
				host.Skirmish(hostile, func(ev engine.DamageEvent) { sim.OnDamage(ev) })
			}
			e.AfterCycle = func(uint64) { checkInvariants(t, sim, host) }

			for tick := uint64(1); tick <= 6000 && !sim.GameOver; tick++ {
				e.Step(tick)
			}
			checkInvariants(t, sim, host)
			if sim.Stats.Active+sim.Stats.Eliminated != 6 {
				t.Fatalf("stats lost participants: %+v", sim.Stats)
			}
		})
	}
}
