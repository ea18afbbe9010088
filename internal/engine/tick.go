// Package engine provides the feudal free-for-all simulation and its
// tick-based phase scheduler.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Phase is one scheduled handler owning a unique offset within the cycle.
type Phase struct {
	Name   string
	Offset uint64
	Run    func(tick uint64)
}

// Engine drives the simulation forward. Each tick dispatches at most one
// phase: the one whose offset equals tick % CyclePeriod.
type Engine struct {
	Tick        uint64        // Current tick counter (monotonic, never resets)
	CyclePeriod uint64        // Length of one phase cycle
	Speed       float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval    time.Duration // Base tick interval; 0 runs unpaced
	MaxTicks    uint64        // Run stops after this tick; 0 = unbounded

	// BeforeTick runs on every tick ahead of phase dispatch. The host uses it
	// to deliver combat for that tick.
	BeforeTick func(tick uint64)
	// AfterCycle runs after the last tick of every cycle.
	AfterCycle func(tick uint64)
	// Done stops phase dispatch once it returns true.
	Done func() bool

	clock   func(tick uint64)
	phases  map[uint64]Phase
	running atomic.Bool
}

// NewEngine creates an engine for sim using the offsets from its config.
func NewEngine(sim *Simulation) (*Engine, error) {
	e := &Engine{
		CyclePeriod: sim.Config.CyclePeriod,
		Speed:       1.0,
		Interval:    time.Second,
		Done:        func() bool { return sim.GameOver },
		clock:       func(tick uint64) { sim.LastTick = tick },
	}
	if err := e.Register(sim.Phases()...); err != nil {
		return nil, err
	}
	return e, nil
}

// Register adds phases, rejecting offsets outside the cycle or already taken.
func (e *Engine) Register(phases ...Phase) error {
	if e.CyclePeriod == 0 {
		return fmt.Errorf("cycle period must be positive")
	}
	if e.phases == nil {
		e.phases = make(map[uint64]Phase)
	}
	for _, ph := range phases {
		if ph.Offset >= e.CyclePeriod {
			return fmt.Errorf("phase %s: offset %d outside cycle of %d", ph.Name, ph.Offset, e.CyclePeriod)
		}
		if prev, taken := e.phases[ph.Offset]; taken {
			return fmt.Errorf("phase %s: offset %d already owned by %s", ph.Name, ph.Offset, prev.Name)
		}
		e.phases[ph.Offset] = ph
	}
	return nil
}

// Step processes tick. It returns the name of the phase that ran, or "".
func (e *Engine) Step(tick uint64) string {
	e.Tick = tick
	if e.clock != nil {
		e.clock(tick)
	}

	if e.BeforeTick != nil {
		e.BeforeTick(tick)
	}

	ran := ""
	if e.Done == nil || !e.Done() {
		if ph, ok := e.phases[tick%e.CyclePeriod]; ok {
			ph.Run(tick)
			ran = ph.Name
		}
	}

	if e.AfterCycle != nil && tick%e.CyclePeriod == e.CyclePeriod-1 {
		e.AfterCycle(tick)
	}
	return ran
}

// Run starts the simulation loop. Blocks until Stop() is called, MaxTicks is
// reached or the match is over.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.running.Load() {
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step(e.Tick + 1)

		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}
		if e.Done != nil && e.Done() {
			break
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		if e.Interval > 0 {
			elapsed := time.Since(start)
			target := time.Duration(float64(e.Interval) / e.Speed)
			if elapsed < target {
				time.Sleep(target - elapsed)
			}
		}
	}

	e.running.Store(false)
	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Cycle returns the cycle number tick falls in.
func (e *Engine) Cycle(tick uint64) uint64 {
	return tick / e.CyclePeriod
}
