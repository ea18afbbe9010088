package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/feudal-ffa/internal/diplomacy"
	"github.com/talgya/feudal-ffa/internal/engine"
	"github.com/talgya/feudal-ffa/internal/entropy"
	"github.com/talgya/feudal-ffa/internal/persistence"
	"github.com/talgya/feudal-ffa/internal/sandbox"
	"github.com/talgya/feudal-ffa/internal/world"
)

var (
	runParties  int
	runTicks    uint64
	runSeed     int64
	runDSN      string
	runInterval time.Duration
	runRadius   int
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a match in the sandbox arena",
		Args:  cobra.NoArgs,
		RunE:  runMatch,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the default tuning")
	cmd.Flags().IntVar(&runParties, "parties", 8, "Number of competing parties")
	cmd.Flags().Uint64Var(&runTicks, "ticks", 20000, "Stop after this many ticks (0 = until someone wins)")
	cmd.Flags().Int64Var(&runSeed, "seed", 42, "Seed for terrain, placement and skirmishes")
	cmd.Flags().StringVar(&runDSN, "db", envOrDefault("FFASIM_DB", ""), "Snapshot store: sqlite://path or postgres://... (empty = none)")
	cmd.Flags().DurationVar(&runInterval, "interval", 0, "Wall-clock time per tick (0 = as fast as possible)")
	cmd.Flags().IntVar(&runRadius, "radius", 24, "Arena radius in hexes")
	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if runParties < 2 {
		return fmt.Errorf("need at least 2 parties, got %d", runParties)
	}

	// ── Arena ─────────────────────────────────────────────────────────
	gen := world.DefaultGenConfig()
	gen.Seed = runSeed
	gen.Radius = runRadius
	arena := world.Generate(gen)
	for t, c := range world.TerrainCounts(arena) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}

	seeds := world.PlaceSettlements(arena, runParties, cfg.Respawn.Footprint, runSeed)
	if len(seeds) < 2 {
		return fmt.Errorf("arena of radius %d fits only %d parties", runRadius, len(seeds))
	}
	if len(seeds) < runParties {
		slog.Warn("arena too small for every party", "requested", runParties, "placed", len(seeds))
	}

	var rng entropy.Source = entropy.NewSeeded(runSeed)
	if c := entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY")); c.Enabled() {
		slog.Info("random.org entropy enabled")
		rng = c
	}

	host := sandbox.New(arena, seeds, cfg.Respawn.Footprint, rng)
	sim := engine.NewSimulation(cfg, host)
	sim.FirstRun(0)

	// ── Store ─────────────────────────────────────────────────────────
	var rec *persistence.Recorder
	if runDSN != "" {
		if err := ensureSQLiteDir(runDSN); err != nil {
			return err
		}
		store, err := persistence.Open(ctx, runDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = persistence.NewRecorder(store)
		slog.Info("snapshot store opened", "match", rec.MatchID)
		if err := rec.Save(ctx, sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng, err := engine.NewEngine(sim)
	if err != nil {
		return err
	}
	eng.Interval = runInterval
	eng.MaxTicks = runTicks

	hostile := func(a, b uint64) bool { return sim.Diplomacy.Get(a, b) == diplomacy.War }
	eng.BeforeTick = func(tick uint64) {
		if tick%10 == 0 {
			host.Harvest()
		}
		host.Skirmish(hostile, func(ev engine.DamageEvent) { sim.OnDamage(ev) })
	}
	eng.AfterCycle = func(tick uint64) {
		slog.Info("cycle complete",
			"cycle", eng.Cycle(tick),
			"teams", sim.Stats.Teams,
			"active", sim.Stats.Active,
			"eliminated", sim.Stats.Eliminated,
			"conquests", sim.Stats.Conquests,
			"promotions", sim.Stats.Promotions,
		)
		if rec == nil {
			return
		}
		if err := rec.Save(ctx, sim); err != nil {
			slog.Error("cycle save failed", "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer close(sigCh)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d houses on %s hexes. Fight!\n", len(seeds), humanize.Comma(int64(arena.HexCount())))
	eng.Run()

	if rec != nil {
		if err := rec.Save(ctx, sim); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}

	if sim.GameOver {
		leader := sim.Participants[sim.Teams[sim.Winner].LeaderID]
		fmt.Fprintf(out, "\n%s united the realm at tick %s.\n", leader.Name, humanize.Comma(int64(sim.CurrentTick())))
	} else {
		fmt.Fprintf(out, "\nStopped at tick %s with %d teams standing.\n", humanize.Comma(int64(sim.CurrentTick())), len(sim.Teams))
	}
	rows := persistence.Capture("", sim, 0).Participants
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PowerScore > rows[j].PowerScore })
	printStandings(out, rows)
	if rec != nil {
		fmt.Fprintf(out, "\nMatch id: %s\n", rec.MatchID)
	}
	return nil
}

// ensureSQLiteDir creates the parent directory of a sqlite file DSN.
func ensureSQLiteDir(dsn string) error {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}

func printStandings(w io.Writer, rows []persistence.ParticipantRow) {
	fmt.Fprintf(w, "\n%-6s %-20s %6s %8s %12s\n", "RANK", "HOUSE", "TEAM", "LIEGE", "POWER")
	for i, r := range rows {
		liege := "-"
		if r.LeaderID != r.ID {
			liege = fmt.Sprintf("%d", r.LeaderID)
		}
		name := r.Name
		if r.Eliminated {
			name += " (fallen)"
		}
		fmt.Fprintf(w, "%-6s %-20s %6d %8s %12s\n",
			humanize.Ordinal(i+1), name, r.TeamID, liege, humanize.CommafWithDigits(r.PowerScore, 1))
	}
}
