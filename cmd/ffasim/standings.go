package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/feudal-ffa/internal/persistence"
)

var (
	standingsDSN    string
	standingsEvents int
)

func standingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standings <match-id>",
		Short: "Show the last saved standings of a match",
		Args:  cobra.ExactArgs(1),
		RunE:  runStandings,
	}
	cmd.Flags().StringVar(&standingsDSN, "db", envOrDefault("FFASIM_DB", ""), "Snapshot store: sqlite://path or postgres://...")
	cmd.Flags().IntVar(&standingsEvents, "events", 10, "Number of recent events to show")
	return cmd
}

func runStandings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	matchID := args[0]
	if standingsDSN == "" {
		return fmt.Errorf("no store given: pass --db or set FFASIM_DB")
	}

	store, err := persistence.Open(ctx, standingsDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Standings(ctx, matchID)
	if err != nil {
		return err
	}
	tick, err := store.Meta(ctx, matchID, persistence.MetaLastTick)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Match %s at tick %s\n", matchID, tick)
	printStandings(out, rows)

	if standingsEvents <= 0 {
		return nil
	}
	events, err := store.RecentEvents(ctx, matchID, standingsEvents)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRecent events:\n")
	for _, e := range events {
		fmt.Fprintf(out, "  [%6d] %-10s %s\n", e.Tick, e.Category, e.Description)
	}
	return nil
}
