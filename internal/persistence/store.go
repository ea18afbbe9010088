// Package persistence stores match snapshots in SQLite or PostgreSQL.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/feudal-ffa/internal/engine"
)

// ErrNotFound is returned when a match or meta key has no stored value.
var ErrNotFound = errors.New("not found")

// Store persists match snapshots. SaveMatch replaces the participants and
// teams of the match and appends its events.
type Store interface {
	SaveMatch(ctx context.Context, snap Snapshot) error
	Standings(ctx context.Context, matchID string) ([]ParticipantRow, error)
	RecentEvents(ctx context.Context, matchID string, limit int) ([]engine.Event, error)
	Meta(ctx context.Context, matchID, key string) (string, error)
	Close() error
}

// ParticipantRow is the stored form of one participant.
type ParticipantRow struct {
	ID          int     `db:"id"`
	Entity      int64   `db:"entity"`
	Name        string  `db:"name"`
	PowerScore  float64 `db:"power_score"`
	Eliminated  bool    `db:"eliminated"`
	TeamID      int     `db:"team_id"`
	LeaderID    int     `db:"leader_id"`
	RivalTarget int     `db:"rival_target"`
	OriginQ     int     `db:"origin_q"`
	OriginR     int     `db:"origin_r"`
}

// TeamRow is the stored form of one team.
type TeamRow struct {
	ID         int    `db:"id"`
	LeaderID   int    `db:"leader_id"`
	Size       int    `db:"size"`
	RivalID    int    `db:"rival_id"`
	TruceUntil uint64 `db:"truce_until"`
}

// Snapshot is the state of one match at a tick.
type Snapshot struct {
	MatchID      string
	Tick         uint64
	GameOver     bool
	Winner       int
	Participants []ParticipantRow
	Teams        []TeamRow
	Events       []engine.Event // only events not stored yet
}

// Meta keys written with every snapshot.
const (
	MetaLastTick = "last_tick"
	MetaGameOver = "game_over"
	MetaWinner   = "winner"
)

func (s Snapshot) meta() map[string]string {
	return map[string]string{
		MetaLastTick: strconv.FormatUint(s.Tick, 10),
		MetaGameOver: strconv.FormatBool(s.GameOver),
		MetaWinner:   strconv.Itoa(s.Winner),
	}
}

// Capture builds a snapshot of sim. Only events at or after since are
// included.
func Capture(matchID string, sim *engine.Simulation, since uint64) Snapshot {
	snap := Snapshot{
		MatchID:  matchID,
		Tick:     sim.CurrentTick(),
		GameOver: sim.GameOver,
		Winner:   int(sim.Winner),
	}
	for _, p := range sim.Participants {
		snap.Participants = append(snap.Participants, ParticipantRow{
			ID:          int(p.ID),
			Entity:      int64(p.Entity),
			Name:        p.Name,
			PowerScore:  p.PowerScore,
			Eliminated:  p.Eliminated,
			TeamID:      int(p.TeamID),
			LeaderID:    int(p.LeaderID),
			RivalTarget: int(p.RivalTarget),
			OriginQ:     p.Origin.Q,
			OriginR:     p.Origin.R,
		})
	}
	sort.Slice(snap.Participants, func(i, j int) bool { return snap.Participants[i].ID < snap.Participants[j].ID })

	for _, t := range sim.Teams {
		snap.Teams = append(snap.Teams, TeamRow{
			ID:         int(t.ID),
			LeaderID:   int(t.LeaderID),
			Size:       t.Size(),
			RivalID:    int(t.RivalID),
			TruceUntil: t.TruceUntil,
		})
	}
	sort.Slice(snap.Teams, func(i, j int) bool { return snap.Teams[i].ID < snap.Teams[j].ID })

	for _, e := range sim.Events {
		if e.Tick >= since {
			snap.Events = append(snap.Events, e)
		}
	}
	return snap
}

// Open connects to the store named by dsn: sqlite://path or postgres://...
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLite(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database DSN %q, expected sqlite:// or postgres://", dsn)
	}
}

// Recorder saves periodic snapshots of one match, appending each event once.
type Recorder struct {
	Store   Store
	MatchID string
	next    uint64
}

// NewRecorder creates a recorder for a fresh match id.
func NewRecorder(store Store) *Recorder {
	return &Recorder{Store: store, MatchID: uuid.NewString()}
}

// Save stores the current state of sim.
func (r *Recorder) Save(ctx context.Context, sim *engine.Simulation) error {
	snap := Capture(r.MatchID, sim, r.next)
	if err := r.Store.SaveMatch(ctx, snap); err != nil {
		return fmt.Errorf("save match %s at tick %d: %w", r.MatchID, snap.Tick, err)
	}
	r.next = snap.Tick + 1
	return nil
}
