package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talgya/feudal-ffa/internal/engine"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps match snapshots in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS participants (
    match_id     TEXT NOT NULL,
    id           INTEGER NOT NULL,
    entity       BIGINT NOT NULL,
    name         TEXT NOT NULL,
    power_score  DOUBLE PRECISION NOT NULL,
    eliminated   BOOLEAN NOT NULL,
    team_id      INTEGER NOT NULL,
    leader_id    INTEGER NOT NULL,
    rival_target INTEGER NOT NULL,
    origin_q     INTEGER NOT NULL,
    origin_r     INTEGER NOT NULL,
    PRIMARY KEY (match_id, id)
);

CREATE TABLE IF NOT EXISTS teams (
    match_id    TEXT NOT NULL,
    id          INTEGER NOT NULL,
    leader_id   INTEGER NOT NULL,
    size        INTEGER NOT NULL,
    rival_id    INTEGER NOT NULL,
    truce_until BIGINT NOT NULL,
    PRIMARY KEY (match_id, id)
);

CREATE TABLE IF NOT EXISTS events (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    match_id    TEXT NOT NULL,
    tick        BIGINT NOT NULL,
    description TEXT NOT NULL,
    category    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS match_meta (
    match_id TEXT NOT NULL,
    key      TEXT NOT NULL,
    value    TEXT NOT NULL,
    PRIMARY KEY (match_id, key)
);

CREATE INDEX IF NOT EXISTS idx_events_match_tick ON events (match_id, tick);
`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// SaveMatch writes the snapshot in one transaction, batching the inserts.
func (s *PostgresStore) SaveMatch(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue("DELETE FROM participants WHERE match_id = $1", snap.MatchID)
	for _, p := range snap.Participants {
		batch.Queue(`INSERT INTO participants
(match_id, id, entity, name, power_score, eliminated, team_id, leader_id, rival_target, origin_q, origin_r)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			snap.MatchID, p.ID, p.Entity, p.Name, p.PowerScore, p.Eliminated,
			p.TeamID, p.LeaderID, p.RivalTarget, p.OriginQ, p.OriginR)
	}
	batch.Queue("DELETE FROM teams WHERE match_id = $1", snap.MatchID)
	for _, t := range snap.Teams {
		batch.Queue(`INSERT INTO teams (match_id, id, leader_id, size, rival_id, truce_until)
VALUES ($1, $2, $3, $4, $5, $6)`,
			snap.MatchID, t.ID, t.LeaderID, t.Size, t.RivalID, t.TruceUntil)
	}
	for _, e := range snap.Events {
		batch.Queue("INSERT INTO events (match_id, tick, description, category) VALUES ($1, $2, $3, $4)",
			snap.MatchID, e.Tick, e.Description, e.Category)
	}
	for key, value := range snap.meta() {
		batch.Queue(`INSERT INTO match_meta (match_id, key, value) VALUES ($1, $2, $3)
ON CONFLICT (match_id, key) DO UPDATE SET value = EXCLUDED.value`,
			snap.MatchID, key, value)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	slog.Debug("match saved", "match", snap.MatchID, "tick", snap.Tick, "events", len(snap.Events))
	return nil
}

// Standings returns the participants of a match, strongest first.
func (s *PostgresStore) Standings(ctx context.Context, matchID string) ([]ParticipantRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, entity, name, power_score, eliminated, team_id, leader_id, rival_target, origin_q, origin_r
FROM participants
WHERE match_id = $1
ORDER BY power_score DESC, id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[ParticipantRow])
	if err != nil {
		return nil, fmt.Errorf("scanning standings: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return out, nil
}

// RecentEvents returns the most recent events of a match, newest first.
func (s *PostgresStore) RecentEvents(ctx context.Context, matchID string, limit int) ([]engine.Event, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT tick, description, category FROM events WHERE match_id = $1 ORDER BY id DESC LIMIT $2",
		matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[engine.Event])
}

// Meta retrieves a metadata value of a match.
func (s *PostgresStore) Meta(ctx context.Context, matchID, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		"SELECT value FROM match_meta WHERE match_id = $1 AND key = $2", matchID, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("meta %s of match %s: %w", key, matchID, ErrNotFound)
	}
	return value, err
}
