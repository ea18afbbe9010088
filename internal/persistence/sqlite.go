package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/feudal-ffa/internal/engine"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps match snapshots in a SQLite file.
type SQLiteStore struct {
	conn *sqlx.DB
}

// NewSQLite opens or creates the database named by a sqlite:// DSN.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	path, err := parseSQLiteDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; also keeps :memory: on a single database.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA journal_mode = WAL;",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func parseSQLiteDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}
	rest := strings.TrimPrefix(dsn, "sqlite://")
	if rest == "" {
		return "", fmt.Errorf("empty sqlite path")
	}
	if rest == ":memory:" {
		return rest, nil
	}
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	return path, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		match_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		entity INTEGER NOT NULL,
		name TEXT NOT NULL,
		power_score REAL NOT NULL,
		eliminated INTEGER NOT NULL,
		team_id INTEGER NOT NULL,
		leader_id INTEGER NOT NULL,
		rival_target INTEGER NOT NULL,
		origin_q INTEGER NOT NULL,
		origin_r INTEGER NOT NULL,
		PRIMARY KEY (match_id, id)
	);

	CREATE TABLE IF NOT EXISTS teams (
		match_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		leader_id INTEGER NOT NULL,
		size INTEGER NOT NULL,
		rival_id INTEGER NOT NULL,
		truce_until INTEGER NOT NULL,
		PRIMARY KEY (match_id, id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_meta (
		match_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (match_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_match_tick ON events(match_id, tick);
	`
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

type participantRecord struct {
	MatchID string `db:"match_id"`
	ParticipantRow
}

type teamRecord struct {
	MatchID string `db:"match_id"`
	TeamRow
}

// SaveMatch writes the snapshot in one transaction.
func (s *SQLiteStore) SaveMatch(ctx context.Context, snap Snapshot) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE match_id = ?", snap.MatchID); err != nil {
		return err
	}
	for _, p := range snap.Participants {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO participants
			(match_id, id, entity, name, power_score, eliminated, team_id, leader_id,
			 rival_target, origin_q, origin_r)
			VALUES (:match_id, :id, :entity, :name, :power_score, :eliminated, :team_id, :leader_id,
			 :rival_target, :origin_q, :origin_r)`,
			participantRecord{snap.MatchID, p})
		if err != nil {
			return fmt.Errorf("insert participant %d: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM teams WHERE match_id = ?", snap.MatchID); err != nil {
		return err
	}
	for _, t := range snap.Teams {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO teams
			(match_id, id, leader_id, size, rival_id, truce_until)
			VALUES (:match_id, :id, :leader_id, :size, :rival_id, :truce_until)`,
			teamRecord{snap.MatchID, t})
		if err != nil {
			return fmt.Errorf("insert team %d: %w", t.ID, err)
		}
	}

	for _, e := range snap.Events {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO events (match_id, tick, description, category) VALUES (?, ?, ?, ?)",
			snap.MatchID, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	for key, value := range snap.meta() {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO match_meta (match_id, key, value) VALUES (?, ?, ?)",
			snap.MatchID, key, value,
		)
		if err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("match saved", "match", snap.MatchID, "tick", snap.Tick, "events", len(snap.Events))
	return nil
}

// Standings returns the participants of a match, strongest first.
func (s *SQLiteStore) Standings(ctx context.Context, matchID string) ([]ParticipantRow, error) {
	var rows []ParticipantRow
	err := s.conn.SelectContext(ctx, &rows,
		`SELECT id, entity, name, power_score, eliminated, team_id, leader_id,
		        rival_target, origin_q, origin_r
		 FROM participants WHERE match_id = ?
		 ORDER BY power_score DESC, id`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return rows, nil
}

// RecentEvents returns the most recent events of a match, newest first.
func (s *SQLiteStore) RecentEvents(ctx context.Context, matchID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := s.conn.SelectContext(ctx, &events,
		"SELECT tick, description, category FROM events WHERE match_id = ? ORDER BY id DESC LIMIT ?",
		matchID, limit,
	)
	return events, err
}

// Meta retrieves a metadata value of a match.
func (s *SQLiteStore) Meta(ctx context.Context, matchID, key string) (string, error) {
	var value string
	err := s.conn.GetContext(ctx, &value,
		"SELECT value FROM match_meta WHERE match_id = ? AND key = ?", matchID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s of match %s: %w", key, matchID, ErrNotFound)
	}
	return value, err
}
