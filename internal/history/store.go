// Package history persists check-ins, chat exchanges, and the evaluation
// audit trail in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// currentSchemaVersion is the latest schema version (user_version pragma).
// Bump when adding migrations.
const currentSchemaVersion = 1

// Store implements schema.HistoryProvider and schema.AuditSink on SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes the database at baseDir/ritmo.db. baseDir lets tests use
// t.TempDir() instead of ~/.ritmo.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(baseDir, "ritmo.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(dbPath, 0o600)

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		ddl := `
		CREATE TABLE IF NOT EXISTS profiles (
		  user_id   TEXT PRIMARY KEY,
		  name      TEXT NOT NULL,
		  stage     TEXT NOT NULL,
		  comms     TEXT NOT NULL,
		  timezone  TEXT NOT NULL,
		  chat_id   TEXT,
		  channel   TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS checkins (
		  id        INTEGER PRIMARY KEY AUTOINCREMENT,
		  user_id   TEXT NOT NULL,
		  state     TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_checkins_user_time
		ON checkins(user_id, created_at);

		CREATE TABLE IF NOT EXISTS exchanges (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  user_id     TEXT NOT NULL,
		  user_text   TEXT NOT NULL,
		  system_text TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_exchanges_user_time
		ON exchanges(user_id, created_at);

		CREATE TABLE IF NOT EXISTS evaluations (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  user_id     TEXT NOT NULL,
		  state       TEXT NOT NULL,
		  confidence  TEXT NOT NULL,
		  risk_level  TEXT NOT NULL,
		  risk_prob   REAL NOT NULL,
		  decision    TEXT NOT NULL,
		  strategy    TEXT NOT NULL,
		  priority    TEXT NOT NULL,
		  detail      TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_evaluations_user_time
		ON evaluations(user_id, created_at);
		`
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// SaveProfile inserts or replaces a user's accompaniment profile.
// chatID/channel record where proactive prompts should be delivered.
func (s *Store) SaveProfile(ctx context.Context, p schema.Profile, channel, chatID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles(user_id, name, stage, comms, timezone, chat_id, channel, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  name=excluded.name, stage=excluded.stage, comms=excluded.comms,
		  timezone=excluded.timezone, chat_id=excluded.chat_id, channel=excluded.channel`,
		p.UserID, p.Name, string(p.Stage), string(p.Comms), p.Timezone, chatID, channel,
		time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Profile loads one profile; ok is false when the user is unknown.
func (s *Store) Profile(ctx context.Context, userID string) (schema.Profile, bool, error) {
	var p schema.Profile
	var stage, comms string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, stage, comms, timezone FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Name, &stage, &comms, &p.Timezone)
	if err == sql.ErrNoRows {
		return schema.Profile{}, false, nil
	}
	if err != nil {
		return schema.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	p.Stage = schema.LifeStage(stage)
	p.Comms = schema.CommsMode(comms)
	return p, true, nil
}

// Profiles returns every onboarded profile with its delivery coordinates.
func (s *Store) Profiles(ctx context.Context) ([]DeliveryProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, stage, comms, timezone, channel, chat_id FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []DeliveryProfile
	for rows.Next() {
		var d DeliveryProfile
		var stage, comms string
		var channel, chatID sql.NullString
		if err := rows.Scan(&d.Profile.UserID, &d.Profile.Name, &stage, &comms,
			&d.Profile.Timezone, &channel, &chatID); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		d.Profile.Stage = schema.LifeStage(stage)
		d.Profile.Comms = schema.CommsMode(comms)
		d.Channel = channel.String
		d.ChatID = chatID.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeliveryProfile pairs a profile with the channel coordinates proactive
// prompts are delivered to.
type DeliveryProfile struct {
	Profile schema.Profile
	Channel string
	ChatID  string
}

// ---------------------------------------------------------------------------
// Check-ins
// ---------------------------------------------------------------------------

// AddCheckin records one emotional check-in at the current time.
func (s *Store) AddCheckin(ctx context.Context, userID string, state schema.EmotionalState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkins(user_id, state, created_at) VALUES(?, ?, ?)`,
		userID, string(state), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add checkin: %w", err)
	}
	return nil
}

// Checkins implements schema.HistoryProvider: entries from the last
// windowDays, oldest first.
func (s *Store) Checkins(ctx context.Context, userID string, windowDays int) ([]schema.CheckinRecord, error) {
	since := time.Now().AddDate(0, 0, -windowDays).UnixMilli()
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, created_at FROM checkins
		 WHERE user_id = ? AND created_at >= ?
		 ORDER BY created_at ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query checkins: %w", err)
	}
	defer rows.Close()

	var out []schema.CheckinRecord
	for rows.Next() {
		var state string
		var createdMs int64
		if err := rows.Scan(&state, &createdMs); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		out = append(out, schema.CheckinRecord{
			Date:  time.UnixMilli(createdMs),
			State: schema.EmotionalState(state),
		})
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Exchanges
// ---------------------------------------------------------------------------

// AddExchange records one user/system turn pair.
func (s *Store) AddExchange(ctx context.Context, userID, userText, systemText string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges(user_id, user_text, system_text, created_at) VALUES(?, ?, ?, ?)`,
		userID, userText, systemText, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add exchange: %w", err)
	}
	return nil
}

// RecentExchanges implements schema.HistoryProvider: the newest limit
// exchanges, returned oldest first.
func (s *Store) RecentExchanges(ctx context.Context, userID string, limit int) ([]schema.Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_text, system_text, created_at FROM (
		   SELECT user_text, system_text, created_at FROM exchanges
		   WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
		 ) ORDER BY created_at ASC`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var out []schema.Exchange
	for rows.Next() {
		var ex schema.Exchange
		var createdMs int64
		if err := rows.Scan(&ex.UserText, &ex.SystemText, &createdMs); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.Timestamp = time.UnixMilli(createdMs)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// CountExchanges returns lifetime and recent exchange counts for the risk
// feature vector. recentDays bounds the second count.
func (s *Store) CountExchanges(ctx context.Context, userID string, recentDays int) (total, recent int, err error) {
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exchanges WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count exchanges: %w", err)
	}
	since := time.Now().AddDate(0, 0, -recentDays).UnixMilli()
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exchanges WHERE user_id = ? AND created_at >= ?`,
		userID, since).Scan(&recent); err != nil {
		return 0, 0, fmt.Errorf("count recent exchanges: %w", err)
	}
	return total, recent, nil
}

// ---------------------------------------------------------------------------
// Audit sink
// ---------------------------------------------------------------------------

// RecordEvaluation implements schema.AuditSink. The full record is kept as
// JSON in the detail column; the indexed columns exist for queries.
func (s *Store) RecordEvaluation(ctx context.Context, rec schema.EvaluationRecord) error {
	detail, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations(user_id, state, confidence, risk_level, risk_prob,
		  decision, strategy, priority, detail, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, string(rec.State.Kind), string(rec.State.Confidence),
		string(rec.Risk.Level), rec.Risk.Probability,
		string(rec.Decision.Decision), string(rec.Decision.Strategy), string(rec.Decision.Priority),
		string(detail), rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

// EvaluationCount returns the audit rows stored for a user.
func (s *Store) EvaluationCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluations WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return n, nil
}
