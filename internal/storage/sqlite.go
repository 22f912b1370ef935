// Package storage provides SQLite-based persistence for episode results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Episode outcomes.
const (
	OutcomeDied      = "died"
	OutcomeTruncated = "truncated"
	OutcomeAborted   = "aborted" // Stopped by the user or a transport error
)

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

// Episode is one finished (or abandoned) episode summary.
type Episode struct {
	ID          string
	Seed        uint64
	Policy      string
	Difficulty  string
	Ticks       uint64
	Seconds     float64
	Kills       int
	DamageTaken float64
	DamageDealt float64
	ShotsFired  int
	ShotsHit    int
	Upgrades    int
	Reward      float64
	Outcome     string
	Digest      uint64 // Final world digest, for replay verification
	CreatedAt   time.Time
}

// Accuracy returns hits per shot, or 0 without shots.
func (e Episode) Accuracy() float64 {
	if e.ShotsFired == 0 {
		return 0
	}
	return float64(e.ShotsHit) / float64(e.ShotsFired)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			policy TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL,
			seconds REAL NOT NULL,
			kills INTEGER NOT NULL DEFAULT 0,
			damage_taken REAL NOT NULL DEFAULT 0,
			damage_dealt REAL NOT NULL DEFAULT 0,
			shots_fired INTEGER NOT NULL DEFAULT 0,
			shots_hit INTEGER NOT NULL DEFAULT 0,
			upgrades INTEGER NOT NULL DEFAULT 0,
			reward REAL NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			digest INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_policy ON episodes(policy);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(policy, kills DESC, seconds DESC);
		CREATE INDEX IF NOT EXISTS idx_episodes_created ON episodes(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records an episode. An empty ID is filled with a new UUID.
// Returns the ID of the stored record.
func (s *Store) SaveEpisode(ep Episode) (string, error) {
	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO episodes
		 (id, seed, policy, difficulty, ticks, seconds, kills, damage_taken, damage_dealt,
		  shots_fired, shots_hit, upgrades, reward, outcome, digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID,
		int64(ep.Seed),
		ep.Policy,
		ep.Difficulty,
		int64(ep.Ticks),
		ep.Seconds,
		ep.Kills,
		ep.DamageTaken,
		ep.DamageDealt,
		ep.ShotsFired,
		ep.ShotsHit,
		ep.Upgrades,
		ep.Reward,
		ep.Outcome,
		int64(ep.Digest),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save episode: %w", err)
	}

	return ep.ID, nil
}

const episodeColumns = `id, seed, policy, difficulty, ticks, seconds, kills, damage_taken, damage_dealt,
		        shots_fired, shots_hit, upgrades, reward, outcome, digest, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (Episode, error) {
	var ep Episode
	var seed, ticks, digest int64
	var createdAt any

	err := row.Scan(
		&ep.ID,
		&seed,
		&ep.Policy,
		&ep.Difficulty,
		&ticks,
		&ep.Seconds,
		&ep.Kills,
		&ep.DamageTaken,
		&ep.DamageDealt,
		&ep.ShotsFired,
		&ep.ShotsHit,
		&ep.Upgrades,
		&ep.Reward,
		&ep.Outcome,
		&digest,
		&createdAt,
	)
	if err != nil {
		return ep, err
	}

	ep.Seed = uint64(seed)
	ep.Ticks = uint64(ticks)
	ep.Digest = uint64(digest)
	ep.CreatedAt = parseTimestamp(createdAt)
	return ep, nil
}

// parseTimestamp handles both time.Time and string values from the driver.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func (s *Store) queryEpisodes(query string, args ...any) ([]Episode, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// TopEpisodes retrieves the best N episodes for a policy, by kills and then
// survival time. An empty policy ranks every episode.
func (s *Store) TopEpisodes(policy string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	return s.queryEpisodes(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE (? = '' OR policy = ?)
		 ORDER BY kills DESC, seconds DESC, created_at ASC
		 LIMIT ?`,
		policy, policy, limit,
	)
}

// RecentEpisodes retrieves the most recently stored episodes.
func (s *Store) RecentEpisodes(limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 20
	}

	return s.queryEpisodes(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
}

// EpisodeByID retrieves one episode. Returns nil without error when the
// ID is unknown.
func (s *Store) EpisodeByID(id string) (*Episode, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)

	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episode: %w", err)
	}

	return &ep, nil
}

// BestKills returns the most kills any episode of the policy reached.
// Returns 0 if no episodes exist.
func (s *Store) BestKills(policy string) (int, error) {
	var kills sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(kills) FROM episodes WHERE policy = ?",
		policy,
	).Scan(&kills)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best kills: %w", err)
	}

	if !kills.Valid {
		return 0, nil
	}

	return int(kills.Int64), nil
}

// ClearEpisodes deletes every episode of a policy. An empty policy clears
// the whole table.
func (s *Store) ClearEpisodes(policy string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE (? = '' OR policy = ?)", policy, policy)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// PolicyStats contains aggregated statistics for one policy.
type PolicyStats struct {
	Policy       string
	Episodes     int
	Deaths       int
	BestKills    int
	MeanKills    float64
	MeanReward   float64
	MeanSeconds  float64
	LongestRun   float64
	LastPlayed   time.Time
	TotalTicks   int64
	TotalKills   int64
	MeanAccuracy float64
}

const statsColumns = `policy, COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'died' THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(kills), 0), COALESCE(AVG(kills), 0), COALESCE(AVG(reward), 0),
		        COALESCE(AVG(seconds), 0), COALESCE(MAX(seconds), 0), MAX(created_at),
		        COALESCE(SUM(ticks), 0), COALESCE(SUM(kills), 0),
		        COALESCE(AVG(CASE WHEN shots_fired > 0 THEN CAST(shots_hit AS REAL) / shots_fired ELSE 0 END), 0)`

func scanStats(row scanner) (*PolicyStats, error) {
	var st PolicyStats
	var lastPlayed any
	err := row.Scan(
		&st.Policy,
		&st.Episodes,
		&st.Deaths,
		&st.BestKills,
		&st.MeanKills,
		&st.MeanReward,
		&st.MeanSeconds,
		&st.LongestRun,
		&lastPlayed,
		&st.TotalTicks,
		&st.TotalKills,
		&st.MeanAccuracy,
	)
	if err != nil {
		return nil, err
	}
	st.LastPlayed = parseTimestamp(lastPlayed)
	return &st, nil
}

// GetPolicyStats retrieves aggregated statistics for a specific policy.
// A policy with no episodes yields zero stats.
func (s *Store) GetPolicyStats(policy string) (*PolicyStats, error) {
	row := s.db.QueryRow(
		`SELECT `+statsColumns+`
		 FROM episodes WHERE policy = ?
		 GROUP BY policy`,
		policy,
	)

	st, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &PolicyStats{Policy: policy}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get policy stats: %w", err)
	}
	return st, nil
}

// GetAllPolicyStats retrieves statistics for every policy with stored episodes.
func (s *Store) GetAllPolicyStats() (map[string]*PolicyStats, error) {
	rows, err := s.db.Query(
		`SELECT ` + statsColumns + `
		 FROM episodes
		 GROUP BY policy`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all policy stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*PolicyStats)
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats[st.Policy] = st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
