// internal/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// DB is the shared connection pool. It stays nil when Postgres is not
// configured; every query helper checks before use so the server can run
// without persistent stats.
var DB *pgxpool.Pool

// ConnectDB opens the pool from DATABASE_URL and ensures the stats schema.
func ConnectDB(ctx context.Context) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	logrus.Info("Connected to Postgres")
	return ensureSchema(ctx)
}

func ensureSchema(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS player_stats (
			player_name   TEXT PRIMARY KEY,
			games_played  INT NOT NULL DEFAULT 0,
			games_won     INT NOT NULL DEFAULT 0,
			rounds_played INT NOT NULL DEFAULT 0,
			rounds_won    INT NOT NULL DEFAULT 0,
			total_score   INT NOT NULL DEFAULT 0,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure player_stats schema: %w", err)
	}
	return nil
}

// RecordRoundResult upserts one player's outcome for a finished round.
// Stats are keyed by display name; bots are filtered out by the caller.
func RecordRoundResult(ctx context.Context, name string, won bool, score int) error {
	if DB == nil {
		return nil
	}
	wonInt := 0
	if won {
		wonInt = 1
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO player_stats (player_name, rounds_played, rounds_won, total_score, updated_at)
		VALUES ($1, 1, $2, $3, now())
		ON CONFLICT (player_name) DO UPDATE SET
			rounds_played = player_stats.rounds_played + 1,
			rounds_won    = player_stats.rounds_won + $2,
			total_score   = player_stats.total_score + $3,
			updated_at    = now()`,
		name, wonInt, score)
	if err != nil {
		return fmt.Errorf("record round result for %s: %w", name, err)
	}
	return nil
}

// RecordGameResult upserts one player's outcome for a finished game.
func RecordGameResult(ctx context.Context, name string, won bool) error {
	if DB == nil {
		return nil
	}
	wonInt := 0
	if won {
		wonInt = 1
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO player_stats (player_name, games_played, games_won, updated_at)
		VALUES ($1, 1, $2, now())
		ON CONFLICT (player_name) DO UPDATE SET
			games_played = player_stats.games_played + 1,
			games_won    = player_stats.games_won + $2,
			updated_at   = now()`,
		name, wonInt)
	if err != nil {
		return fmt.Errorf("record game result for %s: %w", name, err)
	}
	return nil
}

// GetStats fetches one player's lifetime stats, or nil when unknown.
func GetStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	if DB == nil {
		return nil, nil
	}
	var s models.PlayerStats
	err := DB.QueryRow(ctx, `
		SELECT player_name, games_played, games_won, rounds_played, rounds_won, total_score, updated_at
		FROM player_stats WHERE player_name = $1`, name).
		Scan(&s.Name, &s.GamePlayed, &s.GameWins, &s.RoundPlayed, &s.RoundWins, &s.TotalGold, &s.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stats for %s: %w", name, err)
	}
	return &s, nil
}

// GetAllStats returns every known player ordered by games won.
func GetAllStats(ctx context.Context) ([]models.PlayerStats, error) {
	if DB == nil {
		return nil, nil
	}
	rows, err := DB.Query(ctx, `
		SELECT player_name, games_played, games_won, rounds_played, rounds_won, total_score, updated_at
		FROM player_stats ORDER BY games_won DESC, total_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("query player_stats: %w", err)
	}
	defer rows.Close()

	var out []models.PlayerStats
	for rows.Next() {
		var s models.PlayerStats
		if err := rows.Scan(&s.Name, &s.GamePlayed, &s.GameWins, &s.RoundPlayed, &s.RoundWins, &s.TotalGold, &s.LastSeen); err != nil {
			return nil, fmt.Errorf("scan player_stats row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the pool. Safe to call when never connected.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// WithTimeout is a small helper for the async stat writers.
func WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
