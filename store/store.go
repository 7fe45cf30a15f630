// Package store persists experiment results in Postgres.
package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hanabi/experiments/metrics"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// InsertGame stores one finished game of an experiment. Seeds above the
// int64 range are stored wrapped.
func (db *DB) InsertGame(ctx context.Context, experiment string, rec metrics.GameRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games(id, experiment, agent, players, seed, score, errors, hints,
		                  started_at, ended_at, duration_ms, total_moves)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, rec.ID, experiment, rec.Agent, rec.Players, int64(rec.Seed), rec.Score, rec.Errors, rec.Hints,
		rec.StartTime, rec.EndTime, rec.Duration.Milliseconds(), rec.TotalMoves)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", rec.ID, err)
	}
	return nil
}

// InsertMoves stores move records in a single round trip.
func (db *DB) InsertMoves(ctx context.Context, moves []metrics.MoveRecord) error {
	if len(moves) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range moves {
		batch.Queue(`
			INSERT INTO moves(game_id, step, player, move, iterations, duration_ms, simulations,
			                  workers, exploration, full_playouts, tree_size, best_visits)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`, m.Game, m.Step, m.Player, m.Move, m.Iterations, m.Duration.Milliseconds(), m.Simulations,
			m.Workers, m.Exploration, m.FullPlayouts, m.TreeSize, m.BestVisits)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d moves: %w", len(moves), err)
	}
	return nil
}

type Summary struct {
	Games     int
	MeanScore float64
	MaxScore  int
}

func (db *DB) Summarize(ctx context.Context, experiment string) (Summary, error) {
	var s Summary
	err := db.QueryRow(ctx, `
		SELECT count(*), coalesce(avg(score), 0), coalesce(max(score), 0)
		  FROM games WHERE experiment = $1
	`, experiment).Scan(&s.Games, &s.MeanScore, &s.MaxScore)
	return s, err
}
