package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"hanabi/experiments/metrics"
)

func openTestDB(t *testing.T) *DB {
	dsn := os.Getenv("HANABI_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HANABI_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	experiment := "test-" + uuid.NewString()

	start := time.Now().UTC().Truncate(time.Millisecond)
	game := metrics.GameRecord{
		Agent: 1,
		GameMetric: metrics.GameMetric{
			ID:         uuid.New(),
			Players:    2,
			Seed:       ^uint64(0),
			Score:      17,
			Errors:     1,
			Hints:      3,
			StartTime:  start,
			EndTime:    start.Add(time.Second),
			Duration:   time.Second,
			TotalMoves: 2,
		},
	}

	t.Run("migrate is idempotent", func(t *testing.T) {
		require.NoError(t, Migrate(ctx, db))
	})

	t.Run("games and moves are stored", func(t *testing.T) {
		require.NoError(t, db.InsertGame(ctx, experiment, game))
		moves := []metrics.MoveRecord{
			{Game: game.ID, MoveMetric: metrics.MoveMetric{Step: 0, Player: 0, Move: "p0 play #0"}},
			{Game: game.ID, MoveMetric: metrics.MoveMetric{Step: 1, Player: 1, Move: "p1 discard #2"}},
		}
		require.NoError(t, db.InsertMoves(ctx, moves))

		var n int
		err := db.QueryRow(ctx, `SELECT count(*) FROM moves WHERE game_id = $1`, game.ID).Scan(&n)
		require.NoError(t, err)
		require.Equal(t, 2, n)

		summary, err := db.Summarize(ctx, experiment)
		require.NoError(t, err)
		require.Equal(t, Summary{Games: 1, MeanScore: 17, MaxScore: 17}, summary)
	})

	t.Run("duplicate game is rejected", func(t *testing.T) {
		require.Error(t, db.InsertGame(ctx, experiment, game))
	})

	t.Run("no moves is a no-op", func(t *testing.T) {
		require.NoError(t, db.InsertMoves(ctx, nil))
	})
}
