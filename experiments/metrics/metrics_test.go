package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts episodes and playouts", func(t *testing.T) {
		c := NewCollector()
		c.Start(4, 2, 0.1)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.AddFullPlayout()
			}()
		}
		wg.Wait()
		c.AddEpisode()
		c.AddEpisode()
		c.SetTree(3, 2)

		m := c.Complete()
		require.Equal(t, 2, m.Iterations)
		require.Equal(t, 8, m.FullPlayouts)
		require.Equal(t, 4, m.Simulations)
		require.Equal(t, 2, m.Workers)
		require.Equal(t, 3, m.TreeSize)
		require.Equal(t, 2, m.BestVisits)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 1, 0.1)
		c.AddEpisode()
		c.Start(1, 1, 0.1)
		require.Zero(t, c.Complete().Iterations)
	})

	t.Run("dummy collector reports nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, 1, 0.1)
		c.AddEpisode()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestWriter(t *testing.T) {
	t.Run("writes one row per record", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "selfplay")
		require.NoError(t, err)

		id := uuid.New()
		require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Iterations: 100, Simulations: 4, Rollout: "uniform"}}))
		require.NoError(t, w.WriteGameRecords([]GameRecord{{
			Agent:      1,
			GameMetric: GameMetric{ID: id, Players: 2, Score: 17, StartTime: time.Now(), EndTime: time.Now()},
		}}))
		require.NoError(t, w.WriteMoveRecords([]MoveRecord{
			{Game: id, MoveMetric: MoveMetric{Step: 0, Player: 0, Move: "play 0"}},
			{Game: id, MoveMetric: MoveMetric{Step: 1, Player: 1, Move: "discard 2"}},
		}))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "game", rows[0][0])
		require.Equal(t, id.String(), rows[1][0])
		require.Equal(t, "discard 2", rows[2][3])

		agents := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Equal(t, "rollout", agents[0][7])
		require.Equal(t, "uniform", agents[1][7])

		games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, games, 2)
		require.Equal(t, "17", games[1][4])
	})
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
