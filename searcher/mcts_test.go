package searcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/rules"
)

func hand(cards ...string) []game.Card {
	parsed := make([]game.Card, len(cards))
	for i, s := range cards {
		var rank int
		var color string
		if _, err := fmt.Sscanf(s, "%d%s", &rank, &color); err != nil {
			panic(err)
		}
		c, err := game.ParseColor(color)
		if err != nil {
			panic(err)
		}
		parsed[i] = game.NewCard(game.Rank(rank), c)
	}
	return parsed
}

// dealt deals the hands as seen by root.
func dealt(root int, hands ...[]game.Card) *game.BeliefState {
	players := make([]string, len(hands))
	for i := range players {
		players[i] = fmt.Sprintf("player%d", i)
	}
	b := game.NewBeliefState(game.NewMatchConfig(len(hands)), players, root)
	for seat, h := range hands {
		for _, card := range h {
			b.Observe(game.Event{Kind: game.CardDrawnEvent, Player: seat, Card: card}.Hidden(root))
		}
	}
	return b
}

// endgame returns the last turn of a game where player 0 holds the known
// white 5 that completes every firework.
func endgame(t *testing.T) *game.BeliefState {
	var trash []game.Card
	for _, color := range []game.Color{game.Red, game.Yellow, game.Green, game.Blue} {
		for _, r := range []game.Rank{1, 1, 2, 3, 4} {
			trash = append(trash, game.NewCard(r, color))
		}
	}
	trash = append(trash, game.NewCard(4, game.White))
	five := game.Card{Rank: 5, Color: game.White, RankKnown: true, ColorKnown: true}

	b, err := game.FromSnapshot(game.Snapshot{
		Config:   game.NewMatchConfig(2),
		Players:  []string{"player0", "player1"},
		Root:     0,
		Hands:    [][]game.Card{{five}, hand("1white", "1white", "2white", "3white")},
		Board:    []game.Rank{5, 5, 5, 5, 4},
		Hints:    8,
		Trash:    trash,
		DrawPile: 0,
		LastTurn: []bool{false, true},
	})
	require.NoError(t, err)
	return b
}

var (
	hand0 = hand("2green", "2yellow", "3blue", "4red", "1white")
	hand1 = hand("1red", "1blue", "2white", "3red", "4white")
	hand2 = hand("5red", "2blue", "1green", "3white", "4yellow")
)

func TestNewMCTS(t *testing.T) {
	t.Run("panics without a budget", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS() }, "Should require iterations or duration")
		require.Panics(t, func() { NewMCTS(WithIterations(0), WithDuration(0)) })
	})

	t.Run("either budget is enough", func(t *testing.T) {
		require.NotPanics(t, func() { NewMCTS(WithIterations(1)) })
		require.NotPanics(t, func() { NewMCTS(WithDuration(time.Millisecond)) })
	})
}

func TestSearch(t *testing.T) {
	t.Run("runs exactly the requested iterations", func(t *testing.T) {
		m := NewMCTS(WithIterations(150), WithSeed(1), WithMetrics())
		move, metric := m.Search(dealt(0, hand0, hand1), 0)

		require.Equal(t, 150, metric.Iterations)
		require.Equal(t, 150, m.tree.get(rootID).visits)
		require.Equal(t, m.tree.size(), metric.TreeSize)

		total := 0
		found := false
		for _, child := range m.tree.get(rootID).children {
			total += m.tree.get(child).visits
			found = found || m.tree.get(child).move == move
		}
		require.Equal(t, 150, total, "Every iteration should pass through a root child")
		require.True(t, found, "Should return a move of a root child")
		require.Equal(t, 0, move.Player)
	})

	t.Run("leaves the belief state untouched", func(t *testing.T) {
		b := dealt(0, hand0, hand1)
		b.HintGiven(1, 0, []int{0, 1}, game.RankHint, 2)
		before := b.Snapshot()

		m := NewMCTS(WithIterations(100), WithSimulations(3), WithSeed(2))
		m.Search(b, 0)
		require.Equal(t, before, b.Snapshot())
	})

	t.Run("plays the winning card", func(t *testing.T) {
		m := NewMCTS(WithIterations(100), WithSeed(3), WithGenerator(rules.Exhaustive{}))
		move, _ := m.Search(endgame(t), 0)
		require.Equal(t, game.PlayMove(0, 0), move)
	})

	t.Run("same seed gives the same search", func(t *testing.T) {
		search := func() (game.Move, int) {
			m := NewMCTS(WithIterations(120), WithSimulations(4), WithRolloutWorkers(4), WithSeed(7), WithMetrics())
			move, metric := m.Search(dealt(0, hand0, hand1), 0)
			return move, metric.TreeSize
		}
		move1, size1 := search()
		move2, size2 := search()
		require.Equal(t, move1, move2)
		require.Equal(t, size1, size2)
	})

	t.Run("parallel rollouts average every simulation", func(t *testing.T) {
		m := NewMCTS(WithIterations(40), WithSimulations(6), WithRolloutWorkers(3), WithSeed(4), WithMetrics())
		_, metric := m.Search(dealt(0, hand0, hand1), 0)
		require.Equal(t, 240, metric.FullPlayouts)
		for _, child := range m.tree.get(rootID).children {
			n := m.tree.get(child)
			require.LessOrEqual(t, n.value, float64(n.visits)+1e-9, "Rewards are at most 1 per visit")
		}
	})

	t.Run("duration budget", func(t *testing.T) {
		m := NewMCTS(WithDuration(20*time.Millisecond), WithSeed(5), WithMetrics())
		_, metric := m.Search(dealt(0, hand0, hand1), 0)
		require.Positive(t, metric.Iterations)
	})

	t.Run("three players cross other hands", func(t *testing.T) {
		b := dealt(1, hand0, hand1, hand2)
		b.HintGiven(0, 2, []int{0}, game.ColorHint, int(game.Red))
		b.HintGiven(2, 0, []int{4}, game.RankHint, 1)
		for _, gen := range []Generator{rules.Exhaustive{}, rules.NewSmart(rules.DefaultSmartConfig())} {
			m := NewMCTS(WithIterations(300), WithSeed(6), WithGenerator(gen))
			move, _ := m.Search(b, 1)
			require.Equal(t, 1, move.Player)
		}
	})

	t.Run("selection keeps the card accounting", func(t *testing.T) {
		b := dealt(1, hand0, hand1, hand2)
		b.HintGiven(0, 2, []int{0}, game.ColorHint, int(game.Red))
		b.HintGiven(2, 1, []int{2}, game.RankHint, 2)
		for seed := uint64(0); seed < 5; seed++ {
			m := NewMCTS(WithIterations(200), WithSeed(seed), WithGenerator(rules.Exhaustive{}), WithConsistencyChecks(), WithMetrics())
			require.True(t, m.checks)
			var metric metrics.SearchMetric
			require.NotPanics(t, func() { _, metric = m.Search(b, 1) })
			require.Equal(t, 200, metric.Iterations)
		}
	})

	t.Run("rollout failure reaches the caller", func(t *testing.T) {
		m := NewMCTS(WithIterations(5), WithSimulations(2), WithRolloutWorkers(2), WithRolloutPolicy(selfHint{}))
		require.Panics(t, func() { m.Search(dealt(0, hand0, hand1), 0) })
	})
}

// selfHint is a broken rollout policy.
type selfHint struct{}

func (selfHint) Next(s *game.SearchState, player int, rng *rand.Rand) game.Move {
	return game.HintMove(player, player, game.RankHint, 1)
}
