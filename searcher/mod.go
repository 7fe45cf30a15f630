package searcher

import (
	"golang.org/x/exp/rand"

	"hanabi/game"
)

// Hyperparameters for MCTS

const DefaultExploration = 0.1 // UCB1 exploration constant
const DefaultSimulations = 1   // Rollouts per iteration

// Generator lists the candidate moves of player. Every returned move must be
// applicable in s.
type Generator interface {
	Moves(s *game.SearchState, player int) []game.Move
}

// RolloutPolicy picks the move of player during a rollout.
type RolloutPolicy interface {
	Next(s *game.SearchState, player int, rng *rand.Rand) game.Move
}

// reward maps a final score to [0, 1].
func reward(score float64) float64 {
	return score / game.MaxScore
}
