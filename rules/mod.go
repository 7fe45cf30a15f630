// Package rules holds the move generators and rollout policies used by the
// search.
package rules

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"hanabi/game"
)

var (
	ErrUnknownGenerator = errors.New("unknown move generator")
	ErrUnknownPolicy    = errors.New("unknown rollout policy")
)

// Policy picks the move of player during a rollout.
type Policy interface {
	Next(s *game.SearchState, player int, rng *rand.Rand) game.Move
}

// MoveFunc lists candidate moves for player.
type MoveFunc func(s *game.SearchState, player int) []game.Move

func (f MoveFunc) Moves(s *game.SearchState, player int) []game.Move {
	return f(s, player)
}

// ByName returns the generator called name, "smart" or "exhaustive".
func ByName(name string) (MoveFunc, error) {
	switch name {
	case "", "smart":
		return NewSmart(DefaultSmartConfig()).Moves, nil
	case "exhaustive":
		return Exhaustive{}.Moves, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
}

// PolicyByName returns the rollout policy called name, "heuristic" or
// "uniform". The uniform policy draws from every legal move.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "heuristic":
		return Heuristic{}, nil
	case "uniform":
		return NewUniform(Exhaustive{}.Moves), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
