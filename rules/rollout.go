package rules

import (
	"golang.org/x/exp/rand"

	"hanabi/game"
)

// Heuristic is the default rollout policy. It plays a card it knows to be
// playable, or a likely one while errors are cheap, and otherwise picks at
// random between the available action types.
type Heuristic struct{}

func (Heuristic) Next(s *game.SearchState, player int, rng *rand.Rand) game.Move {
	hand := s.Hands[player]
	playIdx := sureOrLikelyPlay(s, player, rng)

	actions := make([]game.Action, 0, 3)
	if playIdx >= 0 {
		actions = append(actions, game.Play)
	}
	if s.AvailableHints() > 0 {
		actions = append(actions, game.Hint)
	}
	if s.Hints > 0 {
		actions = append(actions, game.Discard)
	}
	if len(actions) == 0 {
		return game.PlayMove(player, rng.Intn(len(hand)))
	}

	switch actions[rng.Intn(len(actions))] {
	case game.Play:
		return game.PlayMove(player, playIdx)
	case game.Discard:
		return game.DiscardMove(player, rng.Intn(len(hand)))
	default:
		return randomHint(s, player, rng)
	}
}

// sureOrLikelyPlay returns the first fully known playable card. With fewer
// than two errors it settles for a rank-known card that extends some
// firework, and then for any card. It returns -1 when nothing qualifies.
func sureOrLikelyPlay(s *game.SearchState, player int, rng *rand.Rand) int {
	hand := s.Hands[player]
	for i, card := range hand {
		if card.FullyDetermined() && s.Playable(card) {
			return i
		}
	}
	if s.Errors >= 2 {
		return -1
	}
	for i, card := range hand {
		if !card.RankKnown || card.ColorKnown {
			continue
		}
		for _, top := range s.Board {
			if top == card.Rank-1 {
				return i
			}
		}
	}
	return rng.Intn(len(hand))
}

// randomHint reveals the rank or color of a random card held by a random
// other player.
func randomHint(s *game.SearchState, player int, rng *rand.Rand) game.Move {
	dest := (player + 1 + rng.Intn(s.NumPlayers()-1)) % s.NumPlayers()
	card := s.Hands[dest][rng.Intn(len(s.Hands[dest]))]
	if rng.Intn(2) == 0 {
		return game.HintMove(player, dest, game.RankHint, int(card.Rank))
	}
	return game.HintMove(player, dest, game.ColorHint, int(card.Color))
}

// Uniform picks uniformly among the moves of a generator, falling back to a
// random play when it proposes nothing applicable.
type Uniform struct {
	moves MoveFunc
}

func NewUniform(moves MoveFunc) Uniform {
	return Uniform{moves: moves}
}

func (u Uniform) Next(s *game.SearchState, player int, rng *rand.Rand) game.Move {
	candidates := u.moves(s, player)
	applicable := candidates[:0:0]
	for _, m := range candidates {
		if s.CanApply(m) {
			applicable = append(applicable, m)
		}
	}
	if len(applicable) == 0 {
		return game.PlayMove(player, rng.Intn(len(s.Hands[player])))
	}
	return applicable[rng.Intn(len(applicable))]
}
