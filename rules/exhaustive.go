package rules

import "hanabi/game"

// Exhaustive generates every legal move: all plays, all discards while a
// hint token is used, and every rank or color hint that touches a card of
// another player while a token is available.
type Exhaustive struct{}

func (Exhaustive) Moves(s *game.SearchState, player int) []game.Move {
	hand := s.Hands[player]
	moves := make([]game.Move, 0, 2*len(hand)+10*(s.NumPlayers()-1))

	for i := range hand {
		moves = append(moves, game.PlayMove(player, i))
	}
	if s.Hints > 0 {
		for i := range hand {
			moves = append(moves, game.DiscardMove(player, i))
		}
	}
	if s.AvailableHints() > 0 {
		for dest := s.NextPlayer(player); dest != player; dest = s.NextPlayer(dest) {
			moves = append(moves, hints(player, dest, s.Hands[dest])...)
		}
	}
	return moves
}

func hints(player, dest int, hand []game.Card) []game.Move {
	var ranks [game.NumRanks + 1]bool
	var colors [game.NumColors + 1]bool
	for _, card := range hand {
		ranks[card.Rank] = true
		colors[card.Color] = true
	}

	var moves []game.Move
	for r := 1; r <= game.NumRanks; r++ {
		if ranks[r] {
			moves = append(moves, game.HintMove(player, dest, game.RankHint, r))
		}
	}
	for _, color := range game.Colors {
		if colors[color] {
			moves = append(moves, game.HintMove(player, dest, game.ColorHint, int(color)))
		}
	}
	return moves
}
