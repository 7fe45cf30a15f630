package rules

import "hanabi/game"

// condition classifies a concrete card against the board and trash.
type condition func(card game.Card, s *game.BeliefState) bool

func playable(card game.Card, s *game.BeliefState) bool {
	return s.Playable(card)
}

// discardable cards are already played or can no longer be played.
func discardable(card game.Card, s *game.BeliefState) bool {
	return s.Board[colorIndex(card.Color)] >= card.Rank || s.Trash.Max(card.Color) < card.Rank
}

func unplayable(card game.Card, s *game.BeliefState) bool {
	return !playable(card, s) && !discardable(card, s)
}

// expendable cards are not the last copy of their kind.
func expendable(card game.Card, s *game.BeliefState) bool {
	return s.Trash.Remaining(card.Rank, card.Color) > 1
}

// risky cards are the last copy of their kind.
func risky(card game.Card, s *game.BeliefState) bool {
	return s.Trash.Remaining(card.Rank, card.Color) == 1
}

func colorIndex(c game.Color) int {
	return int(c) - 1
}

// mentalState returns the cards player cannot locate: the deck plus the
// player's own hand.
func mentalState(s *game.BeliefState, player int) game.Table {
	table := s.Deck.Table()
	for _, card := range s.Hands[player] {
		table[int(card.Rank)-1][colorIndex(card.Color)]++
	}
	return table
}

// probabilities returns, for each card of hand, the chance that it satisfies
// cond given what its owner knows about it.
func probabilities(s *game.BeliefState, player int, cond condition) []float64 {
	mental := mentalState(s, player)
	hand := s.Hands[player]
	probs := make([]float64, len(hand))
	for i, card := range hand {
		total, matching := 0, 0
		for r := 0; r < game.NumRanks; r++ {
			if card.RankKnown && r != int(card.Rank)-1 {
				continue
			}
			for c := 0; c < game.NumColors; c++ {
				if card.ColorKnown && c != colorIndex(card.Color) {
					continue
				}
				n := mental[r][c]
				if n == 0 {
					continue
				}
				total += n
				if cond(game.NewCard(game.Rank(r+1), game.Colors[c]), s) {
					matching += n
				}
			}
		}
		if total > 0 {
			probs[i] = float64(matching) / float64(total)
		}
	}
	return probs
}

// argmax returns the first index holding the largest value.
func argmax(values []float64) (int, float64) {
	best, max := -1, -1.0
	for i, v := range values {
		if v > max {
			best, max = i, v
		}
	}
	return best, max
}
