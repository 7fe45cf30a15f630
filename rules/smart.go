package rules

import (
	"slices"

	"hanabi/game"
)

// SmartConfig holds the thresholds of the Smart generator.
type SmartConfig struct {
	PlaySafe     float64 // minimum probability to play a card
	PlaySafeLate float64 // same, once the deck runs low
	LateDeck     int     // deck size at or below which PlaySafeLate applies
	Discard      float64 // minimum probability that a discard is useless
	Expend       float64 // minimum probability that a discard is not the last copy
	MinUsedHints int     // used tokens required for a blind discard
}

func DefaultSmartConfig() SmartConfig {
	return SmartConfig{
		PlaySafe:     0.7,
		PlaySafeLate: 0.4,
		LateDeck:     5,
		Discard:      0.8,
		Expend:       0.9,
		MinUsedHints: 2,
	}
}

// Smart generates a small candidate set from fixed play, discard and hint
// rules. Every rule proposes at most one move, duplicates are dropped and
// every candidate is legal in the state it was generated for.
type Smart struct {
	config SmartConfig
}

func NewSmart(config SmartConfig) *Smart {
	return &Smart{config: config}
}

type rule func(g *Smart, s *game.SearchState, player int) (game.Move, bool)

var smartRules = []rule{
	(*Smart).tellMostInformation,
	tellAnyone(playable),
	tellAnyone(discardable),
	tellAnyone(risky),
	completeTellAnyone(playable),
	completeTellAnyone(discardable),
	completeTellAnyone(unplayable),
	(*Smart).playProbablySafe,
	(*Smart).playProbablySafeLate,
	(*Smart).discardProbablyUseless,
}

func (g *Smart) Moves(s *game.SearchState, player int) []game.Move {
	moves := make([]game.Move, 0, len(smartRules))
	for _, r := range smartRules {
		m, ok := r(g, s, player)
		if !ok || slices.Contains(moves, m) {
			continue
		}
		moves = append(moves, m)
	}
	return moves
}

// tellMostInformation gives the hint that reveals a new attribute on the
// most cards. Seats are scanned in turn order starting after player, ranks
// before colors, and the first best hint wins.
func (g *Smart) tellMostInformation(s *game.SearchState, player int) (game.Move, bool) {
	if s.AvailableHints() == 0 {
		return game.Move{}, false
	}

	var best game.Move
	bestCount := 0
	for dest := s.NextPlayer(player); dest != player; dest = s.NextPlayer(dest) {
		hand := s.Hands[dest]
		for r := 1; r <= game.NumRanks; r++ {
			count := 0
			for _, card := range hand {
				if !card.RankKnown && int(card.Rank) == r {
					count++
				}
			}
			if count > bestCount {
				best, bestCount = game.HintMove(player, dest, game.RankHint, r), count
			}
		}
		for _, color := range game.Colors {
			count := 0
			for _, card := range hand {
				if !card.ColorKnown && card.Color == color {
					count++
				}
			}
			if count > bestCount {
				best, bestCount = game.HintMove(player, dest, game.ColorHint, int(color)), count
			}
		}
	}
	return best, bestCount > 0
}

// tellAnyone hints the first card of another player that satisfies cond and
// is not fully known, revealing its rank first.
func tellAnyone(cond condition) rule {
	return func(g *Smart, s *game.SearchState, player int) (game.Move, bool) {
		if s.AvailableHints() == 0 {
			return game.Move{}, false
		}
		for dest := s.NextPlayer(player); dest != player; dest = s.NextPlayer(dest) {
			for _, card := range s.Hands[dest] {
				if card.FullyDetermined() || !cond(card, &s.BeliefState) {
					continue
				}
				return revealMissing(player, dest, card), true
			}
		}
		return game.Move{}, false
	}
}

// completeTellAnyone completes the first half-known card of another player
// that satisfies cond.
func completeTellAnyone(cond condition) rule {
	return func(g *Smart, s *game.SearchState, player int) (game.Move, bool) {
		if s.AvailableHints() == 0 {
			return game.Move{}, false
		}
		for dest := s.NextPlayer(player); dest != player; dest = s.NextPlayer(dest) {
			for _, card := range s.Hands[dest] {
				if !card.SemiDetermined() || !cond(card, &s.BeliefState) {
					continue
				}
				return revealMissing(player, dest, card), true
			}
		}
		return game.Move{}, false
	}
}

func revealMissing(player, dest int, card game.Card) game.Move {
	if !card.RankKnown {
		return game.HintMove(player, dest, game.RankHint, int(card.Rank))
	}
	return game.HintMove(player, dest, game.ColorHint, int(card.Color))
}

func (g *Smart) playProbablySafe(s *game.SearchState, player int) (game.Move, bool) {
	return playAbove(s, player, g.config.PlaySafe)
}

func (g *Smart) playProbablySafeLate(s *game.SearchState, player int) (game.Move, bool) {
	if s.Deck.Len() > g.config.LateDeck {
		return game.Move{}, false
	}
	return playAbove(s, player, g.config.PlaySafeLate)
}

func playAbove(s *game.SearchState, player int, threshold float64) (game.Move, bool) {
	idx, p := argmax(probabilities(&s.BeliefState, player, playable))
	if idx < 0 || p < threshold {
		return game.Move{}, false
	}
	return game.PlayMove(player, idx), true
}

// discardProbablyUseless discards the card most likely to be useless. When no
// card is likely enough it falls back to the card most likely to have a spare
// copy, and then to the oldest card of unknown rank once enough tokens are
// used.
func (g *Smart) discardProbablyUseless(s *game.SearchState, player int) (game.Move, bool) {
	if s.Hints == 0 {
		return game.Move{}, false
	}
	if idx, p := argmax(probabilities(&s.BeliefState, player, discardable)); idx >= 0 && p >= g.config.Discard {
		return game.DiscardMove(player, idx), true
	}
	if idx, p := argmax(probabilities(&s.BeliefState, player, expendable)); idx >= 0 && p >= g.config.Expend {
		return game.DiscardMove(player, idx), true
	}
	if s.Hints < g.config.MinUsedHints {
		return game.Move{}, false
	}
	for i, card := range s.Hands[player] {
		if !card.RankKnown {
			return game.DiscardMove(player, i), true
		}
	}
	return game.DiscardMove(player, 0), true
}
