package game

import (
	"fmt"
	"slices"

	"golang.org/x/exp/rand"
)

// SearchState is a determinization of a belief state: every hand holds
// concrete cards. It is mutated freely during a search iteration.
type SearchState struct {
	BeliefState
	rng         *rand.Rand
	pending     []Card // Hand saved by the last redeterminization
	pendingSeat int
}

// NewSearchState clones belief and samples the root's hand.
func NewSearchState(belief *BeliefState, rng *rand.Rand) *SearchState {
	s := &SearchState{rng: rng, pendingSeat: NoSeat}
	s.Determinize(belief)
	return s
}

// Determinize overwrites s with a fresh determinization of belief, reusing
// the buffers of s.
func (s *SearchState) Determinize(belief *BeliefState) {
	belief.copyInto(&s.BeliefState)
	s.pending = nil
	s.pendingSeat = NoSeat
	if s.Root != NoSeat {
		s.determinizeRoot()
	}
}

func (s *SearchState) determinizeRoot() {
	hand := s.Hands[s.Root]
	fresh, ok := s.redraw(hand)
	if !ok {
		panic("cannot determinize root hand: no consistent assignment found")
	}
	s.Hands[s.Root] = append(hand[:0], fresh...)
}

// CopyInto copies s into dst, keeping dst's random source. The pending saved
// hand is not carried over.
func (s *SearchState) CopyInto(dst *SearchState) {
	s.BeliefState.copyInto(&dst.BeliefState)
	dst.pending = nil
	dst.pendingSeat = NoSeat
}

// Rand returns the random source driving the state's draws.
func (s *SearchState) Rand() *rand.Rand {
	return s.rng
}

// PlayCard plays a card, drawing its replacement. A card that does not extend
// its firework is trashed and costs an error token.
func (s *SearchState) PlayCard(player, index int) {
	card := s.removeCard(player, index)
	s.drawReplacement(player)
	c := card.Color.index()
	if s.Board[c] == card.Rank-1 {
		s.Board[c] = card.Rank
		if card.Rank == MaxRank && s.Hints > 0 {
			s.Hints--
		}
		return
	}
	if s.Errors >= s.Config.MaxErrors {
		panic("cannot misplay: every error token is used")
	}
	s.Trash.Add(card)
	s.Errors++
}

// DiscardCard trashes a card, draws its replacement and frees a hint token.
func (s *SearchState) DiscardCard(player, index int) {
	if s.Hints <= 0 {
		panic("cannot discard: no hint token is used")
	}
	card := s.removeCard(player, index)
	s.Trash.Add(card)
	s.drawReplacement(player)
	s.Hints--
}

// GiveHint reveals rank or color on every matching card of destination.
func (s *SearchState) GiveHint(destination int, kind HintKind, value int) {
	if s.Hints >= s.Config.MaxHints {
		panic("cannot hint: every hint token is used")
	}
	hand := s.Hands[destination]
	for i := range hand {
		if !hand[i].matches(kind, value) {
			continue
		}
		if kind == RankHint {
			hand[i].RevealRank(0)
		} else {
			hand[i].RevealColor(NoColor)
		}
	}
	s.Hints++
}

func (s *SearchState) removeCard(player, index int) Card {
	hand := s.Hands[player]
	if index < 0 || index >= len(hand) {
		panic(fmt.Sprintf("card index %d out of range for player %d", index, player))
	}
	card := hand[index]
	s.Hands[player] = slices.Delete(hand, index, index+1)
	return card
}

func (s *SearchState) drawReplacement(player int) {
	if s.Deck.Len() == 0 {
		return
	}
	s.Hands[player] = append(s.Hands[player], s.Deck.Draw(s.rng))
	if s.DrawPile > 0 {
		s.DrawPile--
	}
}

// Apply executes a move. A seat that acts with an empty deck has taken its
// last turn and may not act again.
func (s *SearchState) Apply(m Move) {
	if s.LastTurn[m.Player] {
		panic(fmt.Sprintf("player %d already took the last turn", m.Player))
	}
	last := s.Deck.Len() == 0

	switch m.Action {
	case Play, Discard:
		if s.pending != nil && s.pendingSeat == m.Player && m.Index < len(s.pending) {
			s.pending = slices.Delete(s.pending, m.Index, m.Index+1)
		}
		if m.Action == Play {
			s.PlayCard(m.Player, m.Index)
		} else {
			s.DiscardCard(m.Player, m.Index)
		}
	case Hint:
		if m.Destination == m.Player {
			panic("a player cannot hint itself")
		}
		s.GiveHint(m.Destination, m.Kind, m.Value)
	default:
		panic(fmt.Sprintf("cannot apply move %s", m))
	}

	if last {
		s.LastTurn[m.Player] = true
	}
}

// CanApply reports whether a move is executable in this determinization.
func (s *SearchState) CanApply(m Move) bool {
	if m.Player < 0 || m.Player >= len(s.Hands) || s.LastTurn[m.Player] {
		return false
	}
	switch m.Action {
	case Play:
		return m.Index >= 0 && m.Index < len(s.Hands[m.Player])
	case Discard:
		return s.Hints > 0 && m.Index >= 0 && m.Index < len(s.Hands[m.Player])
	case Hint:
		if s.Hints >= s.Config.MaxHints || m.Destination == m.Player {
			return false
		}
		if m.Destination < 0 || m.Destination >= len(s.Hands) {
			return false
		}
		return len(Matching(s.Hands[m.Destination], m.Kind, m.Value)) > 0
	default:
		return false
	}
}

// AssertConsistency panics unless every card is accounted for exactly once.
// All hands, the root's included, hold concrete cards.
func (s *SearchState) AssertConsistency() {
	s.assertConsistency(true)
}
