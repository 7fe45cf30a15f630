package game

import (
	"errors"
	"fmt"
	"slices"
)

const maxRedrawAttempts = 100

// redraw resolves every card of hand that is not fully determined, keeping
// known attributes. The cards must already be counted in the deck. A batch
// that runs out of consistent cards is undone and drawn again from scratch.
func (s *SearchState) redraw(hand []Card) ([]Card, bool) {
	fresh := make([]Card, len(hand))
	for attempt := 0; attempt < maxRedrawAttempts; attempt++ {
		if s.redrawBatch(hand, fresh) {
			return fresh, true
		}
	}
	return nil, false
}

func (s *SearchState) redrawBatch(hand, fresh []Card) bool {
	reservation := s.Deck.Reserve(hand)
	for i, slot := range hand {
		if slot.FullyDetermined() {
			fresh[i] = slot
			continue
		}
		card, err := reservation.Draw(s.rng, slot)
		if errors.Is(err, ErrNoCandidate) {
			reservation.Release()
			s.Deck.Add(fresh[:i], true)
			return false
		}
		fresh[i] = card
	}
	reservation.Close()
	return true
}

// RedeterminizeHand resamples the hand of a non-root player from that
// player's own point of view and returns the hand it replaced. Fully
// determined cards stay in place.
func (s *SearchState) RedeterminizeHand(player int) []Card {
	if s.pending != nil {
		panic("cannot redeterminize: a saved hand is already pending")
	}
	if player == s.Root {
		panic("cannot redeterminize the root player's hand")
	}
	hand := s.Hands[player]
	saved := slices.Clone(hand)

	s.Deck.Add(hand, true)
	fresh, ok := s.redraw(hand)
	if !ok {
		panic(fmt.Sprintf("cannot redeterminize hand of player %d: no consistent assignment found", player))
	}
	s.Hands[player] = fresh

	s.pending = slices.Clone(saved)
	s.pendingSeat = player
	return saved
}

// RestoreHand reinstalls a saved hand. Saved cards that are no longer
// available are resampled, and a card is drawn for a slot the player refilled
// after its move.
func (s *SearchState) RestoreHand(player int, saved []Card) {
	if s.pending == nil || s.pendingSeat != player {
		panic(fmt.Sprintf("cannot restore hand of player %d: no saved hand pending", player))
	}
	current := s.Hands[player]
	s.Deck.Add(current, false)

	restored := make([]Card, 0, len(current))
	for _, card := range saved {
		if s.Deck.Count(card.Rank, card.Color) > 0 {
			s.Deck.Remove(card)
			restored = append(restored, card)
			continue
		}
		restored = append(restored, s.resample(card))
	}
	for len(restored) < len(current) {
		restored = append(restored, s.Deck.Draw(s.rng))
	}
	s.Hands[player] = restored

	s.pending = nil
	s.pendingSeat = NoSeat
}

// resample replaces an unavailable card, keeping its known attribute when
// the deck still allows it.
func (s *SearchState) resample(slot Card) Card {
	if slot.SemiDetermined() {
		reservation := s.Deck.Reserve([]Card{slot})
		card, err := reservation.Draw(s.rng, slot)
		if err == nil {
			reservation.Close()
			return card
		}
		reservation.Release()
	}
	return s.Deck.Draw(s.rng)
}

// EnterNode prepares the hand of the player about to act. The root keeps the
// hand sampled for the whole iteration.
func (s *SearchState) EnterNode(player int) {
	if s.pending != nil {
		panic("cannot enter node: a saved hand is already pending")
	}
	if player == s.Root {
		return
	}
	s.RedeterminizeHand(player)
}

// ExitNode restores the hand of the player who just acted.
func (s *SearchState) ExitNode(player int) {
	if player == s.Root {
		return
	}
	s.RestoreHand(player, s.pending)
}

// Pending returns the seat whose saved hand awaits restoration, or NoSeat.
func (s *SearchState) Pending() int {
	return s.pendingSeat
}
