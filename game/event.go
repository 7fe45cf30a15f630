package game

import "fmt"

type EventKind int

const (
	CardDiscardedEvent EventKind = iota + 1
	CardPlayedEvent
	CardDrawnEvent
	HintGivenEvent
)

// Event is something a player observes happening in the real game.
type Event struct {
	Kind        EventKind `json:"kind"`
	Player      int       `json:"player"`                // Actor, or the drawing seat
	Index       int       `json:"index,omitempty"`       // Played or discarded position
	Card        Card      `json:"card"`                  // Card revealed or drawn
	Correctly   bool      `json:"correctly,omitempty"`   // Played onto the board
	Destination int       `json:"destination,omitempty"` // Hinted seat
	Indices     []int     `json:"indices,omitempty"`     // Hinted positions
	HintKind    HintKind  `json:"hint_kind,omitempty"`
	Value       int       `json:"value,omitempty"`
}

// Observe advances the belief state by one event.
func (b *BeliefState) Observe(e Event) {
	switch e.Kind {
	case CardDiscardedEvent:
		b.CardDiscarded(e.Player, e.Index, e.Card)
	case CardPlayedEvent:
		b.CardPlayed(e.Player, e.Index, e.Card, e.Correctly)
	case CardDrawnEvent:
		b.CardDrawn(e.Player, e.Card)
	case HintGivenEvent:
		b.HintGiven(e.Player, e.Destination, e.Indices, e.HintKind, e.Value)
	default:
		panic(fmt.Sprintf("unknown event kind %d", e.Kind))
	}
}

// Hidden returns the event as seen by a seat: a card drawn by that seat is
// not visible to it.
func (e Event) Hidden(seat int) Event {
	if e.Kind == CardDrawnEvent && e.Player == seat {
		e.Card = Card{}
	}
	return e
}
