package game

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInconsistent = errors.New("inconsistent game snapshot")

// Snapshot is the wire form of a belief state. The deck is not transmitted:
// it is whatever the other fields do not account for.
type Snapshot struct {
	Config   MatchConfig `json:"config"`
	Players  []string    `json:"players"`
	Root     int         `json:"root"`
	Hands    [][]Card    `json:"hands"`
	Board    []Rank      `json:"board"`
	Hints    int         `json:"hints"`
	Errors   int         `json:"errors"`
	Trash    []Card      `json:"trash"`
	DrawPile int         `json:"draw_pile"`
	LastTurn []bool      `json:"last_turn,omitempty"`
}

func (b *BeliefState) Snapshot() Snapshot {
	hands := make([][]Card, len(b.Hands))
	for i, hand := range b.Hands {
		hands[i] = slices.Clone(hand)
	}
	return Snapshot{
		Config:   b.Config,
		Players:  slices.Clone(b.Players),
		Root:     b.Root,
		Hands:    hands,
		Board:    slices.Clone(b.Board[:]),
		Hints:    b.Hints,
		Errors:   b.Errors,
		Trash:    slices.Clone(b.Trash.Cards()),
		DrawPile: b.DrawPile,
		LastTurn: slices.Clone(b.LastTurn),
	}
}

// FromSnapshot rebuilds a belief state, deriving the deck from the cards the
// snapshot places elsewhere.
func FromSnapshot(snap Snapshot) (*BeliefState, error) {
	if err := snap.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistent, err)
	}
	n := len(snap.Players)
	if n < 2 || n > 5 || snap.Config.Players != n {
		return nil, fmt.Errorf("%w: %d players for a %d player match", ErrInconsistent, n, snap.Config.Players)
	}
	if snap.Root != NoSeat && (snap.Root < 0 || snap.Root >= n) {
		return nil, fmt.Errorf("%w: root seat %d", ErrInconsistent, snap.Root)
	}
	if len(snap.Hands) != n {
		return nil, fmt.Errorf("%w: %d hands for %d players", ErrInconsistent, len(snap.Hands), n)
	}
	if len(snap.Board) != NumColors {
		return nil, fmt.Errorf("%w: board has %d stacks", ErrInconsistent, len(snap.Board))
	}
	if snap.Hints < 0 || snap.Hints > snap.Config.MaxHints || snap.Errors < 0 || snap.Errors > snap.Config.MaxErrors {
		return nil, fmt.Errorf("%w: tokens out of range", ErrInconsistent)
	}

	b := NewBeliefState(snap.Config, snap.Players, snap.Root)
	b.Hints = snap.Hints
	b.Errors = snap.Errors
	b.DrawPile = snap.DrawPile
	if snap.LastTurn != nil {
		if len(snap.LastTurn) != n {
			return nil, fmt.Errorf("%w: last turn flags for %d players", ErrInconsistent, len(snap.LastTurn))
		}
		copy(b.LastTurn, snap.LastTurn)
	}

	placed := Table{}
	place := func(card Card) error {
		if card.Rank < 1 || card.Rank > MaxRank || card.Color < Red || card.Color > White {
			return fmt.Errorf("%w: card %s", ErrInconsistent, card)
		}
		placed[card.Rank.index()][card.Color.index()]++
		return nil
	}

	for c, top := range snap.Board {
		if top < 0 || top > MaxRank {
			return nil, fmt.Errorf("%w: board rank %d", ErrInconsistent, top)
		}
		b.Board[c] = top
		for r := Rank(1); r <= top; r++ {
			if err := place(NewCard(r, Colors[c])); err != nil {
				return nil, err
			}
		}
	}
	for seat, hand := range snap.Hands {
		for _, card := range hand {
			if seat == snap.Root && !card.FullyDetermined() {
				if card.RankKnown && card.Rank == 0 || card.ColorKnown && card.Color == NoColor {
					return nil, fmt.Errorf("%w: root card %s", ErrInconsistent, card)
				}
				continue
			}
			if err := place(card); err != nil {
				return nil, err
			}
		}
		b.Hands[seat] = slices.Clone(hand)
	}
	for _, card := range snap.Trash {
		if err := place(card); err != nil {
			return nil, err
		}
	}

	full := FullTable()
	for r := range full {
		for c := range full[r] {
			if placed[r][c] > full[r][c] {
				return nil, fmt.Errorf("%w: %d copies of %s", ErrInconsistent, placed[r][c], NewCard(Rank(r+1), Colors[c]))
			}
			b.Deck.table[r][c] = full[r][c] - placed[r][c]
		}
	}
	for _, card := range snap.Trash {
		b.Trash.Add(card)
	}

	hidden := 0
	if b.Root != NoSeat {
		for _, card := range b.Hands[b.Root] {
			if !card.FullyDetermined() {
				hidden++
			}
		}
	}
	if b.Deck.Len()-hidden != b.DrawPile {
		return nil, fmt.Errorf("%w: draw pile of %d, %d unseen cards", ErrInconsistent, b.DrawPile, b.Deck.Len()-hidden)
	}
	return b, nil
}
