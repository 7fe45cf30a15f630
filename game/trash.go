package game

import "fmt"

// Trash is the discard pile. remaining counts the copies of each card that
// have not been trashed yet and maxima tracks, per color, the highest rank
// that can still be played.
type Trash struct {
	cards     []Card
	remaining Table
	maxima    [NumColors]Rank
}

func NewTrash() Trash {
	t := Trash{remaining: FullTable()}
	for c := range t.maxima {
		t.maxima[c] = MaxRank
	}
	return t
}

func (t *Trash) Add(card Card) {
	r, c := card.Rank.index(), card.Color.index()
	if t.remaining[r][c] <= 0 {
		panic(fmt.Sprintf("cannot trash %s: every copy is already trashed", card))
	}
	t.cards = append(t.cards, card)
	t.remaining[r][c]--
	if t.remaining[r][c] == 0 && card.Rank-1 < t.maxima[c] {
		t.maxima[c] = card.Rank - 1
	}
}

// Cards returns the trashed cards in discard order.
func (t *Trash) Cards() []Card {
	return t.cards
}

func (t *Trash) Len() int {
	return len(t.cards)
}

// Remaining returns the number of copies of a card not yet trashed.
func (t *Trash) Remaining(rank Rank, color Color) int {
	return t.remaining.At(rank, color)
}

// Max returns the highest rank still reachable for a color.
func (t *Trash) Max(color Color) Rank {
	return t.maxima[color.index()]
}

func (t *Trash) copyInto(dst *Trash) {
	dst.cards = append(dst.cards[:0], t.cards...)
	dst.remaining = t.remaining
	dst.maxima = t.maxima
}
