package game

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
)

// ErrNoCandidate is returned when no card in the deck is consistent with a draw.
var ErrNoCandidate = errors.New("no consistent card available")

const maxMaskPasses = 100

// Deck counts the cards whose location is not resolved, plus the ranks and
// colors earmarked for semi-determined cards of a batch being redrawn.
type Deck struct {
	table          Table
	reservedRanks  [NumRanks]int
	reservedColors [NumColors]int
	reserving      bool
}

func NewDeck() Deck {
	return Deck{table: FullTable()}
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return d.table.Sum()
}

func (d *Deck) Count(rank Rank, color Color) int {
	return d.table.At(rank, color)
}

// Table returns a copy of the count table.
func (d *Deck) Table() Table {
	return d.table
}

func (d *Deck) Remove(cards ...Card) {
	for _, card := range cards {
		r, c := card.Rank.index(), card.Color.index()
		if d.table[r][c] <= 0 {
			panic(fmt.Sprintf("cannot remove %s: none left in deck", card))
		}
		d.table[r][c]--
	}
}

// Add returns cards to the deck. Fully determined cards are skipped when
// skipFullyDetermined is set.
func (d *Deck) Add(cards []Card, skipFullyDetermined bool) {
	for _, card := range cards {
		if skipFullyDetermined && card.FullyDetermined() {
			continue
		}
		r, c := card.Rank.index(), card.Color.index()
		if d.table[r][c] >= Quantities[r] {
			panic(fmt.Sprintf("cannot add %s: deck already holds every copy", card))
		}
		d.table[r][c]++
	}
}

// Draw takes a uniformly random card. It must not be called while a
// reservation is outstanding.
func (d *Deck) Draw(rng *rand.Rand) Card {
	if d.reserving {
		panic("cannot draw freely while a reservation is outstanding")
	}
	card, err := d.sample(rng, d.table, 0, NoColor)
	if err != nil {
		panic("cannot draw from an empty deck")
	}
	d.table[card.Rank.index()][card.Color.index()]--
	return card
}

// Reserve earmarks the known rank or color of every semi-determined card in
// hand and returns the reservation through which the batch is drawn.
func (d *Deck) Reserve(hand []Card) *Reservation {
	if d.reserving {
		panic("cannot reserve: previous reservation was not released")
	}
	d.reserving = true
	for _, card := range hand {
		if card.FullyDetermined() {
			continue
		}
		if card.RankKnown {
			d.reservedRanks[card.Rank.index()]++
		} else if card.ColorKnown {
			d.reservedColors[card.Color.index()]++
		}
	}
	return &Reservation{deck: d}
}

func (d *Deck) release() {
	d.reservedRanks = [NumRanks]int{}
	d.reservedColors = [NumColors]int{}
	d.reserving = false
}

// masked hides every row and column whose remaining cards are all promised
// to reserved slots. The fixed rank and color are never hidden.
//
// Rows other than a fixed rank are still masked even though the draw never
// comes from them: zeroing them lowers the column sums, so a column whose
// leftover cards are needed by color slots is closed to this draw as well.
// This can hide more than necessary. redrawBatch retries when it does.
func (d *Deck) masked(rank Rank, color Color) Table {
	table := d.table
	for pass := 0; ; pass++ {
		if pass > maxMaskPasses {
			panic("deck masking did not stabilize")
		}
		changed := false
		for r := 0; r < NumRanks; r++ {
			if rank != 0 && r == rank.index() {
				continue
			}
			if sum := table.rowSum(r); sum != 0 && sum <= d.reservedRanks[r] {
				table.zeroRow(r)
				changed = true
			}
		}
		for c := 0; c < NumColors; c++ {
			if color != NoColor && c == color.index() {
				continue
			}
			if sum := table.colSum(c); sum != 0 && sum <= d.reservedColors[c] {
				table.zeroCol(c)
				changed = true
			}
		}
		if !changed {
			return table
		}
	}
}

// sample picks a cell weighted by count, restricted to rank and color when set.
func (d *Deck) sample(rng *rand.Rand, table Table, rank Rank, color Color) (Card, error) {
	total := 0
	for r := 0; r < NumRanks; r++ {
		for c := 0; c < NumColors; c++ {
			if allowed(r, c, rank, color) {
				total += table[r][c]
			}
		}
	}
	if total == 0 {
		return Card{}, ErrNoCandidate
	}
	n := rng.Intn(total)
	for r := 0; r < NumRanks; r++ {
		for c := 0; c < NumColors; c++ {
			if !allowed(r, c, rank, color) {
				continue
			}
			if n < table[r][c] {
				return NewCard(Rank(r+1), Colors[c]), nil
			}
			n -= table[r][c]
		}
	}
	panic("unreachable")
}

func allowed(r, c int, rank Rank, color Color) bool {
	return (rank == 0 || r == rank.index()) && (color == NoColor || c == color.index())
}

// Reservation is the token for one batch of constrained draws.
type Reservation struct {
	deck *Deck
	done bool
}

// Draw resolves a slot, keeping whichever of its attributes the owner knows.
// Slots with no known attribute are drawn from the masked deck.
func (r *Reservation) Draw(rng *rand.Rand, slot Card) (Card, error) {
	if r.done {
		panic("draw on a closed reservation")
	}
	if slot.FullyDetermined() {
		panic("cannot draw a card with both rank and color fixed")
	}
	d := r.deck
	var rank Rank
	var color Color
	if slot.RankKnown {
		rank = slot.Rank
	} else if slot.ColorKnown {
		color = slot.Color
	}

	table := d.masked(rank, color)
	card, err := d.sample(rng, table, rank, color)
	if err != nil {
		return Card{}, err
	}

	if rank != 0 {
		if d.reservedRanks[rank.index()] <= 0 {
			panic(fmt.Sprintf("no card with rank %d was reserved", rank))
		}
		d.reservedRanks[rank.index()]--
	} else if color != NoColor {
		if d.reservedColors[color.index()] <= 0 {
			panic(fmt.Sprintf("no card with color %s was reserved", color))
		}
		d.reservedColors[color.index()]--
	}
	d.table[card.Rank.index()][card.Color.index()]--
	card.RankKnown = slot.RankKnown
	card.ColorKnown = slot.ColorKnown
	return card, nil
}

// Release abandons the batch and clears all outstanding reservations.
func (r *Reservation) Release() {
	if r.done {
		return
	}
	r.done = true
	r.deck.release()
}

// Close ends a completed batch. Every reservation must have been drawn.
func (r *Reservation) Close() {
	if r.done {
		panic("reservation already closed")
	}
	for _, n := range r.deck.reservedRanks {
		if n != 0 {
			panic("reservation closed with undrawn ranks")
		}
	}
	for _, n := range r.deck.reservedColors {
		if n != 0 {
			panic("reservation closed with undrawn colors")
		}
	}
	r.Release()
}
