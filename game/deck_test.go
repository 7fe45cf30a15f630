package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// deckWith returns a deck holding only the given cards.
func deckWith(cards ...Card) Deck {
	d := Deck{}
	for _, card := range cards {
		d.table[card.Rank.index()][card.Color.index()]++
	}
	return d
}

func TestDeck(t *testing.T) {
	t.Run("new deck holds every card", func(t *testing.T) {
		d := NewDeck()
		require.Equal(t, TotalCards, d.Len())
		require.Equal(t, 3, d.Count(1, Red))
		require.Equal(t, 1, d.Count(5, White))
	})

	t.Run("remove and add adjust the table", func(t *testing.T) {
		d := NewDeck()
		d.Remove(NewCard(1, Red), NewCard(5, Blue))
		require.Equal(t, 48, d.Len())
		require.Equal(t, 2, d.Count(1, Red))
		require.Equal(t, 0, d.Count(5, Blue))

		d.Add([]Card{NewCard(5, Blue)}, false)
		require.Equal(t, 1, d.Count(5, Blue))
	})

	t.Run("add skips fully determined cards when asked", func(t *testing.T) {
		d := NewDeck()
		d.Remove(NewCard(2, Green), NewCard(3, Green))
		known := Card{Rank: 2, Color: Green, RankKnown: true, ColorKnown: true}
		d.Add([]Card{known, NewCard(3, Green)}, true)
		require.Equal(t, 1, d.Count(2, Green))
		require.Equal(t, 2, d.Count(3, Green))
	})

	t.Run("remove from an empty cell panics", func(t *testing.T) {
		d := NewDeck()
		d.Remove(NewCard(5, Red))
		require.Panics(t, func() { d.Remove(NewCard(5, Red)) }, "Should never push a cell negative")
	})

	t.Run("add beyond quantity panics", func(t *testing.T) {
		d := NewDeck()
		require.Panics(t, func() { d.Add([]Card{NewCard(4, Yellow)}, false) })
	})

	t.Run("free draw takes one card", func(t *testing.T) {
		d := NewDeck()
		rng := newRand(1)
		for i := 0; i < TotalCards; i++ {
			card := d.Draw(rng)
			require.True(t, card.Concrete())
			require.False(t, card.RankKnown || card.ColorKnown)
		}
		require.Equal(t, 0, d.Len())
		require.Panics(t, func() { d.Draw(rng) }, "Should panic on an empty deck")
	})
}

func TestReservation(t *testing.T) {
	t.Run("draw with a known rank returns that rank", func(t *testing.T) {
		rng := newRand(7)
		for i := 0; i < 200; i++ {
			d := NewDeck()
			slot := Card{Rank: 2, RankKnown: true}
			res := d.Reserve([]Card{slot})
			card, err := res.Draw(rng, slot)
			require.NoError(t, err)
			require.Equal(t, Rank(2), card.Rank)
			require.True(t, card.RankKnown)
			require.False(t, card.ColorKnown)
			res.Close()
			require.Equal(t, TotalCards-1, d.Len())
		}
	})

	t.Run("draw with a known color returns that color", func(t *testing.T) {
		rng := newRand(8)
		for i := 0; i < 200; i++ {
			d := NewDeck()
			slot := Card{Color: Blue, ColorKnown: true}
			res := d.Reserve([]Card{slot})
			card, err := res.Draw(rng, slot)
			require.NoError(t, err)
			require.Equal(t, Blue, card.Color)
			require.True(t, card.ColorKnown)
			res.Close()
		}
	})

	t.Run("no candidate leaves the deck untouched", func(t *testing.T) {
		d := NewDeck()
		for _, color := range Colors {
			d.Remove(NewCard(5, color))
		}
		slot := Card{Rank: 5, RankKnown: true}
		res := d.Reserve([]Card{slot})
		_, err := res.Draw(newRand(1), slot)
		require.ErrorIs(t, err, ErrNoCandidate)
		res.Release()
		require.Equal(t, TotalCards-5, d.Len())
	})

	t.Run("reserved cards are not handed to other slots", func(t *testing.T) {
		for seed := uint64(0); seed < 50; seed++ {
			rng := newRand(seed)
			d := deckWith(NewCard(1, Red), NewCard(2, Red))
			hand := []Card{{}, {Rank: 2, RankKnown: true}}
			res := d.Reserve(hand)

			first, err := res.Draw(rng, hand[0])
			require.NoError(t, err)
			require.Equal(t, NewCard(1, Red), first, "Should leave the 2 to the slot that knows it")

			second, err := res.Draw(rng, hand[1])
			require.NoError(t, err)
			require.True(t, second.Same(NewCard(2, Red)))
			res.Close()
			require.Equal(t, 0, d.Len())
		}
	})

	t.Run("masking repeats until stable", func(t *testing.T) {
		// Hiding the reserved blue column exposes the reserved 3 row
		for seed := uint64(0); seed < 50; seed++ {
			rng := newRand(seed)
			d := deckWith(NewCard(3, Red), NewCard(3, Blue), NewCard(1, Green))
			hand := []Card{{}, {Color: Blue, ColorKnown: true}, {Rank: 3, RankKnown: true}}
			res := d.Reserve(hand)
			first, err := res.Draw(rng, hand[0])
			require.NoError(t, err)
			require.Equal(t, NewCard(1, Green), first)
			res.Release()
		}
	})

	t.Run("fixed rank draw keeps other slots satisfiable", func(t *testing.T) {
		d := deckWith(NewCard(1, Red), NewCard(2, Red), NewCard(2, Blue))
		hand := []Card{{Rank: 2, RankKnown: true}, {Color: Red, ColorKnown: true}, {Rank: 1, RankKnown: true}}
		d.Reserve(hand)
		table := d.masked(2, NoColor)
		require.Zero(t, table.rowSum(0), "The promised 1 row is hidden")
		require.Zero(t, table.colSum(Red.index()), "Red is left for the red slot")
		require.Equal(t, 1, table[1][Blue.index()])
		d.release()

		for seed := uint64(0); seed < 50; seed++ {
			rng := newRand(seed)
			d := deckWith(NewCard(1, Red), NewCard(2, Red), NewCard(2, Blue))
			res := d.Reserve(hand)
			var drawn []Card
			for _, slot := range hand {
				card, err := res.Draw(rng, slot)
				require.NoError(t, err)
				drawn = append(drawn, NewCard(card.Rank, card.Color))
			}
			res.Close()
			require.Equal(t, []Card{NewCard(2, Blue), NewCard(2, Red), NewCard(1, Red)}, drawn)
		}
	})

	t.Run("both attributes fixed panics", func(t *testing.T) {
		d := NewDeck()
		slot := Card{Rank: 1, Color: Red, RankKnown: true, ColorKnown: true}
		res := d.Reserve(nil)
		require.Panics(t, func() { _, _ = res.Draw(newRand(1), slot) })
	})

	t.Run("reserve twice panics", func(t *testing.T) {
		d := NewDeck()
		d.Reserve([]Card{{Rank: 1, RankKnown: true}})
		require.Panics(t, func() { d.Reserve(nil) }, "Should require the previous reservation to be released")
	})

	t.Run("free draw while reserving panics", func(t *testing.T) {
		d := NewDeck()
		d.Reserve(nil)
		require.Panics(t, func() { d.Draw(newRand(1)) })
	})

	t.Run("close with undrawn reservations panics", func(t *testing.T) {
		d := NewDeck()
		res := d.Reserve([]Card{{Color: Red, ColorKnown: true}})
		require.Panics(t, func() { res.Close() })
	})

	t.Run("released deck can reserve again", func(t *testing.T) {
		d := NewDeck()
		res := d.Reserve([]Card{{Color: Red, ColorKnown: true}})
		res.Release()
		require.NotPanics(t, func() { d.Reserve(nil).Close() })
	})
}

func TestTrash(t *testing.T) {
	t.Run("last copy collapses the maximum", func(t *testing.T) {
		trash := NewTrash()
		require.Equal(t, MaxRank, trash.Max(Red))
		trash.Add(NewCard(5, Red))
		require.Equal(t, Rank(4), trash.Max(Red))
		require.Equal(t, 0, trash.Remaining(5, Red))
	})

	t.Run("maximum drops only when every copy is gone", func(t *testing.T) {
		trash := NewTrash()
		trash.Add(NewCard(1, Blue))
		trash.Add(NewCard(1, Blue))
		require.Equal(t, MaxRank, trash.Max(Blue))
		trash.Add(NewCard(1, Blue))
		require.Equal(t, Rank(0), trash.Max(Blue))
		require.Len(t, trash.Cards(), 3)
	})

	t.Run("maximum keeps the lowest collapse", func(t *testing.T) {
		trash := NewTrash()
		trash.Add(NewCard(2, Green))
		trash.Add(NewCard(2, Green))
		trash.Add(NewCard(5, Green))
		require.Equal(t, Rank(1), trash.Max(Green))
	})
}
