package game

import "fmt"

// Card is a card as seen by the model of one player. Rank and Color hold the
// identity when it is known to the model; RankKnown and ColorKnown record what
// the hand's owner has been told.
type Card struct {
	Rank       Rank  `json:"rank"`
	Color      Color `json:"color"`
	RankKnown  bool  `json:"rank_known"`
	ColorKnown bool  `json:"color_known"`
}

func NewCard(rank Rank, color Color) Card {
	return Card{Rank: rank, Color: color}
}

// FullyDetermined reports whether the owner knows both rank and color.
func (c Card) FullyDetermined() bool {
	return c.RankKnown && c.ColorKnown
}

// SemiDetermined reports whether the owner knows exactly one attribute.
func (c Card) SemiDetermined() bool {
	return c.RankKnown != c.ColorKnown
}

// Concrete reports whether both rank and color are resolved to values.
func (c Card) Concrete() bool {
	return c.Rank != 0 && c.Color != NoColor
}

// Same compares identities, ignoring knowledge flags.
func (c Card) Same(other Card) bool {
	return c.Rank == other.Rank && c.Color == other.Color
}

// couldBe reports whether the attributes known of c allow it to be card.
func (c Card) couldBe(card Card) bool {
	return (!c.RankKnown || c.Rank == card.Rank) && (!c.ColorKnown || c.Color == card.Color)
}

// RevealRank marks the rank as known. A zero rank reveals the current value.
func (c *Card) RevealRank(rank Rank) {
	if rank != 0 {
		if c.Rank != 0 && c.Rank != rank {
			panic(fmt.Sprintf("cannot reveal rank %d: card already has rank %d", rank, c.Rank))
		}
		c.Rank = rank
	} else if c.Rank == 0 {
		panic("cannot reveal rank: card has no rank")
	}
	c.RankKnown = true
}

// RevealColor marks the color as known. NoColor reveals the current value.
func (c *Card) RevealColor(color Color) {
	if color != NoColor {
		if c.Color != NoColor && c.Color != color {
			panic(fmt.Sprintf("cannot reveal color %s: card already has color %s", color, c.Color))
		}
		c.Color = color
	} else if c.Color == NoColor {
		panic("cannot reveal color: card has no color")
	}
	c.ColorKnown = true
}

func (c Card) String() string {
	rank := "?"
	if c.Rank != 0 {
		rank = fmt.Sprint(int(c.Rank))
	}
	return fmt.Sprintf("(%s,%s)", rank, c.Color)
}

// Matching returns the positions in hand that a hint of kind and value touches.
func Matching(hand []Card, kind HintKind, value int) []int {
	var indices []int
	for i, card := range hand {
		if card.matches(kind, value) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (c Card) matches(kind HintKind, value int) bool {
	switch kind {
	case RankHint:
		return c.Rank != 0 && int(c.Rank) == value
	case ColorHint:
		return c.Color != NoColor && int(c.Color) == value
	default:
		panic(fmt.Sprintf("unknown hint kind %d", kind))
	}
}
