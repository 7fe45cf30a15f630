package game

import (
	"fmt"
	"slices"
)

// BeliefState is one player's knowledge of a game in progress. The root's own
// cards are unknown unless revealed; while they are not fully determined their
// identity is still counted in the deck. A root of NoSeat sees every hand.
type BeliefState struct {
	Config   MatchConfig
	Players  []string          // Names in turn order
	Root     int               // Seat of the owner of this belief
	Hands    [][]Card          // Hands indexed by seat, oldest card first
	Board    [NumColors]Rank   // Top rank of each firework
	Hints    int               // Used hint tokens
	Errors   int               // Used error tokens
	Deck     Deck              // Cards whose location is unresolved
	Trash    Trash             // Discarded and misplayed cards
	DrawPile int               // Cards left to draw in the real game
	LastTurn []bool            // Seats that acted with an empty draw pile
}

func NewBeliefState(config MatchConfig, players []string, root int) *BeliefState {
	if len(players) != config.Players {
		panic(fmt.Sprintf("expected %d players, got %d", config.Players, len(players)))
	}
	if root != NoSeat && (root < 0 || root >= len(players)) {
		panic(fmt.Sprintf("root seat %d out of range", root))
	}
	return &BeliefState{
		Config:   config,
		Players:  slices.Clone(players),
		Root:     root,
		Hands:    make([][]Card, len(players)),
		Deck:     NewDeck(),
		Trash:    NewTrash(),
		DrawPile: TotalCards,
		LastTurn: make([]bool, len(players)),
	}
}

func (b *BeliefState) NumPlayers() int {
	return len(b.Players)
}

func (b *BeliefState) NextPlayer(player int) int {
	return (player + 1) % len(b.Players)
}

func (b *BeliefState) PrevPlayer(player int) int {
	return (player + len(b.Players) - 1) % len(b.Players)
}

func (b *BeliefState) AvailableHints() int {
	return b.Config.MaxHints - b.Hints
}

// Score returns the sum of the fireworks.
func (b *BeliefState) Score() int {
	score := 0
	for _, rank := range b.Board {
		score += int(rank)
	}
	return score
}

// Playable reports whether a concrete card extends its firework.
func (b *BeliefState) Playable(card Card) bool {
	return b.Board[card.Color.index()] == card.Rank-1
}

// CardDiscarded moves a card from a hand to the trash and frees a hint token.
// The card must be concrete, even when it comes from the root's hand. Every
// mutator panics on an impossible event and leaves b untouched when it does.
func (b *BeliefState) CardDiscarded(player, index int, card Card) {
	if b.Hints <= 0 {
		panic("cannot discard: no hint token is used")
	}
	b.checkTurn(player)
	card = b.resolveCard(player, index, card)

	b.markLastTurn(player)
	b.removeCard(player, index, card)
	b.Trash.Add(card)
	b.Hints--
}

// CardPlayed moves a card from a hand to the board when played correctly and
// to the trash with an error otherwise.
func (b *BeliefState) CardPlayed(player, index int, card Card, correctly bool) {
	b.checkTurn(player)
	card = b.resolveCard(player, index, card)
	c := card.Color.index()
	if correctly {
		if card.Rank != b.Board[c]+1 || card.Rank > b.Trash.maxima[c] {
			panic(fmt.Sprintf("%s cannot be played correctly on %d", card, b.Board[c]))
		}
	} else if b.Errors >= b.Config.MaxErrors {
		panic("cannot misplay: every error token is used")
	}

	b.markLastTurn(player)
	b.removeCard(player, index, card)
	if correctly {
		b.Board[c] = card.Rank
		if card.Rank == MaxRank && b.Hints > 0 {
			b.Hints--
		}
		return
	}
	b.Trash.Add(card)
	b.Errors++
}

// CardDrawn appends a drawn card to a hand. The root draws a card it cannot
// see, which stays counted in the deck.
func (b *BeliefState) CardDrawn(player int, card Card) {
	if player < 0 || player >= len(b.Hands) {
		panic(fmt.Sprintf("no player %d", player))
	}
	if b.DrawPile <= 0 {
		panic("cannot draw: draw pile is empty")
	}
	if player == b.Root {
		if card.Rank != 0 || card.Color != NoColor {
			panic("root cannot see its own drawn card")
		}
	} else {
		if !card.Concrete() {
			panic(fmt.Sprintf("drawn card %s of player %d must be concrete", card, player))
		}
		b.Deck.Remove(card)
	}
	b.DrawPile--
	b.Hands[player] = append(b.Hands[player], card)
}

// HintGiven reveals the hinted attribute on the listed cards of destination.
func (b *BeliefState) HintGiven(source, destination int, indices []int, kind HintKind, value int) {
	if b.Hints >= b.Config.MaxHints {
		panic("cannot hint: every hint token is used")
	}
	if source == destination {
		panic("a player cannot hint itself")
	}
	if destination < 0 || destination >= len(b.Hands) {
		panic(fmt.Sprintf("no player %d", destination))
	}
	b.checkTurn(source)

	// Reveal on a copy so a contradicting hint changes nothing
	hand := slices.Clone(b.Hands[destination])
	var learned []Card
	for _, i := range indices {
		if i < 0 || i >= len(hand) {
			panic(fmt.Sprintf("hinted index %d out of range for player %d", i, destination))
		}
		card := &hand[i]
		if card.FullyDetermined() {
			continue
		}
		switch kind {
		case RankHint:
			card.RevealRank(Rank(value))
		case ColorHint:
			card.RevealColor(Color(value))
		default:
			panic(fmt.Sprintf("unknown hint kind %d", kind))
		}
		// The root learned a card, so it is no longer in its deck
		if destination == b.Root && card.FullyDetermined() {
			learned = append(learned, *card)
		}
	}
	needed := Table{}
	for _, card := range learned {
		needed[card.Rank.index()][card.Color.index()]++
		if needed[card.Rank.index()][card.Color.index()] > b.Deck.Count(card.Rank, card.Color) {
			panic(fmt.Sprintf("hint reveals %s, but none is left unseen", card))
		}
	}

	b.markLastTurn(source)
	b.Hands[destination] = hand
	b.Deck.Remove(learned...)
	b.Hints++
}

// resolveCard returns the identity of the card at index of player's hand
// without removing it. A root card that is still in the deck is revealed as
// the given card.
func (b *BeliefState) resolveCard(player, index int, card Card) Card {
	if player < 0 || player >= len(b.Hands) {
		panic(fmt.Sprintf("no player %d", player))
	}
	hand := b.Hands[player]
	if index < 0 || index >= len(hand) {
		panic(fmt.Sprintf("card index %d out of range for player %d", index, player))
	}
	held := hand[index]
	if !card.Concrete() {
		card = held
	}
	if !card.Concrete() {
		panic(fmt.Sprintf("removed card of player %d must be concrete", player))
	}
	if player == b.Root && !held.FullyDetermined() {
		if !held.couldBe(card) {
			panic(fmt.Sprintf("player %d cannot hold %s at %d, it is known as %s", player, card, index, held))
		}
		if b.Deck.Count(card.Rank, card.Color) == 0 {
			panic(fmt.Sprintf("cannot reveal %s: none left unseen", card))
		}
	} else if !held.Same(card) {
		panic(fmt.Sprintf("player %d holds %s at %d, not %s", player, held, index, card))
	}
	return card
}

// removeCard deletes a card already checked by resolveCard.
func (b *BeliefState) removeCard(player, index int, card Card) {
	hand := b.Hands[player]
	if player == b.Root && !hand[index].FullyDetermined() {
		b.Deck.Remove(card)
	}
	b.Hands[player] = slices.Delete(hand, index, index+1)
}

func (b *BeliefState) checkTurn(player int) {
	if player < 0 || player >= len(b.LastTurn) {
		panic(fmt.Sprintf("no player %d", player))
	}
	if b.DrawPile == 0 && b.LastTurn[player] {
		panic(fmt.Sprintf("player %d already took the last turn", player))
	}
}

func (b *BeliefState) markLastTurn(player int) {
	if b.DrawPile == 0 {
		b.LastTurn[player] = true
	}
}

// GameEnded reports whether the game is over and its score.
func (b *BeliefState) GameEnded() (bool, int) {
	if b.Errors >= b.Config.MaxErrors {
		return true, b.Config.Penalty.Apply(b.Score())
	}
	if b.Score() == MaxScore {
		return true, MaxScore
	}
	for _, done := range b.LastTurn {
		if !done {
			return false, 0
		}
	}
	return true, b.Score()
}

// AssertConsistency panics unless deck, trash, hands and board account for
// every card exactly once.
func (b *BeliefState) AssertConsistency() {
	b.assertConsistency(false)
}

func (b *BeliefState) assertConsistency(allHands bool) {
	table := b.Deck.Table()
	full := FullTable()

	for r := range table {
		for c := range table[r] {
			table[r][c] += full[r][c] - b.Trash.remaining[r][c]
		}
	}

	for seat, hand := range b.Hands {
		for _, card := range hand {
			if !allHands && seat == b.Root && !card.FullyDetermined() {
				continue
			}
			table[card.Rank.index()][card.Color.index()]++
		}
	}

	for c, top := range b.Board {
		for r := 0; r < int(top); r++ {
			table[r][c]++
		}
	}

	if table != full {
		panic(fmt.Sprintf("consistency failed: accounted %v, expected %v", table, full))
	}
}

// Clone returns a deep copy.
func (b *BeliefState) Clone() *BeliefState {
	dst := &BeliefState{}
	b.copyInto(dst)
	return dst
}

// copyInto copies b into dst, reusing dst's buffers where possible.
func (b *BeliefState) copyInto(dst *BeliefState) {
	dst.Config = b.Config
	dst.Players = append(dst.Players[:0], b.Players...)
	dst.Root = b.Root
	if cap(dst.Hands) < len(b.Hands) {
		dst.Hands = make([][]Card, len(b.Hands))
	}
	dst.Hands = dst.Hands[:len(b.Hands)]
	for i, hand := range b.Hands {
		dst.Hands[i] = append(dst.Hands[i][:0], hand...)
	}
	dst.Board = b.Board
	dst.Hints = b.Hints
	dst.Errors = b.Errors
	dst.Deck = b.Deck
	b.Trash.copyInto(&dst.Trash)
	dst.DrawPile = b.DrawPile
	dst.LastTurn = append(dst.LastTurn[:0], b.LastTurn...)
}
