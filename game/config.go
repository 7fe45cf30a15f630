package game

import (
	"fmt"
	"strings"
)

// Penalty decides the final score of a game lost to error tokens.
type Penalty int

const (
	KeepScore   Penalty = iota // Score the board as it stands
	ZeroOnStorm                // Score nothing
)

func (p Penalty) Apply(score int) int {
	switch p {
	case KeepScore:
		return score
	case ZeroOnStorm:
		return 0
	default:
		panic(fmt.Sprintf("unknown penalty %d", p))
	}
}

func ParsePenalty(s string) (Penalty, error) {
	switch strings.ToLower(s) {
	case "", "keep":
		return KeepScore, nil
	case "zero":
		return ZeroOnStorm, nil
	default:
		return KeepScore, fmt.Errorf("unknown penalty %q", s)
	}
}

// MatchConfig holds the rules that vary between matches.
type MatchConfig struct {
	Players   int     `json:"players"`
	HandSize  int     `json:"hand_size"`
	MaxHints  int     `json:"max_hints"`
	MaxErrors int     `json:"max_errors"`
	Penalty   Penalty `json:"penalty"`
}

// NewMatchConfig returns the standard rules for a number of players: five
// card hands for two or three players, four cards otherwise.
func NewMatchConfig(players int) MatchConfig {
	if players < 2 || players > 5 {
		panic(fmt.Sprintf("unsupported number of players: %d", players))
	}
	handSize := 5
	if players >= 4 {
		handSize = 4
	}
	return MatchConfig{
		Players:   players,
		HandSize:  handSize,
		MaxHints:  8,
		MaxErrors: 3,
		Penalty:   KeepScore,
	}
}

// Validate reports rules no game can be played under.
func (m MatchConfig) Validate() error {
	switch {
	case m.Players < 2 || m.Players > 5:
		return fmt.Errorf("unsupported number of players: %d", m.Players)
	case m.HandSize < 1 || m.HandSize > 5:
		return fmt.Errorf("unsupported hand size: %d", m.HandSize)
	case m.MaxHints < 1:
		return fmt.Errorf("need at least one hint token, got %d", m.MaxHints)
	case m.MaxErrors < 1:
		return fmt.Errorf("need at least one error token, got %d", m.MaxErrors)
	case m.Penalty != KeepScore && m.Penalty != ZeroOnStorm:
		return fmt.Errorf("unknown penalty %d", m.Penalty)
	}
	return nil
}

func (m MatchConfig) WithPenalty(p Penalty) MatchConfig {
	m.Penalty = p
	return m
}
