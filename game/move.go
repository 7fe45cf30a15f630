package game

import (
	"fmt"
	"strings"
)

// Action is the kind of a move.
type Action int

const (
	NoAction Action = iota // Placeholder held by a search root
	Play
	Discard
	Hint
)

var actionNames = [...]string{"none", "play", "discard", "hint"}

func (a Action) String() string {
	if a < NoAction || a > Hint {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

func (a Action) MarshalText() ([]byte, error) {
	if a < NoAction || a > Hint {
		return nil, fmt.Errorf("unknown action %d", int(a))
	}
	return []byte(actionNames[a]), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	for i, name := range actionNames {
		if strings.EqualFold(name, string(text)) {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", text)
}

type HintKind int

const (
	NoHint HintKind = iota
	RankHint
	ColorHint
)

var hintNames = [...]string{"", "rank", "color"}

func (k HintKind) String() string {
	if k < NoHint || k > ColorHint {
		return fmt.Sprintf("HintKind(%d)", int(k))
	}
	return hintNames[k]
}

func (k HintKind) MarshalText() ([]byte, error) {
	if k < NoHint || k > ColorHint {
		return nil, fmt.Errorf("unknown hint kind %d", int(k))
	}
	return []byte(hintNames[k]), nil
}

func (k *HintKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "":
		*k = NoHint
	case "rank", "value":
		*k = RankHint
	case "color":
		*k = ColorHint
	default:
		return fmt.Errorf("unknown hint kind %q", text)
	}
	return nil
}

// Move is a play, discard or hint. Fields that do not apply to the action are
// zero so that moves compare with ==.
type Move struct {
	Player      int      `json:"player"`
	Action      Action   `json:"action"`
	Index       int      `json:"index,omitempty"`       // Play and discard
	Destination int      `json:"destination,omitempty"` // Hint
	Kind        HintKind `json:"kind,omitempty"`        // Hint
	Value       int      `json:"value,omitempty"`       // Rank, or Color as int
}

func PlayMove(player, index int) Move {
	return Move{Player: player, Action: Play, Index: index}
}

func DiscardMove(player, index int) Move {
	return Move{Player: player, Action: Discard, Index: index}
}

func HintMove(player, destination int, kind HintKind, value int) Move {
	return Move{Player: player, Action: Hint, Destination: destination, Kind: kind, Value: value}
}

// Placeholder is a move with no action, attributed to the seat that acted last.
func Placeholder(player int) Move {
	return Move{Player: player, Action: NoAction}
}

func (m Move) String() string {
	switch m.Action {
	case Play, Discard:
		return fmt.Sprintf("p%d %s #%d", m.Player, m.Action, m.Index)
	case Hint:
		value := fmt.Sprint(m.Value)
		if m.Kind == ColorHint {
			value = Color(m.Value).String()
		}
		return fmt.Sprintf("p%d hint p%d %s=%s", m.Player, m.Destination, m.Kind, value)
	default:
		return fmt.Sprintf("p%d %s", m.Player, m.Action)
	}
}
