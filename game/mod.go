package game

import (
	"fmt"
	"strings"
)

const (
	NumRanks  = 5
	NumColors = 5
	MaxRank   = Rank(NumRanks)
	MaxScore  = NumRanks * NumColors // Five complete fireworks
	NoSeat    = -1                   // Seat of an observer that owns no hand
)

// Quantities holds the number of copies of each rank in every color
var Quantities = [NumRanks]int{3, 2, 2, 2, 1}

// TotalCards is the size of a full deck
const TotalCards = 50

// Rank of a card, 0 when unknown.
type Rank int

func (r Rank) index() int {
	if r < 1 || r > MaxRank {
		panic(fmt.Sprintf("rank %d out of range", r))
	}
	return int(r) - 1
}

type Color int

const (
	NoColor Color = iota
	Red
	Yellow
	Green
	Blue
	White
)

// Colors lists the suits in board order
var Colors = [NumColors]Color{Red, Yellow, Green, Blue, White}

var colorNames = [...]string{"", "red", "yellow", "green", "blue", "white"}

func (c Color) index() int {
	if c < Red || c > White {
		panic(fmt.Sprintf("color %d out of range", c))
	}
	return int(c) - 1
}

func (c Color) String() string {
	if c < NoColor || c > White {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	if c == NoColor {
		return "?"
	}
	return colorNames[c]
}

func (c Color) MarshalText() ([]byte, error) {
	if c == NoColor {
		return []byte(""), nil
	}
	if c < Red || c > White {
		return nil, fmt.Errorf("unknown color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts the lowercase suit names used on the wire, "" maps to NoColor.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NoColor, nil
	}
	for i, name := range colorNames {
		if i > 0 && name == s {
			return Color(i), nil
		}
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

// Table counts cards by rank (rows) and color (columns).
type Table [NumRanks][NumColors]int

// FullTable returns the card counts of a complete deck.
func FullTable() Table {
	var t Table
	for r := range t {
		for c := range t[r] {
			t[r][c] = Quantities[r]
		}
	}
	return t
}

func (t *Table) At(rank Rank, color Color) int {
	return t[rank.index()][color.index()]
}

func (t *Table) Sum() int {
	total := 0
	for r := range t {
		total += t.rowSum(r)
	}
	return total
}

func (t *Table) rowSum(r int) int {
	sum := 0
	for c := 0; c < NumColors; c++ {
		sum += t[r][c]
	}
	return sum
}

func (t *Table) colSum(c int) int {
	sum := 0
	for r := 0; r < NumRanks; r++ {
		sum += t[r][c]
	}
	return sum
}

func (t *Table) zeroRow(r int) {
	for c := 0; c < NumColors; c++ {
		t[r][c] = 0
	}
}

func (t *Table) zeroCol(c int) {
	for r := 0; r < NumRanks; r++ {
		t[r][c] = 0
	}
}
