package sgf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sousei-go/ishi/board"
)

// Move is one recorded move: a color, a board coordinate, and an optional
// comment (spec §6: "the core only consumes (color, coord, optional
// comment) triples").
type Move struct {
	Color   board.Color
	Coord   board.Coord
	Comment string
}

// Writer formats a move list and game metadata into an SGF string (spec
// §6's core SGF responsibility). Ruleset defaults to "Chinese" when left
// empty.
type Writer struct {
	N           int
	BlackName   string
	WhiteName   string
	Komi        float64
	Result      string
	Ruleset     string
	GameComment string

	Moves []Move
}

// sgfColorTag returns the SGF property key for a move's color.
func sgfColorTag(c board.Color) string {
	if c == board.Black {
		return "B"
	}
	return "W"
}

// String renders the SGF text.
func (w *Writer) String() string {
	ruleset := w.Ruleset
	if ruleset == "" {
		ruleset = "Chinese"
	}

	var b strings.Builder
	b.WriteString("(;GM[1]FF[4]")
	fmt.Fprintf(&b, "SZ[%d]", w.N)
	fmt.Fprintf(&b, "RU[%s]", escape(ruleset))
	fmt.Fprintf(&b, "KM[%s]", formatKomi(w.Komi))
	if w.BlackName != "" {
		fmt.Fprintf(&b, "PB[%s]", escape(w.BlackName))
	}
	if w.WhiteName != "" {
		fmt.Fprintf(&b, "PW[%s]", escape(w.WhiteName))
	}
	if w.Result != "" {
		fmt.Fprintf(&b, "RE[%s]", escape(w.Result))
	}
	if w.GameComment != "" {
		fmt.Fprintf(&b, "C[%s]", escape(w.GameComment))
	}
	for _, m := range w.Moves {
		fmt.Fprintf(&b, "\n;%s[%s]", sgfColorTag(m.Color), FormatSGFCoord(m.Coord, w.N))
		if m.Comment != "" {
			fmt.Fprintf(&b, "C[%s]", escape(m.Comment))
		}
	}
	b.WriteString(")")
	return b.String()
}

func formatKomi(k float64) string {
	return strconv.FormatFloat(k, 'f', -1, 64)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `]`, `\]`)
	return s
}
