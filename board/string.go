package board

import "strings"

// String renders the board as rows of '.', 'B' (black), 'W' (white), each
// followed by a space, top row first, matching Chess.ShowBoard/Board.Draw's simple textual dump
// for logging.
func (p *Position) String() string {
	var b strings.Builder
	for row := 0; row < p.N; row++ {
		for col := 0; col < p.N; col++ {
			b.WriteString(p.Stones[CoordAt(row, col, p.N)].Color.String())
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
