package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/sousei-go/ishi/board"
)

// DOT renders the subtree rooted at n as Graphviz DOT, for cmd/treedump and
// interactive debugging of a search. Only materialized children are
// visited (unmaterialized edges with N==0 never entered the arena).
func (n NodeRef) DOT() string {
	g := gographviz.NewGraph()
	g.SetName("mcts")
	g.SetDir(true)

	var walk func(ref NodeRef)
	walk = func(ref NodeRef) {
		nd := ref.T.node(ref.ID)
		name := fmt.Sprintf("n%d", ref.ID)
		g.AddNode("mcts", name, map[string]string{
			"label": fmt.Sprintf("\"N=%d Q=%.3f\"", ref.N(), ref.Q()),
		})
		for move, childID := range nd.children {
			child := NodeRef{T: ref.T, ID: childID}
			walk(child)
			g.AddEdge(name, fmt.Sprintf("n%d", childID), true, map[string]string{
				"label": fmt.Sprintf("\"%s\"", moveLabel(move, nd.pos.N)),
			})
		}
	}
	walk(n)
	return g.String()
}

func moveLabel(c board.Coord, n int) string {
	if c.IsPass(n) {
		return "pass"
	}
	if c.IsResign(n) {
		return "resign"
	}
	return fmt.Sprintf("%d,%d", c.Row(n), c.Col(n))
}
