// Package mcts implements the PUCT tree search (spec §4.E/§4.F): a node
// arena keyed by 32-bit indices (spec §9's "prefer an arena keyed by
// 32-bit indices for better locality and trivial reset between games"),
// single-threaded-cooperative selection with batched virtual loss (spec
// §5), and the move-picking/resignation policy.
//
// The teacher repository's mcts/node.go and mcts/tree.go (see DESIGN.md)
// use the same arena-of-indices idea (their Naughty ids) but drive search
// with a goroutine pool and per-node mutexes; spec §5 mandates single-threaded
// cooperative selection instead, so the concurrency model here is written
// fresh while keeping the arena idea and the math32-based PUCT arithmetic
// style.
package mcts

import (
	"github.com/chewxy/math32"
	"gorgonia.org/vecf32"

	"github.com/sousei-go/ishi/board"
)

// NodeID indexes into a Tree's node arena. noNode marks "no parent" (the
// game root).
type NodeID int32

const noNode NodeID = -1

// EdgeStats are the per-child-slot statistics spec §3 names: visit count,
// summed value, policy prior and its un-noised original.
type EdgeStats struct {
	N         int32
	W         float32
	P         float32
	OriginalP float32
}

// Q is the derived action value, W / (1+N).
func (e EdgeStats) Q() float32 {
	return e.W / float32(1+e.N)
}

// Node is one tree node: the position it represents, its edge stats array
// (indexed by board.Coord, length N²+1, board cells plus pass), a map from
// played child move to owned child node, and virtual-loss bookkeeping.
type Node struct {
	parent            NodeID
	moveFromParent board.Coord
	pos            *board.Position
	edges          []EdgeStats
	children       map[board.Coord]NodeID
	isExpanded     bool
	virtualLosses  int32
}

// Tree owns the node arena for one player's search. Nodes are created when
// first selected and freed (returned to the freelist) when an ancestor is
// pruned or a new game starts (spec §3's node lifecycle).
type Tree struct {
	cfg   Config
	nodes []Node
	free  []NodeID
}

// NewTree creates a tree rooted at the given starting position.
func NewTree(cfg Config, root *board.Position) (*Tree, NodeID) {
	t := &Tree{cfg: cfg}
	id := t.alloc(noNode, board.InvalidCoord, root)
	return t, id
}

func (t *Tree) alloc(parent NodeID, move board.Coord, pos *board.Position) NodeID {
	n := Node{
		parent:         parent,
		moveFromParent: move,
		pos:            pos,
		edges:          make([]EdgeStats, pos.N*pos.N+1),
		children:       map[board.Coord]NodeID{},
	}
	if len(t.free) > 0 {
		id := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) node(id NodeID) *Node { return &t.nodes[id] }

// free recursively returns id and its whole subtree to the freelist.
func (t *Tree) freeSubtree(id NodeID) {
	n := t.node(id)
	for _, child := range n.children {
		t.freeSubtree(child)
	}
	n.children = nil
	n.pos = nil
	t.free = append(t.free, id)
}

// NodeRef is a lightweight handle bundling a Tree and a NodeID so the node
// operations can read as methods the way spec §4.E names them
// (SelectLeaf, IncorporateResults, ...) while the underlying storage stays
// arena-indexed.
type NodeRef struct {
	T  *Tree
	ID NodeID
}

// Position returns the board position this node represents.
func (n NodeRef) Position() *board.Position { return n.T.node(n.ID).pos }

// IsExpanded reports whether this node's priors have been set.
func (n NodeRef) IsExpanded() bool { return n.T.node(n.ID).isExpanded }

// N returns this node's visit count as seen by its parent's edge; the game
// root, which has no incoming edge, reports the sum of its edges' counts.
func (n NodeRef) N() int32 {
	nd := n.T.node(n.ID)
	if nd.parent == noNode {
		var total int32
		for _, e := range nd.edges {
			total += e.N
		}
		return total
	}
	return n.T.node(nd.parent).edges[nd.moveFromParent].N
}

// Q returns this node's value as seen by its parent's edge, 0 at the root.
func (n NodeRef) Q() float32 {
	nd := n.T.node(n.ID)
	if nd.parent == noNode {
		return 0
	}
	return n.T.node(nd.parent).edges[nd.moveFromParent].Q()
}

// IsTerminal reports two-consecutive-passes or the move-limit (spec §4.E:
// "both-passed or move-limit").
func (n NodeRef) IsTerminal() bool {
	nd := n.T.node(n.ID)
	if nd.pos.MoveNum >= n.T.cfg.MaxMoves {
		return true
	}
	if !nd.pos.LastMoveWasPass || nd.parent == noNode {
		return false
	}
	parent := n.T.node(nd.parent)
	return parent.pos.LastMoveWasPass
}

// TerminalValue returns the scored game result from Black's absolute
// perspective (the convention BackupValue's alternating sign assumes
// throughout the tree; see the doc comment on BackupValue).
func (n NodeRef) TerminalValue(komi float64) float32 {
	score := n.T.node(n.ID).pos.CalculateScore(komi)
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return 0
	}
}

// legalMask returns the per-move legality the search should respect: the
// board's own LegalMoves, further restricted once cfg.RestrictInBensons is
// set and five consecutive passes have been reached, to exclude on-board
// points inside either color's pass-alive region (spec §4.F's
// restrict_in_bensons option, via board.CalculatePassAliveRegions). Pass
// itself is never restricted.
func (n NodeRef) legalMask() []bool {
	nd := n.T.node(n.ID)
	if !n.T.cfg.RestrictInBensons || nd.pos.ConsecutivePasses < 5 {
		return nd.pos.LegalMoves
	}
	black, white := nd.pos.CalculatePassAliveRegions()
	mask := append([]bool(nil), nd.pos.LegalMoves...)
	for c := range black {
		if black[c] || white[c] {
			mask[c] = false
		}
	}
	return mask
}

// SelectLeaf walks from n, repeatedly choosing the child with maximal
// child-action-score, until it reaches an unexpanded or terminal node
// (spec §4.E). A selected child that doesn't exist yet is materialized.
func (n NodeRef) SelectLeaf() NodeRef {
	cur := n
	for {
		if !cur.IsExpanded() || cur.IsTerminal() {
			return cur
		}
		c := cur.bestChild()
		nd := cur.T.node(cur.ID)
		child, ok := nd.children[board.Coord(c)]
		if !ok {
			child = cur.materializeChild(board.Coord(c))
		}
		cur = NodeRef{T: cur.T, ID: child}
	}
}

func (n NodeRef) materializeChild(move board.Coord) NodeID {
	nd := n.T.node(n.ID)
	child := nd.pos.Clone()
	child.PlayMove(move)
	id := n.T.alloc(n.ID, move, child)
	n.T.node(n.ID).children[move] = id
	return id
}

// bestChild implements spec §4.E's score formula:
//
//	score(c) = Q(c)*sign + U(c) - 1000*illegal(c)
//	U(c) = CPUCT * P(c) * sqrt(max(1, N_parent-1)) / (1+N_c)
//
// Edge W accumulates with alternating sign per ply during backup (see
// BackupValue), so every edge's W is in a single fixed (Black-absolute)
// frame; sign re-projects it into "good for the player to move here".
// Ties break toward the smallest child index, matching mcts/utils.go's
// argmax convention and spec §8's ArgMax tie-break.
func (n NodeRef) bestChild() int {
	nd := n.T.node(n.ID)
	mask := n.legalMask()
	sign := float32(1)
	if nd.pos.ToPlay == board.White {
		sign = -1
	}
	var parentN int32
	for _, e := range nd.edges {
		parentN += e.N
	}
	base := float32(parentN) - 1
	if base < 1 {
		base = 1
	}
	numerator := math32.Sqrt(base)

	best := -1
	bestScore := math32.Inf(-1)
	for c := range nd.edges {
		e := nd.edges[c]
		u := n.T.cfg.CPUCT * e.P * numerator / (1 + float32(e.N))
		score := e.Q()*sign + u
		if !mask[c] {
			score -= 1000
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// IncorporateResults sets this node's priors from policy (masking illegal
// moves and renormalizing; spec's failure semantics: a zero-sum legal mass
// falls back to uniform), marks it expanded, and backs up value to upTo.
func (n NodeRef) IncorporateResults(policy []float32, value float32, upTo NodeRef) {
	nd := n.T.node(n.ID)
	if nd.isExpanded {
		// Selected more than once within a batch (spec §4.F: "the same
		// leaf may be selected more than once... such duplicates share a
		// single inference"); a second IncorporateResults for the same
		// node would double-apply priors, so only the first call sets
		// them — callers still apply one BackupValue per duplicate.
		n.BackupValue(value, upTo)
		return
	}

	mask := n.legalMask()
	var legalSum float32
	masked := make([]float32, len(policy))
	for c := range policy {
		if mask[c] {
			masked[c] = policy[c]
			legalSum += policy[c]
		}
	}
	if legalSum <= math32.SmallestNonzeroFloat32 {
		var legalCount float32
		for c := range mask {
			if mask[c] {
				legalCount++
			}
		}
		for c := range masked {
			if mask[c] {
				masked[c] = 1 / legalCount
			}
		}
	} else {
		vecf32.Scale(masked, 1/legalSum)
	}

	// value_init_penalty (spec §4.F): a never-visited child's edge starts
	// with W = value - penalty (clamped to [-1,1]) instead of 0, so PUCT's
	// Q term reflects this node's own evaluation rather than an optimistic
	// zero until the child is first visited.
	seedW := value - n.T.cfg.ValueInitPenalty
	switch {
	case seedW > 1:
		seedW = 1
	case seedW < -1:
		seedW = -1
	}
	for c := range nd.edges {
		nd.edges[c].P = masked[c]
		nd.edges[c].OriginalP = masked[c]
		if mask[c] {
			nd.edges[c].W = seedW
		}
	}
	nd.isExpanded = true
	n.BackupValue(value, upTo)
}

// BackupValue walks parent-wards from n, and for each edge on the path
// adds 1 to N and v (flipping sign every ply, since players alternate) to
// W, stopping after updating the edge into upTo (inclusive) — i.e.
// exclusive of upTo's own parent (spec §4.E).
func (n NodeRef) BackupValue(v float32, upTo NodeRef) {
	node := n.ID
	value := v
	for {
		nd := n.T.node(node)
		if nd.parent == noNode {
			return
		}
		parent := n.T.node(nd.parent)
		e := &parent.edges[nd.moveFromParent]
		e.N++
		e.W += value
		if node == upTo.ID {
			return
		}
		value = -value
		node = nd.parent
	}
}

// AddVirtualLoss and RevertVirtualLoss walk the same path as BackupValue,
// applying a provisional -1 (or reverting +1) W per ply (spec §4.E); the
// leaf's own virtualLosses counter tracks outstanding applications for the
// MCTS-no-leak property test (spec §8).
func (n NodeRef) AddVirtualLoss(upTo NodeRef) {
	n.T.node(n.ID).virtualLosses++
	n.walkVirtualLoss(upTo, 1, -1)
}

func (n NodeRef) RevertVirtualLoss(upTo NodeRef) {
	n.T.node(n.ID).virtualLosses--
	n.walkVirtualLoss(upTo, -1, 1)
}

func (n NodeRef) walkVirtualLoss(upTo NodeRef, dN int32, dW float32) {
	node := n.ID
	value := dW
	for {
		nd := n.T.node(node)
		if nd.parent == noNode {
			return
		}
		parent := n.T.node(nd.parent)
		e := &parent.edges[nd.moveFromParent]
		e.N += dN
		e.W += value
		if node == upTo.ID {
			return
		}
		value = -value
		node = nd.parent
	}
}

// VirtualLosses returns the outstanding virtual-loss count on this node,
// used by the no-leak property test.
func (n NodeRef) VirtualLosses() int32 { return n.T.node(n.ID).virtualLosses }

// InjectNoise mixes noise into this node's legal-move priors in place:
// P(c) := (1-mix)*P(c) + mix*noise(c), legal children only (spec §4.E).
func (n NodeRef) InjectNoise(noise []float32, mix float32) {
	nd := n.T.node(n.ID)
	for c := range nd.edges {
		if !nd.pos.LegalMoves[c] {
			continue
		}
		nd.edges[c].P = (1-mix)*nd.edges[c].P + mix*noise[c]
	}
}

// PruneChildren drops all siblings of keep, freeing their subtrees back to
// the arena (spec §4.E / node lifecycle: "destroyed when an ancestor is
// pruned").
func (n NodeRef) PruneChildren(keep board.Coord) {
	nd := n.T.node(n.ID)
	for move, child := range nd.children {
		if move == keep {
			continue
		}
		n.T.freeSubtree(child)
		delete(nd.children, move)
	}
}

// ChildN returns the visit count recorded on the edge to move, whether or
// not that child has been materialized yet.
func (n NodeRef) ChildN(move board.Coord) int32 {
	return n.T.node(n.ID).edges[move].N
}

// ChildOrCreate returns (materializing if necessary) the child reached by
// move, used by Player.PlayMove to advance the search root.
func (n NodeRef) ChildOrCreate(move board.Coord) NodeRef {
	nd := n.T.node(n.ID)
	child, ok := nd.children[move]
	if !ok {
		child = n.materializeChild(move)
	}
	return NodeRef{T: n.T, ID: child}
}
