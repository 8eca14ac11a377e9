package board

import "github.com/pkg/errors"

// MoveClass is the result of classifying a candidate move, ignoring any
// superko history (which is consulted separately, see Position.SuperKo).
type MoveClass uint8

const (
	// Illegal covers occupied points, simple ko, and suicide.
	Illegal MoveClass = iota
	NoCapture
	Capture
)

func (m MoveClass) String() string {
	switch m {
	case Illegal:
		return "Illegal"
	case NoCapture:
		return "NoCapture"
	case Capture:
		return "Capture"
	default:
		return "Unknown"
	}
}

// SuperKoHistory lets a caller veto moves that would recreate a prior
// whole-board position. It is consulted, never mutated, by Position.
type SuperKoHistory interface {
	HasPositionBeenPlayedBefore(hash uint64) bool
}

// Position is a compact, mutable Go board: stones, groups, liberties, ko,
// the legal-move bitmap, and a running Zobrist hash of placed stones.
type Position struct {
	N int

	Stones []Stone
	groups *groupPool

	ToPlay  Color
	MoveNum int
	Ko      Coord

	// LegalMoves is indexed 0..N*N (on-board points, then pass). Resign is
	// not represented here: it is always a legal meta-action for whichever
	// side is to play, handled above the board layer.
	LegalMoves []bool

	// NumCaptures is indexed by Color (index 0, Empty, is unused).
	NumCaptures [3]int

	// StoneHash is the XOR of zobrist.moveHash(p, color(p)) over occupied
	// points. It deliberately excludes Ko and ToPlay (see DESIGN.md's Open
	// Question decision on the inference-cache key for why those are kept
	// out of this specific hash and folded into cache keys instead).
	StoneHash uint64

	// LastMoveWasPass records whether the move that produced this Position
	// was a pass. It exists solely to let callers build a cache key that
	// distinguishes "reached via pass" from "reached otherwise" without
	// perturbing StoneHash itself.
	LastMoveWasPass bool

	// ConsecutivePasses counts passes played back to back, reset by any
	// other move (including resign). The Position still never enforces a
	// two-pass end-of-game rule itself (see PlayMove's doc comment);
	// mcts's restrict_in_bensons option is the one consumer of this count.
	ConsecutivePasses int

	// SuperKo, if set, is consulted (never mutated) while recomputing
	// LegalMoves after a move: a capturing move whose resulting stone hash
	// has been played before is marked illegal.
	SuperKo SuperKoHistory

	zobrist *ZobristTable
}

// NewPosition creates an empty NxN board. InitZobrist(seed, n) must have
// been called first with a matching n; the table is never built lazily.
func NewPosition(n int) *Position {
	if globalZobrist == nil || globalZobrist.n != n {
		panic(errors.Errorf("board: zobrist table not initialized for size %d; call InitZobrist first", n))
	}
	return newPositionWithTable(n, globalZobrist)
}

func newPositionWithTable(n int, t *ZobristTable) *Position {
	p := &Position{
		N:          n,
		Stones:     make([]Stone, n*n),
		groups:     newGroupPool(n * n),
		ToPlay:     Black,
		Ko:         InvalidCoord,
		LegalMoves: make([]bool, n*n+1),
		zobrist:    t,
	}
	for i := range p.Stones {
		p.Stones[i] = EmptyStone
	}
	p.recomputeLegalMoves()
	return p
}

// Clone returns a deep, independent copy of p.
func (p *Position) Clone() *Position {
	n := &Position{
		N:               p.N,
		Stones:          append([]Stone(nil), p.Stones...),
		groups:          p.groups.clone(),
		ToPlay:          p.ToPlay,
		MoveNum:         p.MoveNum,
		Ko:              p.Ko,
		LegalMoves:      append([]bool(nil), p.LegalMoves...),
		NumCaptures:     p.NumCaptures,
		StoneHash:       p.StoneHash,
		LastMoveWasPass: p.LastMoveWasPass,
		ConsecutivePasses: p.ConsecutivePasses,
		SuperKo:         p.SuperKo,
		zobrist:         p.zobrist,
	}
	return n
}

// UndoState is an opaque snapshot sufficient to invert exactly one
// PlayMove call. Snapshotting the whole mutable state (rather than
// recording a minimal incremental diff) keeps UndoMove trivially correct;
// a Position is small and is already copied once per expanded MCTS node
// (see spec §9), so one more copy here is not a new cost class.
type UndoState struct {
	stones            []Stone
	groups            *groupPool
	toPlay            Color
	moveNum           int
	ko                Coord
	legalMoves        []bool
	numCaptures       [3]int
	stoneHash         uint64
	lastMoveWasPass   bool
	consecutivePasses int
}

func (p *Position) snapshot() *UndoState {
	return &UndoState{
		stones:            append([]Stone(nil), p.Stones...),
		groups:            p.groups.clone(),
		toPlay:            p.ToPlay,
		moveNum:           p.MoveNum,
		ko:                p.Ko,
		legalMoves:        append([]bool(nil), p.LegalMoves...),
		numCaptures:       p.NumCaptures,
		stoneHash:         p.StoneHash,
		lastMoveWasPass:   p.LastMoveWasPass,
		consecutivePasses: p.ConsecutivePasses,
	}
}

// UndoMove restores p to the state captured by u. u must have come from the
// PlayMove call immediately preceding this call on this Position.
func (p *Position) UndoMove(u *UndoState) {
	p.Stones = u.stones
	p.groups = u.groups
	p.ToPlay = u.toPlay
	p.MoveNum = u.moveNum
	p.Ko = u.ko
	p.LegalMoves = u.legalMoves
	p.NumCaptures = u.numCaptures
	p.StoneHash = u.stoneHash
	p.LastMoveWasPass = u.lastMoveWasPass
	p.ConsecutivePasses = u.consecutivePasses
}

// PlayMoveAs plays c for color instead of p.ToPlay, matching spec §4.C's
// "PlayMove(c, color?)" signature note. It is used to set up or replay
// positions whose move sequence does not strictly alternate, which is how
// spec §8's worked scenarios are expressed. After the move, p.ToPlay is
// color's opponent, exactly as if color had been p.ToPlay all along.
func (p *Position) PlayMoveAs(c Coord, color Color) *UndoState {
	if color != p.ToPlay {
		p.ToPlay = color
		p.recomputeLegalMoves()
	}
	return p.PlayMove(c)
}

// PlayMove applies c (a point, pass, or resign) for p.ToPlay. It panics if c
// is an on-board point that LegalMoves marks illegal: illegal moves are a
// precondition violation, not a recoverable error (spec §7).
func (p *Position) PlayMove(c Coord) *UndoState {
	if c.IsPass(p.N) || c.IsResign(p.N) {
		undo := p.snapshot()
		p.Ko = InvalidCoord
		p.LastMoveWasPass = c.IsPass(p.N)
		if c.IsPass(p.N) {
			p.ConsecutivePasses++
		} else {
			p.ConsecutivePasses = 0
		}
		p.MoveNum++
		p.ToPlay = p.ToPlay.Opponent()
		p.recomputeLegalMoves()
		return undo
	}
	if int(c) < 0 || int(c) >= p.N*p.N {
		panic(errors.Errorf("board: coord %d out of range for %dx%d board", c, p.N, p.N))
	}
	if !p.LegalMoves[c] {
		panic(errors.Errorf("board: illegal move %d for %v", c, p.ToPlay))
	}

	undo := p.snapshot()

	me := p.ToPlay
	opp := me.Opponent()

	var nbBuf [4]Coord
	nbs := neighbors(c, p.N, nbBuf[:0])

	// (a) find opponent groups captured by this move, recording a member
	// point of each as a flood-fill seed.
	type captured struct {
		id   GroupID
		seed Coord
	}
	var capturedGroups []captured
	seen := map[GroupID]bool{}
	for _, nb := range nbs {
		s := p.Stones[nb]
		if s.Color == opp && !seen[s.Group] {
			if p.groups.get(s.Group).liberties == 1 {
				capturedGroups = append(capturedGroups, captured{s.Group, nb})
				seen[s.Group] = true
			}
		}
	}

	// c is about to become occupied: it stops being a liberty of every
	// distinct group currently touching it.
	touched := map[GroupID]bool{}
	for _, nb := range nbs {
		s := p.Stones[nb]
		if s.Color != Empty && !touched[s.Group] {
			p.groups.get(s.Group).liberties--
			touched[s.Group] = true
		}
	}

	// (c) remove captured stones, free their groups, restore liberties to
	// surviving neighbors.
	var removedPoints []Coord
	for _, cg := range capturedGroups {
		pts := p.floodGroup(cg.seed)
		for _, q := range pts {
			p.StoneHash ^= p.zobrist.moveHash(q, opp)
			p.Stones[q] = EmptyStone
			removedPoints = append(removedPoints, q)
		}
		p.groups.free(cg.id)
		p.NumCaptures[me] += len(pts)
	}
	for _, q := range removedPoints {
		var qBuf [4]Coord
		qnbs := neighbors(q, p.N, qBuf[:0])
		creditedHere := map[GroupID]bool{}
		for _, qn := range qnbs {
			s := p.Stones[qn]
			if s.Color != Empty && !creditedHere[s.Group] {
				p.groups.get(s.Group).liberties++
				creditedHere[s.Group] = true
			}
		}
	}

	// (b) merge into same-color neighbor groups, or form a new one.
	sameGroups := dedupGroups(p, nbs, me)
	var placedGroup GroupID
	switch len(sameGroups) {
	case 0:
		placedGroup = p.groups.alloc()
		g := p.groups.get(placedGroup)
		g.size = 1
		p.Stones[c] = Stone{me, placedGroup}
		g.liberties = int16(p.countEmptyNeighbors(c))
	case 1:
		placedGroup = sameGroups[0]
		p.Stones[c] = Stone{me, placedGroup}
		g := p.groups.get(placedGroup)
		g.size++
		g.liberties += int16(p.newLibertiesContributedBy(c, placedGroup))
	default:
		placedGroup = sameGroups[0]
		p.Stones[c] = Stone{me, placedGroup}
		for _, other := range sameGroups[1:] {
			p.relabelGroup(other, placedGroup)
			p.groups.free(other)
		}
		p.reflood(placedGroup, c)
	}
	p.StoneHash ^= p.zobrist.moveHash(c, me)

	// (d) ko iff exactly one stone, alone in a single-stone eye, was
	// captured and recapturing it would recreate that shape.
	p.Ko = InvalidCoord
	if len(capturedGroups) == 1 && len(removedPoints) == 1 {
		g := p.groups.get(placedGroup)
		if g.size == 1 && g.liberties == 1 {
			p.Ko = removedPoints[0]
		}
	}

	p.MoveNum++
	p.ToPlay = opp
	p.LastMoveWasPass = false
	p.ConsecutivePasses = 0
	p.recomputeLegalMoves()
	return undo
}

func dedupGroups(p *Position, nbs []Coord, color Color) []GroupID {
	var out []GroupID
	seen := map[GroupID]bool{}
	for _, nb := range nbs {
		s := p.Stones[nb]
		if s.Color == color && !seen[s.Group] {
			out = append(out, s.Group)
			seen[s.Group] = true
		}
	}
	return out
}

func (p *Position) countEmptyNeighbors(c Coord) int {
	var buf [4]Coord
	n := 0
	for _, nb := range neighbors(c, p.N, buf[:0]) {
		if p.Stones[nb].Color == Empty {
			n++
		}
	}
	return n
}

// newLibertiesContributedBy counts c's empty neighbors that are not already
// a liberty of group (i.e. not already adjacent to another stone of group),
// so a shared liberty is not double-counted when c joins the group.
func (p *Position) newLibertiesContributedBy(c Coord, group GroupID) int {
	var buf [4]Coord
	n := 0
	for _, e := range neighbors(c, p.N, buf[:0]) {
		if p.Stones[e].Color != Empty {
			continue
		}
		var eBuf [4]Coord
		shared := false
		for _, e2 := range neighbors(e, p.N, eBuf[:0]) {
			if e2 == c {
				continue
			}
			s := p.Stones[e2]
			if s.Color != Empty && s.Group == group {
				shared = true
				break
			}
		}
		if !shared {
			n++
		}
	}
	return n
}

// floodGroup returns every point belonging to the same group as seed, via a
// 4-connected walk over same-color same-group stones.
func (p *Position) floodGroup(seed Coord) []Coord {
	color := p.Stones[seed].Color
	gid := p.Stones[seed].Group
	visited := map[Coord]bool{seed: true}
	stack := []Coord{seed}
	var out []Coord
	var buf [4]Coord
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		for _, nb := range neighbors(cur, p.N, buf[:0]) {
			if visited[nb] {
				continue
			}
			s := p.Stones[nb]
			if s.Color == color && s.Group == gid {
				visited[nb] = true
				stack = append(stack, nb)
			}
		}
	}
	return out
}

func (p *Position) relabelGroup(from, to GroupID) {
	pts := p.floodGroup(firstPointOfGroup(p, from))
	for _, pt := range pts {
		p.Stones[pt].Group = to
	}
}

// firstPointOfGroup scans for any point currently carrying group id id. It
// is only used for the rare multi-way merge case, so an O(N^2) scan is an
// acceptable trade against the memory cost of keeping a seed point per
// group permanently.
func firstPointOfGroup(p *Position, id GroupID) Coord {
	for i, s := range p.Stones {
		if s.Color != Empty && s.Group == id {
			return Coord(i)
		}
	}
	panic(errors.Errorf("board: group %d has no points", id))
}

// reflood recomputes size and liberties of group from scratch by walking
// its (just-merged) chain starting at seed.
func (p *Position) reflood(group GroupID, seed Coord) {
	pts := p.floodGroup(seed)
	liberties := map[Coord]bool{}
	var buf [4]Coord
	for _, pt := range pts {
		for _, nb := range neighbors(pt, p.N, buf[:0]) {
			if p.Stones[nb].Color == Empty {
				liberties[nb] = true
			}
		}
	}
	g := p.groups.get(group)
	g.size = int16(len(pts))
	g.liberties = int16(len(liberties))
}

// ClassifyMoveIgnoringSuperko classifies c for p.ToPlay without consulting
// SuperKo.
func (p *Position) ClassifyMoveIgnoringSuperko(c Coord) MoveClass {
	if p.Stones[c].Color != Empty {
		return Illegal
	}
	if c == p.Ko {
		return Illegal
	}
	me := p.ToPlay
	opp := me.Opponent()

	var buf [4]Coord
	nbs := neighbors(c, p.N, buf[:0])

	hasEmptyNeighbor := false
	anyOppLiberty1 := false
	allSameLiberty1 := true
	for _, nb := range nbs {
		s := p.Stones[nb]
		switch s.Color {
		case Empty:
			hasEmptyNeighbor = true
		case opp:
			if p.groups.get(s.Group).liberties == 1 {
				anyOppLiberty1 = true
			}
		case me:
			if p.groups.get(s.Group).liberties != 1 {
				allSameLiberty1 = false
			}
		}
	}

	if !hasEmptyNeighbor && !anyOppLiberty1 && allSameLiberty1 {
		return Illegal
	}
	if anyOppLiberty1 {
		return Capture
	}
	return NoCapture
}

// IsKoish reports the color c would be a ko-ish capture target for: c must
// be empty and all its on-board neighbors (4, or fewer at an edge) must be
// the same non-empty color.
func (p *Position) IsKoish(c Coord) Color {
	if p.Stones[c].Color != Empty {
		return Empty
	}
	var buf [4]Coord
	nbs := neighbors(c, p.N, buf[:0])
	if len(nbs) == 0 {
		return Empty
	}
	color := p.Stones[nbs[0]].Color
	if color == Empty {
		return Empty
	}
	for _, nb := range nbs[1:] {
		if p.Stones[nb].Color != color {
			return Empty
		}
	}
	return color
}

// virtualHashAfterCapture computes the StoneHash that would result from
// playing c, without mutating p. Only Capture-class moves can possibly
// repeat an earlier position (a non-capturing move strictly increases the
// stone count), so this is only ever called for those.
func (p *Position) virtualHashAfterCapture(c Coord) uint64 {
	me := p.ToPlay
	opp := me.Opponent()
	hash := p.StoneHash ^ p.zobrist.moveHash(c, me)

	var buf [4]Coord
	seen := map[GroupID]bool{}
	for _, nb := range neighbors(c, p.N, buf[:0]) {
		s := p.Stones[nb]
		if s.Color == opp && !seen[s.Group] && p.groups.get(s.Group).liberties == 1 {
			seen[s.Group] = true
			for _, q := range p.floodGroup(nb) {
				hash ^= p.zobrist.moveHash(q, opp)
			}
		}
	}
	return hash
}

// recomputeLegalMoves rebuilds LegalMoves for the current ToPlay, consulting
// SuperKo if set.
func (p *Position) recomputeLegalMoves() {
	for i := 0; i < p.N*p.N; i++ {
		c := Coord(i)
		class := p.ClassifyMoveIgnoringSuperko(c)
		legal := class != Illegal
		if legal && class == Capture && p.SuperKo != nil {
			if p.SuperKo.HasPositionBeenPlayedBefore(p.virtualHashAfterCapture(c)) {
				legal = false
			}
		}
		p.LegalMoves[i] = legal
	}
	p.LegalMoves[p.N*p.N] = true // pass is always legal
}

// RecomputeStoneHash recomputes the hash from Stones using the table,
// independent of the incrementally maintained StoneHash. Used by the
// hash-round-trip property test (spec §8).
func (p *Position) RecomputeStoneHash() uint64 {
	var h uint64
	for i, s := range p.Stones {
		if s.Color != Empty {
			h ^= p.zobrist.moveHash(Coord(i), s.Color)
		}
	}
	return h
}

// Liberties returns the current liberty count of the group occupying c, or
// -1 if c is empty.
func (p *Position) Liberties(c Coord) int {
	s := p.Stones[c]
	if s.Color == Empty {
		return -1
	}
	return int(p.groups.get(s.Group).liberties)
}

// GroupSize returns the current size of the group occupying c, or -1 if c
// is empty.
func (p *Position) GroupSize(c Coord) int {
	s := p.Stones[c]
	if s.Color == Empty {
		return -1
	}
	return int(p.groups.get(s.Group).size)
}
