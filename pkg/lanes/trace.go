package lanes

import (
	"github.com/matzehuels/gitlanes/pkg/commitgraph"
)

// vertex is the per-commit trace state. Lanes at a vertex are claimed one
// at a time: nextFree is the lowest unclaimed lane, and conns records, per
// claimed lane, which vertex the lane connects toward and on which branch.
type vertex struct {
	hash       string
	index      int
	parents    []*vertex
	nextParent int
	branch     *branchState
	lane       int
	nextFree   int
	conns      []conn
	committed  bool
}

type conn struct {
	to     *vertex
	branch *branchState
}

type branchState struct {
	color    int
	end      int
	segments []Segment
}

func (b *branchState) setEnd(i int) {
	// End only ever advances.
	if i > b.end {
		b.end = i
	}
}

func (b *branchState) addSegment(p1, p2 Point, committed bool) {
	b.segments = append(b.segments, Segment{
		P1:          p1,
		P2:          p2,
		Committed:   committed,
		LockedFirst: p1.Lane <= p2.Lane,
	})
}

func (v *vertex) isMerge() bool {
	return len(v.parents) > 1
}

func (v *vertex) onBranch() bool {
	return v.branch != nil
}

// pendingParent returns the next unprocessed parent, or nil.
func (v *vertex) pendingParent() *vertex {
	if v.nextParent < len(v.parents) {
		return v.parents[v.nextParent]
	}
	return nil
}

// point returns the vertex's own assigned position.
func (v *vertex) point() Point {
	return Point{Lane: v.lane, Index: v.index}
}

// nextPoint returns the vertex's lowest unclaimed position.
func (v *vertex) nextPoint() Point {
	return Point{Lane: v.nextFree, Index: v.index}
}

// claim marks a lane unavailable, recording what it connects toward.
// Only a claim of the current free lane consumes it.
func (v *vertex) claim(lane int, to *vertex, on *branchState) {
	if lane == v.nextFree {
		for len(v.conns) <= lane {
			v.conns = append(v.conns, conn{})
		}
		v.conns[lane] = conn{to: to, branch: on}
		v.nextFree = lane + 1
	}
}

// connectingPoint finds a lane at this vertex already routed toward the
// given vertex on the given branch.
func (v *vertex) connectingPoint(to *vertex, on *branchState) (Point, bool) {
	for lane, c := range v.conns {
		if c.to == to && c.branch == on {
			return Point{Lane: lane, Index: v.index}, true
		}
	}
	return Point{}, false
}

func (v *vertex) bind(b *branchState, lane int) {
	if v.branch == nil {
		v.branch = b
		v.lane = lane
	}
}

// =============================================================================
// Engine
// =============================================================================

type engine struct {
	vertices []*vertex
	branches []*branchState

	// colorEnds maps color index to the sequence index at which the branch
	// using that color ended. A color is recyclable for a branch starting
	// at index s when its recorded end is strictly less than s.
	colorEnds []int
}

func newEngine(g *commitgraph.Graph) *engine {
	e := &engine{vertices: make([]*vertex, len(g.Nodes))}
	byHash := make(map[string]*vertex, len(g.Nodes))
	for i, n := range g.Nodes {
		v := &vertex{hash: n.Hash, index: i, committed: true}
		e.vertices[i] = v
		byHash[n.Hash] = v
	}
	for i, n := range g.Nodes {
		v := e.vertices[i]
		for _, p := range n.Parents {
			parent, ok := byHash[p]
			if !ok || parent.index <= v.index {
				// Unknown ancestor, or timestamp skew placed the parent
				// above its child. Either way the chain stops here.
				continue
			}
			v.parents = append(v.parents, parent)
		}
	}
	return e
}

// run traces paths until every vertex is on a branch and every in-set
// parent edge has been processed.
func (e *engine) run() {
	for i := range e.vertices {
		for e.vertices[i].pendingParent() != nil || !e.vertices[i].onBranch() {
			e.tracePath(i)
		}
	}
}

// tracePath processes one path starting at the given sequence index:
// either a merge landing onto an existing branch, or a new branch traced
// down through its chain of first-unprocessed parents.
func (e *engine) tracePath(startAt int) {
	v := e.vertices[startAt]
	parent := v.pendingParent()

	if parent != nil && v.isMerge() && v.onBranch() && parent.onBranch() && parent.branch != v.branch {
		e.traceMergeLanding(startAt, v, parent)
		return
	}
	e.traceBranch(startAt, v, parent)
}

// traceMergeLanding draws the connection from an already-placed merge
// commit down onto the branch one of its parents lives on. One segment is
// drawn per row until a lane already routed toward that parent on that
// branch is found; at the parent's own row at the latest.
func (e *engine) traceMergeLanding(startAt int, v, parent *vertex) {
	target := parent.branch
	last := v.point()
	committed := v.committed

	for i := startAt + 1; i < len(e.vertices); i++ {
		cur := e.vertices[i]
		pt, found := cur.connectingPoint(parent, target)
		if !found {
			pt = cur.nextPoint()
		}
		cur.claim(pt.Lane, parent, target)
		target.addSegment(last, pt, committed)
		last = pt

		if found {
			v.nextParent++
			target.setEnd(i)
			e.recordColorEnd(target)
			return
		}
	}

	// The parent registers a lane toward itself when it is bound, so the
	// walk always lands. This is unreachable, but the parent edge must be
	// consumed regardless to keep the driver loop finite.
	v.nextParent++
}

// traceBranch starts a new branch at v and walks it down the sequence,
// binding each reached parent that is still unowned and following that
// parent's own chain, until the path hits a vertex on another branch, a
// root, or the end of the sequence.
func (e *engine) traceBranch(startAt int, v, parent *vertex) {
	branch := &branchState{color: e.pickColor(startAt), end: -1}

	last := v.nextPoint()
	if v.onBranch() {
		last = v.point()
	}
	v.claim(last.Lane, v, branch)
	v.bind(branch, last.Lane)
	committed := v.committed

	end := startAt
	for i := startAt + 1; i < len(e.vertices) && parent != nil; i++ {
		cur := e.vertices[i]
		end = i

		pt := cur.nextPoint()
		if cur == parent && cur.onBranch() {
			pt = cur.point()
		}
		branch.addSegment(last, pt, committed)
		cur.claim(pt.Lane, parent, branch)
		last = pt

		if cur == parent {
			v.nextParent++
			wasOnBranch := cur.onBranch()
			cur.bind(branch, pt.Lane)
			v = cur
			parent = v.pendingParent()
			if wasOnBranch {
				break
			}
		}
	}

	branch.setEnd(end)
	e.branches = append(e.branches, branch)
	e.recordColorEnd(branch)
}

// pickColor returns the first color whose branch ended strictly before
// startAt, or a fresh color slot when every color is still in use.
func (e *engine) pickColor(startAt int) int {
	for color, end := range e.colorEnds {
		if end < startAt {
			return color
		}
	}
	e.colorEnds = append(e.colorEnds, 0)
	return len(e.colorEnds) - 1
}

func (e *engine) recordColorEnd(b *branchState) {
	if b.end > e.colorEnds[b.color] {
		e.colorEnds[b.color] = b.end
	}
}

// layout converts the traced state into the output model.
func (e *engine) layout() *Layout {
	l := &Layout{
		Placements: make([]Placement, len(e.vertices)),
		Branches:   make([]BranchLane, len(e.branches)),
	}
	for i, v := range e.vertices {
		color := 0
		if v.branch != nil {
			color = v.branch.color
		}
		l.Placements[i] = Placement{
			Hash:  v.hash,
			Lane:  v.lane,
			Index: v.index,
			Color: color,
			X:     v.lane*LaneUnit + OffsetX,
			Y:     v.index*RowHeight + OffsetY,
		}
		if v.lane+1 > l.LaneCount {
			l.LaneCount = v.lane + 1
		}
	}
	for i, b := range e.branches {
		segments := b.segments
		if segments == nil {
			segments = []Segment{}
		}
		for _, s := range segments {
			if s.P1.Lane+1 > l.LaneCount {
				l.LaneCount = s.P1.Lane + 1
			}
			if s.P2.Lane+1 > l.LaneCount {
				l.LaneCount = s.P2.Lane + 1
			}
		}
		l.Branches[i] = BranchLane{Color: b.color, End: b.end, Segments: segments}
	}
	return l
}
