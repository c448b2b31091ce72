// Package lanes assigns rendering geometry to an assembled commit graph.
//
// Every commit receives a lane (a horizontal track) and a color index by
// tracing connected paths through the newest-first commit sequence. Colors
// are recycled: once the branch occupying a color has ended, the color is
// free for the next branch that starts below it. The output is a Layout:
// node positions plus per-branch line segments, ready to draw.
package lanes

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
)

// Geometry constants for mapping (lane, sequence index) to pixels.
const (
	LaneUnit  = 16 // horizontal distance between lanes
	RowHeight = 24 // vertical distance between commits
	OffsetX   = 8
	OffsetY   = 12
)

// Point is a position in (lane, sequence-index) space.
type Point struct {
	Lane  int `json:"lane" bson:"lane"`
	Index int `json:"index" bson:"index"`
}

// Segment is one renderable line of a branch. LockedFirst marks which
// endpoint keeps its coordinate when later transforms shift rows: the
// first endpoint when it sits on the lower lane, otherwise the second.
type Segment struct {
	P1          Point `json:"p1" bson:"p1"`
	P2          Point `json:"p2" bson:"p2"`
	Committed   bool  `json:"committed" bson:"committed"`
	LockedFirst bool  `json:"locked_first" bson:"locked_first"`
}

// BranchLane is one traced path: a color slot, the sequence index at which
// the path ends, and the line segments to draw.
type BranchLane struct {
	Color    int       `json:"color" bson:"color"`
	End      int       `json:"end" bson:"end"`
	Segments []Segment `json:"segments" bson:"segments"`
}

// Placement is the final per-commit assignment.
type Placement struct {
	Hash  string `json:"hash" bson:"hash"`
	Lane  int    `json:"lane" bson:"lane"`
	Index int    `json:"index" bson:"index"`
	Color int    `json:"color" bson:"color"`
	X     int    `json:"x" bson:"x"`
	Y     int    `json:"y" bson:"y"`
}

// Layout is the complete rendering model for one graph.
type Layout struct {
	Placements []Placement  `json:"placements" bson:"placements"`
	Branches   []BranchLane `json:"branches" bson:"branches"`
	LaneCount  int          `json:"lane_count" bson:"lane_count"`
}

// Compute lays out the graph's commits. The input graph is not modified.
// Layout never fails: commits with unknown or out-of-order parent
// references are treated as roots.
func Compute(g *commitgraph.Graph) *Layout {
	if g == nil || len(g.Nodes) == 0 {
		return &Layout{Placements: []Placement{}, Branches: []BranchLane{}}
	}
	e := newEngine(g)
	e.run()
	return e.layout()
}

// MarshalLayout serializes a Layout to JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	return &l, nil
}
