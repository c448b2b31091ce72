package lanes

import (
	"testing"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
)

func buildGraph(t *testing.T, raw, current string, branches []string) *commitgraph.Graph {
	t.Helper()
	nodes := commitgraph.ParseLog(raw)
	if len(nodes) == 0 {
		t.Fatal("no nodes parsed")
	}
	return commitgraph.Assemble(nodes, current, branches, nil)
}

func placementOf(t *testing.T, l *Layout, hash string) Placement {
	t.Helper()
	for _, p := range l.Placements {
		if p.Hash == hash {
			return p
		}
	}
	t.Fatalf("no placement for %s", hash)
	return Placement{}
}

func TestComputeLinearHistory(t *testing.T) {
	raw := "h3\x00h2\x00refs/heads/main\x00300\n" +
		"h2\x00h1\x00refs/heads/main\x00200\n" +
		"h1\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main"})

	l := Compute(g)

	if len(l.Placements) != 3 {
		t.Fatalf("placements = %d, want 3", len(l.Placements))
	}
	for _, p := range l.Placements {
		if p.Lane != 0 {
			t.Errorf("%s lane = %d, want 0", p.Hash, p.Lane)
		}
		if p.Color != 0 {
			t.Errorf("%s color = %d, want 0", p.Hash, p.Color)
		}
	}
	if len(l.Branches) != 1 {
		t.Fatalf("branches = %d, want 1", len(l.Branches))
	}
	if got := len(l.Branches[0].Segments); got != 2 {
		t.Errorf("segments = %d, want 2", got)
	}
	if l.LaneCount != 1 {
		t.Errorf("lane count = %d, want 1", l.LaneCount)
	}
}

func TestComputeParallelBranches(t *testing.T) {
	// main: h3 -> h2 -> h1; feature: f1 -> h1.
	raw := "h3\x00h2\x00refs/heads/main\x00400\n" +
		"f1\x00h1\x00refs/heads/feature\x00300\n" +
		"h2\x00h1\x00refs/heads/main\x00200\n" +
		"h1\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main", "feature"})

	l := Compute(g)

	if placementOf(t, l, "h3").Lane != 0 || placementOf(t, l, "h2").Lane != 0 || placementOf(t, l, "h1").Lane != 0 {
		t.Error("main chain should occupy lane 0")
	}
	f1 := placementOf(t, l, "f1")
	if f1.Lane != 1 {
		t.Errorf("f1 lane = %d, want 1", f1.Lane)
	}
	if f1.Color == placementOf(t, l, "h3").Color {
		t.Error("overlapping branches must not share a color")
	}
	if l.LaneCount != 2 {
		t.Errorf("lane count = %d, want 2", l.LaneCount)
	}
}

func TestComputeMergeLanding(t *testing.T) {
	// m merges b into the main chain: m -> (a, b), a -> r, b -> r.
	raw := "m\x00a b\x00refs/heads/main\x00400\n" +
		"a\x00r\x00refs/heads/main\x00300\n" +
		"b\x00r\x00refs/heads/feature\x00200\n" +
		"r\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main", "feature"})

	l := Compute(g)

	// First-parent chain holds lane 0, the merged branch lane 1.
	for _, hash := range []string{"m", "a", "r"} {
		if got := placementOf(t, l, hash).Lane; got != 0 {
			t.Errorf("%s lane = %d, want 0", hash, got)
		}
	}
	b := placementOf(t, l, "b")
	if b.Lane != 1 {
		t.Errorf("b lane = %d, want 1", b.Lane)
	}
	if len(l.Branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(l.Branches))
	}

	// The landing segments are drawn on the merged branch's color and
	// connect the merge commit down to b's lane.
	var landing *BranchLane
	for i := range l.Branches {
		if l.Branches[i].Color == b.Color {
			landing = &l.Branches[i]
		}
	}
	if landing == nil {
		t.Fatal("no branch lane carries b's color")
	}
	foundStart := false
	for _, s := range landing.Segments {
		if s.P1 == (Point{Lane: 0, Index: 0}) && s.P2 == (Point{Lane: 1, Index: 1}) {
			foundStart = true
		}
	}
	if !foundStart {
		t.Errorf("no landing segment leaves the merge commit, segments = %+v", landing.Segments)
	}
}

func TestComputeColorRecycling(t *testing.T) {
	// Two isolated single-commit heads: the second starts after the first
	// ended, so the color is recycled.
	raw := "o1\x00\x00refs/heads/one\x00300\n" +
		"o2\x00\x00refs/heads/two\x00200\n"
	g := buildGraph(t, raw, "one", []string{"one", "two"})

	l := Compute(g)

	if placementOf(t, l, "o1").Color != 0 {
		t.Errorf("o1 color = %d, want 0", placementOf(t, l, "o1").Color)
	}
	if placementOf(t, l, "o2").Color != 0 {
		t.Errorf("o2 color = %d, want recycled 0", placementOf(t, l, "o2").Color)
	}
}

func TestComputeUnknownParentIsRoot(t *testing.T) {
	raw := "h\x00gone1 gone2\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main"})

	l := Compute(g)

	if len(l.Placements) != 1 {
		t.Fatalf("placements = %d, want 1", len(l.Placements))
	}
	if l.Placements[0].Lane != 0 {
		t.Errorf("lane = %d, want 0", l.Placements[0].Lane)
	}
	if len(l.Branches) != 1 || len(l.Branches[0].Segments) != 0 {
		t.Errorf("orphan should form a trivial branch, got %+v", l.Branches)
	}
}

func TestComputeTimestampSkew(t *testing.T) {
	// h2's parent h1 sorts above it (newer timestamp); the parent edge is
	// dropped rather than traced upward.
	raw := "h1\x00\x00refs/heads/main\x00300\n" +
		"h2\x00h1\x00refs/heads/main\x00200\n"
	g := buildGraph(t, raw, "main", []string{"main"})

	l := Compute(g)

	if len(l.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(l.Placements))
	}
	// Both commits still get lanes; no segments can be drawn upward.
	for _, b := range l.Branches {
		for _, s := range b.Segments {
			if s.P2.Index <= s.P1.Index {
				t.Errorf("segment drawn upward: %+v", s)
			}
		}
	}
}

func TestComputePixelMapping(t *testing.T) {
	raw := "h1\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main"})

	l := Compute(g)

	p := l.Placements[0]
	if p.X != p.Lane*LaneUnit+OffsetX {
		t.Errorf("X = %d", p.X)
	}
	if p.Y != p.Index*RowHeight+OffsetY {
		t.Errorf("Y = %d", p.Y)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	l := Compute(nil)
	if len(l.Placements) != 0 || len(l.Branches) != 0 {
		t.Errorf("nil graph should yield an empty layout, got %+v", l)
	}

	l = Compute(&commitgraph.Graph{})
	if len(l.Placements) != 0 {
		t.Errorf("empty graph should yield no placements")
	}
}

func TestComputeLaneAssignedOnce(t *testing.T) {
	// A busier graph: every commit must have exactly one placement.
	raw := "m2\x00a3 f2\x00refs/heads/main\x00800\n" +
		"a3\x00m1\x00refs/heads/main\x00700\n" +
		"f2\x00f1\x00refs/heads/feature\x00600\n" +
		"m1\x00a2 f1\x00refs/heads/main\x00500\n" +
		"a2\x00a1\x00refs/heads/main\x00400\n" +
		"f1\x00a1\x00refs/heads/feature\x00300\n" +
		"a1\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main", "feature"})

	l := Compute(g)

	seen := make(map[string]int)
	for _, p := range l.Placements {
		seen[p.Hash]++
	}
	if len(seen) != 7 {
		t.Fatalf("placements for %d commits, want 7", len(seen))
	}
	for hash, n := range seen {
		if n != 1 {
			t.Errorf("%s placed %d times", hash, n)
		}
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	raw := "h2\x00h1\x00refs/heads/main\x00200\n" +
		"h1\x00\x00refs/heads/main\x00100\n"
	g := buildGraph(t, raw, "main", []string{"main"})
	l := Compute(g)

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(back.Placements) != len(l.Placements) || len(back.Branches) != len(l.Branches) {
		t.Error("round trip changed shape")
	}
}

func TestColorHex(t *testing.T) {
	if ColorHex(0) != Palette[0] {
		t.Error("color 0 should map to the first palette entry")
	}
	if ColorHex(len(Palette)) != Palette[0] {
		t.Error("colors wrap around the palette")
	}
	if ColorHex(-1) != Palette[0] {
		t.Error("negative colors clamp to the first entry")
	}
}
