// Package render turns a laid-out commit graph into visual output.
//
// The pipeline is DOT → SVG (via Graphviz) → optional PDF/PNG conversion
// (via rsvg-convert). Node colors come from the lane layout's recycled
// color indexes, so the rendered picture matches what an editor panel
// would draw from the same Layout.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/lanes"
)

// Options configures commit graph rendering.
type Options struct {
	// Detailed includes lane, timestamp and full hash in node labels.
	// When false, only the abbreviated hash and branch tips are shown.
	Detailed bool
}

// ToDOT converts a graph and its layout to Graphviz DOT format. Commits
// are colored by their layout color; branch tips are part of the label;
// merge commits are drawn with a doubled outline.
func ToDOT(g *commitgraph.Graph, l *lanes.Layout, opts Options) string {
	colors := make(map[string]int, len(l.Placements))
	laneOf := make(map[string]int, len(l.Placements))
	for _, p := range l.Placements {
		colors[p.Hash] = p.Color
		laneOf[p.Hash] = p.Lane
	}

	var buf bytes.Buffer
	buf.WriteString("digraph commits {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmtLabel(n, laneOf[n.Hash], opts.Detailed)
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			fmt.Sprintf("fillcolor=%q", lanes.ColorHex(colors[n.Hash])),
		}
		if n.IsMerge() {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Hash, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if _, known := colors[e.From]; !known {
			// Unknown ancestors at the graph boundary have no node.
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *commitgraph.CommitNode, lane int, detailed bool) string {
	short := n.Hash
	if len(short) > 8 {
		short = short[:8]
	}

	parts := []string{short}
	if tips := n.Branches.Names(); len(tips) > 0 {
		parts = append(parts, strings.Join(tips, ", "))
	}
	if detailed {
		parts = append(parts, fmt.Sprintf("lane: %d", lane), fmt.Sprintf("ts: %d", n.Timestamp))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the picture starts at
// origin with explicit pixel dimensions. Graphviz emits translated
// viewBoxes that embed poorly in editor webviews.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
