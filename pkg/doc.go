// Package pkg provides the core libraries for gitlanes graph construction.
//
// # Overview
//
// Gitlanes turns a repository's git history into a cached branch graph and
// a lane layout suitable for editor graph panels. The pkg directory is
// organized into the following areas:
//
//  1. [gitexec] - Running git and parsing its plumbing output
//  2. [commitgraph] - The commit DAG model and merge detection
//  3. [lanes] - Lane assignment and recyclable branch colors
//  4. [cache], [snapshot] - Memory and durable graph caching
//  5. [pipeline] - Orchestration (memory → snapshot → incremental → full)
//  6. [history] - Recorded merge events for fast-forward merges
//  7. [render] - DOT, SVG, PDF, and PNG output
//
// # Architecture
//
// The typical data flow through gitlanes:
//
//	git log / git branch
//	         ↓
//	    [gitexec] package (run git, raw output)
//	         ↓
//	    [commitgraph] package (parse, limit, assemble)
//	         ↓
//	    [lanes] package (lane and color assignment)
//	         ↓
//	    JSON / SVG / editor panel output
//
// The [pipeline] package wraps the flow in its cache tiers: an in-memory
// tier with TTL, a durable snapshot tier keyed by head commit, and an
// incremental builder that extends a recent snapshot instead of walking
// the full history.
//
// # Quick Start
//
// Build a graph and lay it out:
//
//	repo, err := gitexec.Open("/path/to/repo", nil)
//	if err != nil {
//	    return err
//	}
//	svc := pipeline.New(repo, pipeline.Options{})
//	g := svc.GetGraph(ctx, false)
//	layout := lanes.Compute(g)
package pkg
