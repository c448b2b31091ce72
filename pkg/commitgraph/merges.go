package commitgraph

// classifyMerges infers three-way merges from merge commits and reconciles
// them with externally recorded merge events.
//
// For a merge commit m with first parent p1 and second parent p2:
//
//   - "to" candidates are branches on m and p1 but not p2: the lineage the
//     merge landed on.
//   - "from" candidates are branches on p2 that either never reached p1,
//     or sit on m without being a "to" candidate: the lineage that was
//     merged in.
//
// The repository's current branch is preferred as the target when it
// qualifies. Only the first merge per distinct (from, to) pair is kept;
// later duplicates are dropped silently.
//
// Recorded events fill the gaps history cannot show (fast-forward merges
// produce no commit): an event whose branches both still exist locally is
// added unless that pair was already detected. The exported list keeps
// only three-way merges; fast-forward events seed detection but are not
// conflated into the result.
func classifyMerges(ordered []CommitNode, nodes map[string]*CommitNode, current string, branches []string, recorded []Merge) []Merge {
	var merges []Merge
	seen := make(map[[2]string]bool)

	for _, commit := range ordered {
		if !commit.IsMerge() {
			continue
		}
		first, ok := nodes[commit.Parents[0]]
		if !ok {
			continue
		}
		second, ok := nodes[commit.Parents[1]]
		if !ok {
			continue
		}

		toBranch := pickToBranch(commit, first, second, current)
		fromBranch := pickFromBranch(commit, first, second, toBranch)
		if toBranch == "" || fromBranch == "" || toBranch == fromBranch {
			continue
		}

		pair := [2]string{fromBranch, toBranch}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		merges = append(merges, Merge{
			From:        fromBranch,
			To:          toBranch,
			Commit:      commit.Hash,
			Type:        MergeThreeWay,
			Description: "Merged " + fromBranch + " into " + toBranch,
			Timestamp:   commit.Timestamp,
		})
	}

	local := make(BranchSet, len(branches))
	for _, name := range branches {
		local.Add(name)
	}
	for _, event := range recorded {
		if !local.Has(event.From) || !local.Has(event.To) {
			continue
		}
		pair := [2]string{event.From, event.To}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		merges = append(merges, event)
	}

	// Fast-forward events seed the seen set above but stay out of the
	// exported list.
	threeWay := merges[:0]
	for _, m := range merges {
		if m.Type == MergeThreeWay {
			threeWay = append(threeWay, m)
		}
	}
	return threeWay
}

// pickToBranch selects the merge target: a branch on both the merge commit
// and its first parent that the second parent never reached. The current
// branch wins when it qualifies, otherwise the first candidate in sorted
// order.
func pickToBranch(commit CommitNode, first, second *CommitNode, current string) string {
	var candidates []string
	for _, name := range commit.Branches.Names() {
		if first.Branches.Has(name) && !second.Branches.Has(name) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	for _, name := range candidates {
		if name == current {
			return name
		}
	}
	return candidates[0]
}

// pickFromBranch selects the merge source: the first branch on the second
// parent that either never reached the first parent, or sits on the merge
// commit without being the chosen target lineage.
func pickFromBranch(commit CommitNode, first, second *CommitNode, toBranch string) string {
	for _, name := range second.Branches.Names() {
		if !first.Branches.Has(name) {
			return name
		}
		if commit.Branches.Has(name) && name != toBranch {
			return name
		}
	}
	return ""
}
