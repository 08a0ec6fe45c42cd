package matching

import "github.com/privmatch/zkmatch/config"

// Edge is one directed compatibility edge (hospital_id, pair_id) -> (hospital_id, pair_id)
// in the kidney-exchange donor/recipient graph. Compatibility itself is
// established by per-hospital ZK sub-proofs outside this core; here an edge
// is just an index pair already known to be compatible.
type Edge struct {
	From, To int // vertex indices into the flat pair list
}

// KidneyInput is Variant B's instance: a flat, index-only compatibility
// graph, never pointer-linked, per spec §4.4's "cyclic data -> index arrays"
// design note.
type KidneyInput struct {
	Edges      [config.MaxEdges]Edge
	ActualEdges int // number of real entries in Edges
}

// Cycle is a length-3 array of edge indices into KidneyInput.Edges, padded
// with Unmatched for 2-cycles.
type Cycle [3]int

// KidneyResult is Variant B's output: up to MaxCycles edge-disjoint cycles.
type KidneyResult struct {
	Cycles      [config.MaxCycles]Cycle
	ActualCycles int
}

// SolveKidney enumerates simple directed cycles of length 2 and 3 by
// triple-nested indexed iteration over ActualEdges (bounded by MaxEdges
// regardless of content), and greedily selects an edge-disjoint set,
// preferring length-3 cycles before length-2 ones, per spec §4.4.
func SolveKidney(in KidneyInput) KidneyResult {
	var result KidneyResult
	for i := range result.Cycles {
		result.Cycles[i] = Cycle{Unmatched, Unmatched, Unmatched}
	}

	used := make([]bool, config.MaxEdges)

	tryAccept := func(edgeIdxs ...int) bool {
		for _, e := range edgeIdxs {
			if used[e] {
				return false
			}
		}
		if result.ActualCycles >= config.MaxCycles {
			return false
		}
		var c Cycle
		for i := range c {
			c[i] = Unmatched
		}
		copy(c[:], edgeIdxs)
		result.Cycles[result.ActualCycles] = c
		result.ActualCycles++
		for _, e := range edgeIdxs {
			used[e] = true
		}
		return true
	}

	// Length-3 cycles first: edges (i -> j), (j -> k), (k -> i) over every
	// ordering of edge indices; once a cycle is taken its edges are marked
	// used, so its other rotations are not selected again.
	for i := 0; i < in.ActualEdges; i++ {
		for j := 0; j < in.ActualEdges; j++ {
			if j == i {
				continue
			}
			if in.Edges[i].To != in.Edges[j].From {
				continue
			}
			for k := 0; k < in.ActualEdges; k++ {
				if k == i || k == j {
					continue
				}
				if in.Edges[j].To != in.Edges[k].From || in.Edges[k].To != in.Edges[i].From {
					continue
				}
				if used[i] || used[j] || used[k] {
					continue
				}
				tryAccept(i, j, k)
			}
		}
	}

	// Then length-2 cycles: (i -> j), (j -> i).
	for i := 0; i < in.ActualEdges; i++ {
		for j := 0; j < in.ActualEdges; j++ {
			if j == i {
				continue
			}
			if in.Edges[i].To != in.Edges[j].From || in.Edges[j].To != in.Edges[i].From {
				continue
			}
			if used[i] || used[j] {
				continue
			}
			tryAccept(i, j)
		}
	}

	return result
}
