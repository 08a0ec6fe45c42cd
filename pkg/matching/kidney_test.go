package matching

import (
	"testing"

	"github.com/privmatch/zkmatch/config"
)

// TestE6KidneyExchange exercises spec scenario E6: 5 pairs, a compatibility
// edge for every ordered pair.
func TestE6KidneyExchange(t *testing.T) {
	var in KidneyInput
	idx := 0
	const numPairs = 5
	for i := 0; i < numPairs; i++ {
		for j := 0; j < numPairs; j++ {
			if i == j {
				continue
			}
			in.Edges[idx] = Edge{From: i, To: j}
			idx++
		}
	}
	in.ActualEdges = idx

	result := SolveKidney(in)
	if result.ActualCycles == 0 {
		t.Fatal("expected at least one cycle with a fully connected compatibility graph")
	}

	used := map[int]bool{}
	for c := 0; c < result.ActualCycles; c++ {
		cyc := result.Cycles[c]
		for _, e := range cyc {
			if e == Unmatched {
				continue
			}
			if used[e] {
				t.Fatalf("edge %d appears in two selected cycles", e)
			}
			used[e] = true
		}
	}
}

func TestSolveKidneyCycleValidity(t *testing.T) {
	var in KidneyInput
	// A single 3-cycle: 0->1->2->0.
	in.Edges[0] = Edge{From: 0, To: 1}
	in.Edges[1] = Edge{From: 1, To: 2}
	in.Edges[2] = Edge{From: 2, To: 0}
	in.ActualEdges = 3

	result := SolveKidney(in)
	if result.ActualCycles != 1 {
		t.Fatalf("expected exactly 1 cycle, got %d", result.ActualCycles)
	}
	cyc := result.Cycles[0]
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if in.Edges[cyc[i]].To != in.Edges[cyc[j]].From {
			t.Fatalf("cycle %v is not a valid ring at position %d", cyc, i)
		}
	}
}

func TestSolveKidney2Cycle(t *testing.T) {
	var in KidneyInput
	in.Edges[0] = Edge{From: 0, To: 1}
	in.Edges[1] = Edge{From: 1, To: 0}
	in.ActualEdges = 2

	result := SolveKidney(in)
	if result.ActualCycles != 1 {
		t.Fatalf("expected exactly 1 cycle, got %d", result.ActualCycles)
	}
	if result.Cycles[0][2] != Unmatched {
		t.Fatalf("2-cycle should pad its third slot with Unmatched, got %d", result.Cycles[0][2])
	}
}

func TestSolveKidneyNoCyclesWhenAcyclic(t *testing.T) {
	var in KidneyInput
	in.Edges[0] = Edge{From: 0, To: 1}
	in.Edges[1] = Edge{From: 1, To: 2}
	in.ActualEdges = 2

	result := SolveKidney(in)
	if result.ActualCycles != 0 {
		t.Fatalf("expected no cycles in an acyclic edge set, got %d", result.ActualCycles)
	}
}

func TestSolveKidneyRespectsMaxCycles(t *testing.T) {
	var in KidneyInput
	idx := 0
	for i := 0; i < config.MaxEdges/2 && idx+1 < config.MaxEdges; i++ {
		a, b := idx, idx+1
		in.Edges[idx] = Edge{From: a, To: b}
		in.Edges[idx+1] = Edge{From: b, To: a}
		idx += 2
	}
	in.ActualEdges = idx

	result := SolveKidney(in)
	if result.ActualCycles > config.MaxCycles {
		t.Fatalf("ActualCycles=%d exceeds MaxCycles=%d", result.ActualCycles, config.MaxCycles)
	}
}
