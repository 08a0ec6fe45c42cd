// Package matching implements C4's two solver variants. Both run as
// straight-line, fixed-iteration-bound state machines over integer-indexed
// participants, matching the spec's "no dynamic participant counts, no
// pointer-linked data" requirement so the same logic can later be
// transcribed into a circuit's Define method without change in shape.
package matching

import "github.com/privmatch/zkmatch/config"

// Unmatched mirrors config.Unmatched for readability in solver code.
const Unmatched = config.Unmatched

// Input is the permuted, index-only view of Variant A's instance: every
// student and college is already identified solely by its permuted slot.
type Input struct {
	StudentPrefs      [config.NS][config.MaxPrefs]int // student_prefs[s][k] = college id, or Unmatched padding
	CollegePrefs      [config.NC][config.NS]int        // college_prefs[c] = full proposal order over students
	CollegeCapacities [config.NC]int
	ActualStudents    int // actual_student_list: real student count, <= NS
	ActualColleges    int // actual_uni_list: real college count, <= NC
}

// Result is Variant A's output: one match per student.
type Result struct {
	StudentMatch [config.NS]int // college id the student is matched to, or Unmatched
}

// Solve runs college-proposing deferred acceptance (Gale-Shapley) with
// capacities. Each college proposes down its own preference list; a free or
// better-preferred student tentatively accepts, evicting its previous match
// if any. Students have capacity 1, so an eviction frees exactly one slot,
// at the student's previous college.
//
// Termination: each (s, c) pair is proposed to at most once, bounding the
// loop at NS*NC iterations regardless of preference list contents.
func Solve(in Input) Result {
	var result Result
	for s := range result.StudentMatch {
		result.StudentMatch[s] = Unmatched
	}

	var freeSlots [config.NC]int
	for c := 0; c < in.ActualColleges; c++ {
		freeSlots[c] = in.CollegeCapacities[c]
	}

	var nextOffer [config.NC]int

	// studentRank[s][c] = position of college c in student s's preference
	// list, or MaxPrefs if c is not acceptable to s.
	var studentRank [config.NS][config.NC]int
	for s := 0; s < in.ActualStudents; s++ {
		for c := 0; c < in.ActualColleges; c++ {
			studentRank[s][c] = config.MaxPrefs
		}
		for k := 0; k < config.MaxPrefs; k++ {
			c := in.StudentPrefs[s][k]
			if c == Unmatched || c < 0 || c >= in.ActualColleges {
				continue
			}
			studentRank[s][c] = k
		}
	}

	for iter := 0; iter < config.NS*config.NC; iter++ {
		c := progressingCollege(in, freeSlots, nextOffer)
		if c < 0 {
			break
		}

		s := in.CollegePrefs[c][nextOffer[c]]
		nextOffer[c]++

		if s == Unmatched || s < 0 || s >= in.ActualStudents {
			continue
		}

		rank := studentRank[s][c]
		if rank >= config.MaxPrefs {
			continue // c is unacceptable to s
		}

		current := result.StudentMatch[s]
		if current == Unmatched {
			result.StudentMatch[s] = c
			freeSlots[c]--
			continue
		}
		if rank < studentRank[s][current] {
			freeSlots[current]++
			result.StudentMatch[s] = c
			freeSlots[c]--
		}
		// else: s rejects c, freeSlots[c] unchanged.
	}

	return result
}

// progressingCollege returns the first college (in fixed index order) that
// still has a free slot and unexhausted proposals, or -1 if none remains.
func progressingCollege(in Input, freeSlots [config.NC]int, nextOffer [config.NC]int) int {
	for c := 0; c < in.ActualColleges; c++ {
		if freeSlots[c] > 0 && nextOffer[c] < in.ActualStudents {
			return c
		}
	}
	return -1
}

// Stable reports whether result contains no blocking pair: no (s, c) where
// s prefers c to its current match and c prefers s to one of its current
// matches or has a free slot. Used by tests, not by the solver itself.
func Stable(in Input, result Result, collegeRank func(c, s int) int) bool {
	var assignedTo [config.NC][]int
	for s := 0; s < in.ActualStudents; s++ {
		c := result.StudentMatch[s]
		if c != Unmatched {
			assignedTo[c] = append(assignedTo[c], s)
		}
	}

	for s := 0; s < in.ActualStudents; s++ {
		for k := 0; k < config.MaxPrefs; k++ {
			c := in.StudentPrefs[s][k]
			if c == Unmatched || c < 0 || c >= in.ActualColleges {
				continue
			}
			if c == result.StudentMatch[s] {
				break // reached current match in preference order; nothing beyond is preferred
			}
			// s prefers c to its current match (or is unmatched).
			if len(assignedTo[c]) < in.CollegeCapacities[c] {
				return false // c has a free slot and s prefers it
			}
			for _, other := range assignedTo[c] {
				if collegeRank(c, s) < collegeRank(c, other) {
					return false
				}
			}
		}
	}
	return true
}
