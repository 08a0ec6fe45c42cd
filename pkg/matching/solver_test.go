package matching

import (
	"testing"

	"github.com/privmatch/zkmatch/config"
)

func fillUnmatched(row []int) {
	for i := range row {
		row[i] = Unmatched
	}
}

// collegeRankFromPrefs builds a rank lookup closure over a college_prefs
// table, for use with Stable.
func collegeRankFromPrefs(collegePrefs [config.NC][config.NS]int) func(c, s int) int {
	return func(c, s int) int {
		for k, v := range collegePrefs[c] {
			if v == s {
				return k
			}
		}
		return config.NS
	}
}

// TestE1FiveStudentsThreeColleges exercises spec scenario E1.
func TestE1FiveStudentsThreeColleges(t *testing.T) {
	var in Input
	in.ActualStudents = 5
	in.ActualColleges = 3

	studentPrefs := [][]int{
		{0, 1, 2},
		{1, 0, 2},
		{1, 2, 0},
		{0, 2, 1},
		{2, 0, 1},
	}
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for s, row := range studentPrefs {
		copy(in.StudentPrefs[s][:], row)
	}

	collegePrefs := [][]int{
		{1, 3, 0, 2, 4},
		{2, 0, 4, 1, 3},
		{0, 2, 3, 4, 1},
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}
	for c, row := range collegePrefs {
		copy(in.CollegePrefs[c][:], row)
	}

	in.CollegeCapacities[0] = 3
	in.CollegeCapacities[1] = 1
	in.CollegeCapacities[2] = 1

	result := Solve(in)

	counts := map[int]int{}
	for s := 0; s < 5; s++ {
		c := result.StudentMatch[s]
		if c == Unmatched {
			t.Fatalf("student %d unmatched, expected all matched within {0,1,2}", s)
		}
		if c < 0 || c > 2 {
			t.Fatalf("student %d matched outside {0,1,2}: %d", s, c)
		}
		counts[c]++
	}
	if counts[0] != 3 || counts[1] != 1 || counts[2] != 1 {
		t.Fatalf("college load counts = %v, want {0:3,1:1,2:1}", counts)
	}

	if !Stable(in, result, collegeRankFromPrefs(in.CollegePrefs)) {
		t.Fatal("E1 result is not stable")
	}
}

// TestE2TrivialOneByOne exercises spec scenario E2.
func TestE2TrivialOneByOne(t *testing.T) {
	var in Input
	in.ActualStudents = 1
	in.ActualColleges = 1
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}
	in.StudentPrefs[0][0] = 0
	in.CollegePrefs[0][0] = 0
	in.CollegeCapacities[0] = 1

	result := Solve(in)
	if result.StudentMatch[0] != 0 {
		t.Fatalf("expected student 0 matched to college 0, got %d", result.StudentMatch[0])
	}
}

// TestE3AllUnmatchedPadding exercises spec scenario E3.
func TestE3AllUnmatchedPadding(t *testing.T) {
	var in Input
	in.ActualStudents = 0
	in.ActualColleges = 3
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}

	result := Solve(in)
	for s := 0; s < config.NS; s++ {
		if result.StudentMatch[s] != Unmatched {
			t.Fatalf("student %d should be Unmatched with zero active students, got %d", s, result.StudentMatch[s])
		}
	}
}

// TestE4ZeroCapacityCollegeNeverMatched exercises spec scenario E4.
func TestE4ZeroCapacityCollegeNeverMatched(t *testing.T) {
	var in Input
	in.ActualStudents = 3
	in.ActualColleges = 2
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}
	// Every student prefers college 0 (capacity 0) above college 1.
	for s := 0; s < 3; s++ {
		in.StudentPrefs[s][0] = 0
		in.StudentPrefs[s][1] = 1
	}
	in.CollegePrefs[0][0], in.CollegePrefs[0][1], in.CollegePrefs[0][2] = 0, 1, 2
	in.CollegePrefs[1][0], in.CollegePrefs[1][1], in.CollegePrefs[1][2] = 0, 1, 2
	in.CollegeCapacities[0] = 0
	in.CollegeCapacities[1] = 2

	result := Solve(in)
	for s := 0; s < 3; s++ {
		if result.StudentMatch[s] == 0 {
			t.Fatalf("student %d matched to zero-capacity college 0", s)
		}
	}
}

func TestCapacityInvariant(t *testing.T) {
	var in Input
	in.ActualStudents = 5
	in.ActualColleges = 2
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}
	for s := 0; s < 5; s++ {
		in.StudentPrefs[s][0] = 0
		in.StudentPrefs[s][1] = 1
	}
	in.CollegePrefs[0][0], in.CollegePrefs[0][1], in.CollegePrefs[0][2], in.CollegePrefs[0][3], in.CollegePrefs[0][4] = 0, 1, 2, 3, 4
	in.CollegePrefs[1][0], in.CollegePrefs[1][1], in.CollegePrefs[1][2], in.CollegePrefs[1][3], in.CollegePrefs[1][4] = 0, 1, 2, 3, 4
	in.CollegeCapacities[0] = 2
	in.CollegeCapacities[1] = 2

	result := Solve(in)
	counts := map[int]int{}
	for s := 0; s < 5; s++ {
		counts[result.StudentMatch[s]]++
	}
	if counts[0] > in.CollegeCapacities[0] {
		t.Fatalf("college 0 over capacity: %d > %d", counts[0], in.CollegeCapacities[0])
	}
	if counts[1] > in.CollegeCapacities[1] {
		t.Fatalf("college 1 over capacity: %d > %d", counts[1], in.CollegeCapacities[1])
	}
}

func TestSolveDeterministic(t *testing.T) {
	var in Input
	in.ActualStudents = 5
	in.ActualColleges = 3
	for s := range in.StudentPrefs {
		fillUnmatched(in.StudentPrefs[s][:])
	}
	for c := range in.CollegePrefs {
		fillUnmatched(in.CollegePrefs[c][:])
	}
	in.StudentPrefs[0] = [config.MaxPrefs]int{0, 1, 2}
	in.StudentPrefs[1] = [config.MaxPrefs]int{1, 0, 2}
	in.StudentPrefs[2] = [config.MaxPrefs]int{1, 2, 0}
	in.StudentPrefs[3] = [config.MaxPrefs]int{0, 2, 1}
	in.StudentPrefs[4] = [config.MaxPrefs]int{2, 0, 1}
	for s := range in.StudentPrefs {
		for k := 3; k < config.MaxPrefs; k++ {
			in.StudentPrefs[s][k] = Unmatched
		}
	}
	in.CollegePrefs[0] = [config.NS]int{1, 3, 0, 2, 4}
	in.CollegePrefs[1] = [config.NS]int{2, 0, 4, 1, 3}
	in.CollegePrefs[2] = [config.NS]int{0, 2, 3, 4, 1}
	for c := range in.CollegePrefs {
		for k := 5; k < config.NS; k++ {
			in.CollegePrefs[c][k] = Unmatched
		}
	}
	in.CollegeCapacities[0], in.CollegeCapacities[1], in.CollegeCapacities[2] = 3, 1, 1

	r1 := Solve(in)
	r2 := Solve(in)
	if r1 != r2 {
		t.Fatal("Solve is not deterministic for identical inputs")
	}
}
