package search

import (
	"testing"
)

func TestFuseCombinesRanks(t *testing.T) {
	// id 1 ranks first lexically and second in vector search, so it should
	// dominate the fused order over id 2, which only ever appears in the
	// vector leg.
	lexical := []int64{1, 3}
	vector := []int64{2, 1}

	fused := fuse(lexical, vector)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused ids, got %d: %+v", len(fused), fused)
	}
	if fused[0].id != 1 {
		t.Fatalf("expected id 1 to rank first, got %+v", fused)
	}
}

func TestFuseEmptyInputs(t *testing.T) {
	fused := fuse(nil, nil)
	if len(fused) != 0 {
		t.Fatalf("expected no fused hits for empty input, got %+v", fused)
	}
}

func TestFuseDeterministicTiebreak(t *testing.T) {
	// id 10 appears only in the lexical list (at 0-based index 86) and id 20
	// only in the vector list (at index 2), so their single-term scores are
	// 0.7/(60+87) and 0.3/(60+3), both 1/210 and equal as float64; first-seen order
	// (lexical before vector) must break the tie deterministically.
	lexical := make([]int64, 0, 87)
	for id := int64(100); id < 186; id++ {
		lexical = append(lexical, id)
	}
	lexical = append(lexical, 10)
	fused := fuse(lexical, []int64{900, 901, 20})
	if len(fused) != 90 {
		t.Fatalf("expected 90 fused ids, got %d", len(fused))
	}
	pos := make(map[int64]int, len(fused))
	for i, h := range fused {
		pos[h.id] = i
	}
	if fused[pos[10]].score != fused[pos[20]].score {
		t.Fatalf("expected equal single-term scores, got %+v and %+v", fused[pos[10]], fused[pos[20]])
	}
	if pos[10] > pos[20] {
		t.Fatalf("expected lexical-first tiebreak to keep id 10 before id 20, got positions %d and %d", pos[10], pos[20])
	}
}
