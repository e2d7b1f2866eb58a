package scoring

import "testing"

type ranked struct {
	id    string
	score float64
}

func TestRankDescendingIsStable(t *testing.T) {
	t.Parallel()

	items := []ranked{
		{id: "a", score: 70},
		{id: "b", score: 90},
		{id: "c", score: 70},
		{id: "d", score: 90},
		{id: "e", score: 10},
	}

	got := RankDescending(items, func(r ranked) float64 { return r.score })

	want := []string{"b", "d", "a", "c", "e"}
	for i, id := range want {
		if got[i].id != id {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, id, got[i].id, got)
		}
	}

	if items[0].id != "a" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestTop(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3}

	tests := []struct {
		name   string
		n      int
		expect int
	}{
		{name: "zero", n: 0, expect: 0},
		{name: "negative", n: -1, expect: 0},
		{name: "fewer", n: 2, expect: 2},
		{name: "more than available", n: 10, expect: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := len(Top(items, tt.n)); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}
