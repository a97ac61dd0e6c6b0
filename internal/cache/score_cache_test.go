package cache

import "testing"

func TestScoreKeyDistinguishesPairs(t *testing.T) {
	a := ScoreKey("ab", "c")
	b := ScoreKey("a", "bc")
	if a == b {
		t.Fatal("expected different keys for different pairs")
	}
	if a != ScoreKey("ab", "c") {
		t.Fatal("expected stable key")
	}
	if len(a) != len("score:")+64 {
		t.Fatalf("unexpected key length %d", len(a))
	}
}
