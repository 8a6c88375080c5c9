package domain

import "testing"

func TestBidRankTotalOrder(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}

	seen := make(map[int]Card)
	for _, c := range deck {
		if c.BidRank < 1 || c.BidRank > 52 {
			t.Fatalf("bid rank out of range for %s: %d", c, c.BidRank)
		}
		if prev, ok := seen[c.BidRank]; ok {
			t.Fatalf("bid rank %d shared by %s and %s", c.BidRank, prev, c)
		}
		seen[c.BidRank] = c
	}
}

func TestBidRankAnchors(t *testing.T) {
	tests := []struct {
		value string
		suit  Suit
		want  int
	}{
		{"j", Clubs, 1},
		{"j", Spades, 4},
		{"a", Clubs, 13},
		{"a", Spades, 16},
		{"2", Clubs, 17},
		{"2", Spades, 20},
		{"10", Clubs, 49},
		{"10", Spades, 52},
	}
	for _, tt := range tests {
		if got := CardOf(tt.value, tt.suit).BidRank; got != tt.want {
			t.Errorf("bidRank(%s_of_%s) = %d, want %d", tt.value, tt.suit, got, tt.want)
		}
	}
}

func TestBidValues(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"2", 2}, {"5", 5}, {"10", 10},
		{"j", 0}, {"q", 0}, {"k", 0},
		{"a", 1},
	}
	for _, tt := range tests {
		if got := CardOf(tt.value, Hearts).BidValue; got != tt.want {
			t.Errorf("bidValue(%s) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestPlayValueOrdering(t *testing.T) {
	order := []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "j", "q", "k", "a"}
	for i := 1; i < len(order); i++ {
		lo := CardOf(order[i-1], Clubs)
		hi := CardOf(order[i], Clubs)
		if lo.PlayValue() >= hi.PlayValue() {
			t.Errorf("play value of %s (%d) not below %s (%d)", lo, lo.PlayValue(), hi, hi.PlayValue())
		}
	}
}
