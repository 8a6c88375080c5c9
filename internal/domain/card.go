package domain

import "fmt"

// Suit identifies one of the four card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists all suits in deck-construction order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Values lists card values in deck-construction order.
var Values = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "j", "q", "k", "a"}

// bidValues maps a card value to its bidding contribution.
// Number cards count face value, face cards count zero, ace counts one.
var bidValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"j": 0, "q": 0, "k": 0, "a": 1,
}

// playValues maps a card value to its trick-comparison strength, ace high.
var playValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"j": 11, "q": 12, "k": 13, "a": 14,
}

// bidRankValues orders card values for the bid-rank total order: jacks are
// lowest, then queens, kings, aces, then 2 through 10.
var bidRankValues = []string{"j", "q", "k", "a", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

// bidRankSuits orders suits within a bid-rank value group.
var bidRankSuits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Card is a single playing card. BidValue feeds the bidding total and
// BidRank is a unique 1..52 position used only to pick the trump-determining
// card. Cards are immutable once dealt.
type Card struct {
	Suit     Suit   `json:"suit"`
	Value    string `json:"value"`
	BidValue int    `json:"bidValue"`
	BidRank  int    `json:"bidRank"`
}

// CardOf builds the canonical card for a value/suit pair.
func CardOf(value string, suit Suit) Card {
	return Card{
		Suit:     suit,
		Value:    value,
		BidValue: bidValues[value],
		BidRank:  bidRankOf(value, suit),
	}
}

func bidRankOf(value string, suit Suit) int {
	vi, si := -1, -1
	for i, v := range bidRankValues {
		if v == value {
			vi = i
			break
		}
	}
	for i, s := range bidRankSuits {
		if s == suit {
			si = i
			break
		}
	}
	if vi < 0 || si < 0 {
		return 0
	}
	return vi*4 + si + 1
}

// PlayValue returns the trick-comparison strength of the card, ace high.
func (c Card) PlayValue() int {
	return playValues[c.Value]
}

// Equal reports whether two cards are the same suit and value.
func (c Card) Equal(other Card) bool {
	return c.Suit == other.Suit && c.Value == other.Value
}

func (c Card) String() string {
	return fmt.Sprintf("%s_of_%s", c.Value, c.Suit)
}
