package domain

import "math/rand"

// CardsPerHand is the deal size for a four-player game, consuming the deck.
const CardsPerHand = 13

// NewDeck returns the canonical ordered 52-card deck with bid values and
// bid ranks populated.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, v := range Values {
			deck = append(deck, CardOf(v, s))
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using the provided
// source. Fisher-Yates via rand.Shuffle, every permutation equally likely.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealHands removes perHand cards from the front of the deck for each of n
// hands, in seating order. It returns the hands and the remaining deck.
func DealHands(deck []Card, n, perHand int) ([][]Card, []Card) {
	hands := make([][]Card, n)
	for i := 0; i < n; i++ {
		hands[i] = append([]Card{}, deck[:perHand]...)
		deck = deck[perHand:]
	}
	return hands, deck
}
