package domain

import "errors"

// Rejected-play reasons. These leave game state untouched and are reported
// to the acting player only.
var (
	ErrTrumpLocked     = errors.New("cannot lead trump suit yet")
	ErrMustFollowSuit  = errors.New("must follow the lead suit")
	ErrBidSuitMismatch = errors.New("second bid card must match the suit of the first")
	ErrBidValueTooLow  = errors.New("combined bid value must be at least 7")
)

// MinDoubleBidValue is the smallest combined bid value a two-card bid may carry.
const MinDoubleBidValue = 7

// ValidateDoubleBid checks the second card of a doubleBids or noTrumps
// commitment against the first.
func ValidateDoubleBid(first, second Card) error {
	if second.Suit != first.Suit {
		return ErrBidSuitMismatch
	}
	if first.BidValue+second.BidValue < MinDoubleBidValue {
		return ErrBidValueTooLow
	}
	return nil
}

// HasTrumpBeenDiscarded reports whether any trump card sits in the discard pile.
func (g *Game) HasTrumpBeenDiscarded() bool {
	for _, e := range g.DiscardPile {
		if e.Card.Suit == g.TrufSuit {
			return true
		}
	}
	return false
}

// holdsOnlyTrump reports whether the player's entire remaining hand is trump.
func (g *Game) holdsOnlyTrump(p *Player) bool {
	for _, c := range p.Hand {
		if c.Suit != g.TrufSuit {
			return false
		}
	}
	return len(p.Hand) > 0
}

// recentDiscardsMixed reports whether the most recent completed trick in
// the discard pile contains more than one distinct suit, which counts as
// trump having been broken through mixed play.
func (g *Game) recentDiscardsMixed() bool {
	n := len(g.DiscardPile)
	if n < MaxPlayers {
		return false
	}
	recent := g.DiscardPile[n-MaxPlayers:]
	first := recent[0].Card.Suit
	for _, e := range recent[1:] {
		if e.Card.Suit != first {
			return true
		}
	}
	return false
}

// CanLeadTrump decides whether the player may open a trick with a trump
// card. On the first trick of the game only an all-trump hand qualifies;
// afterwards a prior trump discard or a mixed-suit last trick also unlocks it.
func (g *Game) CanLeadTrump(p *Player) bool {
	if len(g.DiscardPile) == 0 {
		return g.holdsOnlyTrump(p)
	}
	return g.HasTrumpBeenDiscarded() || g.holdsOnlyTrump(p) || g.recentDiscardsMixed()
}

// LeadSuit returns the suit of the first card in the pile, or "" when empty.
func LeadSuit(pile []PileEntry) Suit {
	if len(pile) == 0 {
		return ""
	}
	return pile[0].Card.Suit
}

// IsValidCardPlay validates a trick play without mutating state. The
// trump-lead restriction applies to the first card of a trick; follow-suit
// is enforced for the rest.
func (g *Game) IsValidCardPlay(p *Player, c Card) error {
	if len(g.Pile) == 0 {
		if c.Suit == g.TrufSuit && !g.CanLeadTrump(p) {
			return ErrTrumpLocked
		}
		return nil
	}
	lead := LeadSuit(g.Pile)
	if c.Suit == lead {
		return nil
	}
	for _, h := range p.Hand {
		if h.Suit == lead {
			return ErrMustFollowSuit
		}
	}
	return nil
}

// CompareCards resolves a completed trick. The highest trump wins if any
// trump is present, otherwise the highest card of the leading suit, with a
// defensive fallback to the highest card overall.
func CompareCards(pile []PileEntry, trufSuit Suit) PileEntry {
	highestOf := func(entries []PileEntry) (PileEntry, bool) {
		var best PileEntry
		found := false
		for _, e := range entries {
			if !found || e.Card.PlayValue() > best.Card.PlayValue() {
				best = e
				found = true
			}
		}
		return best, found
	}

	var trumps, leaders []PileEntry
	lead := LeadSuit(pile)
	for _, e := range pile {
		if e.Card.Suit == trufSuit {
			trumps = append(trumps, e)
		}
		if e.Card.Suit == lead {
			leaders = append(leaders, e)
		}
	}

	if best, ok := highestOf(trumps); ok {
		return best
	}
	if best, ok := highestOf(leaders); ok {
		return best
	}
	best, _ := highestOf(pile)
	return best
}
