// Package bot provides in-process agents that fill empty seats and play
// legal moves, so a table can start without four humans.
package bot

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"truf/internal/domain"
)

const botIDPrefix = "bot:"

// suitOrder breaks ties between equal card values when choosing a bid card.
var suitOrder = map[domain.Suit]int{
	domain.Clubs:    0,
	domain.Diamonds: 1,
	domain.Hearts:   2,
	domain.Spades:   3,
}

// Agent is one seated bot. Agents are stateless between turns; all
// decisions read the authoritative game.
type Agent struct {
	ID   string
	Name string
}

// NewAgent creates an agent with a fresh connection identity and a name
// unique enough to pass the duplicate-name check.
func NewAgent(seat int) *Agent {
	id := uuid.NewString()
	return &Agent{
		ID:   botIDPrefix + id,
		Name: fmt.Sprintf("Bot %d (%s)", seat+1, id[:4]),
	}
}

// IsBot reports whether a connection identity belongs to a bot seat.
func IsBot(id string) bool {
	return strings.HasPrefix(id, botIDPrefix)
}

// ChooseBidType always commits to a single bid.
func (a *Agent) ChooseBidType() domain.BidType {
	return domain.BidSingle
}

// ChooseBidCard picks the lowest card in the hand, ordered by play value
// then clubs, diamonds, hearts, spades.
func (a *Agent) ChooseBidCard(hand []domain.Card) (domain.Card, bool) {
	if len(hand) == 0 {
		return domain.Card{}, false
	}
	best := hand[0]
	for _, c := range hand[1:] {
		if c.PlayValue() < best.PlayValue() ||
			(c.PlayValue() == best.PlayValue() && suitOrder[c.Suit] < suitOrder[best.Suit]) {
			best = c
		}
	}
	return best, true
}

// ChooseGameMode resolves a Pas outcome for a bot bid winner.
func (a *Agent) ChooseGameMode() domain.GameMode {
	return domain.ModeMainBawah
}

// ChooseTrickCard returns the first card in hand the engine would accept.
func (a *Agent) ChooseTrickCard(g *domain.Game, p *domain.Player) (domain.Card, bool) {
	for _, c := range p.Hand {
		if g.IsValidCardPlay(p, c) == nil {
			return c, true
		}
	}
	return domain.Card{}, false
}
