package domain

import "errors"

// Phase is the lifecycle stage of a Truf game.
type Phase string

const (
	// PhaseWaiting is the pre-game state: fewer than four players, or post-reset.
	PhaseWaiting Phase = "waiting"
	// PhaseBidding accepts bid-type selections and bid-card plays.
	PhaseBidding Phase = "bidding-phase"
	// PhasePlaying is the trick loop until all hands are exhausted.
	PhasePlaying Phase = "playing1-phase"
)

// phaseTransitions is the closed transition table. Anything not listed is
// an illegal transition.
var phaseTransitions = map[Phase][]Phase{
	PhaseWaiting: {PhaseBidding},
	PhaseBidding: {PhasePlaying, PhaseWaiting},
	PhasePlaying: {PhaseWaiting},
}

// CanTransition reports whether moving from p to next is legal.
func (p Phase) CanTransition(next Phase) bool {
	for _, t := range phaseTransitions[p] {
		if t == next {
			return true
		}
	}
	return false
}

// BidType is a player's declared bid commitment.
type BidType string

const (
	BidUnset    BidType = ""
	BidSingle   BidType = "singleBid"
	BidDouble   BidType = "doubleBids"
	BidNoTrumps BidType = "noTrumps"
)

// Quota returns how many bid cards the type commits the player to.
func (b BidType) Quota() int {
	switch b {
	case BidSingle:
		return 1
	case BidDouble, BidNoTrumps:
		return 2
	}
	return 0
}

// GameMode is the bidding outcome derived from the total bid value.
type GameMode string

const (
	ModeNone      GameMode = ""
	ModePas       GameMode = "Pas"
	ModeMainBawah GameMode = "Main Bawah"
	ModeMainAtas  GameMode = "Main Atas"
)

// Player is a seated participant. The hand is owned by the Game and
// mutated only through bidding and trick plays.
type Player struct {
	ID      string
	Name    string
	Hand    []Card
	BidType BidType
}

// HoldsCard returns the hand index of the given card, or -1.
func (p *Player) HoldsCard(c Card) int {
	for i, h := range p.Hand {
		if h.Equal(c) {
			return i
		}
	}
	return -1
}

// PileEntry is one played card awaiting resolution. OriginalIndex remembers
// the hand slot a bid card came from so it can be returned there. IsExtraPile
// marks the second card of a double or no-trumps bid.
type PileEntry struct {
	Card          Card `json:"card"`
	PlayerIndex   int  `json:"playerIndex"`
	OriginalIndex int  `json:"-"`
	IsExtraPile   bool `json:"isExtraPile"`
	FaceUp        bool `json:"faceUp"`
}

// MaxPlayers is the table size; startable games need exactly this many seats filled.
const MaxPlayers = 4

var (
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrTrumpAlreadySet   = errors.New("trump suit already set")
)

// Game is the authoritative state for one Truf table. It is owned by a
// single intent-processing actor; no method is safe for concurrent use.
type Game struct {
	Players     []*Player
	Deck        []Card
	Phase       Phase
	Pile        []PileEntry
	DiscardPile []PileEntry
	TrufSuit    Suit
	BidWinner   *Player
	GameMode    GameMode
	CurrentTurn *Player
	// BidValues holds the advertised per-seat bid values after resolution,
	// shifted by Main Atas / Main Bawah.
	BidValues  []int
	TrickWins  map[string]int
	Scoreboard map[string]int
}

// NewGame returns an empty table in the waiting phase.
func NewGame() *Game {
	return &Game{
		Phase:      PhaseWaiting,
		TrickWins:  map[string]int{},
		Scoreboard: map[string]int{},
	}
}

// IsUsernameTaken reports whether a seated player already uses the name.
// Comparison is case-sensitive.
func (g *Game) IsUsernameTaken(name string) bool {
	for _, p := range g.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// AddPlayer seats a player with an empty hand and zeroed counters. It
// returns false when the name is taken or the table is full.
func (g *Game) AddPlayer(id, name string) bool {
	if g.IsUsernameTaken(name) || len(g.Players) >= MaxPlayers {
		return false
	}
	g.Players = append(g.Players, &Player{ID: id, Name: name})
	// A returning name keeps its accumulated game wins.
	if _, ok := g.Scoreboard[name]; !ok {
		g.Scoreboard[name] = 0
	}
	g.TrickWins[name] = 0
	return true
}

// RemovePlayer removes a player by connection identity and reports whether
// a seat was freed.
func (g *Game) RemovePlayer(id string) bool {
	for i, p := range g.Players {
		if p.ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return true
		}
	}
	return false
}

// PlayerByID returns the player and seat index for a connection identity.
func (g *Game) PlayerByID(id string) (*Player, int) {
	for i, p := range g.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// Transition moves the game to the next phase, rejecting moves not in the
// transition table.
func (g *Game) Transition(next Phase) error {
	if !g.Phase.CanTransition(next) {
		return ErrIllegalTransition
	}
	g.Phase = next
	return nil
}

// SetTrumpSuit fixes the trump suit. It may be set exactly once per game.
func (g *Game) SetTrumpSuit(s Suit) error {
	if g.TrufSuit != "" {
		return ErrTrumpAlreadySet
	}
	g.TrufSuit = s
	return nil
}

// RecordTrickWin increments the trick counter for the named player. One
// call is one increment.
func (g *Game) RecordTrickWin(name string) {
	if _, ok := g.TrickWins[name]; ok {
		g.TrickWins[name]++
	}
}

// UpdateWins increments the cross-game win counter for the named player.
func (g *Game) UpdateWins(name string) {
	if _, ok := g.Scoreboard[name]; ok {
		g.Scoreboard[name]++
	}
}

// ResetScoreboard zeroes all scoreboard entries without removing keys.
func (g *Game) ResetScoreboard() {
	for name := range g.Scoreboard {
		g.Scoreboard[name] = 0
	}
}

// ResetRound clears all per-round state and returns the table to waiting.
// The cross-game scoreboard is preserved; only ResetScoreboard clears it.
func (g *Game) ResetRound() {
	g.Deck = nil
	g.Phase = PhaseWaiting
	g.Pile = nil
	g.DiscardPile = nil
	g.TrufSuit = ""
	g.BidWinner = nil
	g.GameMode = ModeNone
	g.CurrentTurn = nil
	g.BidValues = nil
	for _, p := range g.Players {
		p.Hand = nil
		p.BidType = BidUnset
	}
	for name := range g.TrickWins {
		g.TrickWins[name] = 0
	}
}
