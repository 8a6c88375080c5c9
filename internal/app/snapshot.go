package app

import "truf/internal/domain"

// PlayerSnapshot is the per-player slice of a state snapshot.
type PlayerSnapshot struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Hand []domain.Card `json:"hand"`
}

// Snapshot is the derived game state broadcast to the transport on every
// state change.
type Snapshot struct {
	Players     []PlayerSnapshot   `json:"players"`
	Phase       domain.Phase       `json:"phase"`
	DiscardPile []domain.PileEntry `json:"discardPile"`
	TrufSuit    domain.Suit        `json:"trufSuit,omitempty"`
	BidWinner   string             `json:"bidWinner,omitempty"`
	GameMode    domain.GameMode    `json:"gameMode,omitempty"`
	CurrentTurn string             `json:"currentTurn,omitempty"`
	TrickWins   map[string]int     `json:"trickWins"`
	Scoreboard  map[string]int     `json:"scoreboard"`
}

// copyCounts snapshots a counter map so later engine mutations cannot leak
// into an already emitted event.
func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// BuildSnapshot derives the outbound state view from a game.
func BuildSnapshot(g *domain.Game) Snapshot {
	snap := Snapshot{
		Players:     make([]PlayerSnapshot, 0, len(g.Players)),
		Phase:       g.Phase,
		DiscardPile: g.DiscardPile,
		TrufSuit:    g.TrufSuit,
		GameMode:    g.GameMode,
		TrickWins:   copyCounts(g.TrickWins),
		Scoreboard:  copyCounts(g.Scoreboard),
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{ID: p.ID, Name: p.Name, Hand: p.Hand})
	}
	if g.BidWinner != nil {
		snap.BidWinner = g.BidWinner.Name
	}
	if g.CurrentTurn != nil {
		snap.CurrentTurn = g.CurrentTurn.ID
	}
	return snap
}
