package app

import "truf/internal/domain"

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventGameUpdated        EventKind = "game_updated"
	EventGameStarted        EventKind = "game_started"
	EventBidPlaced          EventKind = "bid_placed"
	EventCardPlayed         EventKind = "card_played"
	EventCardFlipped        EventKind = "card_flipped"
	EventTrufSuitUpdated    EventKind = "truf_suit_updated"
	EventBidValuesUpdated   EventKind = "bid_values_updated"
	EventBidWinnerUpdated   EventKind = "bid_winner_updated"
	EventGameModeUpdated    EventKind = "game_mode_updated"
	EventChooseGameMode     EventKind = "choose_game_mode"
	EventPhaseChanged       EventKind = "phase_changed"
	EventCurrentTurnUpdated EventKind = "current_turn_updated"
	EventHandsUpdated       EventKind = "hands_updated"
	EventTrickWinner        EventKind = "trick_winner"
	EventDiscardPileUpdated EventKind = "discard_pile_updated"
	EventClearPiles         EventKind = "clear_piles"
	EventScoreboardUpdated  EventKind = "scoreboard_updated"
	EventGameEnded          EventKind = "game_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

// pileIDs are the table positions as seen from a viewer's own perspective.
var pileIDs = [4]string{"bottomPile", "rightPile", "topPile", "leftPile"}

// PerspectivePileID returns the pile position a viewer sees a play at, so
// every client renders its own cards at the bottom of the table.
func PerspectivePileID(viewerIndex, playerIndex int) string {
	return pileIDs[(viewerIndex-playerIndex+4)%4]
}

type CardPlayedPayload struct {
	PileID string      `json:"pileId"`
	Card   domain.Card `json:"card"`
	FaceUp bool        `json:"faceUp"`
}

type CardFlippedPayload struct {
	PileID string      `json:"pileId"`
	Card   domain.Card `json:"card"`
	FaceUp bool        `json:"faceUp"`
}

type BidPlacedPayload struct {
	Name    string         `json:"name"`
	BidType domain.BidType `json:"bidType"`
}

type BidValuesPayload struct {
	PlayerNames []string `json:"playerNames"`
	BidValues   []int    `json:"bidValues"`
}

type TrickWinnerPayload struct {
	WinnerName  string      `json:"winnerName"`
	WinningCard domain.Card `json:"winningCard"`
}

type ScoreboardPayload struct {
	TrickWins  map[string]int `json:"trickWins"`
	Scoreboard map[string]int `json:"scoreboard"`
}

type GameEndedPayload struct {
	WinnerName string         `json:"winnerName"`
	TrickWins  map[string]int `json:"trickWins"`
	Scoreboard map[string]int `json:"scoreboard"`
}

// broadcast is shorthand for an untargeted event.
func broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

// target is shorthand for an event delivered to a single player.
func target(kind EventKind, payload any, playerID string) Event {
	return Event{Kind: kind, Payload: payload, Recipients: []string{playerID}}
}
