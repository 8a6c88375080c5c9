// Package ws is a standalone websocket gateway for the Truf engine. One
// hub goroutine owns the game and applies intents strictly one at a time.
package ws

import (
	"encoding/json"

	"truf/internal/app"
	"truf/internal/domain"
)

// cardRef is the client-supplied card identity. The canonical card is
// rebuilt server-side so clients cannot forge bid values or ranks.
type cardRef struct {
	Suit  domain.Suit `json:"suit"`
	Value string      `json:"value"`
}

func (r cardRef) card() domain.Card {
	return domain.CardOf(r.Value, r.Suit)
}

// Message is the wire envelope in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound intent names.
const (
	intentJoinGame        = "joinGame"
	intentStartGame       = "startGame"
	intentPlaceBid        = "placeBid"
	intentPlayCard        = "playCard"         // bid-phase card
	intentPlayCardPlaying = "playCardPlaying1" // trick-phase card
	intentChooseGameMode  = "chooseGameMode"
	intentFlipCard        = "flipCard"
	intentResetGame       = "resetGame"
	intentResetScoreboard = "resetScoreboard"
	intentRequestHands    = "requestHands"
)

// Outbound event names, mirrored from the browser client's vocabulary.
var eventNames = map[app.EventKind]string{
	app.EventGameUpdated:        "gameUpdated",
	app.EventGameStarted:        "gameStarted",
	app.EventBidPlaced:          "bidPlaced",
	app.EventCardPlayed:         "cardPlayed",
	app.EventCardFlipped:        "cardFlipped",
	app.EventTrufSuitUpdated:    "updateTrufSuit",
	app.EventBidValuesUpdated:   "updatePlayerNamesAndBidValues",
	app.EventBidWinnerUpdated:   "updateBidWinner",
	app.EventGameModeUpdated:    "updateGameMode",
	app.EventChooseGameMode:     "showChooseGameModeButtons",
	app.EventPhaseChanged:       "phaseChanged",
	app.EventCurrentTurnUpdated: "updateCurrentTurn",
	app.EventHandsUpdated:       "updateHands",
	app.EventTrickWinner:        "roundWinner",
	app.EventDiscardPileUpdated: "updateDiscardPile",
	app.EventClearPiles:         "clearPiles",
	app.EventScoreboardUpdated:  "updateScoreboard",
	app.EventGameEnded:          "gameEnded",
}

const (
	eventJoinGameSuccess = "joinGameSuccess"
	eventJoinGameError   = "joinGameError"
	eventInvalidPlay     = "invalidPlay"
)

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: event, Data: raw})
}
