package nakama

import "truf/internal/app"

// MatchNameTruf is the authoritative match handler name registered with Nakama.
const MatchNameTruf = "truf_match"

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpPlaceBidType    int64 = 2
	OpPlayBidCard     int64 = 3
	OpPlayTrickCard   int64 = 4
	OpChooseGameMode  int64 = 5
	OpFlipCard        int64 = 6
	OpResetGame       int64 = 7
	OpResetScoreboard int64 = 8
	OpRequestHands    int64 = 9

	// Server -> Client events
	OpGameUpdated        int64 = 100
	OpGameStarted        int64 = 101
	OpBidPlaced          int64 = 102
	OpCardPlayed         int64 = 103
	OpCardFlipped        int64 = 104
	OpTrufSuitUpdated    int64 = 105
	OpBidValuesUpdated   int64 = 106
	OpBidWinnerUpdated   int64 = 107
	OpGameModeUpdated    int64 = 108
	OpChooseGameModeAsk  int64 = 109
	OpPhaseChanged       int64 = 110
	OpCurrentTurnUpdated int64 = 111
	OpHandsUpdated       int64 = 112
	OpTrickWinner        int64 = 113
	OpDiscardPileUpdated int64 = 114
	OpClearPiles         int64 = 115
	OpScoreboardUpdated  int64 = 116
	OpGameEnded          int64 = 117
	OpInvalidPlay        int64 = 199
)

// eventOpCodes maps engine event kinds to wire op codes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventGameUpdated:        OpGameUpdated,
	app.EventGameStarted:        OpGameStarted,
	app.EventBidPlaced:          OpBidPlaced,
	app.EventCardPlayed:         OpCardPlayed,
	app.EventCardFlipped:        OpCardFlipped,
	app.EventTrufSuitUpdated:    OpTrufSuitUpdated,
	app.EventBidValuesUpdated:   OpBidValuesUpdated,
	app.EventBidWinnerUpdated:   OpBidWinnerUpdated,
	app.EventGameModeUpdated:    OpGameModeUpdated,
	app.EventChooseGameMode:     OpChooseGameModeAsk,
	app.EventPhaseChanged:       OpPhaseChanged,
	app.EventCurrentTurnUpdated: OpCurrentTurnUpdated,
	app.EventHandsUpdated:       OpHandsUpdated,
	app.EventTrickWinner:        OpTrickWinner,
	app.EventDiscardPileUpdated: OpDiscardPileUpdated,
	app.EventClearPiles:         OpClearPiles,
	app.EventScoreboardUpdated:  OpScoreboardUpdated,
	app.EventGameEnded:          OpGameEnded,
}

// Label is the match label advertised for match listing queries.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}
