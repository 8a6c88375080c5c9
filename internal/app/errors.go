package app

import "errors"

// Rejected-intent errors. All leave game state unchanged and are reported
// to the originating player only.
var (
	ErrDuplicateName    = errors.New("username already taken")
	ErrTableFull        = errors.New("table is full")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrNeedFourPlayers  = errors.New("exactly 4 players are required")
	ErrUnknownPlayer    = errors.New("player not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrInvalidBidType   = errors.New("unknown bid type")
	ErrBidTypeUnset     = errors.New("bid type not chosen yet")
	ErrBidTypeLocked    = errors.New("bid type cannot change after playing a bid card")
	ErrBidQuotaExceeded = errors.New("bid card quota already met")
	ErrNotBidWinner     = errors.New("only the bid winner may choose the game mode")
	ErrNoModeChoice     = errors.New("no game mode choice is pending")
	ErrUnknownGameMode  = errors.New("unknown game mode")
)
