package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"truf/internal/app"
	"truf/internal/bot"
	"truf/internal/domain"
)

// MatchState holds the authoritative runtime state for one Truf table.
type MatchState struct {
	Game      *domain.Game
	App       *app.Service
	Presences map[string]runtime.Presence

	BotsEnabled      bool
	BotFillDelay     int64 // ticks to wait before filling seats with bots
	BotActDelay      int64 // ticks between bot actions
	ShortHandedSince int64 // tick when a short-handed lobby was first seen
	BotWaitUntil     int64 // tick when the next bot action is allowed
	Bots             map[string]*bot.Agent
}

type matchHandler struct{}

// cardRef is the client-supplied card identity. The canonical card is
// rebuilt server-side so clients cannot forge bid values or ranks.
type cardRef struct {
	Suit  domain.Suit `json:"suit"`
	Value string      `json:"value"`
}

func (r cardRef) card() domain.Card {
	return domain.CardOf(r.Value, r.Suit)
}

// MatchInit creates an empty table in the waiting phase.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	state := &MatchState{
		Game:         domain.NewGame(),
		App:          app.NewService(nil),
		Presences:    make(map[string]runtime.Presence),
		Bots:         make(map[string]*bot.Agent),
		BotFillDelay: 5,
		BotActDelay:  2,
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["truf_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["truf_bot_fill_delay_sec"]; ok {
			if i, err := strconv.ParseInt(val, 10, 64); err == nil && i > 0 {
				state.BotFillDelay = i
			}
		}
		if val, ok := env["truf_bot_act_delay_sec"]; ok {
			if i, err := strconv.ParseInt(val, 10, 64); err == nil && i > 0 {
				state.BotActDelay = i
			}
		}
	}

	labelBytes, err := json.Marshal(buildLabel(state.Game))
	if err != nil {
		logger.Error("MatchInit: failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func buildLabel(g *domain.Game) Label {
	open := 0
	if g.Phase == domain.PhaseWaiting {
		open = domain.MaxPlayers - len(g.Players)
	}
	return Label{Open: open, Game: "truf", Phase: string(g.Phase)}
}

// MatchJoinAttempt rejects duplicate usernames and full tables before the
// presence is admitted.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	s, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if s.Game.IsUsernameTaken(presence.GetUsername()) {
		return s, false, "username already taken"
	}

	if len(s.Game.Players) >= domain.MaxPlayers {
		// A waiting-phase bot seat can be handed over to a human.
		if s.Game.Phase == domain.PhaseWaiting && len(s.Bots) > 0 {
			return s, true, ""
		}
		return s, false, "match full"
	}

	return s, true, ""
}

// MatchJoin seats admitted presences, evicting a bot when the table was
// filled by auto-fill.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		s.Presences[uid] = p

		if len(s.Game.Players) >= domain.MaxPlayers {
			if botID := mh.anyBotID(s); botID != "" && s.Game.Phase == domain.PhaseWaiting {
				logger.Info("MatchJoin: replacing bot %s with human %s", botID, uid)
				delete(s.Bots, botID)
				mh.dispatch(s, dispatcher, logger, s.App.Leave(s.Game, botID))
			}
		}

		events, err := s.App.Join(s.Game, uid, p.GetUsername())
		if err != nil {
			// Join attempt already vetted the name; this is a race loss.
			logger.Warn("MatchJoin: user %s could not be seated: %v", uid, err)
			continue
		}
		mh.dispatch(s, dispatcher, logger, events)
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

func (mh *matchHandler) anyBotID(s *MatchState) string {
	for id := range s.Bots {
		return id
	}
	return ""
}

// MatchLeave frees seats. The engine abandons the round when a seat
// becomes vacant mid-game.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)
		mh.dispatch(s, dispatcher, logger, s.App.Leave(s.Game, uid))
	}

	if mh.humanCount(s) == 0 {
		logger.Info("MatchLeave: terminating match with no humans")
		return nil
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

func (mh *matchHandler) humanCount(s *MatchState) int {
	n := 0
	for _, p := range s.Game.Players {
		if !bot.IsBot(p.ID) {
			n++
		}
	}
	return n
}

// MatchLoop processes inbound intents one at a time, then lets bots act.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		mh.handleMessage(s, dispatcher, logger, msg)
	}

	if s.BotsEnabled {
		mh.processBots(s, dispatcher, logger, tick)
	}

	return s
}

func (mh *matchHandler) handleMessage(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var (
		events []app.Event
		err    error
	)

	switch msg.GetOpCode() {
	case OpStartGame:
		events, err = s.App.StartGame(s.Game)

	case OpPlaceBidType:
		var payload struct {
			BidType domain.BidType `json:"bidType"`
		}
		if err = json.Unmarshal(msg.GetData(), &payload); err == nil {
			events, err = s.App.PlaceBidType(s.Game, senderID, payload.BidType)
		}

	case OpPlayBidCard:
		var payload struct {
			Card cardRef `json:"card"`
		}
		if err = json.Unmarshal(msg.GetData(), &payload); err == nil {
			events, err = s.App.PlayBidCard(s.Game, senderID, payload.Card.card())
		}

	case OpPlayTrickCard:
		var payload struct {
			Card cardRef `json:"card"`
		}
		if err = json.Unmarshal(msg.GetData(), &payload); err == nil {
			events, err = s.App.PlayTrickCard(s.Game, senderID, payload.Card.card())
		}

	case OpChooseGameMode:
		var payload struct {
			GameMode domain.GameMode `json:"gameMode"`
		}
		if err = json.Unmarshal(msg.GetData(), &payload); err == nil {
			events, err = s.App.ChooseGameMode(s.Game, senderID, payload.GameMode)
		}

	case OpFlipCard:
		var payload struct {
			Card   cardRef `json:"card"`
			FaceUp bool    `json:"faceUp"`
		}
		if err = json.Unmarshal(msg.GetData(), &payload); err == nil {
			events, err = s.App.FlipCard(s.Game, senderID, payload.Card.card(), payload.FaceUp)
		}

	case OpResetGame:
		events = s.App.ResetGame(s.Game)

	case OpResetScoreboard:
		events = s.App.ResetScoreboard(s.Game)

	case OpRequestHands:
		events, err = s.App.RequestHands(s.Game, senderID)

	default:
		logger.Warn("MatchLoop: unknown opcode %d from %s", msg.GetOpCode(), senderID)
		return
	}

	if err != nil {
		logger.Warn("MatchLoop: intent %d from %s rejected: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}

	mh.dispatch(s, dispatcher, logger, events)
	mh.updateLabel(s, dispatcher, logger)
}

// processBots fills a short-handed waiting lobby after a delay, and plays
// pending bot moves one per allowed tick.
func (mh *matchHandler) processBots(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64) {
	g := s.Game

	if g.Phase == domain.PhaseWaiting {
		humans := mh.humanCount(s)
		if humans >= 1 && len(g.Players) < domain.MaxPlayers {
			if s.ShortHandedSince == 0 {
				s.ShortHandedSince = tick
			}
			if tick-s.ShortHandedSince >= s.BotFillDelay {
				for seat := len(g.Players); seat < domain.MaxPlayers; seat++ {
					agent := bot.NewAgent(seat)
					events, err := s.App.Join(g, agent.ID, agent.Name)
					if err != nil {
						logger.Error("processBots: could not seat bot: %v", err)
						break
					}
					s.Bots[agent.ID] = agent
					logger.Info("processBots: seated bot %s", agent.Name)
					mh.dispatch(s, dispatcher, logger, events)
				}
				s.ShortHandedSince = 0
				mh.updateLabel(s, dispatcher, logger)
			}
		} else {
			s.ShortHandedSince = 0
		}
		return
	}

	if tick < s.BotWaitUntil {
		return
	}

	acted := mh.actOneBot(s, dispatcher, logger)
	if acted {
		s.BotWaitUntil = tick + s.BotActDelay
	}
}

// actOneBot performs at most one pending bot move.
func (mh *matchHandler) actOneBot(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	events, acted, err := bot.Act(s.App, s.Game, s.Bots)
	if err != nil {
		logger.Error("actOneBot: %v", err)
		return false
	}
	if !acted {
		return false
	}
	mh.dispatch(s, dispatcher, logger, events)
	mh.updateLabel(s, dispatcher, logger)
	return true
}

// dispatch converts engine events to opcode broadcasts. Targeted events go
// only to connected recipients; events aimed solely at bots are dropped.
func (mh *matchHandler) dispatch(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("dispatch: unknown event kind %q", ev.Kind)
			continue
		}

		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatch: marshal %q: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := s.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("dispatch: broadcast %q: %v", ev.Kind, err)
		}
	}
}

func (mh *matchHandler) sendError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, message string) {
	presence, ok := s.Presences[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		logger.Error("sendError: marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpInvalidPlay, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendError: broadcast: %v", err)
	}
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(buildLabel(s.Game))
	if err != nil {
		logger.Error("updateLabel: marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: update: %v", err)
	}
}

// MatchTerminate runs on match shutdown.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: match shut down")
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
