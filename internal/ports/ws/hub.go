package ws

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"truf/internal/app"
	"truf/internal/bot"
	"truf/internal/config"
	"truf/internal/domain"
)

type intent struct {
	clientID string
	msg      Message
}

// Hub owns one Truf table. A single goroutine applies every intent to
// completion before the next, so the engine never sees interleaved writes.
type Hub struct {
	log *logrus.Logger
	cfg *config.Config

	svc  *app.Service
	game *domain.Game
	bots map[string]*bot.Agent

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan intent
	// commands carries deferred work (bot fill timers) onto the hub goroutine.
	commands chan func()
}

// NewHub creates a hub for a fresh game.
func NewHub(cfg *config.Config, log *logrus.Logger) *Hub {
	return &Hub{
		log:        log,
		cfg:        cfg,
		svc:        app.NewService(nil),
		game:       domain.NewGame(),
		bots:       make(map[string]*bot.Agent),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan intent, 64),
		commands:   make(chan func(), 16),
	}
}

// Run processes connections and intents until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
			h.log.WithField("client", c.id).Info("client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			delete(h.clients, c.id)
			h.log.WithField("client", c.id).Info("client disconnected")
			h.dispatch(h.svc.Leave(h.game, c.id))
			h.driveBots()

		case in := <-h.inbound:
			h.handleIntent(in)

		case fn := <-h.commands:
			fn()
		}
	}
}

func (h *Hub) handleIntent(in intent) {
	c, ok := h.clients[in.clientID]
	if !ok {
		return
	}

	var (
		events []app.Event
		err    error
	)

	switch in.msg.Event {
	case intentJoinGame:
		name := decodeName(in.msg.Data)
		events, err = h.svc.Join(h.game, c.id, name)
		if err != nil {
			h.sendTo(c, eventJoinGameError, err.Error())
			return
		}
		h.sendTo(c, eventJoinGameSuccess, nil)
		h.scheduleBotFill()

	case intentStartGame:
		events, err = h.svc.StartGame(h.game)

	case intentPlaceBid:
		var payload struct {
			BidType domain.BidType `json:"bidType"`
		}
		if err = json.Unmarshal(in.msg.Data, &payload); err == nil {
			events, err = h.svc.PlaceBidType(h.game, c.id, payload.BidType)
		}

	case intentPlayCard:
		var payload struct {
			Card cardRef `json:"card"`
		}
		if err = json.Unmarshal(in.msg.Data, &payload); err == nil {
			events, err = h.svc.PlayBidCard(h.game, c.id, payload.Card.card())
		}

	case intentPlayCardPlaying:
		var payload struct {
			Card cardRef `json:"card"`
		}
		if err = json.Unmarshal(in.msg.Data, &payload); err == nil {
			events, err = h.svc.PlayTrickCard(h.game, c.id, payload.Card.card())
		}

	case intentChooseGameMode:
		var payload struct {
			GameMode domain.GameMode `json:"gameMode"`
		}
		if err = json.Unmarshal(in.msg.Data, &payload); err == nil {
			events, err = h.svc.ChooseGameMode(h.game, c.id, payload.GameMode)
		}

	case intentFlipCard:
		var payload struct {
			Card   cardRef `json:"card"`
			FaceUp bool    `json:"faceUp"`
		}
		if err = json.Unmarshal(in.msg.Data, &payload); err == nil {
			events, err = h.svc.FlipCard(h.game, c.id, payload.Card.card(), payload.FaceUp)
		}

	case intentResetGame:
		events = h.svc.ResetGame(h.game)

	case intentResetScoreboard:
		events = h.svc.ResetScoreboard(h.game)

	case intentRequestHands:
		events, err = h.svc.RequestHands(h.game, c.id)

	default:
		h.log.WithField("event", in.msg.Event).Warn("unknown intent")
		return
	}

	if err != nil {
		h.log.WithError(err).WithField("client", c.id).Info("intent rejected")
		h.sendTo(c, eventInvalidPlay, err.Error())
		return
	}

	h.dispatch(events)
	h.driveBots()
}

// decodeName accepts both a bare string and a {"name": ...} object.
func decodeName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload.Name
	}
	return ""
}

// driveBots drains every move the seated bots can make right now.
func (h *Hub) driveBots() {
	for i := 0; i < 300; i++ {
		events, acted, err := bot.Act(h.svc, h.game, h.bots)
		if err != nil {
			h.log.WithError(err).Error("bot action failed")
			return
		}
		if !acted {
			return
		}
		h.dispatch(events)
	}
	h.log.Error("bot loop did not settle, giving up")
}

// scheduleBotFill arms the auto-fill timer for a short-handed lobby.
func (h *Hub) scheduleBotFill() {
	if !h.cfg.BotFill.Enabled || len(h.game.Players) >= domain.MaxPlayers {
		return
	}
	delay := time.Duration(h.cfg.BotFill.DelaySeconds) * time.Second
	time.AfterFunc(delay, func() {
		h.commands <- func() { h.fillBots() }
	})
}

func (h *Hub) fillBots() {
	if h.game.Phase != domain.PhaseWaiting {
		return
	}
	for seat := len(h.game.Players); seat < domain.MaxPlayers; seat++ {
		agent := bot.NewAgent(seat)
		events, err := h.svc.Join(h.game, agent.ID, agent.Name)
		if err != nil {
			h.log.WithError(err).Error("could not seat bot")
			return
		}
		h.bots[agent.ID] = agent
		h.log.WithField("bot", agent.Name).Info("seated bot")
		h.dispatch(events)
	}
}

// dispatch fans events out to their recipients. Reveal and cleanup events
// are delayed per the pacing config; everything else goes out immediately.
func (h *Hub) dispatch(events []app.Event) {
	for _, ev := range events {
		name, ok := eventNames[ev.Kind]
		if !ok {
			h.log.WithField("kind", ev.Kind).Warn("unmapped event kind")
			continue
		}
		raw, err := encode(name, ev.Payload)
		if err != nil {
			h.log.WithError(err).WithField("kind", ev.Kind).Error("encode event")
			continue
		}

		targets := h.targetsFor(ev)
		if len(targets) == 0 {
			continue
		}

		if delay := h.pacingDelay(ev.Kind); delay > 0 {
			// enqueue is safe off the hub goroutine; targets are captured now.
			time.AfterFunc(delay, func() {
				for _, c := range targets {
					c.enqueue(raw)
				}
			})
			continue
		}
		for _, c := range targets {
			c.enqueue(raw)
		}
	}
}

func (h *Hub) targetsFor(ev app.Event) []*Client {
	if len(ev.Recipients) == 0 {
		all := make([]*Client, 0, len(h.clients))
		for _, c := range h.clients {
			all = append(all, c)
		}
		return all
	}
	var targets []*Client
	for _, id := range ev.Recipients {
		if c, ok := h.clients[id]; ok {
			targets = append(targets, c)
		}
	}
	return targets
}

func (h *Hub) pacingDelay(kind app.EventKind) time.Duration {
	switch kind {
	case app.EventCardFlipped:
		return time.Duration(h.cfg.Pacing.RevealDelayMs) * time.Millisecond
	case app.EventClearPiles:
		return time.Duration(h.cfg.Pacing.CleanupDelayMs) * time.Millisecond
	}
	return 0
}

func (h *Hub) sendTo(c *Client, event string, data any) {
	raw, err := encode(event, data)
	if err != nil {
		h.log.WithError(err).Error("encode message")
		return
	}
	c.enqueue(raw)
}
