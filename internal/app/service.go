package app

import (
	"math/rand"
	"time"

	"truf/internal/domain"
)

// Service contains the Truf use-cases operating on a Game. One Service may
// drive many games; each game is mutated by one intent at a time.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// Join seats a new player. Duplicate names and full tables are rejected.
func (s *Service) Join(g *domain.Game, id, name string) ([]Event, error) {
	if g.IsUsernameTaken(name) {
		return nil, ErrDuplicateName
	}
	if len(g.Players) >= domain.MaxPlayers {
		return nil, ErrTableFull
	}
	g.AddPlayer(id, name)
	return []Event{broadcast(EventGameUpdated, BuildSnapshot(g))}, nil
}

// Leave removes a player by connection identity. A seat becoming vacant
// outside the waiting phase abandons the round and resets the table.
func (s *Service) Leave(g *domain.Game, id string) []Event {
	if !g.RemovePlayer(id) {
		return nil
	}
	if g.Phase != domain.PhaseWaiting && len(g.Players) < domain.MaxPlayers {
		g.ResetRound()
	}
	return []Event{broadcast(EventGameUpdated, BuildSnapshot(g))}
}

// StartGame builds, shuffles and deals the deck, then opens the bidding
// phase. It requires exactly four seated players.
func (s *Service) StartGame(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if len(g.Players) != domain.MaxPlayers {
		return nil, ErrNeedFourPlayers
	}

	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	hands, rest := domain.DealHands(deck, domain.MaxPlayers, domain.CardsPerHand)
	g.Deck = rest
	for i, p := range g.Players {
		p.Hand = hands[i]
		p.BidType = domain.BidUnset
		g.TrickWins[p.Name] = 0
	}
	if err := g.Transition(domain.PhaseBidding); err != nil {
		return nil, err
	}

	return []Event{
		broadcast(EventGameStarted, BuildSnapshot(g)),
		broadcast(EventPhaseChanged, g.Phase),
	}, nil
}

// PlaceBidType records a player's bid commitment. It may be changed until
// the player has put a bid card into the pile.
func (s *Service) PlaceBidType(g *domain.Game, playerID string, bidType domain.BidType) ([]Event, error) {
	if g.Phase != domain.PhaseBidding {
		return nil, ErrWrongPhase
	}
	p, idx := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if bidType.Quota() == 0 {
		return nil, ErrInvalidBidType
	}
	if s.bidCardsPlayed(g, idx) > 0 {
		return nil, ErrBidTypeLocked
	}
	p.BidType = bidType
	return []Event{broadcast(EventBidPlaced, BidPlacedPayload{Name: p.Name, BidType: bidType})}, nil
}

// PlayBidCard commits one bid card to the pile. The second card of a
// doubleBids or noTrumps commitment must share the first card's suit and
// bring the combined bid value to at least 7. When every committed card is
// in, the bid resolves synchronously.
func (s *Service) PlayBidCard(g *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	if g.Phase != domain.PhaseBidding || g.GameMode != domain.ModeNone {
		return nil, ErrWrongPhase
	}
	p, idx := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.BidType == domain.BidUnset {
		return nil, ErrBidTypeUnset
	}
	played := s.bidCardsPlayed(g, idx)
	if played >= p.BidType.Quota() {
		return nil, ErrBidQuotaExceeded
	}
	handIdx := p.HoldsCard(card)
	if handIdx < 0 {
		return nil, ErrCardNotInHand
	}
	if played == 1 {
		first := s.firstBidCard(g, idx)
		if err := domain.ValidateDoubleBid(first, p.Hand[handIdx]); err != nil {
			return nil, err
		}
	}

	card = p.Hand[handIdx]
	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	g.Pile = append(g.Pile, domain.PileEntry{
		Card:          card,
		PlayerIndex:   idx,
		OriginalIndex: handIdx,
		IsExtraPile:   played == 1,
		FaceUp:        false,
	})

	events := cardPlayedEvents(g, idx, card, false)
	if s.biddingComplete(g) {
		events = append(events, s.resolveBidding(g)...)
	}
	return events, nil
}

// bidCardsPlayed counts pile entries owned by the seat.
func (s *Service) bidCardsPlayed(g *domain.Game, playerIndex int) int {
	n := 0
	for _, e := range g.Pile {
		if e.PlayerIndex == playerIndex {
			n++
		}
	}
	return n
}

func (s *Service) firstBidCard(g *domain.Game, playerIndex int) domain.Card {
	for _, e := range g.Pile {
		if e.PlayerIndex == playerIndex {
			return e.Card
		}
	}
	return domain.Card{}
}

// biddingComplete reports whether every player has chosen a bid type and
// met their card quota.
func (s *Service) biddingComplete(g *domain.Game) bool {
	if len(g.Players) != domain.MaxPlayers {
		return false
	}
	expected := 0
	for _, p := range g.Players {
		q := p.BidType.Quota()
		if q == 0 {
			return false
		}
		expected += q
	}
	return len(g.Pile) == expected
}

// resolveBidding derives trump suit, bid winner and game mode from the
// completed pile, returns bid cards to their owners and, unless the result
// is Pas, opens the playing phase with the bid winner on turn.
func (s *Service) resolveBidding(g *domain.Game) []Event {
	var events []Event

	// Reveal every bid card.
	for i := range g.Pile {
		g.Pile[i].FaceUp = true
		events = append(events, cardFlippedEvents(g, g.Pile[i].PlayerIndex, g.Pile[i].Card, true)...)
	}

	// Highest bid rank fixes trump suit and bid winner.
	best := g.Pile[0]
	for _, e := range g.Pile[1:] {
		if e.Card.BidRank > best.Card.BidRank {
			best = e
		}
	}
	g.SetTrumpSuit(best.Card.Suit)
	g.BidWinner = g.Players[best.PlayerIndex]
	events = append(events,
		broadcast(EventTrufSuitUpdated, g.TrufSuit),
		broadcast(EventBidWinnerUpdated, g.BidWinner.Name),
	)

	// Per-seat contribution values in seating order.
	total := 0
	values := make([]int, len(g.Players))
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	for _, e := range g.Pile {
		values[e.PlayerIndex] += e.Card.BidValue
		total += e.Card.BidValue
	}
	g.BidValues = values
	events = append(events, broadcast(EventBidValuesUpdated, BidValuesPayload{PlayerNames: names, BidValues: values}))

	switch {
	case total == 13:
		// The bid winner picks Main Atas or Main Bawah before play begins.
		g.GameMode = domain.ModePas
		events = append(events,
			broadcast(EventGameModeUpdated, g.GameMode),
			target(EventChooseGameMode, nil, g.BidWinner.ID),
		)
	case total < 13:
		events = append(events, s.enterPlaying(g, domain.ModeMainBawah)...)
	default:
		events = append(events, s.enterPlaying(g, domain.ModeMainAtas)...)
	}

	// The bid is informational: cards go back to the hands they came from.
	for _, e := range g.Pile {
		hand := g.Players[e.PlayerIndex].Hand
		at := e.OriginalIndex
		if at > len(hand) {
			at = len(hand)
		}
		hand = append(hand[:at], append([]domain.Card{e.Card}, hand[at:]...)...)
		g.Players[e.PlayerIndex].Hand = hand
	}
	g.Pile = nil

	events = append(events,
		broadcast(EventHandsUpdated, BuildSnapshot(g).Players),
		broadcast(EventClearPiles, nil),
	)
	return events
}

// enterPlaying sets the game mode and hands the first trick to the bid winner.
func (s *Service) enterPlaying(g *domain.Game, mode domain.GameMode) []Event {
	g.GameMode = mode
	g.Transition(domain.PhasePlaying)
	g.CurrentTurn = g.BidWinner
	return []Event{
		broadcast(EventGameModeUpdated, mode),
		broadcast(EventPhaseChanged, g.Phase),
		broadcast(EventCurrentTurnUpdated, g.CurrentTurn.ID),
	}
}

// ChooseGameMode resolves a Pas outcome. Only the bid winner may choose,
// and the choice shifts every advertised bid value by one.
func (s *Service) ChooseGameMode(g *domain.Game, playerID string, mode domain.GameMode) ([]Event, error) {
	if g.Phase != domain.PhaseBidding || g.GameMode != domain.ModePas {
		return nil, ErrNoModeChoice
	}
	if g.BidWinner == nil || g.BidWinner.ID != playerID {
		return nil, ErrNotBidWinner
	}

	shift := 0
	switch mode {
	case domain.ModeMainAtas:
		shift = 1
	case domain.ModeMainBawah:
		shift = -1
	default:
		return nil, ErrUnknownGameMode
	}
	for i := range g.BidValues {
		g.BidValues[i] += shift
	}

	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	events := []Event{
		broadcast(EventBidValuesUpdated, BidValuesPayload{PlayerNames: names, BidValues: g.BidValues}),
	}
	return append(events, s.enterPlaying(g, mode)...), nil
}

// PlayTrickCard validates and applies one trick play. The fourth card
// resolves the trick synchronously; the last trick of the round also
// finalizes the game.
func (s *Service) PlayTrickCard(g *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrWrongPhase
	}
	p, idx := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.CurrentTurn == nil || g.CurrentTurn.ID != playerID {
		return nil, ErrNotYourTurn
	}
	handIdx := p.HoldsCard(card)
	if handIdx < 0 {
		return nil, ErrCardNotInHand
	}
	card = p.Hand[handIdx]
	if err := g.IsValidCardPlay(p, card); err != nil {
		return nil, err
	}

	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	// Trump plays stay face down until the trick completes.
	faceUp := card.Suit != g.TrufSuit
	g.Pile = append(g.Pile, domain.PileEntry{
		Card:          card,
		PlayerIndex:   idx,
		OriginalIndex: handIdx,
		FaceUp:        faceUp,
	})

	events := []Event{broadcast(EventHandsUpdated, BuildSnapshot(g).Players)}
	events = append(events, cardPlayedEvents(g, idx, card, faceUp)...)

	if len(g.Pile) == domain.MaxPlayers {
		return append(events, s.resolveTrick(g)...), nil
	}

	g.CurrentTurn = g.Players[(idx+1)%len(g.Players)]
	return append(events, broadcast(EventCurrentTurnUpdated, g.CurrentTurn.ID)), nil
}

// resolveTrick reveals face-down plays, determines the winner, moves the
// pile to the discard pile and hands the lead to the winner.
func (s *Service) resolveTrick(g *domain.Game) []Event {
	var events []Event

	for i := range g.Pile {
		if !g.Pile[i].FaceUp {
			g.Pile[i].FaceUp = true
			events = append(events, cardFlippedEvents(g, g.Pile[i].PlayerIndex, g.Pile[i].Card, true)...)
		}
	}

	winning := domain.CompareCards(g.Pile, g.TrufSuit)
	winner := g.Players[winning.PlayerIndex]
	g.RecordTrickWin(winner.Name)

	g.DiscardPile = append(g.DiscardPile, g.Pile...)
	g.Pile = nil
	g.CurrentTurn = winner

	events = append(events,
		broadcast(EventTrickWinner, TrickWinnerPayload{WinnerName: winner.Name, WinningCard: winning.Card}),
		broadcast(EventDiscardPileUpdated, g.DiscardPile),
		broadcast(EventScoreboardUpdated, ScoreboardPayload{TrickWins: copyCounts(g.TrickWins), Scoreboard: copyCounts(g.Scoreboard)}),
		broadcast(EventClearPiles, nil),
		broadcast(EventCurrentTurnUpdated, g.CurrentTurn.ID),
	)

	if s.handsEmpty(g) {
		events = append(events, s.finishRound(g)...)
	}
	return events
}

func (s *Service) handsEmpty(g *domain.Game) bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// finishRound closes out the game once every hand is exhausted: the seat
// with the most trick wins takes the game (ties prefer the bid winner,
// then the earliest seat), then the table returns to waiting.
func (s *Service) finishRound(g *domain.Game) []Event {
	var winner *domain.Player
	for _, p := range g.Players {
		switch {
		case winner == nil:
			winner = p
		case g.TrickWins[p.Name] > g.TrickWins[winner.Name]:
			winner = p
		case g.TrickWins[p.Name] == g.TrickWins[winner.Name] && g.BidWinner == p:
			winner = p
		}
	}
	if winner == nil {
		return nil
	}
	g.UpdateWins(winner.Name)

	events := []Event{
		broadcast(EventGameEnded, GameEndedPayload{
			WinnerName: winner.Name,
			TrickWins:  copyCounts(g.TrickWins),
			Scoreboard: copyCounts(g.Scoreboard),
		}),
		broadcast(EventScoreboardUpdated, ScoreboardPayload{TrickWins: copyCounts(g.TrickWins), Scoreboard: copyCounts(g.Scoreboard)}),
	}

	g.ResetRound()
	return append(events, broadcast(EventGameUpdated, BuildSnapshot(g)))
}

// FlipCard rebroadcasts a card's face state at each viewer's perspective.
func (s *Service) FlipCard(g *domain.Game, playerID string, card domain.Card, faceUp bool) ([]Event, error) {
	_, idx := g.PlayerByID(playerID)
	if idx < 0 {
		return nil, ErrUnknownPlayer
	}
	return cardFlippedEvents(g, idx, card, faceUp), nil
}

// RequestHands resends the current hands to one player.
func (s *Service) RequestHands(g *domain.Game, playerID string) ([]Event, error) {
	p, _ := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	return []Event{target(EventHandsUpdated, BuildSnapshot(g).Players, playerID)}, nil
}

// ResetGame abandons the round and returns the table to waiting. The
// cross-game scoreboard is preserved.
func (s *Service) ResetGame(g *domain.Game) []Event {
	g.ResetRound()
	return []Event{broadcast(EventGameUpdated, BuildSnapshot(g))}
}

// ResetScoreboard zeroes the cross-game win counters.
func (s *Service) ResetScoreboard(g *domain.Game) []Event {
	g.ResetScoreboard()
	return []Event{broadcast(EventScoreboardUpdated, ScoreboardPayload{TrickWins: copyCounts(g.TrickWins), Scoreboard: copyCounts(g.Scoreboard)})}
}

// cardPlayedEvents emits one targeted card-played event per seated player,
// positioned for that player's perspective.
func cardPlayedEvents(g *domain.Game, playerIndex int, card domain.Card, faceUp bool) []Event {
	events := make([]Event, 0, len(g.Players))
	for i, viewer := range g.Players {
		events = append(events, target(EventCardPlayed, CardPlayedPayload{
			PileID: PerspectivePileID(i, playerIndex),
			Card:   card,
			FaceUp: faceUp,
		}, viewer.ID))
	}
	return events
}

// cardFlippedEvents mirrors cardPlayedEvents for face-state changes.
func cardFlippedEvents(g *domain.Game, playerIndex int, card domain.Card, faceUp bool) []Event {
	events := make([]Event, 0, len(g.Players))
	for i, viewer := range g.Players {
		events = append(events, target(EventCardFlipped, CardFlippedPayload{
			PileID: PerspectivePileID(i, playerIndex),
			Card:   card,
			FaceUp: faceUp,
		}, viewer.ID))
	}
	return events
}
