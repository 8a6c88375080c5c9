package app

import (
	"math/rand"
	"testing"

	"truf/internal/domain"
)

func seatFour(t *testing.T) (*Service, *domain.Game) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(1)))
	g := domain.NewGame()
	for _, seat := range []struct{ id, name string }{
		{"c1", "p1"}, {"c2", "p2"}, {"c3", "p3"}, {"c4", "p4"},
	} {
		if _, err := svc.Join(g, seat.id, seat.name); err != nil {
			t.Fatalf("join %s: %v", seat.name, err)
		}
	}
	return svc, g
}

// biddingGame seats four players with fixed two-card hands and singleBid
// commitments, already in the bidding phase.
func biddingGame(t *testing.T, hands [][]domain.Card) (*Service, *domain.Game) {
	t.Helper()
	svc, g := seatFour(t)
	if err := g.Transition(domain.PhaseBidding); err != nil {
		t.Fatalf("enter bidding: %v", err)
	}
	for i, p := range g.Players {
		p.Hand = hands[i]
		p.BidType = domain.BidSingle
	}
	return svc, g
}

func hasKind(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestJoinRejections(t *testing.T) {
	svc := NewService(nil)
	g := domain.NewGame()

	if _, err := svc.Join(g, "c1", "p1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := svc.Join(g, "c2", "p1"); err != ErrDuplicateName {
		t.Fatalf("duplicate name: got %v, want ErrDuplicateName", err)
	}
	for _, seat := range []struct{ id, name string }{
		{"c2", "p2"}, {"c3", "p3"}, {"c4", "p4"},
	} {
		if _, err := svc.Join(g, seat.id, seat.name); err != nil {
			t.Fatalf("join %s: %v", seat.name, err)
		}
	}
	if _, err := svc.Join(g, "c5", "p5"); err != ErrTableFull {
		t.Fatalf("fifth seat: got %v, want ErrTableFull", err)
	}
}

func TestStartGameDeals(t *testing.T) {
	svc, g := seatFour(t)

	events, err := svc.StartGame(g)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if g.Phase != domain.PhaseBidding {
		t.Errorf("phase = %s, want bidding", g.Phase)
	}
	if len(g.Deck) != 0 {
		t.Errorf("undealt cards left: %d", len(g.Deck))
	}
	for i, p := range g.Players {
		if len(p.Hand) != domain.CardsPerHand {
			t.Errorf("hand %d size = %d, want %d", i, len(p.Hand), domain.CardsPerHand)
		}
	}
	if !hasKind(events, EventGameStarted) || !hasKind(events, EventPhaseChanged) {
		t.Error("missing start events")
	}

	// A second start mid-game is rejected.
	if _, err := svc.StartGame(g); err != ErrWrongPhase {
		t.Fatalf("restart: got %v, want ErrWrongPhase", err)
	}
}

func TestStartGameNeedsFourPlayers(t *testing.T) {
	svc := NewService(nil)
	g := domain.NewGame()
	svc.Join(g, "c1", "p1")
	svc.Join(g, "c2", "p2")
	svc.Join(g, "c3", "p3")

	if _, err := svc.StartGame(g); err != ErrNeedFourPlayers {
		t.Fatalf("got %v, want ErrNeedFourPlayers", err)
	}
}

func TestPlaceBidType(t *testing.T) {
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("5", domain.Hearts), domain.CardOf("3", domain.Clubs)},
		{domain.CardOf("7", domain.Clubs), domain.CardOf("4", domain.Diamonds)},
		{domain.CardOf("k", domain.Diamonds), domain.CardOf("6", domain.Spades)},
		{domain.CardOf("2", domain.Spades), domain.CardOf("8", domain.Hearts)},
	})

	if _, err := svc.PlaceBidType(g, "c1", "fancyBid"); err != ErrInvalidBidType {
		t.Fatalf("invalid type: got %v, want ErrInvalidBidType", err)
	}
	if _, err := svc.PlaceBidType(g, "nobody", domain.BidSingle); err != ErrUnknownPlayer {
		t.Fatalf("unknown player: got %v, want ErrUnknownPlayer", err)
	}

	// The commitment may change freely before a bid card hits the pile.
	if _, err := svc.PlaceBidType(g, "c1", domain.BidDouble); err != nil {
		t.Fatalf("retype before card: %v", err)
	}
	if _, err := svc.PlaceBidType(g, "c1", domain.BidSingle); err != nil {
		t.Fatalf("retype back: %v", err)
	}

	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("5", domain.Hearts)); err != nil {
		t.Fatalf("bid card: %v", err)
	}
	if _, err := svc.PlaceBidType(g, "c1", domain.BidDouble); err != ErrBidTypeLocked {
		t.Fatalf("retype after card: got %v, want ErrBidTypeLocked", err)
	}
}

func TestSingleBidResolutionMainAtas(t *testing.T) {
	// Bid values 5+7+0+2 = 14: Main Atas. Highest bid rank is the 7 of
	// clubs, so p2 wins the bid and clubs becomes trump.
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("5", domain.Hearts), domain.CardOf("3", domain.Clubs)},
		{domain.CardOf("7", domain.Clubs), domain.CardOf("4", domain.Diamonds)},
		{domain.CardOf("k", domain.Diamonds), domain.CardOf("6", domain.Spades)},
		{domain.CardOf("2", domain.Spades), domain.CardOf("8", domain.Hearts)},
	})

	bids := []struct {
		id   string
		card domain.Card
	}{
		{"c1", domain.CardOf("5", domain.Hearts)},
		{"c2", domain.CardOf("7", domain.Clubs)},
		{"c3", domain.CardOf("k", domain.Diamonds)},
		{"c4", domain.CardOf("2", domain.Spades)},
	}
	var last []Event
	for _, b := range bids {
		events, err := svc.PlayBidCard(g, b.id, b.card)
		if err != nil {
			t.Fatalf("bid card %s: %v", b.card, err)
		}
		last = events
	}

	if g.TrufSuit != domain.Clubs {
		t.Errorf("trump = %s, want clubs", g.TrufSuit)
	}
	if g.BidWinner == nil || g.BidWinner.Name != "p2" {
		t.Errorf("bid winner = %+v, want p2", g.BidWinner)
	}
	if g.GameMode != domain.ModeMainAtas {
		t.Errorf("mode = %s, want Main Atas", g.GameMode)
	}
	if g.Phase != domain.PhasePlaying {
		t.Errorf("phase = %s, want playing", g.Phase)
	}
	if g.CurrentTurn == nil || g.CurrentTurn.Name != "p2" {
		t.Errorf("turn = %+v, want p2", g.CurrentTurn)
	}

	want := []int{5, 7, 0, 2}
	for i, v := range want {
		if g.BidValues[i] != v {
			t.Errorf("bid value[%d] = %d, want %d", i, g.BidValues[i], v)
		}
	}

	// Bid cards are informational and return to their original hand slots.
	if len(g.Pile) != 0 {
		t.Errorf("pile not cleared: %d entries", len(g.Pile))
	}
	for i, p := range g.Players {
		if len(p.Hand) != 2 {
			t.Errorf("hand %d size = %d, want 2", i, len(p.Hand))
		}
	}
	if !g.Players[1].Hand[0].Equal(domain.CardOf("7", domain.Clubs)) {
		t.Errorf("bid card not restored at original slot: %v", g.Players[1].Hand)
	}

	for _, kind := range []EventKind{
		EventTrufSuitUpdated, EventBidWinnerUpdated, EventBidValuesUpdated,
		EventGameModeUpdated, EventPhaseChanged, EventCurrentTurnUpdated,
		EventHandsUpdated, EventClearPiles,
	} {
		if !hasKind(last, kind) {
			t.Errorf("resolution missing %s event", kind)
		}
	}
}

func TestBiddingTotalBelowThirteenIsMainBawah(t *testing.T) {
	// 2+3+4+3 = 12. Highest bid rank is the 4 of hearts, held by p3.
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("2", domain.Hearts)},
		{domain.CardOf("3", domain.Hearts)},
		{domain.CardOf("4", domain.Hearts)},
		{domain.CardOf("3", domain.Spades)},
	})
	for i, id := range []string{"c1", "c2", "c3", "c4"} {
		if _, err := svc.PlayBidCard(g, id, g.Players[i].Hand[0]); err != nil {
			t.Fatalf("bid card %d: %v", i, err)
		}
	}

	if g.GameMode != domain.ModeMainBawah {
		t.Errorf("mode = %s, want Main Bawah", g.GameMode)
	}
	if g.TrufSuit != domain.Hearts {
		t.Errorf("trump = %s, want hearts", g.TrufSuit)
	}
	if g.BidWinner == nil || g.BidWinner.Name != "p3" {
		t.Errorf("bid winner = %+v, want p3", g.BidWinner)
	}
	if g.Phase != domain.PhasePlaying {
		t.Errorf("phase = %s, want playing", g.Phase)
	}
}

func TestPasAndChooseGameMode(t *testing.T) {
	// 2+3+4+4 = 13: Pas. Highest bid rank is the 4 of spades, held by p4.
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("2", domain.Hearts)},
		{domain.CardOf("3", domain.Hearts)},
		{domain.CardOf("4", domain.Hearts)},
		{domain.CardOf("4", domain.Spades)},
	})
	var last []Event
	for i, id := range []string{"c1", "c2", "c3", "c4"} {
		events, err := svc.PlayBidCard(g, id, g.Players[i].Hand[0])
		if err != nil {
			t.Fatalf("bid card %d: %v", i, err)
		}
		last = events
	}

	if g.GameMode != domain.ModePas {
		t.Fatalf("mode = %s, want Pas", g.GameMode)
	}
	if g.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding until the winner chooses", g.Phase)
	}
	choosePrompted := false
	for _, e := range last {
		if e.Kind == EventChooseGameMode {
			choosePrompted = true
			if len(e.Recipients) != 1 || e.Recipients[0] != "c4" {
				t.Errorf("choose prompt recipients = %v, want [c4]", e.Recipients)
			}
		}
	}
	if !choosePrompted {
		t.Fatal("bid winner not prompted to choose the game mode")
	}

	if _, err := svc.ChooseGameMode(g, "c1", domain.ModeMainAtas); err != ErrNotBidWinner {
		t.Fatalf("non-winner choice: got %v, want ErrNotBidWinner", err)
	}
	if _, err := svc.ChooseGameMode(g, "c4", domain.ModePas); err != ErrUnknownGameMode {
		t.Fatalf("bad mode: got %v, want ErrUnknownGameMode", err)
	}

	if _, err := svc.ChooseGameMode(g, "c4", domain.ModeMainAtas); err != nil {
		t.Fatalf("winner choice: %v", err)
	}
	want := []int{3, 4, 5, 5}
	for i, v := range want {
		if g.BidValues[i] != v {
			t.Errorf("shifted bid value[%d] = %d, want %d", i, g.BidValues[i], v)
		}
	}
	if g.GameMode != domain.ModeMainAtas || g.Phase != domain.PhasePlaying {
		t.Errorf("mode/phase after choice = %s/%s", g.GameMode, g.Phase)
	}
	if g.CurrentTurn == nil || g.CurrentTurn.Name != "p4" {
		t.Errorf("turn = %+v, want p4", g.CurrentTurn)
	}

	if _, err := svc.ChooseGameMode(g, "c4", domain.ModeMainAtas); err != ErrNoModeChoice {
		t.Fatalf("second choice: got %v, want ErrNoModeChoice", err)
	}
}

func TestDoubleBidValidation(t *testing.T) {
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("3", domain.Hearts), domain.CardOf("4", domain.Clubs), domain.CardOf("4", domain.Hearts)},
		{domain.CardOf("7", domain.Clubs)},
		{domain.CardOf("k", domain.Diamonds)},
		{domain.CardOf("2", domain.Spades)},
	})
	g.Players[0].BidType = domain.BidDouble

	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("3", domain.Hearts)); err != nil {
		t.Fatalf("first card: %v", err)
	}

	// A rejected second card leaves hand and pile untouched.
	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("4", domain.Clubs)); err != domain.ErrBidSuitMismatch {
		t.Fatalf("off-suit second card: got %v, want ErrBidSuitMismatch", err)
	}
	if len(g.Players[0].Hand) != 2 || len(g.Pile) != 1 {
		t.Fatalf("state changed by rejected card: hand=%d pile=%d", len(g.Players[0].Hand), len(g.Pile))
	}

	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("4", domain.Hearts)); err != nil {
		t.Fatalf("valid second card: %v", err)
	}
	if !g.Pile[1].IsExtraPile {
		t.Error("second bid card not marked as extra pile")
	}
}

func TestPlayBidCardGuards(t *testing.T) {
	svc, g := biddingGame(t, [][]domain.Card{
		{domain.CardOf("5", domain.Hearts), domain.CardOf("6", domain.Hearts)},
		{domain.CardOf("7", domain.Clubs)},
		{domain.CardOf("k", domain.Diamonds)},
		{domain.CardOf("2", domain.Spades)},
	})

	g.Players[1].BidType = domain.BidUnset
	if _, err := svc.PlayBidCard(g, "c2", domain.CardOf("7", domain.Clubs)); err != ErrBidTypeUnset {
		t.Fatalf("unset type: got %v, want ErrBidTypeUnset", err)
	}

	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("9", domain.Clubs)); err != ErrCardNotInHand {
		t.Fatalf("foreign card: got %v, want ErrCardNotInHand", err)
	}

	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("5", domain.Hearts)); err != nil {
		t.Fatalf("first card: %v", err)
	}
	if _, err := svc.PlayBidCard(g, "c1", domain.CardOf("6", domain.Hearts)); err != ErrBidQuotaExceeded {
		t.Fatalf("over quota: got %v, want ErrBidQuotaExceeded", err)
	}
}

// playingGame wires a table directly into the trick loop with fixed hands,
// spades as trump, p2 holding the bid and p1 on lead.
func playingGame(t *testing.T, hands [][]domain.Card) (*Service, *domain.Game) {
	t.Helper()
	svc, g := seatFour(t)
	g.Transition(domain.PhaseBidding)
	g.Transition(domain.PhasePlaying)
	g.TrufSuit = domain.Spades
	g.BidWinner = g.Players[1]
	g.CurrentTurn = g.Players[0]
	for i, p := range g.Players {
		p.Hand = hands[i]
	}
	return svc, g
}

func TestPlayTrickCardGuards(t *testing.T) {
	svc, g := playingGame(t, [][]domain.Card{
		{domain.CardOf("a", domain.Hearts), domain.CardOf("2", domain.Spades)},
		{domain.CardOf("5", domain.Hearts), domain.CardOf("4", domain.Clubs)},
		{domain.CardOf("7", domain.Hearts), domain.CardOf("3", domain.Diamonds)},
		{domain.CardOf("9", domain.Hearts), domain.CardOf("4", domain.Diamonds)},
	})

	if _, err := svc.PlayTrickCard(g, "c2", domain.CardOf("5", domain.Hearts)); err != ErrNotYourTurn {
		t.Fatalf("out of turn: got %v, want ErrNotYourTurn", err)
	}

	// Leading trump from a mixed hand is locked while nothing supports it.
	if _, err := svc.PlayTrickCard(g, "c1", domain.CardOf("2", domain.Spades)); err != domain.ErrTrumpLocked {
		t.Fatalf("trump lead: got %v, want ErrTrumpLocked", err)
	}

	if _, err := svc.PlayTrickCard(g, "c1", domain.CardOf("a", domain.Hearts)); err != nil {
		t.Fatalf("lead: %v", err)
	}

	// p2 holds a heart and must follow.
	if _, err := svc.PlayTrickCard(g, "c2", domain.CardOf("4", domain.Clubs)); err != domain.ErrMustFollowSuit {
		t.Fatalf("off-suit: got %v, want ErrMustFollowSuit", err)
	}
}

func TestTwoTrickRound(t *testing.T) {
	// Trick 1 is all hearts and falls to p1's ace. In trick 2, p4 is void
	// in diamonds and trumps in with the 4 of spades. The 1-1 tie between
	// p1 and p4 resolves to the earliest seat because neither holds the bid.
	svc, g := playingGame(t, [][]domain.Card{
		{domain.CardOf("a", domain.Hearts), domain.CardOf("2", domain.Diamonds)},
		{domain.CardOf("5", domain.Hearts), domain.CardOf("a", domain.Diamonds)},
		{domain.CardOf("7", domain.Hearts), domain.CardOf("3", domain.Diamonds)},
		{domain.CardOf("9", domain.Hearts), domain.CardOf("4", domain.Spades)},
	})

	trick1 := []struct {
		id   string
		card domain.Card
	}{
		{"c1", domain.CardOf("a", domain.Hearts)},
		{"c2", domain.CardOf("5", domain.Hearts)},
		{"c3", domain.CardOf("7", domain.Hearts)},
		{"c4", domain.CardOf("9", domain.Hearts)},
	}
	for _, play := range trick1 {
		if _, err := svc.PlayTrickCard(g, play.id, play.card); err != nil {
			t.Fatalf("trick 1 %s: %v", play.card, err)
		}
	}
	if g.TrickWins["p1"] != 1 {
		t.Fatalf("p1 trick wins = %d, want 1", g.TrickWins["p1"])
	}
	if len(g.DiscardPile) != 4 || len(g.Pile) != 0 {
		t.Fatalf("discard=%d pile=%d after trick 1", len(g.DiscardPile), len(g.Pile))
	}
	if g.CurrentTurn.Name != "p1" {
		t.Fatalf("lead after trick 1 = %s, want p1", g.CurrentTurn.Name)
	}

	trick2 := []struct {
		id   string
		card domain.Card
	}{
		{"c1", domain.CardOf("2", domain.Diamonds)},
		{"c2", domain.CardOf("a", domain.Diamonds)},
		{"c3", domain.CardOf("3", domain.Diamonds)},
	}
	for _, play := range trick2 {
		if _, err := svc.PlayTrickCard(g, play.id, play.card); err != nil {
			t.Fatalf("trick 2 %s: %v", play.card, err)
		}
	}

	// p4's trump goes in face down and is revealed at resolution.
	events, err := svc.PlayTrickCard(g, "c4", domain.CardOf("4", domain.Spades))
	if err != nil {
		t.Fatalf("trick 2 trump: %v", err)
	}
	if !hasKind(events, EventCardFlipped) {
		t.Error("face-down trump never revealed")
	}
	if !hasKind(events, EventGameEnded) {
		t.Fatal("round did not end with empty hands")
	}
	for _, e := range events {
		if e.Kind == EventGameEnded {
			payload := e.Payload.(GameEndedPayload)
			if payload.WinnerName != "p1" {
				t.Errorf("game winner = %s, want p1 (earliest tied seat)", payload.WinnerName)
			}
			if payload.TrickWins["p4"] != 1 {
				t.Errorf("p4 trick wins in payload = %d, want 1", payload.TrickWins["p4"])
			}
		}
	}

	if g.Scoreboard["p1"] != 1 {
		t.Errorf("scoreboard p1 = %d, want 1", g.Scoreboard["p1"])
	}
	if g.Phase != domain.PhaseWaiting {
		t.Errorf("phase = %s, want waiting after round end", g.Phase)
	}
	if g.TrickWins["p1"] != 0 {
		t.Errorf("trick wins not reset: %d", g.TrickWins["p1"])
	}
}

func TestTrickTieFallsToBidWinner(t *testing.T) {
	// Same layout, but p4 holds the bid, so the 1-1 tie goes to p4.
	svc, g := playingGame(t, [][]domain.Card{
		{domain.CardOf("a", domain.Hearts), domain.CardOf("2", domain.Diamonds)},
		{domain.CardOf("5", domain.Hearts), domain.CardOf("a", domain.Diamonds)},
		{domain.CardOf("7", domain.Hearts), domain.CardOf("3", domain.Diamonds)},
		{domain.CardOf("9", domain.Hearts), domain.CardOf("4", domain.Spades)},
	})
	g.BidWinner = g.Players[3]

	plays := []struct {
		id   string
		card domain.Card
	}{
		{"c1", domain.CardOf("a", domain.Hearts)},
		{"c2", domain.CardOf("5", domain.Hearts)},
		{"c3", domain.CardOf("7", domain.Hearts)},
		{"c4", domain.CardOf("9", domain.Hearts)},
		{"c1", domain.CardOf("2", domain.Diamonds)},
		{"c2", domain.CardOf("a", domain.Diamonds)},
		{"c3", domain.CardOf("3", domain.Diamonds)},
		{"c4", domain.CardOf("4", domain.Spades)},
	}
	for _, play := range plays {
		if _, err := svc.PlayTrickCard(g, play.id, play.card); err != nil {
			t.Fatalf("play %s: %v", play.card, err)
		}
	}

	if g.Scoreboard["p4"] != 1 {
		t.Errorf("scoreboard p4 = %d, want 1 (bid winner takes the tie)", g.Scoreboard["p4"])
	}
	if g.Scoreboard["p1"] != 0 {
		t.Errorf("scoreboard p1 = %d, want 0", g.Scoreboard["p1"])
	}
}

func TestLeaveMidGameResetsRound(t *testing.T) {
	svc, g := playingGame(t, [][]domain.Card{
		{domain.CardOf("a", domain.Hearts)},
		{domain.CardOf("5", domain.Hearts)},
		{domain.CardOf("7", domain.Hearts)},
		{domain.CardOf("9", domain.Hearts)},
	})

	events := svc.Leave(g, "c2")
	if len(events) == 0 {
		t.Fatal("no events for a seated leaver")
	}
	if g.Phase != domain.PhaseWaiting {
		t.Errorf("phase = %s, want waiting", g.Phase)
	}
	if len(g.Players) != 3 {
		t.Errorf("players = %d, want 3", len(g.Players))
	}
	for _, p := range g.Players {
		if len(p.Hand) != 0 {
			t.Errorf("hand of %s not cleared", p.Name)
		}
	}

	if events := svc.Leave(g, "ghost"); events != nil {
		t.Error("events emitted for unknown leaver")
	}
}

func TestRequestHandsIsTargeted(t *testing.T) {
	svc, g := seatFour(t)
	events, err := svc.RequestHands(g, "c3")
	if err != nil {
		t.Fatalf("request hands: %v", err)
	}
	if len(events) != 1 || len(events[0].Recipients) != 1 || events[0].Recipients[0] != "c3" {
		t.Fatalf("unexpected targeting: %+v", events)
	}
	if _, err := svc.RequestHands(g, "ghost"); err != ErrUnknownPlayer {
		t.Fatalf("unknown player: got %v, want ErrUnknownPlayer", err)
	}
}

func TestPerspectivePileID(t *testing.T) {
	tests := []struct {
		viewer, player int
		want           string
	}{
		{0, 0, "bottomPile"},
		{0, 1, "leftPile"},
		{0, 3, "rightPile"},
		{1, 1, "bottomPile"},
		{2, 0, "topPile"},
		{3, 0, "leftPile"},
	}
	for _, tt := range tests {
		if got := PerspectivePileID(tt.viewer, tt.player); got != tt.want {
			t.Errorf("PerspectivePileID(%d, %d) = %s, want %s", tt.viewer, tt.player, got, tt.want)
		}
	}
}
