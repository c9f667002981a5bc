package domain

import (
	"math/rand"
	"strings"
	"testing"
)

var testSeats = []string{"a", "b", "c", "d"}

func mustGame(t *testing.T, cfg Config, dealer int, deck []Card) *Game {
	t.Helper()
	g, err := NewGameWithDeck(testSeats, cfg, dealer, deck)
	if err != nil {
		t.Fatalf("NewGameWithDeck() error: %v", err)
	}
	return g
}

func TestNewGame(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}

	t.Run("deals twelve cards each and six to the bottom", func(t *testing.T) {
		g := mustGame(t, cfg, 0, ShuffleDeck(NewDeck(), rand.New(rand.NewSource(1))))
		for i, p := range g.Players {
			if len(p.Hand) != 12 {
				t.Fatalf("seat %d hand size = %d, want 12", i, len(p.Hand))
			}
		}
		if len(g.BottomCards) != 6 {
			t.Fatalf("bottom size = %d, want 6", len(g.BottomCards))
		}
		if g.Phase != PhaseDeal {
			t.Fatalf("phase = %q, want %q", g.Phase, PhaseDeal)
		}
		if err := g.VerifyDeckInvariant(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("teams split by dealer parity", func(t *testing.T) {
		g := mustGame(t, cfg, 1, NewDeck())
		wantTeams := []Team{TeamNonDealer, TeamDealer, TeamNonDealer, TeamDealer}
		for i, p := range g.Players {
			if p.Team != wantTeams[i] {
				t.Fatalf("seat %d team = %q, want %q", i, p.Team, wantTeams[i])
			}
		}
	})

	t.Run("records the first dealt two", func(t *testing.T) {
		g := mustGame(t, cfg, 0, NewDeck())
		// An ordered deck opens with ♠2 going to the dealer.
		if g.FirstTwo == nil || g.FirstTwo.Suit != Spade || g.FirstTwo.SeatIndex != 0 {
			t.Fatalf("FirstTwo = %+v", g.FirstTwo)
		}
	})

	tests := []struct {
		name    string
		seats   []string
		cfg     Config
		dealer  int
		wantErr string
	}{
		{name: "too few players", seats: []string{"a", "b", "c"}, cfg: cfg, wantErr: "exactly 4 players"},
		{name: "dealer out of range", seats: testSeats, cfg: cfg, dealer: 4, wantErr: "dealer index"},
		{name: "both fans active", seats: testSeats, cfg: Config{TrumpSuit: Heart, HasThreeFan: true, HasFiveFan: true}, wantErr: "three fan and five fan"},
		{name: "joker trump suit", seats: testSeats, cfg: Config{TrumpSuit: JokerSuit}, wantErr: "trump suit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGameWithDeck(tt.seats, tt.cfg, tt.dealer, NewDeck())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDeclareTrump(t *testing.T) {
	g := mustGame(t, Config{TrumpSuit: Spade}, 0, NewDeck())
	next, err := g.DeclareTrump("c", Heart)
	if err != nil {
		t.Fatalf("DeclareTrump() error: %v", err)
	}
	if next.TrumpSuit != Heart || next.Config.TrumpSuit != Heart {
		t.Fatalf("trump = %v / %v, want hearts", next.TrumpSuit, next.Config.TrumpSuit)
	}
	if next.DealerIndex != 2 || next.CurrentSeat != 2 {
		t.Fatalf("dealer = %d, current = %d, want 2", next.DealerIndex, next.CurrentSeat)
	}
	if next.Players[2].Team != TeamDealer || next.Players[0].Team != TeamDealer {
		t.Fatal("declarer and partner should form the dealer team")
	}
	if next.Phase != PhaseConfirmDealer {
		t.Fatalf("phase = %q, want %q", next.Phase, PhaseConfirmDealer)
	}
	// The original game is untouched.
	if g.TrumpSuit != Spade || g.DealerIndex != 0 {
		t.Fatal("DeclareTrump mutated its receiver")
	}
}

func TestBottomExchange(t *testing.T) {
	g := mustGame(t, Config{TrumpSuit: Heart}, 0, NewDeck())
	g, err := g.DeclareTrump("a", Heart)
	if err != nil {
		t.Fatal(err)
	}
	g, err = g.PickUpBottom()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Players[0].Hand) != 18 {
		t.Fatalf("dealer hand size = %d, want 18", len(g.Players[0].Hand))
	}
	if g.Phase != PhaseDiscardBottom {
		t.Fatalf("phase = %q, want %q", g.Phase, PhaseDiscardBottom)
	}

	var discard []Card
	for _, c := range g.Players[0].Hand {
		if c.Points() == 0 && len(discard) < 6 {
			discard = append(discard, c)
		}
	}
	next, err := g.ApplyDealerDiscard("a", discard)
	if err != nil {
		t.Fatalf("ApplyDealerDiscard() error: %v", err)
	}
	if len(next.Players[0].Hand) != 12 || len(next.BottomCards) != 6 {
		t.Fatalf("hand = %d, bottom = %d", len(next.Players[0].Hand), len(next.BottomCards))
	}
	if next.Phase != PhasePlayTrick || next.CurrentSeat != 0 {
		t.Fatalf("phase = %q, current = %d", next.Phase, next.CurrentSeat)
	}
	if err := next.VerifyDeckInvariant(); err != nil {
		t.Fatal(err)
	}
	if len(next.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(next.History))
	}
}

func TestApplyDealerDiscardRejections(t *testing.T) {
	g := mustGame(t, Config{TrumpSuit: Heart}, 0, NewDeck())
	g, _ = g.DeclareTrump("a", Heart)
	g, _ = g.PickUpBottom()

	t.Run("wrong seat", func(t *testing.T) {
		if _, err := g.ApplyDealerDiscard("b", g.Players[0].Hand[:6]); err == nil {
			t.Fatal("expected error for non-dealer discard")
		}
	})

	t.Run("wrong count", func(t *testing.T) {
		if _, err := g.ApplyDealerDiscard("a", g.Players[0].Hand[:5]); err == nil {
			t.Fatal("expected error for short discard")
		}
	})

	t.Run("point card", func(t *testing.T) {
		var discard []Card
		var pointCard *Card
		for _, c := range g.Players[0].Hand {
			c := c
			if c.Points() > 0 && pointCard == nil {
				pointCard = &c
				continue
			}
			if len(discard) < 5 {
				discard = append(discard, c)
			}
		}
		if pointCard == nil {
			t.Skip("dealer drew no point cards")
		}
		discard = append(discard, *pointCard)
		_, err := g.ApplyDealerDiscard("a", discard)
		if err == nil || !strings.Contains(err.Error(), "point card") {
			t.Fatalf("error = %v, want point card rejection", err)
		}
	})

	t.Run("card outside hand", func(t *testing.T) {
		var other Card
		for _, c := range NewDeck() {
			if !ContainsCard(g.Players[0].Hand, c) && c.Points() == 0 {
				other = c
				break
			}
		}
		discard := append(append([]Card{}, g.Players[0].Hand[:5]...), other)
		if _, err := g.ApplyDealerDiscard("a", discard); err == nil {
			t.Fatal("expected error for foreign card")
		}
	})
}

// playTrickGame builds a game already in the play phase with the exact
// hands given.
func playTrickGame(t *testing.T, hands [][]Card, cfg Config, dealer int) *Game {
	t.Helper()
	players := make([]Player, len(hands))
	for i, h := range hands {
		players[i] = Player{ID: testSeats[i], Hand: append([]Card{}, h...), Team: teamOf(i, dealer)}
	}
	return &Game{
		Players:     players,
		CurrentSeat: dealer,
		DealerIndex: dealer,
		TrumpSuit:   cfg.TrumpSuit,
		Config:      cfg,
		Phase:       PhasePlayTrick,
	}
}

func TestPlayCardTrickFlow(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}
	g := playTrickGame(t, [][]Card{
		{{Club, 9}, {Spade, 4}},
		{{Club, King}, {Spade, 6}},
		{{Club, 4}, {Spade, 7}},
		{{Club, 10}, {Spade, 8}},
	}, cfg, 0)

	plays := []struct {
		seat string
		card Card
	}{
		{"a", Card{Club, 9}},
		{"b", Card{Club, King}},
		{"c", Card{Club, 4}},
		{"d", Card{Club, 10}},
	}
	var err error
	for _, p := range plays {
		g, err = g.PlayCard(p.seat, p.card)
		if err != nil {
			t.Fatalf("PlayCard(%s, %v) error: %v", p.seat, p.card, err)
		}
	}

	if len(g.Tricks) != 1 {
		t.Fatalf("tricks = %d, want 1", len(g.Tricks))
	}
	trick := g.Tricks[0]
	if trick.WinnerIndex != 1 || trick.WinnerID != "b" {
		t.Fatalf("winner = %d/%s, want seat 1", trick.WinnerIndex, trick.WinnerID)
	}
	if trick.Points != 20 {
		t.Fatalf("points = %d, want 20", trick.Points)
	}
	// Seat b is on the non-dealer team for dealer 0.
	if g.Scores.NonDealerTeam != 20 || g.Scores.DealerTeam != 0 {
		t.Fatalf("scores = %+v", g.Scores)
	}
	if g.CurrentSeat != 1 {
		t.Fatalf("next leader = %d, want 1", g.CurrentSeat)
	}
	if len(g.CurrentTrick) != 0 {
		t.Fatal("trick should be cleared after completion")
	}
}

func TestPlayCardRejections(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}
	g := playTrickGame(t, [][]Card{
		{{Club, 9}, {Spade, 4}},
		{{Club, King}, {Spade, 6}},
		{{Club, 4}, {Spade, 7}},
		{{Club, 10}, {Spade, 8}},
	}, cfg, 0)

	if _, err := g.PlayCard("b", Card{Club, King}); err == nil {
		t.Fatal("expected out of turn error")
	}
	g, err := g.PlayCard("a", Card{Club, 9})
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.PlayCard("b", Card{Spade, 6})
	if err == nil || !strings.Contains(err.Error(), "invalid card play") {
		t.Fatalf("error = %v, want invalid card play", err)
	}
}

func TestHandEndsWhenHandsEmpty(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}
	g := playTrickGame(t, [][]Card{
		{{Club, 9}},
		{{Club, King}},
		{{Club, 4}},
		{{Club, 10}},
	}, cfg, 0)

	var err error
	for i, id := range testSeats {
		g, err = g.PlayCard(id, g.Players[i].Hand[0])
		if err != nil {
			t.Fatal(err)
		}
	}
	if g.Phase != PhaseRoundEnd {
		t.Fatalf("phase = %q, want %q", g.Phase, PhaseRoundEnd)
	}
}

func TestPlayCardsThrowAndFollow(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}
	g := playTrickGame(t, [][]Card{
		{{Club, Ace}, {Club, King}, {Spade, 4}},
		{{Club, Queen}, {Club, 9}, {Spade, 6}},
		{{Club, 8}, {Club, 7}, {Spade, 7}},
		{{Club, 6}, {Club, 5}, {Spade, 8}},
	}, cfg, 0)

	// ♣A♣K is a legal throw: nothing higher remains anywhere.
	g, err := g.PlayCards("a", []Card{{Club, Ace}, {Club, King}})
	if err != nil {
		t.Fatalf("throw rejected: %v", err)
	}
	if g.CurrentSeat != 1 {
		t.Fatalf("current seat = %d, want 1", g.CurrentSeat)
	}

	// A follower holding enough clubs cannot dodge the suit.
	if _, err := g.PlayCards("b", []Card{{Club, Queen}, {Spade, 6}}); err == nil {
		t.Fatal("expected rejection for dodging the led suit")
	}
	if _, err := g.PlayCards("b", []Card{{Club, Queen}}); err == nil {
		t.Fatal("expected rejection for short follow")
	}

	g, err = g.PlayCards("b", []Card{{Club, Queen}, {Club, 9}})
	if err != nil {
		t.Fatal(err)
	}
	g, err = g.PlayCards("c", []Card{{Club, 8}, {Club, 7}})
	if err != nil {
		t.Fatal(err)
	}
	g, err = g.PlayCards("d", []Card{{Club, 6}, {Club, 5}})
	if err != nil {
		t.Fatal(err)
	}

	if len(g.Tricks) != 1 {
		t.Fatalf("tricks = %d, want 1", len(g.Tricks))
	}
	if g.Tricks[0].WinnerIndex != 0 {
		t.Fatalf("winner = %d, want leader", g.Tricks[0].WinnerIndex)
	}
	if g.Tricks[0].Points != 15 {
		t.Fatalf("points = %d, want 15", g.Tricks[0].Points)
	}
}

func TestPlayCardsRejectsBlockedThrow(t *testing.T) {
	cfg := Config{TrumpSuit: Heart}
	g := playTrickGame(t, [][]Card{
		{{Club, King}, {Club, Queen}, {Spade, 4}},
		{{Club, Ace}, {Club, 9}, {Spade, 6}},
		{{Club, 8}, {Club, 7}, {Spade, 7}},
		{{Club, 6}, {Club, 5}, {Spade, 8}},
	}, cfg, 0)

	_, err := g.PlayCards("a", []Card{{Club, King}, {Club, Queen}})
	if err == nil || !strings.Contains(err.Error(), "还有更大的同花色牌未出") {
		t.Fatalf("error = %v, want live higher card rejection", err)
	}
}
