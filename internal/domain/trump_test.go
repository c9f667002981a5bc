package domain

import (
	"testing"
)

func TestClassifyTrump(t *testing.T) {
	base := Config{TrumpSuit: Heart}
	tests := []struct {
		name string
		card Card
		cfg  Config
		want TrumpKind
	}{
		{name: "diamond five is top trump", card: Card{Diamond, 5}, cfg: base, want: DiamondFiveTrump},
		{name: "big joker", card: Card{JokerSuit, BigJoker}, cfg: base, want: BigJokerTrump},
		{name: "small joker", card: Card{JokerSuit, SmallJoker}, cfg: base, want: SmallJokerTrump},
		{name: "spade queen fixed trump", card: Card{Spade, Queen}, cfg: base, want: SpadeQueenTrump},
		{name: "trump suit jack", card: Card{Heart, Jack}, cfg: base, want: TrumpSuitJack},
		{name: "off suit jack", card: Card{Club, Jack}, cfg: base, want: OffSuitJack},
		{name: "trump suit two", card: Card{Heart, 2}, cfg: base, want: TrumpSuitTwo},
		{name: "off suit two", card: Card{Spade, 2}, cfg: base, want: OffSuitTwo},
		{name: "plain trump suit card", card: Card{Heart, 9}, cfg: base, want: TrumpSuitCard},
		{name: "plain off suit card", card: Card{Club, 9}, cfg: base, want: NotTrump},
		{name: "off suit five without fan", card: Card{Spade, 5}, cfg: base, want: NotTrump},
		{name: "off suit five with five fan", card: Card{Spade, 5}, cfg: Config{TrumpSuit: Heart, HasFiveFan: true}, want: FiveFanTrump},
		{name: "diamond five stays top under five fan", card: Card{Diamond, 5}, cfg: Config{TrumpSuit: Heart, HasFiveFan: true}, want: DiamondFiveTrump},
		{name: "three without fan", card: Card{Club, 3}, cfg: base, want: NotTrump},
		{name: "three with three fan", card: Card{Club, 3}, cfg: Config{TrumpSuit: Heart, HasThreeFan: true}, want: ThreeFanTrump},
		{name: "trump suit three with three fan classifies as fan", card: Card{Heart, 3}, cfg: Config{TrumpSuit: Heart, HasThreeFan: true}, want: ThreeFanTrump},
		{name: "spade queen under spade trump stays fixed", card: Card{Spade, Queen}, cfg: Config{TrumpSuit: Spade}, want: SpadeQueenTrump},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrump(tt.card, tt.cfg.TrumpSuit, tt.cfg); got != tt.want {
				t.Fatalf("ClassifyTrump(%v) = %v, want %v", tt.card, got, tt.want)
			}
		})
	}
}

func TestStrengthLadder(t *testing.T) {
	cfg := Config{TrumpSuit: Heart, HasThreeFan: true}
	// Strongest to weakest under a heart trump with 三反 active.
	ladder := []Card{
		{Diamond, 5},
		{Club, 3},
		{JokerSuit, BigJoker},
		{JokerSuit, SmallJoker},
		{Spade, Queen},
		{Heart, Jack},
		{Spade, Jack},
		{Heart, 2},
		{Spade, 2},
		{Heart, Ace},
		{Heart, 4},
	}
	for i := 0; i < len(ladder)-1; i++ {
		hi := Strength(ladder[i], cfg.TrumpSuit, cfg, -1)
		lo := Strength(ladder[i+1], cfg.TrumpSuit, cfg, -1)
		if hi <= lo {
			t.Errorf("expected %v (%d) stronger than %v (%d)", ladder[i], hi, ladder[i+1], lo)
		}
	}
}

func TestStrengthOffSuitTieBreaks(t *testing.T) {
	cfg := Config{TrumpSuit: Diamond}

	// Between off-suit Jacks, suit priority decides: spade > heart > club.
	sj := Strength(Card{Spade, Jack}, Diamond, cfg, 3)
	hj := Strength(Card{Heart, Jack}, Diamond, cfg, 0)
	if sj <= hj {
		t.Fatalf("spade jack played later should still beat heart jack: %d vs %d", sj, hj)
	}

	// Equal suits cannot occur; equal priority only when comparing a card
	// to itself, where the earlier play must win.
	early := Strength(Card{Club, 2}, Diamond, cfg, 1)
	late := Strength(Card{Club, 2}, Diamond, cfg, 2)
	if early <= late {
		t.Fatalf("earlier play should rank higher: %d vs %d", early, late)
	}
}

func TestIsTrumpClosedOverDeck(t *testing.T) {
	cfg := Config{TrumpSuit: Club, HasFiveFan: true}
	trumps := 0
	for _, c := range NewDeck() {
		if IsTrump(c, Club, cfg) {
			trumps++
		}
	}
	// 12 club cards (minus the counted-once overlap handling below) plus
	// fixed and fan trumps outside the suit:
	// clubs 2..A = 13, jokers = 2, ♠Q, ♦5, off-club Jacks ♠J ♥J ♦J = 3,
	// off-club 2s ♠2 ♥2 ♦2 = 3, five fan adds ♠5 ♥5 = 2 (♣5 already a club,
	// ♦5 already fixed). Total 25.
	if trumps != 25 {
		t.Fatalf("trump count = %d, want 25", trumps)
	}
}

func TestStrengthTotalOverTrumps(t *testing.T) {
	cfg := Config{TrumpSuit: Spade}
	seen := make(map[int]Card)
	for _, c := range NewDeck() {
		if !IsTrump(c, Spade, cfg) {
			continue
		}
		s := Strength(c, Spade, cfg, -1)
		if prev, dup := seen[s]; dup {
			t.Fatalf("cards %v and %v share strength %d", prev, c, s)
		}
		seen[s] = c
	}
}
