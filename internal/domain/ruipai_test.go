package domain

import (
	"testing"
)

func TestValidateThrowShape(t *testing.T) {
	cfg := Config{TrumpSuit: Club}
	hand := []Card{{Heart, King}, {Heart, Queen}, {Heart, 4}, {Club, 9}, {Spade, 2}}

	tests := []struct {
		name    string
		cards   []Card
		wantMsg string
	}{
		{
			name:    "single card is not a throw",
			cards:   []Card{{Heart, King}},
			wantMsg: "至少选择两张牌才能甩牌",
		},
		{
			name:    "trump suit cannot be thrown",
			cards:   []Card{{Club, 9}, {Club, 8}},
			wantMsg: "不能甩主牌，请改为单张出牌。",
		},
		{
			name:    "jokers cannot be thrown",
			cards:   []Card{{JokerSuit, BigJoker}, {JokerSuit, SmallJoker}},
			wantMsg: "甩牌不能包含王牌",
		},
		{
			name:    "mixed suits rejected",
			cards:   []Card{{Heart, King}, {Spade, 7}},
			wantMsg: "甩牌的所有牌必须是同一花色",
		},
		{
			name:    "off suit two is trump and cannot ride along",
			cards:   []Card{{Spade, 7}, {Spade, 2}},
			wantMsg: "不能甩主牌，请改为单张出牌。",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateThrow(tt.cards, hand, Club, cfg, nil, nil)
			if res.Valid {
				t.Fatal("expected rejection")
			}
			if res.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", res.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateThrowCompleteness(t *testing.T) {
	cfg := Config{TrumpSuit: Club}
	throw := []Card{{Heart, King}, {Heart, Queen}, {Heart, 4}}
	hand := append([]Card{}, throw...)

	t.Run("live higher card in another hand blocks the throw", func(t *testing.T) {
		opponent := []Card{{Heart, 10}, {Spade, 9}}
		res := ValidateThrow(throw, hand, Club, cfg, nil, [][]Card{hand, opponent, nil, nil})
		if res.Valid {
			t.Fatal("expected rejection while ♥10 is live")
		}
		if res.Message != "甩牌失败：还有更大的同花色牌未出。" {
			t.Fatalf("unexpected message: %q", res.Message)
		}
	})

	t.Run("already played cards do not block", func(t *testing.T) {
		played := []TrickResult{{
			Cards: trickOf(Card{Heart, 10}, Card{Heart, 9}, Card{Heart, 8}, Card{Heart, 7}),
		}, {
			Cards: trickOf(Card{Heart, 6}, Card{Heart, 5}, Card{Heart, Ace}, Card{Spade, 4}),
		}}
		res := ValidateThrow(throw, hand, Club, cfg, played, [][]Card{hand, nil, nil, nil})
		if !res.Valid {
			t.Fatalf("expected valid throw, got %q", res.Message)
		}
	})

	t.Run("cards below the weakest selection never block", func(t *testing.T) {
		opponent := []Card{{Heart, 3}}
		res := ValidateThrow(throw, hand, Club, cfg, nil, [][]Card{hand, opponent, nil, nil})
		if !res.Valid {
			t.Fatalf("expected valid throw, got %q", res.Message)
		}
	})

	t.Run("trump cards sharing the literal suit are ignored", func(t *testing.T) {
		// ♥J is trump under any declaration and never counts as a heart.
		opponent := []Card{{Heart, Jack}}
		res := ValidateThrow([]Card{{Heart, King}, {Heart, Queen}}, hand, Club, cfg, nil, [][]Card{hand, opponent, nil, nil})
		if !res.Valid {
			t.Fatalf("expected valid throw, got %q", res.Message)
		}
	})

	t.Run("ace held elsewhere blocks even a king lead", func(t *testing.T) {
		opponent := []Card{{Heart, Ace}}
		res := ValidateThrow([]Card{{Heart, King}, {Heart, Queen}}, hand, Club, cfg, nil, [][]Card{hand, opponent, nil, nil})
		if res.Valid {
			t.Fatal("expected rejection while ♥A is live")
		}
	})

	t.Run("no hand data presumes every stronger rank live", func(t *testing.T) {
		res := ValidateThrow(throw, nil, Club, cfg, nil, nil)
		if res.Valid {
			t.Fatal("expected rejection with unaccounted stronger hearts")
		}
		if res.Message != "甩牌失败：还有更大的同花色牌未出。" {
			t.Fatalf("unexpected message: %q", res.Message)
		}
	})

	t.Run("no hand data accepts once stronger ranks are selected or played", func(t *testing.T) {
		played := []TrickResult{{
			Cards: trickOf(Card{Heart, Ace}, Card{Spade, 9}, Card{Spade, 8}, Card{Spade, 7}),
		}}
		res := ValidateThrow([]Card{{Heart, King}, {Heart, Queen}}, nil, Club, cfg, played, nil)
		if !res.Valid {
			t.Fatalf("expected valid throw, got %q", res.Message)
		}
	})
}
