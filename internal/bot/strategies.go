package bot

import (
	"errors"
	"sort"

	"dingzhu/internal/domain"
)

// RuleBot plays a simple legal-move heuristic: lead low, follow with the
// cheapest legal card, satisfy multi-card follow obligations with the
// deterministic follow group.
type RuleBot struct{}

func (b *RuleBot) CalculateMove(game *domain.Game, seatID string) (Move, error) {
	seat := game.SeatOf(seatID)
	if seat < 0 {
		return Move{}, errors.New("seat not in game")
	}
	hand := game.Players[seat].Hand
	if len(hand) == 0 {
		return Move{}, errors.New("empty hand")
	}

	if k := leaderGroupSize(game); k > 1 {
		lead, ok := domain.EffectiveSuit(game.CurrentTrick[0].Card, game.TrumpSuit, game.Config)
		if ok {
			group := domain.FollowGroup(hand, lead, k, game.TrumpSuit, game.Config)
			if len(group) == k {
				return Move{Cards: group}, nil
			}
		}
	}

	sorted := byStrength(hand, game.TrumpSuit, game.Config)

	// Leading: cheapest card keeps strong trumps for later tricks.
	if len(game.CurrentTrick) == 0 {
		return Move{Cards: []domain.Card{sorted[0]}}, nil
	}

	for _, c := range sorted {
		if res := game.CheckPlay(seatID, []domain.Card{c}); res.Valid {
			return Move{Cards: []domain.Card{c}}, nil
		}
	}
	return Move{}, errors.New("no legal card found")
}

// ChooseTrump declares the suit the hand is longest in, excluding cards
// that are trump regardless of declaration.
func (b *RuleBot) ChooseTrump(game *domain.Game, seatID string) domain.Suit {
	seat := game.SeatOf(seatID)
	if seat < 0 {
		return domain.Spade
	}
	counts := make(map[domain.Suit]int)
	for _, c := range game.Players[seat].Hand {
		if c.IsJoker() || domain.IsFixedTrump(c) || c.Rank == domain.Jack || c.Rank == 2 {
			continue
		}
		counts[c.Suit]++
	}
	best := domain.Spade
	for _, s := range []domain.Suit{domain.Spade, domain.Heart, domain.Club, domain.Diamond} {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

// ChooseDiscard buries the six weakest non-point, non-trump cards. Point
// cards may never be buried; trumps are kept unless nothing else remains.
func (b *RuleBot) ChooseDiscard(game *domain.Game, seatID string) []domain.Card {
	seat := game.SeatOf(seatID)
	if seat < 0 {
		return nil
	}
	hand := game.Players[seat].Hand

	var candidates, trumps []domain.Card
	for _, c := range hand {
		if c.Points() > 0 {
			continue
		}
		if domain.IsTrump(c, game.TrumpSuit, game.Config) {
			trumps = append(trumps, c)
		} else {
			candidates = append(candidates, c)
		}
	}
	candidates = byStrength(candidates, game.TrumpSuit, game.Config)
	if len(candidates) < 6 {
		trumps = byStrength(trumps, game.TrumpSuit, game.Config)
		candidates = append(candidates, trumps...)
	}
	if len(candidates) < 6 {
		return nil
	}
	return candidates[:6]
}

// RandomBot is the easy opponent: it still obeys the rules but prefers the
// first legal card in hand order over any evaluation.
type RandomBot struct{}

func (b *RandomBot) CalculateMove(game *domain.Game, seatID string) (Move, error) {
	seat := game.SeatOf(seatID)
	if seat < 0 {
		return Move{}, errors.New("seat not in game")
	}
	hand := game.Players[seat].Hand
	if len(hand) == 0 {
		return Move{}, errors.New("empty hand")
	}

	if k := leaderGroupSize(game); k > 1 {
		lead, ok := domain.EffectiveSuit(game.CurrentTrick[0].Card, game.TrumpSuit, game.Config)
		if ok {
			group := domain.FollowGroup(hand, lead, k, game.TrumpSuit, game.Config)
			if len(group) == k {
				return Move{Cards: group}, nil
			}
		}
	}

	for _, c := range hand {
		if res := game.CheckPlay(seatID, []domain.Card{c}); res.Valid {
			return Move{Cards: []domain.Card{c}}, nil
		}
	}
	return Move{}, errors.New("no legal card found")
}

func (b *RandomBot) ChooseTrump(game *domain.Game, seatID string) domain.Suit {
	return (&RuleBot{}).ChooseTrump(game, seatID)
}

func (b *RandomBot) ChooseDiscard(game *domain.Game, seatID string) []domain.Card {
	return (&RuleBot{}).ChooseDiscard(game, seatID)
}

// leaderGroupSize is the number of cards each seat owes the open trick.
func leaderGroupSize(game *domain.Game) int {
	if len(game.CurrentTrick) == 0 {
		return 1
	}
	leader := game.CurrentTrick[0].SeatIndex
	n := 0
	for _, pc := range game.CurrentTrick {
		if pc.SeatIndex == leader {
			n++
		}
	}
	return n
}

// byStrength returns a copy of the cards sorted weakest first under the
// declared trump.
func byStrength(cards []domain.Card, trump domain.Suit, cfg domain.Config) []domain.Card {
	out := append([]domain.Card{}, cards...)
	sort.Slice(out, func(i, j int) bool {
		si := domain.Strength(out[i], trump, cfg, -1)
		sj := domain.Strength(out[j], trump, cfg, -1)
		if si != sj {
			return si < sj
		}
		return out[i].Suit < out[j].Suit
	})
	return out
}
