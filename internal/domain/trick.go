package domain

import (
	"errors"
	"sort"
)

// PlayedCard is one physical card placed by one seat during the current
// trick, in play order.
type PlayedCard struct {
	Card      Card   `json:"card"`
	SeatID    string `json:"seat_id"`
	SeatIndex int    `json:"seat_index"`
}

// TrickResult is produced exactly once when a trick closes.
type TrickResult struct {
	Cards       []PlayedCard `json:"cards"`
	WinnerIndex int          `json:"winner_index"`
	WinnerID    string       `json:"winner_id"`
	Points      int          `json:"points"`
}

// TrickPoints sums the captured-point values of every card in the trick.
func TrickPoints(trick []PlayedCard) int {
	points := 0
	for _, pc := range trick {
		points += pc.Card.Points()
	}
	return points
}

// TrickWinner resolves a completed single-card trick of exactly four cards
// and returns the winning seat index. If any trump was played, the
// strongest trump wins; otherwise the strongest card of the leading
// effective suit wins. The pathological no-follower trick falls back to
// the leader.
func TrickWinner(trick []PlayedCard, trump Suit, cfg Config, leaderIndex int) (int, error) {
	if len(trick) == 0 {
		return 0, errors.New("cannot determine winner of empty trick")
	}
	if len(trick) != 4 {
		return 0, errors.New("trick must have exactly 4 cards")
	}

	var trumps []PlayedCard
	for _, pc := range trick {
		if IsTrump(pc.Card, trump, cfg) {
			trumps = append(trumps, pc)
		}
	}
	if len(trumps) > 0 {
		return strongestOf(trumps, trump, cfg), nil
	}

	lead, ok := LeadingSuit(trick, trump, cfg)
	if !ok {
		return leaderIndex, nil
	}

	var followers []PlayedCard
	for _, pc := range trick {
		if suit, ok := EffectiveSuit(pc.Card, trump, cfg); ok && suit == lead {
			followers = append(followers, pc)
		}
	}
	if len(followers) == 0 {
		return leaderIndex, nil
	}
	return strongestOf(followers, trump, cfg), nil
}

// strongestOf picks the seat holding the strongest card, breaking equal
// strengths in favor of the earlier play.
func strongestOf(cards []PlayedCard, trump Suit, cfg Config) int {
	winner := cards[0]
	best := Strength(winner.Card, trump, cfg, 0)
	for i := 1; i < len(cards); i++ {
		if s := Strength(cards[i].Card, trump, cfg, i); s > best {
			best = s
			winner = cards[i]
		}
	}
	return winner.SeatIndex
}

// groupBySeat collects the cards each seat contributed to the trick.
func groupBySeat(trick []PlayedCard) map[int][]Card {
	groups := make(map[int][]Card)
	for _, pc := range trick {
		groups[pc.SeatIndex] = append(groups[pc.SeatIndex], pc.Card)
	}
	return groups
}

// ResolveTrick determines the winning seat of a completed trick, covering
// both single-card tricks and multi-card (甩牌) tricks where the leader
// threw several cards of one suit.
//
// In a multi-card trick a follower is eligible to beat the leader only if
// it fully followed suit with k cards, or held none of the suit and
// contested with k trumps. A partial "mixed" follow never wins regardless
// of card strength. Comparison is between each group's strongest card.
func ResolveTrick(trick []PlayedCard, trump Suit, cfg Config, leaderIndex int) int {
	groups := groupBySeat(trick)
	leaderCards := groups[leaderIndex]
	if len(leaderCards) <= 1 {
		if len(trick) == 4 {
			if winner, err := TrickWinner(trick, trump, cfg, leaderIndex); err == nil {
				return winner
			}
		}
		return leaderIndex
	}

	required := len(leaderCards)
	leadSuit, _ := EffectiveSuit(leaderCards[0], trump, cfg)

	winner := leaderIndex
	best := strongestStrength(leaderCards, trump, cfg)

	for seat := 0; seat < 4; seat++ {
		if seat == leaderIndex {
			continue
		}
		cards := groups[seat]
		if len(cards) == 0 {
			continue
		}

		suitCount := 0
		allTrumps := true
		for _, c := range cards {
			if suit, ok := EffectiveSuit(c, trump, cfg); ok && suit == leadSuit {
				suitCount++
			}
			if !IsTrump(c, trump, cfg) {
				allTrumps = false
			}
		}

		eligible := suitCount == required || (suitCount == 0 && allTrumps)
		if !eligible {
			continue
		}
		if s := strongestStrength(cards, trump, cfg); s > best {
			best = s
			winner = seat
		}
	}
	return winner
}

func strongestStrength(cards []Card, trump Suit, cfg Config) int {
	best := Strength(cards[0], trump, cfg, -1)
	for _, c := range cards[1:] {
		if s := Strength(c, trump, cfg, -1); s > best {
			best = s
		}
	}
	return best
}

// FollowGroup computes the deterministic k-card response a hand owes to a
// multi-card lead of suit lead:
//
//  1. Holding >= k cards of the suit: play the lowest k of them.
//  2. Holding 1..k-1: play all of them plus filler cards from elsewhere.
//     Such a group can never win the trick.
//  3. Holding none: play k trumps to contest when possible, otherwise k
//     arbitrary cards (preferring non-trumps).
func FollowGroup(hand []Card, lead Suit, k int, trump Suit, cfg Config) []Card {
	if len(hand) == 0 {
		return nil
	}
	if len(hand) < k {
		return append([]Card{}, hand...)
	}

	var suitCards, trumps, others []Card
	for _, c := range hand {
		if suit, ok := EffectiveSuit(c, trump, cfg); ok && suit == lead {
			suitCards = append(suitCards, c)
			continue
		}
		if IsTrump(c, trump, cfg) {
			trumps = append(trumps, c)
		} else {
			others = append(others, c)
		}
	}

	sort.Slice(suitCards, func(i, j int) bool { return suitCards[i].Rank < suitCards[j].Rank })

	switch {
	case len(suitCards) >= k:
		return suitCards[:k]
	case len(suitCards) > 0:
		// Partial follow: all suit cards plus fillers, preferring to keep trumps.
		group := append([]Card{}, suitCards...)
		fillers := append(append([]Card{}, others...), trumps...)
		return append(group, fillers[:k-len(suitCards)]...)
	case len(trumps) >= k:
		sort.Slice(trumps, func(i, j int) bool {
			return Strength(trumps[i], trump, cfg, -1) > Strength(trumps[j], trump, cfg, -1)
		})
		return trumps[:k]
	case len(others) >= k:
		return others[:k]
	default:
		return append([]Card{}, hand[:k]...)
	}
}
