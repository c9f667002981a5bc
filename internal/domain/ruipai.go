package domain

// throwCandidateRanks are the ranks a 甩牌 completeness check must account
// for, strongest first. Jacks and 2s are absent because they are always
// trump and can never be members of a throwable suit.
var throwCandidateRanks = []Rank{Ace, King, Queen, 10, 9, 8, 7, 6, 5, 4, 3}

// ValidateThrow decides whether a multi-card lead (甩牌) of the given cards
// is legal. A throw must be at least two cards of one pure non-trump suit,
// and must not skip a stronger card of that suit that is still live: for
// every rank above the weakest selected rank, if any seat still holds that
// rank, it must be part of the selection or already played in a completed
// trick.
//
// allHands should carry all four hands. When nil, no hand data is available
// and every stronger rank is presumed live: the throw passes only if each
// candidate rank above the weakest selection is selected or already played.
//
// Rank-level bookkeeping is sufficient because the deck holds exactly one
// card per (suit, rank) pair. Trump cards that happen to share the suit
// (the suit's Jack, 2, fan members) are excluded on both sides of the proof.
func ValidateThrow(cards []Card, hand []Card, trump Suit, cfg Config, tricks []TrickResult, allHands [][]Card) ValidationResult {
	if len(cards) < 2 {
		return invalid("至少选择两张牌才能甩牌")
	}

	throwSuit := cards[0].Suit
	if throwSuit == trump {
		return invalid("不能甩主牌，请改为单张出牌。")
	}
	if throwSuit == JokerSuit {
		return invalid("甩牌不能包含王牌")
	}
	for _, c := range cards {
		if c.Suit != throwSuit {
			return invalid("甩牌的所有牌必须是同一花色")
		}
		if IsTrump(c, trump, cfg) {
			return invalid("不能甩主牌，请改为单张出牌。")
		}
	}

	selected := make(map[Rank]bool, len(cards))
	minRank := Rank(0)
	for _, c := range cards {
		selected[c.Rank] = true
		if minRank == 0 || c.Rank < minRank {
			minRank = c.Rank
		}
	}
	if minRank == 0 {
		return invalid("甩牌失败：无效的牌组。")
	}

	// Ranks of the suit already gone in completed tricks. Trump cards that
	// appeared with this literal suit never counted as members of it.
	played := make(map[Rank]bool)
	for _, trick := range tricks {
		for _, pc := range trick.Cards {
			c := pc.Card
			if c.Suit == throwSuit && !IsTrump(c, trump, cfg) {
				played[c.Rank] = true
			}
		}
	}

	// Ranks of the suit still held by any seat.
	held := make(map[Rank]bool)
	for _, h := range allHands {
		for _, c := range h {
			if c.Suit == throwSuit && !IsTrump(c, trump, cfg) {
				held[c.Rank] = true
			}
		}
	}

	for _, rank := range throwCandidateRanks {
		if rank <= minRank {
			continue
		}
		if selected[rank] || played[rank] {
			continue
		}
		// With no hand data the rank cannot be proven dead.
		if allHands == nil || held[rank] {
			return invalid("甩牌失败：还有更大的同花色牌未出。")
		}
	}
	return valid
}
