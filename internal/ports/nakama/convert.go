package nakama

import (
	"fmt"

	"dingzhu/internal/domain"
)

// WireCard is the JSON card representation on the wire: a one-letter suit
// code and a numeric rank (2..14, 15 small joker, 16 big joker).
type WireCard struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

func cardsToWire(cards []domain.Card) []WireCard {
	out := make([]WireCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, WireCard{Suit: c.Suit.String(), Rank: int(c.Rank)})
	}
	return out
}

func cardsFromWire(cards []WireCard) ([]domain.Card, error) {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		suit, err := suitFromWire(c.Suit)
		if err != nil {
			return nil, err
		}
		if c.Rank < 2 || c.Rank > int(domain.BigJoker) {
			return nil, fmt.Errorf("invalid rank %d", c.Rank)
		}
		out = append(out, domain.Card{Suit: suit, Rank: domain.Rank(c.Rank)})
	}
	return out, nil
}

func suitFromWire(s string) (domain.Suit, error) {
	switch s {
	case "S":
		return domain.Spade, nil
	case "H":
		return domain.Heart, nil
	case "C":
		return domain.Club, nil
	case "D":
		return domain.Diamond, nil
	case "J":
		return domain.JokerSuit, nil
	default:
		return 0, fmt.Errorf("invalid suit %q", s)
	}
}
