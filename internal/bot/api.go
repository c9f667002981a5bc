package bot

import (
	"dingzhu/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Cards []domain.Card
}

// BotLevel selects a strategy implementation.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelStandard
)

// Brain is the interface that all bot strategies must implement. A brain
// covers every decision a seat faces during a hand: which suit to declare,
// which six cards to bury as the dealer, and which cards to play.
type Brain interface {
	CalculateMove(game *domain.Game, seatID string) (Move, error)
	ChooseTrump(game *domain.Game, seatID string) domain.Suit
	ChooseDiscard(game *domain.Game, seatID string) []domain.Card
}
