package bot

import (
	"dingzhu/internal/domain"
)

// Agent represents an autonomous bot player occupying a seat.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to calculate its next play for the current state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	if game.SeatOf(a.ID) < 0 {
		return Move{}, nil
	}
	return a.Strategy.CalculateMove(game, a.ID)
}

// DeclareTrump asks the agent for its trump suit when it holds the first
// dealt 2.
func (a *Agent) DeclareTrump(game *domain.Game) domain.Suit {
	return a.Strategy.ChooseTrump(game, a.ID)
}

// Discard asks the agent for its six-card bottom discard as the dealer.
func (a *Agent) Discard(game *domain.Game) []domain.Card {
	return a.Strategy.ChooseDiscard(game, a.ID)
}
