package domain

// ScoreBreakdown lists the points one team has captured and the specific
// scoring cards behind them.
type ScoreBreakdown struct {
	TotalPoints  int    `json:"total_points"`
	ScoringCards []Card `json:"scoring_cards"`
}

// HandScores is the per-team scoring snapshot of a hand. The deck carries
// 100 points total (four 5s at 5 each, four 10s and four Ks at 10 each),
// so the two totals sum to at most 100.
type HandScores struct {
	DealerTeam    ScoreBreakdown `json:"dealer_team"`
	NonDealerTeam ScoreBreakdown `json:"non_dealer_team"`
}

// Scores recomputes both teams' captured points from the completed tricks.
// It tolerates a hand in any phase: tricks not yet played simply contribute
// nothing. The bottom cards never score for either side here because the
// discard rule forbids burying point cards.
func Scores(g *Game) HandScores {
	var scores HandScores
	for _, trick := range g.Tricks {
		breakdown := &scores.NonDealerTeam
		if g.DealerTeamSeat(trick.WinnerIndex) {
			breakdown = &scores.DealerTeam
		}
		for _, pc := range trick.Cards {
			if p := pc.Card.Points(); p > 0 {
				breakdown.TotalPoints += p
				breakdown.ScoringCards = append(breakdown.ScoringCards, pc.Card)
			}
		}
	}
	return scores
}
