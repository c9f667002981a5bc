package bot

import (
	"fmt"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &RandomBot{}, nil
	case BotLevelStandard:
		return &RuleBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// BrainForDifficulty maps an identity difficulty label onto a level.
func BrainForDifficulty(difficulty string) (Brain, error) {
	switch difficulty {
	case "easy":
		return NewBrain(BotLevelEasy)
	default:
		return NewBrain(BotLevelStandard)
	}
}
