package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// DefaultThreeFan and DefaultFiveFan preset the fan extensions for new
	// tables. At most one may be true; validation happens when a hand starts.
	DefaultThreeFan     bool `json:"default_three_fan"`
	DefaultFiveFan      bool `json:"default_five_fan"`
	TurnDurationSeconds int  `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a short-handed table.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotActionDelayTicks paces bot plays so humans can follow the table.
	BotActionDelayTicks int    `json:"bot_action_delay_ticks"`
	BotIdentitiesPath   string `json:"bot_identities_path"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, falling back to
// defaults when no file was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return &GameConfig{
			TurnDurationSeconds:     30,
			BotAutoFillDelaySeconds: 10,
			BotActionDelayTicks:     2,
		}
	}
	return cfg
}
