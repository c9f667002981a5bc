package nakama

import (
	"context"
	"database/sql"

	"dingzhu/internal/bot"
	"dingzhu/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	if path := config.GetGameConfig().BotIdentitiesPath; path != "" {
		if err := bot.LoadIdentities(path); err != nil {
			logger.Warn("InitModule: Could not load bot identities: %v", err)
		} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
			logger.Warn("InitModule: Could not provision bots: %v", err)
		}
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchName, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("DingZhu Go module loaded.")
	return nil
}
