package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cyberdefender/internal/config"
	"github.com/verte-zerg/cyberdefender/internal/content"
	"github.com/verte-zerg/cyberdefender/internal/model"
)

const (
	defaultTimeLimit = 90
	defaultTimeout   = 20
	defaultRetries   = 3
)

func buildRules(game config.GameConfig, timeLimit int) (model.Rules, error) {
	rules := model.DefaultRules()
	rules.TimeLimit = time.Duration(timeLimit) * time.Second
	setInt(&rules.BonusPerSecond, game.BonusPerSecond)
	setInt(&rules.CorrectPoints, game.CorrectPoints)
	setInt(&rules.IncorrectPoints, game.IncorrectPoints)
	setInt(&rules.PasswordPoints, game.PasswordPoints)
	setInt(&rules.LeaderboardSize, game.LeaderboardSize)
	setInt(&rules.NicknameMax, game.NicknameMax)

	switch {
	case timeLimit <= 0:
		return model.Rules{}, fmt.Errorf("time-limit must be > 0")
	case rules.BonusPerSecond < 0:
		return model.Rules{}, fmt.Errorf("bonus-per-second must be >= 0")
	case rules.CorrectPoints <= 0:
		return model.Rules{}, fmt.Errorf("correct-points must be > 0")
	case rules.IncorrectPoints > 0:
		return model.Rules{}, fmt.Errorf("incorrect-points must be <= 0")
	case rules.PasswordPoints < 0:
		return model.Rules{}, fmt.Errorf("password-points must be >= 0")
	case rules.LeaderboardSize <= 0:
		return model.Rules{}, fmt.Errorf("leaderboard-size must be > 0")
	case rules.NicknameMax <= 0:
		return model.Rules{}, fmt.Errorf("nickname-max must be > 0")
	}
	return rules, nil
}

func buildContentConfig(cc config.ContentConfig, modelName, pack string, offline bool) (model.ContentConfig, error) {
	out := model.ContentConfig{
		Model:    strings.TrimSpace(modelName),
		Offline:  offline,
		PackPath: strings.TrimSpace(pack),
		Timeout:  defaultTimeout * time.Second,
		Retries:  defaultRetries,
	}
	if cc.APIKeyEnv != nil {
		out.APIKeyEnv = strings.TrimSpace(*cc.APIKeyEnv)
	}
	if cc.Timeout != nil {
		if *cc.Timeout < 0 {
			return model.ContentConfig{}, fmt.Errorf("content timeout must be >= 0")
		}
		out.Timeout = time.Duration(*cc.Timeout) * time.Second
	}
	if cc.Retries != nil {
		if *cc.Retries < 1 {
			return model.ContentConfig{}, fmt.Errorf("content retries must be >= 1")
		}
		out.Retries = *cc.Retries
	}
	if out.Model == "" {
		out.Model = content.DefaultModel
	}
	return out, nil
}

func setInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func applyIntConfig(cmd *cobra.Command, name string, target *int, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target *bool, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringConfig(cmd *cobra.Command, name string, target *string, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return `# cyberdefender config
# Uncomment and edit values to override defaults.

[game]
# time-limit = 90
# bonus-per-second = 2
# correct-points = 20
# incorrect-points = -10
# password-points = 100
# leaderboard-size = 10
# nickname-max = 15

[content]
# model = "gemini-2.5-flash"
# api-key-env = "GEMINI_API_KEY"
# timeout = 20
# retries = 3
# offline = false
# pack = "~/.config/cyberdefender/pack.yaml"
`
}
