// Package config loads game tuning from YAML, defaults and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CRUSADE_GAME_STEP_SCORE.
const EnvPrefix = "CRUSADE"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
	Journal JournalConfig `mapstructure:"journal"`
}

// GameConfig holds board size and tuning.
type GameConfig struct {
	Cols           int           `mapstructure:"cols"`
	Rows           int           `mapstructure:"rows"`
	StartCol       int           `mapstructure:"start_col"`
	StartRow       int           `mapstructure:"start_row"`
	StepDuration   time.Duration `mapstructure:"step_duration"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	StepScore      int           `mapstructure:"step_score"`
	StartingHealth int           `mapstructure:"starting_health"`
	Level          int           `mapstructure:"level"`
	HealOnStep     bool          `mapstructure:"heal_on_step"`
	RemoteMulti    bool          `mapstructure:"remote_multi"`
	GemChance      float64       `mapstructure:"gem_chance"`
	PlacementRule  string        `mapstructure:"placement_rule"`
	HandSize       int           `mapstructure:"hand_size"`
	Seed           int64         `mapstructure:"seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig bounds the in-memory step journal.
type JournalConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Capacity int  `mapstructure:"capacity"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.cols", 7)
	v.SetDefault("game.rows", 5)
	v.SetDefault("game.start_col", 3)
	v.SetDefault("game.start_row", 2)
	v.SetDefault("game.step_duration", 300*time.Millisecond)
	v.SetDefault("game.settle_delay", 600*time.Millisecond)
	v.SetDefault("game.step_score", 1)
	v.SetDefault("game.starting_health", 3)
	v.SetDefault("game.level", 1)
	v.SetDefault("game.heal_on_step", false)
	v.SetDefault("game.remote_multi", false)
	v.SetDefault("game.gem_chance", 0.5)
	v.SetDefault("game.placement_rule", "connected")
	v.SetDefault("game.hand_size", 3)
	v.SetDefault("game.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.capacity", 256)
}

// Load reads the YAML file at path, if it exists, over the defaults and
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that would make a level unplayable.
func (c *Config) Validate() error {
	g := c.Game
	switch {
	case g.Cols < 1 || g.Rows < 1:
		return fmt.Errorf("%w: game board %dx%d", ErrInvalidConfig, g.Cols, g.Rows)
	case g.StartCol < 0 || g.StartCol >= g.Cols || g.StartRow < 0 || g.StartRow >= g.Rows:
		return fmt.Errorf("%w: start %d,%d outside board", ErrInvalidConfig, g.StartCol, g.StartRow)
	case g.StepDuration <= 0:
		return fmt.Errorf("%w: step_duration must be positive", ErrInvalidConfig)
	case g.SettleDelay < 0:
		return fmt.Errorf("%w: settle_delay must not be negative", ErrInvalidConfig)
	case g.GemChance < 0 || g.GemChance > 1:
		return fmt.Errorf("%w: gem_chance %v outside [0,1]", ErrInvalidConfig, g.GemChance)
	case g.HandSize < 1:
		return fmt.Errorf("%w: hand_size must be at least 1", ErrInvalidConfig)
	case g.Level < 1:
		return fmt.Errorf("%w: level must be at least 1", ErrInvalidConfig)
	case g.PlacementRule != "connected" && g.PlacementRule != "any":
		return fmt.Errorf("%w: unknown placement_rule %q", ErrInvalidConfig, g.PlacementRule)
	case c.Journal.Enabled && c.Journal.Capacity < 1:
		return fmt.Errorf("%w: journal capacity must be at least 1", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
