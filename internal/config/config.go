// Package config loads server configuration from a YAML file with
// HEXCLASH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hexclash/hexclash-server-go/internal/flavor"
	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/board"
)

// EnvPrefix prefixes every environment override, e.g. HEXCLASH_FLAVOR_API_KEY.
const EnvPrefix = "HEXCLASH"

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Board   BoardConfig   `mapstructure:"board"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Flavor  FlavorConfig  `mapstructure:"flavor"`
	Match   MatchConfig   `mapstructure:"match"`
}

// ServerConfig configures the websocket listener.
type ServerConfig struct {
	Address     string `mapstructure:"address"`
	ReadBuffer  int    `mapstructure:"read_buffer"`
	WriteBuffer int    `mapstructure:"write_buffer"`
	SendQueue   int    `mapstructure:"send_queue"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RulesConfig holds the match rule numbers.
type RulesConfig struct {
	StartingHealth         int  `mapstructure:"starting_health"`
	MaxHealth              int  `mapstructure:"max_health"`
	StartingMana           int  `mapstructure:"starting_mana"`
	MaxMana                int  `mapstructure:"max_mana"`
	ManaPerTurn            int  `mapstructure:"mana_per_turn"`
	DrawPerTurn            int  `mapstructure:"draw_per_turn"`
	MaxHandSize            int  `mapstructure:"max_hand_size"`
	StartingHandSize       int  `mapstructure:"starting_hand_size"`
	DeckSize               int  `mapstructure:"deck_size"`
	MaxTurns               int  `mapstructure:"max_turns"`
	MaxMessages            int  `mapstructure:"max_messages"`
	CategoryCostMultiplier bool `mapstructure:"category_cost_multiplier"`
	TypeAdvantage          bool `mapstructure:"type_advantage"`
}

// BoardConfig describes the board geometry.
type BoardConfig struct {
	Geometry string `mapstructure:"geometry"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Radius   int    `mapstructure:"radius"`
}

// CatalogConfig selects where card templates come from. A database URL takes
// precedence over the file path.
type CatalogConfig struct {
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// FlavorConfig configures the generative flavor text client.
type FlavorConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Model           string        `mapstructure:"model"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackIntro   string        `mapstructure:"fallback_intro"`
	FallbackComment string        `mapstructure:"fallback_comment"`
}

// MatchConfig holds per-match options. A zero seed picks one from the clock
// and an empty team deals from the whole catalog.
type MatchConfig struct {
	Seed         int64    `mapstructure:"seed"`
	PlayerName   string   `mapstructure:"player_name"`
	OpponentName string   `mapstructure:"opponent_name"`
	PlayerTeam   []string `mapstructure:"player_team"`
	OpponentTeam []string `mapstructure:"opponent_team"`
}

// Load reads the configuration at path. A missing file is not an error when
// path is the default location; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) || path != DefaultPath {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DefaultPath is where the server looks for its configuration.
const DefaultPath = "config/config.yaml"

func setDefaults(v *viper.Viper) {
	d := game.DefaultSettings()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_buffer", 1024)
	v.SetDefault("server.write_buffer", 1024)
	v.SetDefault("server.send_queue", 256)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("rules.starting_health", d.StartingHealth)
	v.SetDefault("rules.max_health", d.MaxHealth)
	v.SetDefault("rules.starting_mana", d.StartingMana)
	v.SetDefault("rules.max_mana", d.MaxMana)
	v.SetDefault("rules.mana_per_turn", d.ManaPerTurn)
	v.SetDefault("rules.draw_per_turn", d.DrawPerTurn)
	v.SetDefault("rules.max_hand_size", d.MaxHandSize)
	v.SetDefault("rules.starting_hand_size", d.StartingHandSize)
	v.SetDefault("rules.deck_size", d.DeckSize)
	v.SetDefault("rules.max_turns", d.MaxTurns)
	v.SetDefault("rules.max_messages", d.MaxMessages)
	v.SetDefault("rules.category_cost_multiplier", d.CategoryCostMultiplier)
	v.SetDefault("rules.type_advantage", d.TypeAdvantage)

	v.SetDefault("board.geometry", string(d.Board.Kind))
	v.SetDefault("board.width", d.Board.Width)
	v.SetDefault("board.height", d.Board.Height)
	v.SetDefault("board.radius", 3)

	v.SetDefault("catalog.path", "data/cards.yaml")
	v.SetDefault("catalog.database_url", "")

	v.SetDefault("flavor.enabled", false)
	v.SetDefault("flavor.endpoint", flavor.DefaultEndpoint)
	v.SetDefault("flavor.model", flavor.DefaultModel)
	v.SetDefault("flavor.api_key", "")
	v.SetDefault("flavor.timeout", flavor.DefaultTimeout)
	v.SetDefault("flavor.fallback_intro", flavor.DefaultFallbackIntro)
	v.SetDefault("flavor.fallback_comment", flavor.DefaultFallbackComment)

	v.SetDefault("match.seed", 0)
	v.SetDefault("match.player_name", d.PlayerNames[0])
	v.SetDefault("match.opponent_name", d.PlayerNames[1])
}

// Validate checks values that would otherwise fail deep inside a match.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not json or console", c.Logging.Format)
	}
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	if c.Server.SendQueue <= 0 {
		return fmt.Errorf("server.send_queue must be positive, got %d", c.Server.SendQueue)
	}
	if c.Catalog.Path == "" && c.Catalog.DatabaseURL == "" {
		return errors.New("catalog needs a path or a database_url")
	}
	if c.Flavor.Enabled && c.Flavor.APIKey == "" {
		return errors.New("flavor.enabled requires flavor.api_key")
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// Settings converts the rule, board and match sections into engine settings.
func (c *Config) Settings() game.Settings {
	r := c.Rules
	return game.Settings{
		StartingHealth:         r.StartingHealth,
		MaxHealth:              r.MaxHealth,
		StartingMana:           r.StartingMana,
		MaxMana:                r.MaxMana,
		ManaPerTurn:            r.ManaPerTurn,
		DrawPerTurn:            r.DrawPerTurn,
		MaxHandSize:            r.MaxHandSize,
		StartingHandSize:       r.StartingHandSize,
		DeckSize:               r.DeckSize,
		MaxTurns:               r.MaxTurns,
		MaxMessages:            r.MaxMessages,
		CategoryCostMultiplier: r.CategoryCostMultiplier,
		TypeAdvantage:          r.TypeAdvantage,
		Board:                  c.Board.Spec(),
		Seed:                   c.Match.Seed,
		PlayerNames:            [2]string{c.Match.PlayerName, c.Match.OpponentName},
		Teams:                  [2][]string{c.Match.PlayerTeam, c.Match.OpponentTeam},
	}
}

// Spec keeps only the dimensions the chosen geometry uses.
func (b BoardConfig) Spec() board.Spec {
	kind := board.Kind(b.Geometry)
	if kind == board.KindHex {
		return board.Spec{Kind: kind, Radius: b.Radius}
	}
	return board.Spec{Kind: kind, Width: b.Width, Height: b.Height}
}

// FlavorOptions converts the flavor section into client options.
func (c *Config) FlavorOptions() flavor.Config {
	f := c.Flavor
	return flavor.Config{
		Enabled:         f.Enabled,
		Endpoint:        f.Endpoint,
		Model:           f.Model,
		APIKey:          f.APIKey,
		Timeout:         f.Timeout,
		FallbackIntro:   f.FallbackIntro,
		FallbackComment: f.FallbackComment,
	}
}
