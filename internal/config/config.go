// Package config loads run settings for the evogame binaries from built-in
// defaults, a YAML rules file, an optional .env file, EVOGAME_ environment
// variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/evogame/internal/game"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "EVOGAME_"

// DotEnvFile is loaded into the environment when present.
const DotEnvFile = ".env"

var (
	ErrInvalidPlayers  = errors.New("invalid player count")
	ErrInvalidRounds   = errors.New("max rounds must be positive")
	ErrInvalidBoard    = errors.New("board size must be at least 3")
	ErrInvalidTarget   = errors.New("victory target must be positive")
	ErrInvalidStart    = errors.New("starting evolution cards must be positive")
	ErrInvalidChance   = errors.New("environment chance must be within [0, 1]")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidSeat     = errors.New("agent seat out of range")
)

// Config holds the settings shared by the CLI, MCP and web binaries.
type Config struct {
	Players           []string `yaml:"players" env:"PLAYERS" envSeparator:","`
	Seed              int64    `yaml:"seed" env:"SEED"`
	MaxRounds         int      `yaml:"max_rounds" env:"MAX_ROUNDS"`
	BoardSize         int      `yaml:"board_size" env:"BOARD_SIZE"`
	VictoryTarget     int      `yaml:"victory_target" env:"VICTORY_TARGET"`
	StartingEvolution int      `yaml:"starting_evolution" env:"STARTING_EVOLUTION"`
	Environment       bool     `yaml:"environment" env:"ENVIRONMENT"`
	EnvironmentChance float64  `yaml:"environment_chance" env:"ENVIRONMENT_CHANCE"`
	Stagnation        bool     `yaml:"stagnation" env:"STAGNATION"`
	Catalogue         string   `yaml:"catalogue" env:"CATALOGUE"`

	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat    string `yaml:"log_format" env:"LOG_FORMAT"`
	HTTPAddr     string `yaml:"http_addr" env:"HTTP_ADDR"`
	AgentSeat    int    `yaml:"agent_seat" env:"AGENT_SEAT"`
	LuaScript    string `yaml:"lua_script" env:"LUA_SCRIPT"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Players:           []string{"Alice", "Bob", "Carol", "Dave"},
		MaxRounds:         game.DefaultMaxRounds,
		BoardSize:         game.DefaultBoardSize,
		VictoryTarget:     game.DefaultVictoryTarget,
		StartingEvolution: game.DefaultStartingEvolution,
		Environment:       true,
		EnvironmentChance: game.DefaultEnvironmentChance,
		LogLevel:          "info",
		LogFormat:         "text",
		HTTPAddr:          ":8080",
	}
}

// Load builds a Config from the defaults, the rules file at path (skipped
// when empty), DotEnvFile and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML rules file at path onto cfg. Keys missing from
// the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return nil
}

// Parse loads the configuration named by a -config flag in args (if any),
// then applies the flags themselves on top. The caller may register its own
// flags on fs first.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	path := configPath(args)
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	fs.String("config", path, "YAML rules file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// RegisterFlags binds the run settings to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var((*listValue)(&c.Players), "players", "comma-separated player names")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "RNG seed (0 for random)")
	fs.IntVar(&c.MaxRounds, "rounds", c.MaxRounds, "round limit")
	fs.IntVar(&c.BoardSize, "board", c.BoardSize, "board size")
	fs.IntVar(&c.VictoryTarget, "target", c.VictoryTarget, "evolution cards needed to win")
	fs.BoolVar(&c.Environment, "environment", c.Environment, "enable environment changes")
	fs.Float64Var(&c.EnvironmentChance, "env-chance", c.EnvironmentChance, "environment change probability per turn")
	fs.BoolVar(&c.Stagnation, "stagnation", c.Stagnation, "enable the optional stagnation rule")
	fs.StringVar(&c.Catalogue, "cards", c.Catalogue, "YAML catalogue override")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text or json)")
	fs.StringVar(&c.LuaScript, "lua", c.LuaScript, "Lua strategy script for the scripted seats")
	fs.StringVar(&c.OTLPEndpoint, "otlp", c.OTLPEndpoint, "OTLP/HTTP trace endpoint")
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if n := len(c.Players); n < game.MinPlayers || n > game.MaxPlayers {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidPlayers, n, game.MinPlayers, game.MaxPlayers)
	}
	if c.MaxRounds <= 0 {
		return ErrInvalidRounds
	}
	if c.BoardSize < 3 {
		return ErrInvalidBoard
	}
	if c.VictoryTarget <= 0 {
		return ErrInvalidTarget
	}
	if c.StartingEvolution <= 0 {
		return ErrInvalidStart
	}
	if c.EnvironmentChance < 0 || c.EnvironmentChance > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidChance, c.EnvironmentChance)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.AgentSeat < 0 || c.AgentSeat >= len(c.Players) {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, c.AgentSeat)
	}
	return nil
}

// GameConfig converts the settings to an engine configuration, loading the
// catalogue override if one is named.
func (c Config) GameConfig() (game.Config, error) {
	gc := game.Config{
		Players:           append([]string(nil), c.Players...),
		Seed:              c.Seed,
		MaxRounds:         c.MaxRounds,
		BoardSize:         c.BoardSize,
		VictoryTarget:     c.VictoryTarget,
		StartingEvolution: c.StartingEvolution,
		EnvironmentChance: c.EnvironmentChance,
		NoEnvironment:     !c.Environment || c.EnvironmentChance == 0,
		Stagnation:        c.Stagnation,
	}
	if c.Catalogue != "" {
		cat, err := game.ParseCatalogueFile(c.Catalogue)
		if err != nil {
			return gc, fmt.Errorf("load catalogue: %w", err)
		}
		gc.Catalogue = &cat
	}
	return gc, nil
}

// NewLogger builds the operational logger for the configured level and
// format.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// configPath finds the value of a -config or --config flag in args.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// listValue is a comma-separated string list flag.
type listValue []string

func (l *listValue) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *listValue) Set(s string) error {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// Summary is a one-line description of the rules in effect.
func (c Config) Summary() string {
	return fmt.Sprintf("%d players, seed %d, %d rounds, board %d, target %d",
		len(c.Players), c.Seed, c.MaxRounds, c.BoardSize, c.VictoryTarget)
}
