// Package config loads run settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/rules"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Players     int
	Iterations  int
	Duration    time.Duration
	Simulations int
	Exploration float64
	Workers     int
	Seed        uint64 // 0 seeds from the clock
	Games       int
	OutDir      string
	Generator   string
	Rollout     string
	Penalty     game.Penalty
	DatabaseURL string
	AgentURL    string // Move server played against in remote mode
	Port        string
	LogLevel    zerolog.Level
}

func Default() Config {
	return Config{
		Players:     2,
		Iterations:  1000,
		Simulations: 1,
		Exploration: 0.1,
		Workers:     1,
		Games:       10,
		OutDir:      "results",
		Generator:   "smart",
		Rollout:     "heuristic",
		Penalty:     game.KeepScore,
		Port:        "8080",
		LogLevel:    zerolog.InfoLevel,
	}
}

// Load reads .env if present, then overrides defaults with any variables
// set in the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Default()
	var errs []error
	parse := func(key string, set func(string) error) {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return
		}
		if err := set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
		}
	}

	parse("HANABI_PLAYERS", intVar(&c.Players))
	parse("HANABI_ITERATIONS", intVar(&c.Iterations))
	parse("HANABI_DURATION", func(s string) (err error) {
		c.Duration, err = time.ParseDuration(s)
		return err
	})
	parse("HANABI_SIMULATIONS", intVar(&c.Simulations))
	parse("HANABI_EXPLORATION", func(s string) (err error) {
		c.Exploration, err = strconv.ParseFloat(s, 64)
		return err
	})
	parse("HANABI_WORKERS", intVar(&c.Workers))
	parse("HANABI_SEED", func(s string) (err error) {
		c.Seed, err = strconv.ParseUint(s, 10, 64)
		return err
	})
	parse("HANABI_GAMES", intVar(&c.Games))
	parse("HANABI_OUT_DIR", stringVar(&c.OutDir))
	parse("HANABI_GENERATOR", stringVar(&c.Generator))
	parse("HANABI_ROLLOUT", stringVar(&c.Rollout))
	parse("HANABI_STORM_PENALTY", func(s string) (err error) {
		c.Penalty, err = game.ParsePenalty(s)
		return err
	})
	parse("DATABASE_URL", stringVar(&c.DatabaseURL))
	parse("HANABI_AGENT_URL", stringVar(&c.AgentURL))
	parse("PORT", stringVar(&c.Port))
	parse("LOG_LEVEL", func(s string) (err error) {
		c.LogLevel, err = zerolog.ParseLevel(strings.ToLower(s))
		return err
	})

	if err := errors.Join(errs...); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.Players < 2 || c.Players > 5:
		return fmt.Errorf("%w: %d players, need 2 to 5", ErrInvalid, c.Players)
	case c.Iterations < 0 || c.Duration < 0:
		return fmt.Errorf("%w: negative search budget", ErrInvalid)
	case c.Iterations == 0 && c.Duration == 0:
		return fmt.Errorf("%w: set HANABI_ITERATIONS or HANABI_DURATION", ErrInvalid)
	case c.Exploration < 0:
		return fmt.Errorf("%w: negative exploration constant", ErrInvalid)
	case c.Simulations < 1 || c.Workers < 1:
		return fmt.Errorf("%w: simulations and workers must be positive", ErrInvalid)
	case c.Games < 1:
		return fmt.Errorf("%w: need at least one game", ErrInvalid)
	}
	if _, err := rules.ByName(c.Generator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := rules.PolicyByName(c.Rollout); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c Config) Match() game.MatchConfig {
	return game.NewMatchConfig(c.Players).WithPenalty(c.Penalty)
}

// Agent describes the search settings of c as an experiment agent.
func (c Config) Agent(id int) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:          id,
		Iterations:  c.Iterations,
		Duration:    c.Duration,
		Simulations: c.Simulations,
		Workers:     c.Workers,
		Exploration: c.Exploration,
		Generator:   c.Generator,
		Rollout:     c.Rollout,
	}
}

func intVar(dst *int) func(string) error {
	return func(s string) (err error) {
		*dst, err = strconv.Atoi(s)
		return err
	}
}

func stringVar(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}
