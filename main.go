package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hanabi/agent"
	"hanabi/config"
	"hanabi/experiments"
	"hanabi/experiments/metrics"
	"hanabi/store"
)

func main() {
	mode := flag.String("mode", "selfplay", "selfplay, throughput, simulations, remote or serve")
	name := flag.String("name", "selfplay", "Experiment name, used for output directories and records")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := run(*mode, *name); err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func run(mode, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "selfplay":
		return runExperiment(ctx, cfg, name, "", []metrics.AgentConfig{cfg.Agent(1)})
	case "throughput":
		configs := experiments.ThroughputConfigs(cfg.Agent(0), []int{1, 2, 4, 8})
		return runExperiment(ctx, cfg, name, "", configs)
	case "simulations":
		configs := experiments.SimulationConfigs(cfg.Agent(0), []int{1, 2, 4, 8})
		return runExperiment(ctx, cfg, name, "", configs)
	case "remote":
		if cfg.AgentURL == "" {
			return errors.New("remote mode needs HANABI_AGENT_URL")
		}
		return runExperiment(ctx, cfg, name, cfg.AgentURL, []metrics.AgentConfig{cfg.Agent(1)})
	case "serve":
		return serve(ctx, cfg)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func seedOf(cfg config.Config) uint64 {
	if cfg.Seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return cfg.Seed
}

func runExperiment(ctx context.Context, cfg config.Config, name, remote string, configs []metrics.AgentConfig) error {
	exp := experiments.Experiment{
		Name:    name,
		Match:   cfg.Match(),
		Configs: configs,
		Games:   cfg.Games,
		Seed:    seedOf(cfg),
		OutDir:  cfg.OutDir,
		Remote:  remote,
	}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		exp.DB = db
	}

	result, err := experiments.Run(ctx, exp)
	if err != nil {
		return fmt.Errorf("%s experiment failed: %w", name, err)
	}
	for _, c := range configs {
		log.Info().Msgf("agent %d: mean score %.2f over %d games", c.ID, result.MeanScore(c.ID), cfg.Games)
	}
	log.Info().Msgf("results written to %s", result.Dir)

	if exp.DB != nil {
		summary, err := exp.DB.Summarize(ctx, name)
		if err != nil {
			log.Error().Err(err).Msg("failed to summarize stored games")
			return nil
		}
		log.Info().Msgf("%d stored games for %s, mean score %.2f, best %d", summary.Games, name, summary.MeanScore, summary.MaxScore)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	mcts, err := experiments.CreateMCTS(cfg.Agent(1), seedOf(cfg))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	if err := agent.NewServer(mcts).ListenAndServe(ctx, ":"+cfg.Port); err != nil {
		return fmt.Errorf("agent server stopped: %w", err)
	}
	return nil
}
