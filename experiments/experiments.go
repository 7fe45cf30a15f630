package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hanabi/agent"
	"hanabi/engine"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/rules"
	"hanabi/searcher"
	"hanabi/store"
)

// Experiment plays Games self-play games for every agent config. Every
// seat of a game uses the same config, and game i of every config is dealt
// from the same seed so configs are compared on identical decks. When Remote
// is set every seat asks the move server at that URL instead of searching
// in process, and the configs only label the results.
type Experiment struct {
	Name    string
	Match   game.MatchConfig
	Configs []metrics.AgentConfig
	Games   int
	Seed    uint64
	OutDir  string
	Remote  string    // Optional
	DB      *store.DB // Optional
}

type Result struct {
	Dir         string
	GameRecords []metrics.GameRecord
	MoveRecords []metrics.MoveRecord
}

// MeanScore returns the average score of the games played by agent.
func (r Result) MeanScore(agent int) float64 {
	total, n := 0, 0
	for _, g := range r.GameRecords {
		if g.Agent == agent {
			total += g.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func Run(ctx context.Context, exp Experiment) (Result, error) {
	var result Result
	for _, config := range exp.Configs {
		if _, err := rules.ByName(config.Generator); err != nil {
			return result, err
		}
		if _, err := rules.PolicyByName(config.Rollout); err != nil {
			return result, err
		}
	}

	log.Info().Msgf("starting %s experiment...", exp.Name)

	for ci, config := range exp.Configs {
		log.Info().Msgf("starting agent %d of %d with config=%+v...", ci+1, len(exp.Configs), config)

		for i := 0; i < exp.Games; i++ {
			seed := exp.Seed + uint64(i)
			gameMetric, moveMetrics, err := runGame(ctx, exp, config, seed)
			if err != nil {
				return result, fmt.Errorf("agent %d game %d: %w", config.ID, i+1, err)
			}

			gameRecord := metrics.GameRecord{Agent: config.ID, GameMetric: gameMetric}
			moveRecords := make([]metrics.MoveRecord, 0, len(moveMetrics))
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{Game: gameMetric.ID, MoveMetric: mm})
			}
			result.GameRecords = append(result.GameRecords, gameRecord)
			result.MoveRecords = append(result.MoveRecords, moveRecords...)

			if exp.DB != nil {
				if err := persist(ctx, exp.DB, exp.Name, gameRecord, moveRecords); err != nil {
					return result, err
				}
			}

			log.Info().Msgf("completed agent %d game %d of %d with score %d", config.ID, i+1, exp.Games, gameMetric.Score)
		}
		log.Info().Msgf("agent %d mean score: %.2f", config.ID, result.MeanScore(config.ID))
	}

	log.Info().Msgf("completed %s experiment", exp.Name)

	dir, err := write(exp, result)
	if err != nil {
		return result, err
	}
	result.Dir = dir
	return result, nil
}

func persist(ctx context.Context, db *store.DB, name string, rec metrics.GameRecord, moves []metrics.MoveRecord) error {
	if err := db.InsertGame(ctx, name, rec); err != nil {
		return err
	}
	return db.InsertMoves(ctx, moves)
}

func write(exp Experiment, result Result) (string, error) {
	writer, err := metrics.NewWriter(exp.OutDir, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(exp.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(result.GameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(result.MoveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}

// runGame plays one game with every seat searching under config, or asking
// the remote move server.
func runGame(ctx context.Context, exp Experiment, config metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	match := exp.Match
	players := make([]string, match.Players)
	agents := make([]agent.Agent, match.Players)
	for seat := range players {
		players[seat] = fmt.Sprintf("Player%d", seat+1)
	}
	for seat := range agents {
		if exp.Remote != "" {
			agents[seat] = agent.NewRemoteAgent(match, players, seat, exp.Remote, nil)
			continue
		}
		mcts, err := CreateMCTS(config, seed*uint64(match.Players)+uint64(seat)+1)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		agents[seat] = agent.NewMCTSAgent(match, players, seat, mcts)
	}

	var e engine.Engine = engine.NewLocal(match, players, agents, seed)
	return e.Run(ctx)
}

// CreateMCTS builds a searcher for config with metrics enabled.
func CreateMCTS(config metrics.AgentConfig, seed uint64) (*searcher.MCTS, error) {
	if config.Exploration < 0 {
		return nil, fmt.Errorf("negative exploration constant %v", config.Exploration)
	}
	generator, err := rules.ByName(config.Generator)
	if err != nil {
		return nil, err
	}
	policy, err := rules.PolicyByName(config.Rollout)
	if err != nil {
		return nil, err
	}
	options := []searcher.Option{
		searcher.WithGenerator(generator),
		searcher.WithRolloutPolicy(policy),
		searcher.WithExploration(config.Exploration),
		searcher.WithSeed(seed),
	}

	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Simulations > 0 {
		options = append(options, searcher.WithSimulations(config.Simulations))
	}
	if config.Workers > 1 {
		options = append(options, searcher.WithRolloutWorkers(config.Workers))
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		options = append(options, searcher.WithConsistencyChecks())
	}
	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(options...), nil
}
