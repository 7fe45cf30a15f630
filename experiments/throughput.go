package experiments

import "hanabi/experiments/metrics"

// ThroughputConfigs derives one config per worker count from base, all
// running the same number of rollouts per iteration so only parallelism
// varies. IDs start at 1.
func ThroughputConfigs(base metrics.AgentConfig, workers []int) []metrics.AgentConfig {
	simulations := base.Simulations
	for _, w := range workers {
		simulations = max(simulations, w)
	}

	configs := make([]metrics.AgentConfig, 0, len(workers))
	for i, w := range workers {
		config := base
		config.ID = i + 1
		config.Workers = w
		config.Simulations = simulations
		configs = append(configs, config)
	}
	return configs
}

// SimulationConfigs derives one config per rollout count from base.
func SimulationConfigs(base metrics.AgentConfig, simulations []int) []metrics.AgentConfig {
	configs := make([]metrics.AgentConfig, 0, len(simulations))
	for i, k := range simulations {
		config := base
		config.ID = i + 1
		config.Simulations = k
		configs = append(configs, config)
	}
	return configs
}
