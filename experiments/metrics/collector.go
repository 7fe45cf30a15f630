package metrics

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// AgentConfig describes the search budget of one agent in an experiment.
type AgentConfig struct {
	ID          int
	Iterations  int
	Duration    time.Duration
	Simulations int
	Workers     int
	Exploration float64 // UCB1 constant, 0 searches greedily
	Generator   string
	Rollout     string
}

type SearchMetric struct {
	Iterations   int
	Duration     time.Duration
	Simulations  int
	Workers      int
	Exploration  float64
	FullPlayouts int // Rollouts played to the end of the game
	TreeSize     int
	BestVisits   int
}

type MoveMetric struct {
	Step   int
	Player int // Seat
	Move   string
	SearchMetric
}

type GameMetric struct {
	ID         uuid.UUID
	Players    int
	Seed       uint64
	Score      int
	Errors     int
	Hints      int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type Collector interface {
	Start(simulations, workers int, exploration float64)
	AddEpisode()
	AddFullPlayout()
	SetTree(size, bestVisits int)
	Complete() SearchMetric
}

type collector struct {
	simulations  int
	workers      int
	exploration  float64
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	treeSize     int
	bestVisits   int
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(simulations, workers int, exploration float64) {
	m.startTime = time.Now()
	m.simulations = simulations
	m.workers = workers
	m.exploration = exploration
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.treeSize = 0
	m.bestVisits = 0
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

// AddFullPlayout is safe to call from rollout workers.
func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) SetTree(size, bestVisits int) {
	m.treeSize = size
	m.bestVisits = bestVisits
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Iterations:   int(m.episodes.Load()),
		Duration:     time.Since(m.startTime),
		Simulations:  m.simulations,
		Workers:      m.workers,
		Exploration:  m.exploration,
		FullPlayouts: int(m.fullPlayouts.Load()),
		TreeSize:     m.treeSize,
		BestVisits:   m.bestVisits,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(simulations, workers int, exploration float64) {}
func (m *dummyCollector) AddEpisode()                                         {}
func (m *dummyCollector) AddFullPlayout()                                     {}
func (m *dummyCollector) SetTree(size, bestVisits int)                        {}
func (m *dummyCollector) Complete() SearchMetric                              { return SearchMetric{} }
