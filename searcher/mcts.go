package searcher

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/rules"
)

type Option func(mcts *MCTS)

// MCTS is an information set Monte Carlo tree search. Every iteration works
// on a fresh determinization of the belief state, and the hands of other
// players are resampled while crossing their nodes. A MCTS must not run
// concurrent searches.
type MCTS struct {
	iterations  int
	duration    time.Duration
	simulations int
	workers     int
	exploration float64
	seed        uint64
	generator   Generator
	policy      RolloutPolicy
	metrics     metrics.Collector
	checks      bool

	rng      *rand.Rand
	tree     *tree
	state    *game.SearchState
	rollouts []*game.SearchState
	scores   []int
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithSimulations sets the number of rollouts averaged per iteration.
func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.simulations = simulations
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithGenerator(generator Generator) Option {
	return func(m *MCTS) {
		if generator != nil {
			m.generator = generator
		}
	}
}

func WithRolloutPolicy(policy RolloutPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithRolloutWorkers runs the rollouts of an iteration on up to workers
// goroutines.
func WithRolloutWorkers(workers int) Option {
	return func(m *MCTS) {
		if workers > 0 {
			m.workers = workers
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

// WithConsistencyChecks verifies the card accounting of the state after
// every node it leaves during selection.
func WithConsistencyChecks() Option {
	return func(m *MCTS) {
		m.checks = true
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		simulations: DefaultSimulations,
		workers:     1,
		exploration: DefaultExploration,
		seed:        uint64(time.Now().UnixNano()),
		generator:   rules.NewSmart(rules.DefaultSmartConfig()),
		policy:      rules.Heuristic{},
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		panic("Must specify search iterations or duration")
	}
	m.rng = rand.New(rand.NewSource(m.seed))
	m.tree = newTree(game.Move{})
	return m
}

// Search returns the move player should make in the game described by
// belief. The belief state is only read.
func (m *MCTS) Search(belief *game.BeliefState, player int) (game.Move, metrics.SearchMetric) {
	m.tree.reset(game.Placeholder(belief.PrevPlayer(player)))
	m.prepare(belief)

	m.metrics.Start(m.simulations, m.workers, m.exploration)
	start := time.Now()
	for i := 0; m.remains(i, start); i++ {
		m.iterate(belief, player)
		m.metrics.AddEpisode()
	}

	best, ok := m.tree.mostVisited(rootID)
	if !ok {
		panic("search finished without expanding the root")
	}
	m.metrics.SetTree(m.tree.size(), m.tree.get(best).visits)
	metric := m.metrics.Complete()

	move := m.tree.get(best).move
	log.Debug().Msgf("player %d searched %d nodes in %s and chose %s", player, m.tree.size(), time.Since(start), move)
	return move, metric
}

// remains reports whether either budget is left after i iterations.
func (m *MCTS) remains(i int, start time.Time) bool {
	if m.iterations > 0 && i < m.iterations {
		return true
	}
	return m.duration > 0 && time.Since(start) < m.duration
}

// prepare allocates the working buffers on the first search.
func (m *MCTS) prepare(belief *game.BeliefState) {
	if m.state == nil {
		m.state = game.NewSearchState(belief, m.rng)
	}
	for len(m.rollouts) < m.simulations {
		seed := m.seed + uint64(len(m.rollouts)) + 1
		m.rollouts = append(m.rollouts, game.NewSearchState(belief, rand.New(rand.NewSource(seed))))
	}
	if len(m.scores) < m.simulations {
		m.scores = make([]int, m.simulations)
	}
}

func (m *MCTS) iterate(belief *game.BeliefState, player int) {
	s := m.state
	s.Determinize(belief)
	s.EnterNode(player)

	leaf := m.selectLeaf(s)
	leaf = m.expand(s, leaf)
	score := m.simulate(s, m.tree.get(leaf).move.Player)
	m.backpropagate(leaf, score)
}

// selectLeaf descends while every candidate move of the next player already
// has a child, crossing nodes with the enter and exit protocol of the state.
func (m *MCTS) selectLeaf(s *game.SearchState) NodeID {
	id := rootID
	for {
		n := m.tree.get(id)
		if len(n.children) == 0 {
			return id
		}
		if ended, _ := s.GameEnded(); ended {
			return id
		}
		next := s.NextPlayer(n.move.Player)
		if len(m.untried(s, id, next)) > 0 {
			return id
		}
		child, ok := m.bestChild(s, id)
		if !ok {
			return id
		}

		move := m.tree.get(child).move
		s.Apply(move)
		s.ExitNode(move.Player)
		if m.checks {
			s.AssertConsistency()
		}
		s.EnterNode(s.NextPlayer(move.Player))
		id = child
	}
}

// untried returns the applicable candidate moves of player without a child
// under id.
func (m *MCTS) untried(s *game.SearchState, id NodeID, player int) []game.Move {
	var moves []game.Move
	for _, move := range m.generator.Moves(s, player) {
		if _, ok := m.tree.child(id, move); ok || !s.CanApply(move) {
			continue
		}
		moves = append(moves, move)
	}
	return moves
}

// bestChild returns the first child of id with the highest UCB1 among the
// children applicable in s.
func (m *MCTS) bestChild(s *game.SearchState, id NodeID) (NodeID, bool) {
	n := m.tree.get(id)
	u := newUCB(m.exploration, n.visits)
	best, bestScore := noNode, 0.0
	for _, child := range n.children {
		c := m.tree.get(child)
		if !s.CanApply(c.move) {
			continue
		}
		score := u.evaluate(c.value, c.visits)
		if best == noNode || score > bestScore {
			best, bestScore = child, score
		}
	}
	return best, best != noNode
}

// expand applies a random untried move, or a random play when every
// candidate is tried, and returns its node.
func (m *MCTS) expand(s *game.SearchState, id NodeID) NodeID {
	if ended, _ := s.GameEnded(); ended {
		return id
	}
	next := s.NextPlayer(m.tree.get(id).move.Player)

	var move game.Move
	if moves := m.untried(s, id, next); len(moves) > 0 {
		move = moves[m.rng.Intn(len(moves))]
	} else {
		move = game.PlayMove(next, m.rng.Intn(len(s.Hands[next])))
	}
	s.Apply(move)

	if child, ok := m.tree.child(id, move); ok {
		return child
	}
	return m.tree.add(id, move)
}

// simulate averages the scores of the rollouts played from s, the first
// move being made by the player after actor.
func (m *MCTS) simulate(s *game.SearchState, actor int) float64 {
	start := s.NextPlayer(actor)
	if m.workers <= 1 || m.simulations == 1 {
		for k := 0; k < m.simulations; k++ {
			s.CopyInto(m.rollouts[k])
			m.scores[k] = m.rollout(m.rollouts[k], start)
		}
	} else {
		m.simulateParallel(s, start)
	}

	total := 0
	for _, score := range m.scores[:m.simulations] {
		total += score
	}
	return float64(total) / float64(m.simulations)
}

func (m *MCTS) simulateParallel(s *game.SearchState, start int) {
	for k := 0; k < m.simulations; k++ {
		s.CopyInto(m.rollouts[k])
	}

	var g errgroup.Group
	g.SetLimit(m.workers)
	for k := 0; k < m.simulations; k++ {
		k := k
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("rollout %d: %v", k, r)
				}
			}()
			m.scores[k] = m.rollout(m.rollouts[k], start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Surface the failure on the searching goroutine
		panic(err)
	}
}

// rollout plays s to the end with the rollout policy and returns the score.
func (m *MCTS) rollout(s *game.SearchState, player int) int {
	for {
		if ended, score := s.GameEnded(); ended {
			m.metrics.AddFullPlayout()
			return score
		}
		s.Apply(m.policy.Next(s, player, s.Rand()))
		player = s.NextPlayer(player)
	}
}

func (m *MCTS) backpropagate(id NodeID, score float64) {
	r := reward(score)
	for !m.tree.isRoot(id) {
		n := m.tree.get(id)
		n.visits++
		n.value += r
		id = n.parent
	}
	m.tree.get(rootID).visits++
}
