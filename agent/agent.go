package agent

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/searcher"
)

var ErrSearchFailed = errors.New("search failed")
var ErrBadEvent = errors.New("event does not fit the game")

type Agent interface {
	// Observe advances the agent's view of the game by one event as the
	// referee saw it. Cards hidden from the agent are dropped.
	Observe(e game.Event) error
	// FindMove returns the next move and performance metrics (if collected)
	// from the search
	FindMove() (game.Move, metrics.SearchMetric, error)
}

// MCTSAgent plays one seat. It owns the belief state of that seat and
// searches it with MCTS whenever it must move.
type MCTSAgent struct {
	seat   int
	belief *game.BeliefState
	mcts   *searcher.MCTS
}

func NewMCTSAgent(config game.MatchConfig, players []string, seat int, mcts *searcher.MCTS) *MCTSAgent {
	return &MCTSAgent{
		seat:   seat,
		belief: game.NewBeliefState(config, players, seat),
		mcts:   mcts,
	}
}

func (a *MCTSAgent) Seat() int {
	return a.seat
}

// Belief returns the agent's belief state. Callers must not modify it.
func (a *MCTSAgent) Belief() *game.BeliefState {
	return a.belief
}

func (a *MCTSAgent) Observe(e game.Event) error {
	return observe(a.belief, a.seat, e)
}

func observe(belief *game.BeliefState, seat int, e game.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadEvent, r)
		}
	}()
	belief.Observe(e.Hidden(seat))
	return nil
}

func (a *MCTSAgent) FindMove() (game.Move, metrics.SearchMetric, error) {
	return Search(a.mcts, a.belief, a.seat)
}

// Search runs mcts for seat and turns a failed search into ErrSearchFailed.
func Search(mcts *searcher.MCTS, belief *game.BeliefState, seat int) (move game.Move, metric metrics.SearchMetric, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("search for player %d failed: %v", seat, r)
			err = fmt.Errorf("%w: %v", ErrSearchFailed, r)
		}
	}()
	move, metric = mcts.Search(belief, seat)
	return move, metric, nil
}
