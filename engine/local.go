package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"hanabi/agent"
	"hanabi/experiments/metrics"
	"hanabi/game"
)

var _ Engine = (*Local)(nil)

// Local referees a game between agents in the same process. It holds the
// shuffled draw pile and a state that sees every hand.
type Local struct {
	agents []agent.Agent
	truth  *game.BeliefState
	pile   []game.Card
	seed   uint64
}

func NewLocal(config game.MatchConfig, players []string, agents []agent.Agent, seed uint64) *Local {
	if len(players) != len(agents) {
		panic("number of players does not match number of agents")
	}
	if len(players) != config.Players {
		panic(fmt.Sprintf("match is for %d players, got %d", config.Players, len(players)))
	}

	return &Local{
		agents: agents,
		truth:  game.NewBeliefState(config, players, game.NoSeat),
		pile:   shuffled(rand.New(rand.NewSource(seed))),
		seed:   seed,
	}
}

func shuffled(rng *rand.Rand) []game.Card {
	full := game.FullTable()
	pile := make([]game.Card, 0, game.TotalCards)
	for r := range full {
		for c, n := range full[r] {
			for i := 0; i < n; i++ {
				pile = append(pile, game.NewCard(game.Rank(r+1), game.Colors[c]))
			}
		}
	}
	rng.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
	return pile
}

// State returns the referee's view of the game.
func (e *Local) State() *game.BeliefState {
	return e.truth
}

// Run executes the entire game loop until the game ends.
func (e *Local) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:        uuid.New(),
		Players:   e.truth.NumPlayers(),
		Seed:      e.seed,
		StartTime: time.Now(),
	}
	log.Info().Msgf("game %s starting with %d players", gameMetric.ID, gameMetric.Players)

	if err := e.deal(); err != nil {
		return gameMetric, nil, err
	}

	var moveMetrics []metrics.MoveMetric
	player := 0
	ended, score := e.truth.GameEnded()
	for step := 0; !ended; step++ {
		if step >= MaxMoves {
			return gameMetric, moveMetrics, fmt.Errorf("game %s did not end after %d moves", gameMetric.ID, MaxMoves)
		}
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}

		move, searchMetric, err := e.agents[player].FindMove()
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("player %d failed to move: %w", player, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         move.String(),
			SearchMetric: searchMetric,
		})

		if err := e.play(player, move); err != nil {
			return gameMetric, moveMetrics, err
		}
		log.Debug().Msgf("step %d: %s", step, move)

		player = e.truth.NextPlayer(player)
		ended, score = e.truth.GameEnded()
	}

	gameMetric.Score = score
	gameMetric.Errors = e.truth.Errors
	gameMetric.Hints = e.truth.Hints
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	log.Info().Msgf("game %s ended with score %d after %d moves", gameMetric.ID, score, len(moveMetrics))
	return gameMetric, moveMetrics, nil
}

func (e *Local) deal() error {
	for seat := range e.agents {
		for i := 0; i < e.truth.Config.HandSize; i++ {
			if err := e.draw(seat); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Local) draw(seat int) error {
	if len(e.pile) == 0 {
		return nil
	}
	card := e.pile[len(e.pile)-1]
	e.pile = e.pile[:len(e.pile)-1]
	return e.broadcast(game.Event{Kind: game.CardDrawnEvent, Player: seat, Card: card})
}

// play checks move against the real hands and tells every agent what
// happened.
func (e *Local) play(player int, move game.Move) error {
	if err := e.validate(player, move); err != nil {
		return err
	}

	hand := e.truth.Hands[player]
	switch move.Action {
	case game.Play:
		card := hand[move.Index]
		err := e.broadcast(game.Event{
			Kind:      game.CardPlayedEvent,
			Player:    player,
			Index:     move.Index,
			Card:      card,
			Correctly: e.truth.Playable(card),
		})
		if err != nil {
			return err
		}
		return e.draw(player)
	case game.Discard:
		err := e.broadcast(game.Event{Kind: game.CardDiscardedEvent, Player: player, Index: move.Index, Card: hand[move.Index]})
		if err != nil {
			return err
		}
		return e.draw(player)
	default:
		return e.broadcast(game.Event{
			Kind:        game.HintGivenEvent,
			Player:      player,
			Destination: move.Destination,
			Indices:     game.Matching(e.truth.Hands[move.Destination], move.Kind, move.Value),
			HintKind:    move.Kind,
			Value:       move.Value,
		})
	}
}

func (e *Local) validate(player int, move game.Move) error {
	illegal := func(reason string) error {
		return fmt.Errorf("%w: %s by player %d: %s", ErrIllegalMove, move, player, reason)
	}

	if move.Player != player {
		return illegal("not this player's turn")
	}
	switch move.Action {
	case game.Play, game.Discard:
		if move.Index < 0 || move.Index >= len(e.truth.Hands[player]) {
			return illegal("no such card")
		}
		if move.Action == game.Discard && e.truth.Hints == 0 {
			return illegal("no hint token to recover")
		}
	case game.Hint:
		if e.truth.AvailableHints() == 0 {
			return illegal("no hint token available")
		}
		if move.Destination == player || move.Destination < 0 || move.Destination >= e.truth.NumPlayers() {
			return illegal("bad destination")
		}
		if move.Kind != game.RankHint && move.Kind != game.ColorHint {
			return illegal("bad hint kind")
		}
		if len(game.Matching(e.truth.Hands[move.Destination], move.Kind, move.Value)) == 0 {
			return illegal("hint touches no card")
		}
	default:
		return illegal("unknown action")
	}
	return nil
}

func (e *Local) broadcast(ev game.Event) error {
	e.truth.Observe(ev)
	for seat, a := range e.agents {
		if err := a.Observe(ev); err != nil {
			return fmt.Errorf("player %d rejected %v: %w", seat, ev.Kind, err)
		}
	}
	return nil
}
