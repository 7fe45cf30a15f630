package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hanabi/experiments/metrics"
	"hanabi/game"
)

// RemoteAgent plays one seat by asking a move server. It keeps the belief
// state of its seat locally and sends it with every request.
type RemoteAgent struct {
	seat      int
	belief    *game.BeliefState
	serverURL string
	client    *http.Client
}

func NewRemoteAgent(config game.MatchConfig, players []string, seat int, serverURL string, client *http.Client) *RemoteAgent {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &RemoteAgent{
		seat:      seat,
		belief:    game.NewBeliefState(config, players, seat),
		serverURL: serverURL,
		client:    client,
	}
}

func (a *RemoteAgent) Observe(e game.Event) error {
	return observe(a.belief, a.seat, e)
}

func (a *RemoteAgent) FindMove() (game.Move, metrics.SearchMetric, error) {
	data, err := json.Marshal(MoveRequest{State: a.belief.Snapshot(), Seat: a.seat})
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := a.client.Post(a.serverURL+"/v1/move", "application/json", bytes.NewReader(data))
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: %s: %s", ErrSearchFailed, resp.Status, body.Error)
	}

	var move MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&move); err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("failed to decode move: %w", err)
	}
	if move.Move.Player != a.seat {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: server moved for player %d", ErrSearchFailed, move.Move.Player)
	}
	duration, err := time.ParseDuration(move.Duration)
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("failed to decode search duration: %w", err)
	}
	return move.Move, metrics.SearchMetric{Iterations: move.Iterations, Duration: duration}, nil
}
