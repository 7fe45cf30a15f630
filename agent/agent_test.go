package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"hanabi/game"
	"hanabi/searcher"
)

func hand(cards ...string) []game.Card {
	parsed := make([]game.Card, len(cards))
	for i, s := range cards {
		var rank int
		var color string
		if _, err := fmt.Sscanf(s, "%d%s", &rank, &color); err != nil {
			panic(err)
		}
		c, err := game.ParseColor(color)
		if err != nil {
			panic(err)
		}
		parsed[i] = game.NewCard(game.Rank(rank), c)
	}
	return parsed
}

var (
	hand0 = hand("2green", "2yellow", "3blue", "4red", "1white")
	hand1 = hand("1red", "1blue", "2white", "3red", "4white")
)

// deal feeds the referee's view of the opening deal to a.
func deal(t *testing.T, a Agent, hands ...[]game.Card) {
	for seat, h := range hands {
		for _, card := range h {
			require.NoError(t, a.Observe(game.Event{Kind: game.CardDrawnEvent, Player: seat, Card: card}))
		}
	}
}

func newAgent(seat int) *MCTSAgent {
	mcts := searcher.NewMCTS(searcher.WithIterations(50), searcher.WithSeed(1), searcher.WithMetrics())
	return NewMCTSAgent(game.NewMatchConfig(2), []string{"alice", "bob"}, seat, mcts)
}

func TestMCTSAgent(t *testing.T) {
	t.Run("own draws stay hidden", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		for _, card := range a.Belief().Hands[0] {
			require.False(t, card.Concrete())
		}
		require.Equal(t, hand1, a.Belief().Hands[1])
	})

	t.Run("finds a move for its seat", func(t *testing.T) {
		a := newAgent(1)
		deal(t, a, hand0, hand1)
		move, metric, err := a.FindMove()
		require.NoError(t, err)
		require.Equal(t, 1, move.Player)
		require.Equal(t, 50, metric.Iterations)
	})

	t.Run("impossible event is rejected", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		err := a.Observe(game.Event{Kind: game.CardDiscardedEvent, Player: 1, Index: 0, Card: hand1[0]})
		require.ErrorIs(t, err, ErrBadEvent, "Should not discard with no used hint token")
	})

	t.Run("rejected event leaves the belief unchanged", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		before := a.Belief().Snapshot()

		err := a.Observe(game.Event{Kind: game.CardPlayedEvent, Player: 1, Index: 3, Card: hand1[3], Correctly: true})
		require.ErrorIs(t, err, ErrBadEvent, "3 red is not playable on an empty board")
		require.Equal(t, before, a.Belief().Snapshot())
		require.NotPanics(t, a.Belief().AssertConsistency)

		move, _, err := a.FindMove()
		require.NoError(t, err)
		require.Equal(t, 0, move.Player)
	})

	t.Run("search failure is returned", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		a.Belief().Errors = a.Belief().Config.MaxErrors
		_, _, err := a.FindMove()
		require.ErrorIs(t, err, ErrSearchFailed, "Should not search a finished game")
	})
}

func postMove(t *testing.T, srv http.Handler, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/move", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestServer(t *testing.T) {
	srv := NewServer(searcher.NewMCTS(searcher.WithIterations(30), searcher.WithSeed(2)))

	t.Run("health check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("returns a move for the requesting seat", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		rec := postMove(t, srv, MoveRequest{State: a.Belief().Snapshot(), Seat: 0})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp MoveResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 0, resp.Move.Player)
		require.NotEqual(t, game.NoAction, resp.Move.Action)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/move", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("state of another seat", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		rec := postMove(t, srv, MoveRequest{State: a.Belief().Snapshot(), Seat: 1})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inconsistent state", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		snap := a.Belief().Snapshot()
		snap.DrawPile = 3
		rec := postMove(t, srv, MoveRequest{State: snap, Seat: 0})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unplayable rules", func(t *testing.T) {
		for _, change := range []func(*game.MatchConfig){
			func(c *game.MatchConfig) { c.Penalty = 9 },
			func(c *game.MatchConfig) { c.MaxErrors = 0 },
		} {
			a := newAgent(0)
			deal(t, a, hand0, hand1)
			snap := a.Belief().Snapshot()
			change(&snap.Config)
			rec := postMove(t, srv, MoveRequest{State: snap, Seat: 0})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Contains(t, rec.Body.String(), game.ErrInconsistent.Error())
		}
	})

	t.Run("finished game", func(t *testing.T) {
		a := newAgent(0)
		deal(t, a, hand0, hand1)
		snap := a.Belief().Snapshot()
		snap.Errors = snap.Config.MaxErrors
		rec := postMove(t, srv, MoveRequest{State: snap, Seat: 0})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/move", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRemoteAgent(t *testing.T) {
	srv := httptest.NewServer(NewServer(searcher.NewMCTS(searcher.WithIterations(30), searcher.WithSeed(3), searcher.WithMetrics())))
	t.Cleanup(srv.Close)

	newRemote := func(seat int) *RemoteAgent {
		return NewRemoteAgent(game.NewMatchConfig(2), []string{"alice", "bob"}, seat, srv.URL, srv.Client())
	}

	t.Run("moves come from the server", func(t *testing.T) {
		a := newRemote(1)
		deal(t, a, hand0, hand1)
		move, metric, err := a.FindMove()
		require.NoError(t, err)
		require.Equal(t, 1, move.Player)
		require.Equal(t, 30, metric.Iterations)
		require.Positive(t, metric.Duration)
	})

	t.Run("server errors become search failures", func(t *testing.T) {
		a := newRemote(0)
		deal(t, a, hand0, hand1)
		a.belief.Errors = a.belief.Config.MaxErrors
		_, _, err := a.FindMove()
		require.ErrorIs(t, err, ErrSearchFailed)
		require.ErrorContains(t, err, "409")
	})

	t.Run("malformed duration is an error", func(t *testing.T) {
		fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, MoveResponse{Move: game.PlayMove(0, 0), Iterations: 3, Duration: "soon"})
		}))
		t.Cleanup(fake.Close)

		a := NewRemoteAgent(game.NewMatchConfig(2), []string{"alice", "bob"}, 0, fake.URL, fake.Client())
		deal(t, a, hand0, hand1)
		_, _, err := a.FindMove()
		require.ErrorContains(t, err, "search duration")
	})

	t.Run("unreachable server", func(t *testing.T) {
		a := NewRemoteAgent(game.NewMatchConfig(2), []string{"alice", "bob"}, 0, "http://127.0.0.1:1", nil)
		deal(t, a, hand0, hand1)
		_, _, err := a.FindMove()
		require.ErrorIs(t, err, ErrSearchFailed)
	})
}
