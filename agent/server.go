package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hanabi/game"
	"hanabi/searcher"
)

type MoveRequest struct {
	State game.Snapshot `json:"state"`
	Seat  int           `json:"seat"`
}

type MoveResponse struct {
	Move       game.Move `json:"move"`
	Iterations int       `json:"iterations,omitempty"`
	Duration   string    `json:"duration,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server answers move requests for any seat of any game. Searches are
// serialized since they share one MCTS.
type Server struct {
	mu     sync.Mutex
	mcts   *searcher.MCTS
	router chi.Router
}

func NewServer(mcts *searcher.MCTS) *Server {
	s := &Server{mcts: mcts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/move", s.handleMove)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request: " + err.Error()})
		return
	}
	if req.State.Root != req.Seat {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "state must be seen from the requesting seat"})
		return
	}
	belief, err := game.FromSnapshot(req.State)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if ended, _ := belief.GameEnded(); ended {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "game is over"})
		return
	}

	s.mu.Lock()
	move, metric, err := Search(s.mcts, belief, req.Seat)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	log.Info().Msgf("[%s] player %d plays %s", middleware.GetReqID(r.Context()), req.Seat, move)
	writeJSON(w, http.StatusOK, MoveResponse{
		Move:       move,
		Iterations: metric.Iterations,
		Duration:   metric.Duration.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// ListenAndServe serves s on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting agent server on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
