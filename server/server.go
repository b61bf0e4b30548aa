// Package server mirrors an engine to HTTP and websocket clients. One
// goroutine, started with Run, owns the engine: HTTP handlers, websocket
// clients, frame callbacks and file reloads all reach it through that
// goroutine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/waveline/timeline/engine"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// ErrStopped is returned by Submit once Run has returned.
var ErrStopped = errors.New("server stopped")

// Server exposes one engine over HTTP and websockets. All engine access runs
// on the goroutine executing Run.
type Server struct {
	engine   *engine.Engine
	logger   *zap.Logger
	frames   <-chan func()
	calls    chan func()
	stopped  chan struct{}
	broker   *broker
	upgrader websocket.Upgrader
	router   *mux.Router
}

// New creates a server for e. frames, which may be nil, delivers the frame
// callbacks of the engine's scheduler, see engine.FrameClock. e must not be
// used by anything else once New returns.
func New(e *engine.Engine, frames <-chan func(), logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  e,
		logger:  logger,
		frames:  frames,
		calls:   make(chan func()),
		stopped: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.broker = newBroker(func(c *client, m Message) {
		logger.Debug("client too slow, message dropped", zap.String("client", c.addr), zap.String("type", m.Type))
	})
	s.broker.listen(e)
	s.router = mux.NewRouter()
	s.router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/commands", s.handleCommand).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler serving the routes of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Run owns the engine until ctx is done. It disconnects all websocket clients
// before returning.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.broker.closeAll()
	for {
		select {
		case fn := <-s.calls:
			fn()
		case frame := <-s.frames:
			frame()
		case <-ctx.Done():
			return nil
		}
	}
}

// Submit runs fn on the engine goroutine and waits for it to finish.
func (s *Server) Submit(ctx context.Context, fn func(e *engine.Engine)) error {
	done := make(chan struct{})
	call := func() {
		defer close(done)
		fn(s.engine)
	}
	select {
	case s.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	<-done
	return nil
}

// ListenAndServe runs the engine goroutine and an HTTP server on addr until
// ctx is done. It returns after the engine goroutine has stopped.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	runCtx, cancel := context.WithCancel(ctx)
	runDone := make(chan struct{})
	go func() {
		s.Run(runCtx)
		close(runDone)
	}()
	// the engine is free again once this returns
	defer func() {
		cancel()
		<-runDone
	}()
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", addr))
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var st engine.State
	if err := s.Submit(r.Context(), func(e *engine.Engine) { st = e.State() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var c engine.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, Message{Type: "error", Error: err.Error()})
		return
	}
	var st engine.State
	var cmdErr error
	err := s.Submit(r.Context(), func(e *engine.Engine) {
		cmdErr = e.Do(r.Context(), c)
		st = e.State()
	})
	switch {
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(cmdErr, engine.ErrUnknownCommand), errors.Is(cmdErr, engine.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, Message{Type: "error", Error: cmdErr.Error()})
	case cmdErr != nil:
		s.logger.Warn("command failed", zap.String("op", c.Op), zap.Error(cmdErr))
		writeJSON(w, http.StatusInternalServerError, Message{Type: "error", Error: cmdErr.Error()})
	default:
		writeJSON(w, http.StatusOK, st)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
