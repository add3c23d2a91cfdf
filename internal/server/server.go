// Package server runs the board: the TCP listener, the live-session
// registry, and the per-connection protocol sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranbbs/jeran/internal/common"
	"github.com/jeranbbs/jeran/internal/logging"
	"github.com/jeranbbs/jeran/internal/server/board"
	"github.com/jeranbbs/jeran/internal/server/config"
	"github.com/jeranbbs/jeran/internal/server/texts"
	"github.com/jeranbbs/jeran/internal/server/verifier"
)

// reservedName can never be claimed by a client.
const reservedName = "ADMIN"

// Server accepts connections and keeps the directory of live sessions.
// Each accepted connection gets a fresh identity and its own goroutine.
type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	board    *board.Board
	verifier *verifier.Verifier
	texts    texts.Texts

	mu       sync.Mutex
	ln       net.Listener
	sessions map[uuid.UUID]*session
	names    map[string]struct{}
	shutdown bool
}

func New(cfg *config.Config, v *verifier.Verifier, t texts.Texts, logger logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger.With("module", "server"),
		verifier: v,
		texts:    t,
		sessions: make(map[uuid.UUID]*session),
		names:    make(map[string]struct{}),
	}
	s.board = board.New(s.LookupDisplayName)
	return s
}

// Board exposes the post store for the snapshot service.
func (s *Server) Board() *board.Board {
	return s.board
}

// Addr reports the bound listener address, nil before Run has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run binds the listener and accepts connections until the context is
// cancelled. A closed-listener error while blocked in Accept means an
// intentional shutdown and ends the loop silently.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Stop(context.WithoutCancel(ctx))
	}()

	s.logger.Info(ctx, "listening for clients", "addr", s.cfg.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info(ctx, "server stopped")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		id := uuid.New()
		sess := newSession(id, conn, s)

		s.mu.Lock()
		if s.shutdown {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.sessions[id] = sess
		s.mu.Unlock()

		s.logger.Info(ctx, "accepted client", "addr", conn.RemoteAddr().String(), "session", id.String())
		go sess.run(ctx)
	}
}

// Stop disconnects every live session, clears the registry and closes the
// listener, in that order.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping server", "sessions", len(live))
	for _, sess := range live {
		sess.disconnect(ctx)
	}

	s.mu.Lock()
	s.sessions = make(map[uuid.UUID]*session)
	s.names = make(map[string]struct{})
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
}

// LookupDisplayName returns "<name> (<id>)" for a live named session and
// "unknown (<id>)" otherwise. Used for post and message attribution.
func (s *Server) LookupDisplayName(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.name == "" {
		return fmt.Sprintf("unknown (%s)", id)
	}
	return fmt.Sprintf("%s (%s)", sess.name, id)
}

// claimName registers a display name for the session. Names are unique
// among live sessions; the reserved name is never granted. The collision
// check and the insert happen under one lock so concurrent claims of the
// same name cannot both succeed.
func (s *Server) claimName(sess *session, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == reservedName {
		return common.ErrNameTaken
	}
	if _, taken := s.names[name]; taken {
		return common.ErrNameTaken
	}
	s.names[name] = struct{}{}
	sess.name = name
	return nil
}

// removeSession drops the session from the registry and releases its name.
func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sess.id)
	if sess.name != "" {
		delete(s.names, sess.name)
	}
}

// lookupSession resolves a live session by identity.
func (s *Server) lookupSession(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
