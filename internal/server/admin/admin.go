// Package admin hosts the remote admin shell listener. It accepts one
// administrative connection at a time; a newer connection replaces the
// previous one.
//
// TODO: implement the command handling (kick, ban, remove post, broadcast,
// shutdown) once the admin credential scheme is settled.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/jeranbbs/jeran/internal/logging"
)

type Shell struct {
	addr   string
	logger logging.Logger

	mu      sync.Mutex
	ln      net.Listener
	current net.Conn
}

func New(addr string, logger logging.Logger) *Shell {
	return &Shell{
		addr:   addr,
		logger: logger.With("module", "admin_shell"),
	}
}

// Addr reports the bound listener address, nil before Run has bound it.
func (s *Shell) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run accepts admin connections until the context is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("admin shell listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
		s.mu.Lock()
		if s.current != nil {
			s.current.Close()
			s.current = nil
		}
		s.mu.Unlock()
	}()

	s.logger.Info(ctx, "admin shell listening", "addr", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("admin shell accept: %w", err)
		}

		s.mu.Lock()
		if s.current != nil {
			s.current.Close()
		}
		s.current = conn
		s.mu.Unlock()

		s.logger.Info(ctx, "admin client connected", "addr", conn.RemoteAddr().String())
	}
}
