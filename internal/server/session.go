package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeranbbs/jeran/internal/cryptox"
	"github.com/jeranbbs/jeran/internal/logging"
	"github.com/jeranbbs/jeran/internal/server/texts"
	"github.com/jeranbbs/jeran/internal/server/verifier"
	"github.com/jeranbbs/jeran/internal/wire"
)

// maxNameLen is the display-name limit; longer candidates are truncated.
const maxNameLen = 7

// maxTitleLen caps post titles.
const maxTitleLen = 30

// session owns one client connection and walks it through the protocol:
// pace negotiation, the welcome prompt, name selection, then the command
// loop. All reads block the session's own goroutine only. Once disconnect
// has run the session is inert: reads and writes become no-ops returning
// empty results.
type session struct {
	id     uuid.UUID
	conn   net.Conn
	srv    *Server
	r      *wire.Reader
	w      *wire.Writer
	logger logging.Logger

	name     string
	verified *verifier.Identity

	key       *cryptox.SessionKey
	encrypted bool

	closed atomic.Bool
}

func newSession(id uuid.UUID, conn net.Conn, srv *Server) *session {
	return &session{
		id:     id,
		conn:   conn,
		srv:    srv,
		r:      wire.NewReader(conn),
		w:      wire.NewWriter(conn),
		logger: srv.logger.With("session", id.String()),
	}
}

func (st *session) run(ctx context.Context) {
	defer st.srv.removeSession(st)

	if err := st.login(ctx); err != nil {
		st.fault(ctx, err)
		return
	}
	if st.closed.Load() {
		return
	}

	st.logger.Info(ctx, "user logged in", "name", st.name)
	st.startEncryption(ctx)

	for !st.closed.Load() {
		line, err := st.requestInput(ctx)
		if err != nil {
			st.fault(ctx, err)
			return
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if err := st.execute(ctx, fields[0], fields[1:]); err != nil {
			st.fault(ctx, err)
			return
		}
	}
}

// login drives the pre-command states: pace negotiation, the greeting
// prompt loop and name selection.
func (st *session) login(ctx context.Context) error {
	if err := st.negotiatePace(ctx); err != nil {
		return err
	}

	if err := st.w.Text(st.srv.texts.Greeting()); err != nil {
		return st.writeErr(err)
	}

	for !st.closed.Load() {
		line, err := st.requestInput(ctx)
		if err != nil {
			return err
		}

		switch line {
		case "exit":
			st.disconnect(ctx)
			return nil
		case "info":
			if err := st.w.Text(st.srv.texts.Get(texts.Info)); err != nil {
				return st.writeErr(err)
			}
		case "enter":
			return st.chooseName(ctx)
		}
	}
	return nil
}

// negotiatePace asks the client for its output delay in milliseconds. A
// malformed reply is reported and pacing stays off.
func (st *session) negotiatePace(ctx context.Context) error {
	if err := st.w.NegotiatePace(); err != nil {
		return st.writeErr(err)
	}
	line, err := st.readLine(ctx)
	if err != nil {
		return err
	}

	pace, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pace < 0 {
		st.w.Segment("Invalid NumberFormat!")
		return nil
	}
	st.w.SetPace(time.Duration(pace) * time.Millisecond)
	return nil
}

// chooseName prompts until an unclaimed, non-reserved name arrives.
func (st *session) chooseName(ctx context.Context) error {
	for !st.closed.Load() {
		if err := st.w.Text("Please enter a Username (Max. 7 Characters)"); err != nil {
			return st.writeErr(err)
		}
		line, err := st.requestInput(ctx)
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if len(name) > maxNameLen {
			name = name[:maxNameLen]
		}

		if err := st.srv.claimName(st, name); err != nil {
			st.w.Segment("Username Taken!")
			continue
		}

		if err := st.w.Text(st.srv.texts.Get(texts.Welcome)); err != nil {
			return st.writeErr(err)
		}
		st.w.Segment(fmt.Sprintf("Welcome %s! Your UUID is %s", name, st.id))
		return nil
	}
	return nil
}

// startEncryption generates a fresh session key pair and switches inbound
// traffic to encrypted mode. A generation failure is reported and the
// session stays on plaintext.
func (st *session) startEncryption(ctx context.Context) {
	if st.key != nil {
		st.stopEncryption()
	}

	key, err := cryptox.NewSessionKey()
	if err != nil {
		st.logger.Error(ctx, "failed to generate session keys", "error", err.Error())
		st.w.Segment("Server failed to generate session keys!")
		return
	}
	encoded, err := key.PublicBase64()
	if err != nil {
		st.logger.Error(ctx, "failed to encode session public key", "error", err.Error())
		st.w.Segment("Server failed to generate session keys!")
		return
	}

	st.key = key
	st.encrypted = true
	st.w.StartEncryption(encoded)
}

// stopEncryption tears encrypted mode down; inbound lines are plaintext
// again afterwards.
func (st *session) stopEncryption() {
	st.w.StopEncryption()
	st.key = nil
	st.encrypted = false
}

// requestInput asks the client for one line and reads it.
func (st *session) requestInput(ctx context.Context) (string, error) {
	if st.closed.Load() {
		return "", nil
	}
	if err := st.w.RequestInput(); err != nil {
		return "", st.writeErr(err)
	}
	return st.readLine(ctx)
}

// readLine reads one line, decrypting it while encrypted mode is active.
// A decrypt failure is reported to the client and the input discarded; it
// never ends the session.
func (st *session) readLine(ctx context.Context) (string, error) {
	if st.closed.Load() {
		return "", nil
	}
	line, err := st.r.ReadLine()
	if err != nil {
		if st.closed.Load() {
			// The socket was closed under us by disconnect or shutdown.
			return "", nil
		}
		return "", err
	}

	if st.encrypted {
		plain, err := st.key.DecryptLine(line)
		if err != nil {
			st.logger.Warn(ctx, "failed to decrypt client message", "error", err.Error())
			st.w.Segment("Failed to Decrypt Your Message!")
			return "", nil
		}
		return plain, nil
	}
	return line, nil
}

// deliverMessage writes a direct message from another session onto this
// session's output stream.
func (st *session) deliverMessage(from uuid.UUID, message string) {
	if st.closed.Load() {
		return
	}
	st.w.Segment("Message from User " + st.srv.LookupDisplayName(from) + ": ")
	st.w.Segment(message)
}

// disconnect sends the goodbye tag, closes the socket and marks the
// session inert. Safe to call more than once and from other goroutines.
func (st *session) disconnect(ctx context.Context) {
	if !st.closed.CompareAndSwap(false, true) {
		return
	}
	st.logger.Info(ctx, "disconnecting user", "addr", st.conn.RemoteAddr().String())
	st.w.Goodbye()
	st.conn.Close()
}

// fault handles a transport error: log, close, never propagate.
func (st *session) fault(ctx context.Context, err error) {
	if err == nil {
		return
	}
	st.logger.Info(ctx, "lost connection", "name", st.name, "error", err.Error())
	st.closed.Store(true)
	st.conn.Close()
}

// writeErr normalizes write failures on a session that was closed
// concurrently: those are not faults.
func (st *session) writeErr(err error) error {
	if st.closed.Load() {
		return nil
	}
	return err
}
