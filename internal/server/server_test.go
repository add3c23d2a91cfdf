package server

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranbbs/jeran/internal/logging"
	"github.com/jeranbbs/jeran/internal/server/config"
	"github.com/jeranbbs/jeran/internal/server/texts"
	"github.com/jeranbbs/jeran/internal/server/verifier"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Addr = "127.0.0.1:0"
	cfg.VerifierDBPath = filepath.Join(t.TempDir(), "verifier.json")
	cfg.PostSaveDir = filepath.Join(t.TempDir(), "posts")

	v := verifier.New(cfg.VerifierDBPath, logging.Nop())
	return New(cfg, v, texts.Default(), logging.Nop())
}

// attachSession registers a session over a fresh pipe, the way the accept
// loop does, and starts its goroutine. The returned conn is the client end.
func attachSession(t *testing.T, srv *Server) (net.Conn, *session) {
	t.Helper()

	serverEnd, clientEnd := net.Pipe()
	require.NoError(t, clientEnd.SetDeadline(time.Now().Add(10*time.Second)))

	id := uuid.New()
	sess := newSession(id, serverEnd, srv)
	srv.mu.Lock()
	srv.sessions[id] = sess
	srv.mu.Unlock()

	go sess.run(context.Background())
	t.Cleanup(func() { clientEnd.Close() })
	return clientEnd, sess
}

func dummySession(srv *Server) *session {
	serverEnd, _ := net.Pipe()
	return newSession(uuid.New(), serverEnd, srv)
}

func TestClaimName_ConcurrentClaimsAreExclusive(t *testing.T) {
	srv := newTestServer(t)

	const n = 32
	var wg sync.WaitGroup
	successes := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			successes[i] = srv.claimName(dummySession(srv), "dibs") == nil
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one concurrent claim must win")
}

func TestClaimName_ReservedName(t *testing.T) {
	srv := newTestServer(t)
	assert.Error(t, srv.claimName(dummySession(srv), "ADMIN"))
}

func TestClaimName_ReleasedOnRemove(t *testing.T) {
	srv := newTestServer(t)

	first := dummySession(srv)
	srv.mu.Lock()
	srv.sessions[first.id] = first
	srv.mu.Unlock()

	require.NoError(t, srv.claimName(first, "carol"))
	assert.Error(t, srv.claimName(dummySession(srv), "carol"))

	srv.removeSession(first)
	assert.NoError(t, srv.claimName(dummySession(srv), "carol"))
}

func TestLookupDisplayName(t *testing.T) {
	srv := newTestServer(t)

	sess := dummySession(srv)
	srv.mu.Lock()
	srv.sessions[sess.id] = sess
	srv.mu.Unlock()
	require.NoError(t, srv.claimName(sess, "carol"))

	assert.Equal(t, fmt.Sprintf("carol (%s)", sess.id), srv.LookupDisplayName(sess.id))

	unknown := uuid.New()
	assert.Equal(t, fmt.Sprintf("unknown (%s)", unknown), srv.LookupDisplayName(unknown))
}

func TestStop_DisconnectsSessionsAndClearsRegistry(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := attachSession(t, srv)

	c := newScriptClient(t, conn)
	c.negotiate("0")

	done := make(chan struct{})
	go func() {
		srv.Stop(context.Background())
		close(done)
	}()

	c.waitGoodbye()
	<-done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Empty(t, srv.sessions)
	assert.Empty(t, srv.names)
}

func TestRun_AcceptsAndStopsOnCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))

	c := newScriptClient(t, conn)
	c.negotiate("0")
	c.waitInput() // greeting

	cancel()
	c.waitGoodbye()

	select {
	case err := <-errCh:
		assert.NoError(t, err, "closed listener during shutdown is not a fault")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
