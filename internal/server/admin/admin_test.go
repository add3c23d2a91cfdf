package admin

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranbbs/jeran/internal/logging"
)

func startShell(t *testing.T) (*Shell, context.CancelFunc, chan error) {
	t.Helper()

	s := New("127.0.0.1:0", logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	return s, cancel, errCh
}

func TestRun_StopsOnCancel(t *testing.T) {
	_, cancel, errCh := startShell(t)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_NewerConnectionReplacesPrevious(t *testing.T) {
	s, cancel, _ := startShell(t)
	defer cancel()

	first, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer first.Close()

	second, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer second.Close()

	// The first connection gets closed once the second is accepted.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1)
	_, err = first.Read(buf)
	assert.Error(t, err)

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.current != nil
	}, 5*time.Second, 10*time.Millisecond)
}
