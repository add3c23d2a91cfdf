package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Segment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Segment("hello"))
	assert.Equal(t, append([]byte{TagText}, "hello\n"...), buf.Bytes())
}

func TestWriter_TextSegmentsLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Text("one\ntwo\n"))

	r := NewReader(&buf)
	var lines []string
	for {
		tag, err := r.ReadTag()
		if err != nil {
			break
		}
		require.Equal(t, TagText, tag)
		line, err := r.ReadLine()
		require.NoError(t, err)
		lines = append(lines, line)
	}
	// Two content segments plus the terminating empty segment.
	assert.Equal(t, []string{"one", "two", ""}, lines)
}

func TestWriter_Tags(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.RequestInput())
	require.NoError(t, w.NegotiatePace())
	require.NoError(t, w.StopEncryption())
	require.NoError(t, w.Goodbye())

	assert.Equal(t, []byte{TagRequestInput, TagNegotiatePace, TagStopEncryption, TagGoodbye}, buf.Bytes())
}

func TestWriter_StartEncryption(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.StartEncryption("cHVibGlja2V5"))

	r := NewReader(&buf)
	tag, err := r.ReadTag()
	require.NoError(t, err)
	assert.Equal(t, TagStartEncryption, tag)

	key, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "cHVibGlja2V5", key)
}

func TestReader_ReadLineStripsCRLF(t *testing.T) {
	r := NewReader(strings.NewReader("posts 0 10\r\n"))
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "posts 0 10", line)
}
