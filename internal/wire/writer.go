package wire

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Writer emits tagged protocol messages on one connection. Individual
// segment writes are serialized so direct messages from other sessions can
// land between the segments of a running block without tearing a line.
// Pacing sleeps happen outside the lock and therefore only ever stall the
// goroutine that owns the block being written.
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	pace time.Duration
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// SetPace sets the per-segment delay negotiated with the client.
func (w *Writer) SetPace(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pace = d
}

func (w *Writer) writeTag(tag byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.w.Write([]byte{tag})
	return err
}

// Segment writes one tagged line of text.
func (w *Writer) Segment(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf := make([]byte, 0, len(line)+2)
	buf = append(buf, TagText)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, err := w.w.Write(buf)
	return err
}

// Text writes a multi-line block one segment at a time, sleeping the
// negotiated pace between segments so the client can render progressively.
// The block is terminated with an empty segment.
func (w *Writer) Text(text string) error {
	w.mu.Lock()
	pace := w.pace
	w.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if err := w.Segment(line); err != nil {
			return err
		}
		if pace > 0 {
			time.Sleep(pace)
		}
	}
	return w.Segment("")
}

// RequestInput asks the client for one line.
func (w *Writer) RequestInput() error {
	return w.writeTag(TagRequestInput)
}

// NegotiatePace asks the client for its pacing value.
func (w *Writer) NegotiatePace() error {
	return w.writeTag(TagNegotiatePace)
}

// StartEncryption announces encrypted mode and sends the Base64 public key.
func (w *Writer) StartEncryption(publicKey string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf := make([]byte, 0, len(publicKey)+2)
	buf = append(buf, TagStartEncryption)
	buf = append(buf, publicKey...)
	buf = append(buf, '\n')
	_, err := w.w.Write(buf)
	return err
}

// StopEncryption returns the connection to plaintext input.
func (w *Writer) StopEncryption() error {
	return w.writeTag(TagStopEncryption)
}

// Goodbye announces that the connection is closing.
func (w *Writer) Goodbye() error {
	return w.writeTag(TagGoodbye)
}
