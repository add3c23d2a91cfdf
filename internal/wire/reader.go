package wire

import (
	"bufio"
	"io"
	"strings"
)

// Reader reads protocol input: whole text lines on the server side, tag
// bytes plus payload lines on the client side.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine reads one newline-terminated line with the line ending stripped.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadTag reads a single protocol tag byte.
func (r *Reader) ReadTag() (byte, error) {
	return r.r.ReadByte()
}
