// Package wire implements the line-oriented board protocol. Every
// server→client message starts with a single tag byte; client→server
// messages are newline-terminated text lines (Base64 ciphertext while
// encrypted mode is active, but that is the session's concern).
package wire

// Protocol tags.
const (
	// TagRequestInput asks the client for one line of input.
	TagRequestInput byte = 0x00
	// TagText precedes one line of output text.
	TagText byte = 0x01
	// TagNegotiatePace asks the client for its pacing value in
	// milliseconds.
	TagNegotiatePace byte = 0x02
	// TagStartEncryption announces encrypted mode; a Base64 public key
	// line follows.
	TagStartEncryption byte = 0x03
	// TagStopEncryption returns the connection to plaintext input.
	TagStopEncryption byte = 0x04
	// TagGoodbye announces that the connection is closing.
	TagGoodbye byte = 0xFF
)
