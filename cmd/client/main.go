// Command client is a small interactive client for the board protocol.
// It negotiates pacing, renders paced text segments and transparently
// encrypts input once the server starts encrypted mode.
package main

import (
	"bufio"
	"crypto/rsa"
	"flag"
	"fmt"
	"net"
	"os"

	"golang.org/x/term"

	"github.com/jeranbbs/jeran/internal/cryptox"
	"github.com/jeranbbs/jeran/internal/wire"
)

func main() {
	addr := flag.String("addr", "localhost:3103", "server address")
	pace := flag.Int("pace", 25, "requested output pacing in milliseconds")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := run(conn, *pace); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(conn net.Conn, pace int) error {
	r := wire.NewReader(conn)
	stdin := bufio.NewScanner(os.Stdin)
	// Only show prompts when a human is typing.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	var serverKey *rsa.PublicKey

	for {
		tag, err := r.ReadTag()
		if err != nil {
			return nil
		}

		switch tag {
		case wire.TagText:
			line, err := r.ReadLine()
			if err != nil {
				return nil
			}
			fmt.Println(line)

		case wire.TagNegotiatePace:
			fmt.Fprintf(conn, "%d\n", pace)

		case wire.TagRequestInput:
			if interactive {
				fmt.Print("> ")
			}
			if !stdin.Scan() {
				return nil
			}
			input := stdin.Text()
			if serverKey != nil {
				encrypted, err := cryptox.EncryptLine(serverKey, input)
				if err != nil {
					fmt.Fprintln(os.Stderr, "encrypt:", err)
					fmt.Fprintln(conn)
					continue
				}
				fmt.Fprintln(conn, encrypted)
				continue
			}
			fmt.Fprintln(conn, input)

		case wire.TagStartEncryption:
			keyLine, err := r.ReadLine()
			if err != nil {
				return nil
			}
			parsed, err := cryptox.ParsePublicKey(keyLine)
			if err != nil {
				fmt.Fprintln(os.Stderr, "bad server key:", err)
				continue
			}
			serverKey = parsed

		case wire.TagStopEncryption:
			serverKey = nil

		case wire.TagGoodbye:
			fmt.Println("Connection closed by server.")
			return nil
		}
	}
}
