// Package texts manages the static banner texts shown to clients. Built-in
// defaults keep the server usable out of the box; a configured directory of
// .txt files overrides them by file name.
package texts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Banner names.
const (
	Greet   = "GREET"
	MOTD    = "MOTD"
	Info    = "INFO"
	Welcome = "WELCOME"
	Help    = "HELP"
)

// motdPlaceholder is substituted into the greeting banner.
const motdPlaceholder = "<MOTD>"

type Texts map[string]string

// Default returns the built-in banner set.
func Default() Texts {
	return Texts{
		Greet: "*** JERAN BULLETIN BOARD ***\n" +
			"\n" +
			motdPlaceholder + "\n" +
			"\n" +
			"Type enter to join, info for information, exit to leave.",
		MOTD: "Welcome, traveller. Leave a note.",
		Info: "This is a plain-text bulletin board reachable over TCP.\n" +
			"Anyone may read and post; verified identities are optional.",
		Welcome: "You are on the board. Type help for the command list.",
		Help: "Commands:\n" +
			"  posts [start end]   list posts\n" +
			"  post                write a new post\n" +
			"  reply               answer an existing post\n" +
			"  recent              list the 10 most recent posts\n" +
			"  read <id>           read one post\n" +
			"  verify create|login manage a verified identity\n" +
			"  msg <uuid> <text>   message another user\n" +
			"  help                this text\n" +
			"  exit                disconnect",
	}
}

// Load returns the defaults overlaid with every .txt file found in dir.
// The file base name (upper-cased, extension stripped) is the banner name.
// An empty dir means defaults only.
func Load(dir string) (Texts, error) {
	t := Default()
	if dir == "" {
		return t, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read texts dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read text %s: %w", entry.Name(), err)
		}
		name := strings.ToUpper(strings.TrimSuffix(entry.Name(), ".txt"))
		t[name] = strings.TrimRight(string(content), "\n")
	}

	return t, nil
}

// Get returns the named banner, empty when absent.
func (t Texts) Get(name string) string {
	return t[name]
}

// Greeting renders the greeting banner with the message of the day
// substituted in.
func (t Texts) Greeting() string {
	return strings.ReplaceAll(t[Greet], motdPlaceholder, t[MOTD])
}
