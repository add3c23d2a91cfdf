// Package board implements the shared post store: an append-only ordered
// history of posts and replies, formatted listings, and the debounced
// snapshot writer that persists the history to disk.
package board

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranbbs/jeran/internal/common"
	"github.com/jeranbbs/jeran/internal/server/verifier"
)

const (
	separator  = "=============================="
	timeFormat = "2006/01/02 15:04:05"

	// NoPostsMessage is rendered when the history is empty.
	NoPostsMessage = "There are currently no Posts!\n"
)

// Post is one immutable authored item. A post with ReplyTo set renders as
// a reply to that post. Archivable records whether the author allowed the
// post to be archived; the snapshotter persists the full history either
// way, the flag exists for administrative tooling.
type Post struct {
	ID         int
	Title      string
	Body       string
	Author     uuid.UUID
	Verified   *verifier.Identity
	Archivable bool
	CreatedAt  time.Time
	ReplyTo    *Post
}

// NameResolver maps a connection identity to a display string, falling
// back to "unknown (<id>)" for sessions that are gone.
type NameResolver func(uuid.UUID) string

// Board owns the post history. Appends are mutually exclusive so ids stay
// sequential; reads run concurrently under the read lock.
type Board struct {
	mu      sync.RWMutex
	history []*Post
	resolve NameResolver
}

func New(resolve NameResolver) *Board {
	if resolve == nil {
		resolve = func(id uuid.UUID) string {
			return fmt.Sprintf("unknown (%s)", id)
		}
	}
	return &Board{resolve: resolve}
}

// Append assigns the next sequential id and stamps the creation time.
// Returns the assigned id.
func (b *Board) Append(p *Post) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	p.ID = len(b.history)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	b.history = append(b.history, p)
	return p.ID
}

// Len reports the post count.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.history)
}

// Get returns the post with the given id.
func (b *Board) Get(id int) (*Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if id < 0 || id >= len(b.history) {
		return nil, common.ErrPostNotFound
	}
	return b.history[id], nil
}

// List renders a fixed-width table for the index range
// [start, start+count) intersected with valid bounds.
func (b *Board) List(start, count int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.history) == 0 {
		return NoPostsMessage
	}

	idWidth := len(strconv.Itoa(len(b.history) - 1))
	if idWidth < 2 {
		idWidth = 2
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%*s | %-19s | %-48s | Title\n", idWidth, "ID", "Date-Time", "Poster")

	if start < 0 {
		start = 0
	}
	for i := start; i < len(b.history) && i < start+count; i++ {
		p := b.history[i]
		fmt.Fprintf(&out, "%*d | %s | %-48s | %s\n",
			idWidth, p.ID,
			p.CreatedAt.Format(timeFormat),
			b.attributionTag(p),
			p.Title)
	}

	return out.String()
}

// Render produces the full text of one post.
func (b *Board) Render(id int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if id < 0 || id >= len(b.history) {
		return "", common.ErrPostNotFound
	}
	return b.render(b.history[id]), nil
}

// attributionTag prefixes the author with V for verified identities and N
// for connection-scoped ones.
func (b *Board) attributionTag(p *Post) string {
	if p.Verified != nil {
		return "V " + p.Verified.String()
	}
	return "N " + b.resolve(p.Author)
}

// attribution is the author line without the listing tag.
func (b *Board) attribution(p *Post) string {
	if p.Verified != nil {
		return p.Verified.String()
	}
	return b.resolve(p.Author)
}

// render formats one post. Caller holds at least the read lock. A reply
// replaces the leading separator with a reference to the original post.
func (b *Board) render(p *Post) string {
	var out strings.Builder

	if p.ReplyTo != nil {
		fmt.Fprintf(&out, "RE [%d]: %s\n", p.ReplyTo.ID, p.ReplyTo.Title)
	} else {
		out.WriteString(separator + "\n")
	}
	out.WriteString(p.Title + "\n")
	out.WriteString("Author: " + b.attribution(p) + "\n")
	out.WriteString("Posted on: " + p.CreatedAt.Format(timeFormat) + "\n\n")
	out.WriteString(strings.TrimRight(p.Body, "\n") + "\n")
	out.WriteString(separator)

	return out.String()
}

// renderAll joins the rendering of every post into the snapshot blob.
func (b *Board) renderAll() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out strings.Builder
	for _, p := range b.history {
		out.WriteString(b.render(p))
		out.WriteString("\n")
	}
	return out.String()
}
