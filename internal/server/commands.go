package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranbbs/jeran/internal/common"
	"github.com/jeranbbs/jeran/internal/server/board"
	"github.com/jeranbbs/jeran/internal/server/texts"
)

// execute dispatches one post-login command. Protocol-level problems are
// reported to the client as plain text; only transport errors propagate.
// Unrecognized commands are dropped without feedback.
func (st *session) execute(ctx context.Context, invoke string, params []string) error {
	switch invoke {
	case "exit":
		st.disconnect(ctx)
		return nil
	case "posts":
		return st.cmdPosts(params)
	case "post":
		return st.compose(ctx, nil)
	case "reply":
		return st.cmdReply(ctx)
	case "recent":
		return st.cmdRecent()
	case "read":
		return st.cmdRead(params)
	case "verify":
		return st.cmdVerify(ctx, params)
	case "help":
		return st.writeErr(st.w.Text(st.srv.texts.Get(texts.Help)))
	case "msg":
		return st.cmdMsg(params)
	default:
		return nil
	}
}

// cmdPosts lists the whole history, or the inclusive [start, end] range
// when both bounds are given.
func (st *session) cmdPosts(params []string) error {
	b := st.srv.board

	if len(params) < 2 {
		return st.writeErr(st.w.Text(b.List(0, b.Len())))
	}

	start, err1 := strconv.Atoi(params[0])
	end, err2 := strconv.Atoi(params[1])
	if err1 != nil || err2 != nil {
		st.w.Segment("Invalid NumberFormat!")
		return nil
	}
	return st.writeErr(st.w.Text(b.List(start, end-start+1)))
}

// cmdRecent lists the 10 most recent posts.
func (st *session) cmdRecent() error {
	b := st.srv.board
	return st.writeErr(st.w.Text(b.List(b.Len()-10, 10)))
}

// cmdRead renders one post in full.
func (st *session) cmdRead(params []string) error {
	if len(params) < 1 {
		st.w.Segment("Command read requires argument \"POST-NUMBER\" (int)!")
		return nil
	}

	id, err := strconv.Atoi(params[0])
	if err != nil {
		st.w.Segment("Invalid NumberFormat!")
		return nil
	}

	rendered, err := st.srv.board.Render(id)
	if errors.Is(err, common.ErrPostNotFound) {
		st.w.Segment("Invalid PostNumber!")
		return nil
	}
	return st.writeErr(st.w.Text(rendered))
}

// cmdReply asks which post is being answered and runs the compose flow
// with a reference to it.
func (st *session) cmdReply(ctx context.Context) error {
	st.w.Segment("What Post do you want to respond to (Post Number)?")
	line, err := st.requestInput(ctx)
	if err != nil {
		return err
	}

	id, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		st.w.Segment("Invalid NumberFormat!")
		return nil
	}

	original, getErr := st.srv.board.Get(id)
	if getErr != nil {
		st.w.Segment("Invalid PostNumber (too large)!")
		return nil
	}
	return st.compose(ctx, original)
}

// compose runs the guided post flow: title, body lines until a literal
// "!exit!", then the archive-permission question. replyTo is nil for a
// top-level post.
func (st *session) compose(ctx context.Context, replyTo *board.Post) error {
	st.w.Segment("Post Title (30 Characters): ")
	line, err := st.requestInput(ctx)
	if err != nil {
		return err
	}
	title := strings.ReplaceAll(line, "|", "")
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	st.w.Segment("Write (type !exit! to exit):")
	var body strings.Builder
	for {
		if st.closed.Load() {
			return nil
		}
		line, err := st.requestInput(ctx)
		if err != nil {
			return err
		}
		if line == "!exit!" {
			break
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	st.w.Segment("Are we allowed to archive your post (Y/N)")
	answer, err := st.requestInput(ctx)
	if err != nil {
		return err
	}

	st.srv.board.Append(&board.Post{
		Title:      title,
		Body:       body.String(),
		Author:     st.id,
		Verified:   st.verified,
		Archivable: answer == "Y",
		ReplyTo:    replyTo,
	})
	return nil
}

// cmdVerify handles credential registration and login.
func (st *session) cmdVerify(ctx context.Context, params []string) error {
	if len(params) == 0 {
		st.w.Segment("Expected at least 1 argument: create/login")
		return nil
	}

	switch params[0] {
	case "login":
		name, password, err := st.promptCredentials(ctx)
		if err != nil {
			return err
		}
		id, verifyErr := st.srv.verifier.Verify(ctx, name, password)
		if verifyErr != nil {
			st.w.Segment("Invalid Username/Password!")
			return nil
		}
		st.verified = &id
		st.logger.Info(ctx, "user verified",
			"user", st.srv.LookupDisplayName(st.id),
			"verified_as", id.Name,
			"public_id", id.PublicID)
		st.w.Segment("Welcome " + id.Name + "!")
		return nil

	case "create":
		name, password, err := st.promptCredentials(ctx)
		if err != nil {
			return err
		}
		if _, regErr := st.srv.verifier.Register(ctx, name, password); regErr != nil {
			st.logger.Error(ctx, "failed to create verifier", "error", regErr.Error())
			st.w.Segment("Failed to create Verifier!")
			return nil
		}
		st.w.Segment("Verifier created!")
		return nil

	default:
		st.w.Segment(fmt.Sprintf("Invalid 1st argument %q! Expected login or create!", params[0]))
		return nil
	}
}

// promptCredentials asks for the name and password, applying the same
// first-token and length rules as name selection.
func (st *session) promptCredentials(ctx context.Context) (name, password string, err error) {
	st.w.Segment("Username (7 Chars): ")
	line, err := st.requestInput(ctx)
	if err != nil {
		return "", "", err
	}
	if fields := strings.Fields(line); len(fields) > 0 {
		name = fields[0]
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	st.w.Segment("Password: ")
	line, err = st.requestInput(ctx)
	if err != nil {
		return "", "", err
	}
	if fields := strings.Fields(line); len(fields) > 0 {
		password = fields[0]
	}
	return name, password, nil
}

// cmdMsg delivers a direct message to another live session.
func (st *session) cmdMsg(params []string) error {
	if len(params) < 2 {
		st.w.Segment("Expected at least two arguments: UUID and message!")
		return nil
	}

	target, err := uuid.Parse(params[0])
	if err != nil {
		st.w.Segment("Invalid UUID Format!")
		return nil
	}
	if target == st.id {
		return nil
	}

	receiver, ok := st.srv.lookupSession(target)
	if !ok {
		st.w.Segment("Unknown UUID!")
		return nil
	}
	receiver.deliverMessage(st.id, strings.Join(params[1:], " "))
	return nil
}
