package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/domain"
)

type fakeResponder struct {
	state     delivery.ReplyState
	repliable bool
	calls     []string
	deferErr  error
	sendErr   error
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{state: delivery.StateFresh, repliable: true}
}

func (f *fakeResponder) ID() string                 { return "1001" }
func (f *fakeResponder) IsRepliable() bool          { return f.repliable }
func (f *fakeResponder) State() delivery.ReplyState { return f.state }

func (f *fakeResponder) Defer(context.Context) error {
	f.calls = append(f.calls, "defer")
	if f.deferErr != nil {
		return f.deferErr
	}
	f.state = delivery.StateResponded
	return nil
}

func (f *fakeResponder) Reply(_ context.Context, msg delivery.Message) error {
	f.calls = append(f.calls, describe("reply", msg))
	if f.sendErr != nil {
		return f.sendErr
	}
	f.state = delivery.StateResponded
	return nil
}

func (f *fakeResponder) EditReply(_ context.Context, msg delivery.Message) error {
	f.calls = append(f.calls, describe("edit", msg))
	return f.sendErr
}

func (f *fakeResponder) FollowUp(_ context.Context, msg delivery.Message) error {
	f.calls = append(f.calls, describe("followup", msg))
	return f.sendErr
}

func describe(kind string, msg delivery.Message) string {
	if msg.Ephemeral {
		return fmt.Sprintf("%s(ephemeral):%s", kind, msg.Content)
	}
	return fmt.Sprintf("%s:%s", kind, msg.Content)
}

type fakeAnswerer struct {
	answer    string
	err       error
	questions []string
	// seen records responder calls made before Answer ran.
	seen      []string
	responder *fakeResponder
}

func (f *fakeAnswerer) Name() string { return "fake" }

func (f *fakeAnswerer) Answer(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	if f.responder != nil {
		f.seen = append([]string(nil), f.responder.calls...)
	}
	return f.answer, f.err
}

type fakeAudit struct {
	entries []domain.AuditEntry
	err     error
}

func (f *fakeAudit) Record(_ context.Context, entry domain.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

var errBoom = errors.New("boom")
