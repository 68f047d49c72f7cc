package command

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/domain"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"go.uber.org/zap"
)

func newAskInvocation(r *fakeResponder, question string) *Invocation {
	return &Invocation{
		Kind:        domain.InteractionCommand,
		CommandType: domain.ChatInputCommandType,
		Name:        "ask",
		Options:     map[string]string{"question": question},
		Responder:   r,
		Context:     domain.NewCommandContext("1001", "g1", "c1", "u1", "alice"),
	}
}

func newAskDeps(answerer *fakeAnswerer, audit AuditRecorder, maxLen int) *Dependencies {
	return &Dependencies{
		Answerer:  answerer,
		Deliverer: delivery.NewDeliverer(maxLen, zap.NewNop()),
		Audit:     audit,
		Logger:    zap.NewNop(),
	}
}

func TestAskCommandDefersBeforeFetching(t *testing.T) {
	responder := newFakeResponder()
	answerer := &fakeAnswerer{answer: "4", responder: responder}
	audit := &fakeAudit{}

	cmd := NewAskCommand(newAskDeps(answerer, audit, 0))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "2+2?")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(answerer.seen, []string{"defer"}) {
		t.Fatalf("expected defer before fetch, got %v", answerer.seen)
	}
	if !reflect.DeepEqual(answerer.questions, []string{"2+2?"}) {
		t.Fatalf("question not forwarded verbatim: %v", answerer.questions)
	}
	if want := []string{"defer", "edit:4"}; !reflect.DeepEqual(responder.calls, want) {
		t.Fatalf("expected %v, got %v", want, responder.calls)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Outcome != domain.OutcomeAnswered || entry.Chunks != 1 || entry.QuestionLength != 4 || entry.AnswerLength != 1 {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.GuildID != "g1" || entry.UserID != "u1" || entry.Backend != "fake" {
		t.Fatalf("audit entry missing invocation metadata: %+v", entry)
	}
}

func TestAskCommandChunksLongAnswers(t *testing.T) {
	responder := newFakeResponder()
	answerer := &fakeAnswerer{answer: "abcdefg"}

	cmd := NewAskCommand(newAskDeps(answerer, nil, 3))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"defer", "edit:abc", "followup:def", "followup:g"}
	if !reflect.DeepEqual(responder.calls, want) {
		t.Fatalf("expected %v, got %v", want, responder.calls)
	}
}

func TestAskCommandFetchErrorEditsDeferredReply(t *testing.T) {
	responder := newFakeResponder()
	answerer := &fakeAnswerer{err: errors.NewProviderError("Gemini", 500, "")}
	audit := &fakeAudit{}

	cmd := NewAskCommand(newAskDeps(answerer, audit, 0))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
		t.Fatalf("fetch errors must be swallowed, got %v", err)
	}

	want := []string{"defer", "edit:" + constants.ContactErrorReply}
	if !reflect.DeepEqual(responder.calls, want) {
		t.Fatalf("expected %v, got %v", want, responder.calls)
	}
	if audit.entries[0].Outcome != domain.OutcomeFetchFailed {
		t.Fatalf("expected fetch_failed outcome, got %s", audit.entries[0].Outcome)
	}
}

func TestAskCommandFetchErrorRepliesEphemerallyWhenDeferFailed(t *testing.T) {
	responder := newFakeResponder()
	responder.deferErr = errBoom
	answerer := &fakeAnswerer{err: errors.NewTransportError("Gemini", "request failed", errBoom)}

	cmd := NewAskCommand(newAskDeps(answerer, nil, 0))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"defer", "reply(ephemeral):" + constants.ContactErrorReply}
	if !reflect.DeepEqual(responder.calls, want) {
		t.Fatalf("expected %v, got %v", want, responder.calls)
	}
}

func TestAskCommandFailedDeferFallsBackToFirstReply(t *testing.T) {
	responder := newFakeResponder()
	responder.deferErr = errBoom
	answerer := &fakeAnswerer{answer: "hello"}

	cmd := NewAskCommand(newAskDeps(answerer, nil, 0))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"defer", "reply:hello"}
	if !reflect.DeepEqual(responder.calls, want) {
		t.Fatalf("expected %v, got %v", want, responder.calls)
	}
}

func TestAskCommandSwallowsErrorReplyFailure(t *testing.T) {
	responder := newFakeResponder()
	responder.sendErr = errBoom
	answerer := &fakeAnswerer{err: errBoom}

	cmd := NewAskCommand(newAskDeps(answerer, nil, 0))
	if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responder.calls) != 2 {
		t.Fatalf("expected defer and one error edit, got %v", responder.calls)
	}
}

func TestAskCommandOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		repliable bool
		sendErr   error
		want      domain.Outcome
	}{
		{name: "degraded", answer: constants.UnexpectedResponseReply, repliable: true, want: domain.OutcomeDegraded},
		{name: "not repliable", answer: "x", repliable: false, want: domain.OutcomeUndelivered},
		{name: "delivery failure", answer: "x", repliable: true, sendErr: errBoom, want: domain.OutcomeUndelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := newFakeResponder()
			responder.repliable = tt.repliable
			audit := &fakeAudit{err: errBoom}
			answerer := &fakeAnswerer{answer: tt.answer}

			responder.sendErr = tt.sendErr

			cmd := NewAskCommand(newAskDeps(answerer, audit, 0))
			if err := cmd.Execute(context.Background(), newAskInvocation(responder, "q")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := audit.entries[0].Outcome; got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAskCommandRequiresDependencies(t *testing.T) {
	cmd := NewAskCommand(&Dependencies{})
	if err := cmd.Execute(context.Background(), newAskInvocation(newFakeResponder(), "q")); err == nil {
		t.Fatal("expected error for missing dependencies")
	}

	cmd = NewAskCommand(newAskDeps(&fakeAnswerer{}, nil, 0))
	if err := cmd.Execute(context.Background(), &Invocation{}); err == nil {
		t.Fatal("expected error for missing responder")
	}
}

func TestAskCommandDefinition(t *testing.T) {
	def := NewAskCommand(nil).Definition()

	if def.Name != "ask" || def.Description != "Ask Liq'u (Gemini) a question" || def.Type != discord.ApplicationCommandChatInput {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if len(def.Options) != 1 {
		t.Fatalf("expected one option, got %d", len(def.Options))
	}
	opt := def.Options[0]
	if opt.Name != "question" || !opt.Required || opt.Type != discord.OptionTypeString || !strings.Contains(opt.Description, "question") {
		t.Fatalf("unexpected option: %+v", opt)
	}
}
