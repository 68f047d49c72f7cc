package delivery

import (
	"context"
	"fmt"
)

type call struct {
	Kind      string
	Content   string
	Ephemeral bool
}

type fakeInteraction struct {
	id        string
	repliable bool
	state     ReplyState
	calls     []call
	// failAt makes the n-th call (1-based) fail; zero disables.
	failAt  int
	failAll bool
}

func newFakeInteraction(state ReplyState) *fakeInteraction {
	return &fakeInteraction{id: "1234", repliable: true, state: state}
}

func (f *fakeInteraction) ID() string        { return f.id }
func (f *fakeInteraction) IsRepliable() bool { return f.repliable }
func (f *fakeInteraction) State() ReplyState { return f.state }

func (f *fakeInteraction) record(kind string, msg Message) error {
	f.calls = append(f.calls, call{Kind: kind, Content: msg.Content, Ephemeral: msg.Ephemeral})
	if f.failAll || len(f.calls) == f.failAt {
		return fmt.Errorf("%s failed", kind)
	}
	return nil
}

func (f *fakeInteraction) Reply(_ context.Context, msg Message) error {
	if err := f.record("reply", msg); err != nil {
		return err
	}
	f.state = StateResponded
	return nil
}

func (f *fakeInteraction) EditReply(_ context.Context, msg Message) error {
	return f.record("edit", msg)
}

func (f *fakeInteraction) FollowUp(_ context.Context, msg Message) error {
	return f.record("followup", msg)
}
