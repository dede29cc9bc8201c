package server

import (
	"context"
	"errors"
	"testing"

	"dungeonbot/pkg/core"
	"dungeonbot/pkg/protocol"
)

type fakeSession struct {
	id     int
	sent   [][]byte
	closed bool
}

func newFakeSession() *fakeSession { return &fakeSession{id: -1} }

func (f *fakeSession) ID() int { return f.id }
func (f *fakeSession) Close() { f.closed = true }
func (f *fakeSession) CloseWithoutNotify() { f.closed = true }
func (f *fakeSession) SetPlayerID(id int) { f.id = id }
func (f *fakeSession) Send(data []byte) error {
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeSession) messages(t *testing.T) []protocol.Message {
	t.Helper()
	out := make([]protocol.Message, 0, len(f.sent))
	for _, data := range f.sent {
		msg, err := protocol.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		out = append(out, msg)
	}
	return out
}

func (f *fakeSession) lastState(t *testing.T) *protocol.StateUpdate {
	t.Helper()
	msgs := f.messages(t)
	for i := len(msgs) - 1; i >= 0; i-- {
		if s, ok := msgs[i].(*protocol.StateUpdate); ok {
			return s
		}
	}
	t.Fatalf("no state received")
	return nil
}

func (f *fakeSession) joinResponse(t *testing.T) *protocol.JoinResponse {
	t.Helper()
	for _, msg := range f.messages(t) {
		if r, ok := msg.(*protocol.JoinResponse); ok {
			return r
		}
	}
	t.Fatalf("no join response received")
	return nil
}

func newTestRoom(t *testing.T, enableAI bool) *Room {
	t.Helper()
	t.Setenv("JWT_SECRET", "room-test")
	r, err := NewRoom(context.Background(), "room-t", RoomConfig{
		Rules:    core.DefaultRules,
		TPS:      10,
		Seed:     1,
		EnableAI: enableAI,
	})
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	t.Cleanup(r.Shutdown)
	return r
}

func TestRoomStartsWhenSeatsAreFilled(t *testing.T) {
	r := newTestRoom(t, false)
	a, b := newFakeSession(), newFakeSession()

	if err := r.handleJoin(a, &JoinEvent{PlayerName: "a"}); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if r.state != StateWaiting {
		t.Fatalf("state = %v after one join, want waiting", r.state)
	}
	if err := r.handleJoin(b, &JoinEvent{PlayerName: "b"}); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if r.state != StateRunning {
		t.Fatalf("state = %v, want running", r.state)
	}
	if a.ID() != 0 || b.ID() != 1 {
		t.Fatalf("seats = (%d, %d), want (0, 1)", a.ID(), b.ID())
	}

	resp := a.joinResponse(t)
	if !resp.Success || resp.TPS != 10 || resp.SessionToken == "" {
		t.Fatalf("join response = %+v", resp)
	}
	if s := b.lastState(t); s.Self != 1 || s.Tick != 0 {
		t.Fatalf("initial state self/tick = %d/%d", s.Self, s.Tick)
	}

	if err := r.handleJoin(newFakeSession(), &JoinEvent{PlayerName: "c"}); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
}

func TestRoomAppliesQueuedActionsOncePerTick(t *testing.T) {
	r := newTestRoom(t, false)
	a, b := newFakeSession(), newFakeSession()
	_ = r.handleJoin(a, &JoinEvent{PlayerName: "a"})
	_ = r.handleJoin(b, &JoinEvent{PlayerName: "b"})

	r.handleAction(ActionEvent{PlayerID: 0, Tick: 0, Action: core.ActionUp})
	r.handleAction(ActionEvent{PlayerID: 0, Tick: 0, Action: core.ActionRight})
	r.handleAction(ActionEvent{PlayerID: 1, Tick: 5, Action: core.ActionLeft})
	r.tick()

	if r.game.TickNum != 1 {
		t.Fatalf("tick = %d, want 1", r.game.TickNum)
	}
	p0, p1 := r.game.GetPlayer(0), r.game.GetPlayer(1)
	if p0.Pos != (core.GridPos{X: 1, Y: 0}) {
		t.Fatalf("player 0 at %v, want (1,0)", p0.Pos)
	}
	if p0.Missed != 0 || p1.Missed != 1 {
		t.Fatalf("missed = (%d, %d), want (0, 1)", p0.Missed, p1.Missed)
	}
	if s := a.lastState(t); s.Tick != 1 {
		t.Fatalf("broadcast tick = %d, want 1", s.Tick)
	}
	if r.CurrentTick() != 1 {
		t.Fatalf("current tick = %d, want 1", r.CurrentTick())
	}

	r.tick()
	if p0.Missed != 1 {
		t.Fatalf("queued action was applied twice")
	}
}

func TestRoomReconnectWithToken(t *testing.T) {
	r := newTestRoom(t, false)
	a, b := newFakeSession(), newFakeSession()
	_ = r.handleJoin(a, &JoinEvent{PlayerName: "a"})
	_ = r.handleJoin(b, &JoinEvent{PlayerName: "b"})
	token := a.joinResponse(t).SessionToken

	c := newFakeSession()
	if err := r.handleJoin(c, &JoinEvent{SessionToken: token}); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if c.ID() != 0 || !a.closed {
		t.Fatalf("reconnect took seat %d, old session closed = %v", c.ID(), a.closed)
	}
	if s := c.lastState(t); s.Self != 0 {
		t.Fatalf("reconnected session got state for %d", s.Self)
	}

	other, err := GenerateSessionToken(0, "room-other")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := r.handleJoin(newFakeSession(), &JoinEvent{SessionToken: other}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign room token: err = %v", err)
	}
	if err := r.handleJoin(newFakeSession(), &JoinEvent{SessionToken: token + "x"}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: err = %v", err)
	}
}

func TestRoomWithBuiltInAI(t *testing.T) {
	r := newTestRoom(t, true)
	a := newFakeSession()
	if err := r.handleJoin(a, &JoinEvent{PlayerName: "a"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if r.state != StateRunning {
		t.Fatalf("state = %v, want running with an AI seat", r.state)
	}
	for i := 0; i < 3; i++ {
		r.tick()
	}
	if got := r.game.GetPlayer(0).Missed; got != 3 {
		t.Fatalf("human missed = %d, want 3", got)
	}
	if got := r.game.GetPlayer(1).Missed; got != 0 {
		t.Fatalf("ai missed = %d, want 0", got)
	}
}

func TestRoomLeaveWhileWaitingFreesSeat(t *testing.T) {
	r := newTestRoom(t, false)
	a := newFakeSession()
	_ = r.handleJoin(a, &JoinEvent{PlayerName: "a"})
	r.handleLeave(0)

	b := newFakeSession()
	if err := r.handleJoin(b, &JoinEvent{PlayerName: "b"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if b.ID() != 0 {
		t.Fatalf("seat = %d, want the freed seat 0", b.ID())
	}
}
