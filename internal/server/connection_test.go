package server

import (
	"errors"
	"testing"
	"time"
)

func TestActionsOverRateLimitAreDropped(t *testing.T) {
	c := NewConnection(nil, nil, 10)

	for i := 0; i < actionBurst; i++ {
		if !c.allowAction() {
			t.Fatalf("action %d within burst was dropped", i)
		}
	}
	if c.allowAction() {
		t.Fatalf("action beyond burst was allowed")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	c := NewConnection(nil, nil, 10)
	if err := c.Send([]byte{1}); err != nil {
		t.Fatalf("send: %v", err)
	}
	c.CloseWithoutNotify()
	if err := c.Send([]byte{1}); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("err = %v, want ErrConnectionClosed", err)
	}
	if c.ID() != -1 {
		t.Fatalf("id = %d, want -1 before joining", c.ID())
	}
}

func TestSendQueueFull(t *testing.T) {
	c := NewConnection(nil, nil, 10)
	for i := 0; i < sendQueueLen; i++ {
		if err := c.Send([]byte{byte(i)}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := c.Send([]byte{0}); !errors.Is(err, ErrSendQueueFull) {
		t.Fatalf("err = %v, want ErrSendQueueFull", err)
	}
}

func TestSendDoesNotWaitOnBlockedLeave(t *testing.T) {
	room := newTestRoom(t, false)
	// 房间循环没有运行，离开队列塞满后 Leave 会一直阻塞
	for i := 0; i < cap(room.leaveCh); i++ {
		room.leaveCh <- 99
	}

	c := NewConnection(nil, nil, 10)
	c.SetPlayerID(0)
	c.room.Store(room)

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()

	sent := make(chan error, 1)
	go func() {
		for {
			err := c.Send([]byte{1})
			if errors.Is(err, ErrConnectionClosed) {
				sent <- err
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatalf("Send blocked while Close was waiting on the room")
	}

	room.Shutdown()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return after the room shut down")
	}
}
