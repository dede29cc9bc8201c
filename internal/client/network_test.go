package client

import (
	"context"
	"net"
	"testing"
	"time"

	"dungeonbot/pkg/core"
	"dungeonbot/pkg/protocol"
)

// fakeServer 管道另一端的服务器，按顺序收发帧
type fakeServer struct {
	t    *testing.T
	conn net.Conn
}

func (s *fakeServer) send(msg protocol.Message) {
	s.t.Helper()
	if err := protocol.WriteFrame(s.conn, protocol.Encode(msg)); err != nil {
		s.t.Fatalf("server write: %v", err)
	}
}

func (s *fakeServer) recv() protocol.Message {
	s.t.Helper()
	_ = s.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, err := protocol.ReadFrame(s.conn)
	if err != nil {
		s.t.Fatalf("server read: %v", err)
	}
	msg, err := protocol.Decode(data)
	if err != nil {
		s.t.Fatalf("server decode: %v", err)
	}
	return msg
}

func TestBotClientPlaysOverConnection(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	srv := &fakeServer{t: t, conn: serverConn}

	bc := NewBotClient("pipe", "tcp", "tester", nil)
	defer bc.Close()

	joined := make(chan error, 1)
	go func() { joined <- bc.ConnectWith(clientConn, "") }()

	req, ok := srv.recv().(*protocol.JoinRequest)
	if !ok || req.PlayerName != "tester" || req.SessionToken != "" {
		t.Fatalf("join request = %+v", req)
	}
	srv.send(&protocol.JoinResponse{Success: true, PlayerID: 1, SessionToken: "seat-token", TPS: 10})
	if err := <-joined; err != nil {
		t.Fatalf("connect: %v", err)
	}
	if bc.PlayerID() != 1 || bc.Token() != "seat-token" || bc.Controller() == nil {
		t.Fatalf("after join: id=%d token=%q", bc.PlayerID(), bc.Token())
	}

	g := core.NewGame(1)
	for i := 0; i < 3; i++ {
		srv.send(protocol.CoreSnapshotToProto(g.View(1)))
		action, ok := srv.recv().(*protocol.Action)
		if !ok {
			t.Fatalf("tick %d: expected an action", g.TickNum)
		}
		if action.Tick != g.TickNum {
			t.Fatalf("action for tick %d, want %d", action.Tick, g.TickNum)
		}
		a, err := protocol.ProtoActionToCore(action)
		if err != nil {
			t.Fatalf("bad action symbol: %v", err)
		}
		g.Step(map[int]core.Action{0: core.ActionNoOp, 1: a})
	}

	srv.send(&protocol.Ping{ClientTime: 42})
	if pong, ok := srv.recv().(*protocol.Pong); !ok || pong.ClientTime != 42 {
		t.Fatalf("expected pong echoing client time")
	}

	srv.send(&protocol.GameOver{Winner: 1, Tick: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	over, err := bc.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if over.Winner != 1 || over.Tick != 3 {
		t.Fatalf("game over = %+v", over)
	}
}

func TestBotClientJoinRejected(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	srv := &fakeServer{t: t, conn: serverConn}

	bc := NewBotClient("pipe", "tcp", "late", nil)
	joined := make(chan error, 1)
	go func() { joined <- bc.ConnectWith(clientConn, "") }()

	srv.recv()
	srv.send(&protocol.JoinResponse{Success: false, PlayerID: -1, ErrorMessage: "房间已满"})
	if err := <-joined; err == nil {
		t.Fatalf("rejected join returned no error")
	}
}
