package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"dungeonbot/pkg/core"
)

func TestSnapshotSurvivesWire(t *testing.T) {
	g := core.NewGame(11)
	for i := 0; i < 3; i++ {
		g.Step(map[int]core.Action{0: core.ActionPlantBomb, 1: core.ActionNoOp})
	}
	want := g.View(1)

	msg, err := Decode(Encode(CoreSnapshotToProto(want)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	update, ok := msg.(*StateUpdate)
	if !ok {
		t.Fatalf("decoded %T, want *StateUpdate", msg)
	}
	got, err := ProtoSnapshotToCore(update)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if !reflect.DeepEqual(got.Rows(), want.Rows()) {
		t.Fatalf("rows differ:\n got %q\nwant %q", got.Rows(), want.Rows())
	}
	if got.Tick() != want.Tick() || got.PlayerID() != want.PlayerID() {
		t.Fatalf("tick/self = %d/%d, want %d/%d", got.Tick(), got.PlayerID(), want.Tick(), want.PlayerID())
	}
	if got.Ammo() != want.Ammo() || got.HP() != want.HP() || got.Reward() != want.Reward() {
		t.Fatalf("self stats differ")
	}
	if !reflect.DeepEqual(got.LiveBombs(), want.LiveBombs()) {
		t.Fatalf("bombs = %v, want %v", got.LiveBombs(), want.LiveBombs())
	}
	if got.SoftBlockCount() != want.SoftBlockCount() {
		t.Fatalf("soft blocks = %d, want %d", got.SoftBlockCount(), want.SoftBlockCount())
	}
}

func TestProtoSnapshotRejectsBadCells(t *testing.T) {
	tests := []struct {
		name string
		m    StateUpdate
	}{
		{name: "short", m: StateUpdate{Width: 2, Height: 2, Cells: []byte("...")}},
		{name: "unknown symbol", m: StateUpdate{Width: 2, Height: 1, Cells: []byte(".x")}},
		{name: "player in static layer", m: StateUpdate{Width: 2, Height: 1, Cells: []byte(".0")}},
		{name: "bomb out of bounds", m: StateUpdate{Width: 2, Height: 1, Cells: []byte(".."), Bombs: []Cell{{X: 2, Y: 0}}}},
	}
	for _, tt := range tests {
		if _, err := ProtoSnapshotToCore(&tt.m); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestNegativeFieldsSurvive(t *testing.T) {
	over := &GameOver{Winner: -1, Tick: 90, Players: []PlayerInfo{{ID: 0, HP: 0}, {ID: 1, X: 3, HP: 2, Reward: 12}}}
	msg, err := Decode(Encode(over))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := msg.(*GameOver)
	if got.Winner != -1 || got.Tick != 90 || len(got.Players) != 2 || got.Players[1].Reward != 12 {
		t.Fatalf("game over = %+v", got)
	}
}

func TestActionSymbols(t *testing.T) {
	for _, a := range core.Actions {
		back, err := ProtoActionToCore(CoreActionToProto(7, a))
		if err != nil || back != a {
			t.Errorf("action %v came back as %v (%v)", a, back, err)
		}
	}
	if _, err := ProtoActionToCore(&Action{Symbol: "x"}); err == nil {
		t.Fatalf("unknown symbol accepted")
	}
}

func TestParseAsChecksType(t *testing.T) {
	pkt := NewPacket(&Ping{ClientTime: 5})
	var pong Pong
	if err := ParseAs(pkt, &pong); !errors.Is(err, ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
	if _, err := Decode([]byte{0x08}); err == nil {
		t.Fatalf("truncated varint accepted")
	}
	if _, err := Decode(Encode(&Ping{})); err != nil {
		t.Fatalf("empty ping: %v", err)
	}
}

func TestFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, payload := range [][]byte{[]byte("hello"), {}} {
		if err := WriteFrame(&buf, payload); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got, err := ReadFrame(&buf); err != nil || string(got) != "hello" {
		t.Fatalf("first frame = %q, %v", got, err)
	}
	if got, err := ReadFrame(&buf); err != nil || len(got) != 0 {
		t.Fatalf("empty frame = %q, %v", got, err)
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestReadFrameRejectsOversizeAndTruncated(t *testing.T) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxPacketSize+1)
	if _, err := ReadFrame(bytes.NewReader(header[:])); !errors.Is(err, ErrPacketTooLarge) {
		t.Fatalf("err = %v, want ErrPacketTooLarge", err)
	}

	binary.BigEndian.PutUint32(header[:], 10)
	short := append(header[:], 1, 2, 3)
	if _, err := ReadFrame(bytes.NewReader(short)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
	if err := WriteFrame(io.Discard, make([]byte, MaxPacketSize+1)); !errors.Is(err, ErrPacketTooLarge) {
		t.Fatalf("err = %v, want ErrPacketTooLarge", err)
	}
}

// fieldNumbers 列出编码结果中按顺序出现的字段号
func fieldNumbers(t *testing.T, data []byte) []protowire.Number {
	t.Helper()
	var nums []protowire.Number
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			t.Fatalf("bad tag: %v", protowire.ParseError(n))
		}
		data = data[n:]
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			t.Fatalf("bad field %d: %v", num, protowire.ParseError(m))
		}
		data = data[m:]
		nums = append(nums, num)
	}
	return nums
}

func TestFieldNumbers(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want []protowire.Number
	}{
		{"join request", &JoinRequest{PlayerName: "a", SessionToken: "b"}, []protowire.Number{1, 2}},
		{"action", &Action{Tick: 3, Symbol: "u"}, []protowire.Number{1, 2}},
		{"ping", &Ping{ClientTime: 1}, []protowire.Number{1}},
		{
			"join response",
			&JoinResponse{Success: true, PlayerID: 1, ErrorMessage: "x", SessionToken: "t", TPS: 10, GameSeed: 7},
			[]protowire.Number{1, 2, 3, 4, 5, 6},
		},
		{
			"state",
			&StateUpdate{Tick: 1, Width: 2, Height: 1, Cells: []byte(".."), Bombs: []Cell{{X: 1}}, Players: []PlayerInfo{{ID: 1}}, Self: 1},
			[]protowire.Number{1, 2, 3, 4, 5, 6, 7},
		},
		{"game over", &GameOver{Winner: 1, Tick: 9, Players: []PlayerInfo{{ID: 1}}}, []protowire.Number{1, 2, 3}},
		{"pong", &Pong{ClientTime: 1, ServerTime: 2, ServerTick: 3}, []protowire.Number{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldNumbers(t, tt.msg.Marshal()); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("fields = %v, want %v", got, tt.want)
			}
		})
	}

	pkt := &Packet{Type: MessageTypePong, Payload: []byte{1}}
	if got := fieldNumbers(t, pkt.Marshal()); !reflect.DeepEqual(got, []protowire.Number{1, 2}) {
		t.Fatalf("packet fields = %v", got)
	}
	if MessageTypePong != 7 || MessageTypeJoinRequest != 1 {
		t.Fatalf("message type numbers changed")
	}
}
