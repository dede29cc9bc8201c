package server

import "dungeonbot/pkg/core"

type EventKind int

const (
	EventUnknown EventKind = iota
	EventJoin
	EventAction
	EventPing
	EventPong
)

type JoinEvent struct {
	PlayerName   string
	SessionToken string // 非空表示断线重连
}

type ActionEvent struct {
	PlayerID int
	Tick     int // 客户端决策时看到的 tick
	Action   core.Action
}

type PingEvent struct {
	ClientTime int64
}

type PongEvent struct {
	ClientTime int64
	ServerTime int64
	ServerTick int
}

type ServerEvent struct {
	Kind   EventKind
	Join   *JoinEvent
	Action *ActionEvent
	Ping   *PingEvent
	Pong   *PongEvent
}
