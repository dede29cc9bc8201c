package server

import (
	"fmt"

	"dungeonbot/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包
func DecodePacket(data []byte) (*ServerEvent, error) {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeJoinRequest:
		var req protocol.JoinRequest
		if err := protocol.ParseAs(pkt, &req); err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventJoin,
			Join: &JoinEvent{
				PlayerName:   req.PlayerName,
				SessionToken: req.SessionToken,
			},
		}, nil

	case protocol.MessageTypeAction:
		var msg protocol.Action
		if err := protocol.ParseAs(pkt, &msg); err != nil {
			return nil, err
		}
		action, err := protocol.ProtoActionToCore(&msg)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind:   EventAction,
			Action: &ActionEvent{Tick: msg.Tick, Action: action},
		}, nil

	case protocol.MessageTypePing:
		var ping protocol.Ping
		if err := protocol.ParseAs(pkt, &ping); err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPing,
			Ping: &PingEvent{ClientTime: ping.ClientTime},
		}, nil

	case protocol.MessageTypePong:
		var pong protocol.Pong
		if err := protocol.ParseAs(pkt, &pong); err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPong,
			Pong: &PongEvent{ClientTime: pong.ClientTime, ServerTime: pong.ServerTime, ServerTick: pong.ServerTick},
		}, nil

	default:
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}
