package protocol

import (
	"errors"
	"fmt"
)

// ========== 封包与解包 ==========

// NewPacket 将消息装入 Packet
func NewPacket(msg Message) *Packet {
	return &Packet{
		Type:    msg.Type(),
		Payload: msg.Marshal(),
	}
}

// MarshalPacket 将 Packet 对象转换为字节切片
func MarshalPacket(pkt *Packet) []byte {
	return pkt.Marshal()
}

// UnmarshalPacket 将字节切片转换为 Packet 对象
func UnmarshalPacket(data []byte) (*Packet, error) {
	pkt := &Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return nil, err
	}
	return pkt, nil
}

// Encode 将消息编码为完整数据包
func Encode(msg Message) []byte {
	return MarshalPacket(NewPacket(msg))
}

// Decode 解析完整数据包并返回其中的消息
func Decode(data []byte) (Message, error) {
	pkt, err := UnmarshalPacket(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}
	return ParsePacket(pkt)
}

// ParsePacket 按 Packet 类型解析负载
func ParsePacket(pkt *Packet) (Message, error) {
	msg, err := newMessage(pkt.Type)
	if err != nil {
		return nil, err
	}
	if err := msg.Unmarshal(pkt.Payload); err != nil {
		return nil, fmt.Errorf("解析 %v 失败: %w", pkt.Type, err)
	}
	return msg, nil
}

// ErrUnexpectedMessage 收到的消息类型与期望不符
var ErrUnexpectedMessage = errors.New("消息类型不符")

// ParseAs 解析 Packet 到指定消息，类型不符时返回 ErrUnexpectedMessage
func ParseAs(pkt *Packet, msg Message) error {
	if pkt.Type != msg.Type() {
		return fmt.Errorf("%w: 收到 %v，期望 %v", ErrUnexpectedMessage, pkt.Type, msg.Type())
	}
	return msg.Unmarshal(pkt.Payload)
}
