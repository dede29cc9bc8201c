package protocol

import "fmt"

// 线上格式与下面的 proto3 定义一致（整数字段按 int64 varint 编码，零值省略）：
//
//	message Packet       { MessageType type = 1; bytes payload = 2; }
//	message JoinRequest  { string player_name = 1; string session_token = 2; }
//	message Action       { int64 tick = 1; string symbol = 2; }
//	message Ping         { int64 client_time = 1; }
//	message JoinResponse {
//	  bool success = 1; int64 player_id = 2; string error_message = 3;
//	  string session_token = 4; int64 tps = 5; int64 game_seed = 6;
//	}
//	message Cell         { int64 x = 1; int64 y = 2; }
//	message PlayerInfo   {
//	  int64 id = 1; int64 x = 2; int64 y = 3;
//	  int64 ammo = 4; int64 hp = 5; int64 reward = 6;
//	}
//	message StateUpdate  {
//	  int64 tick = 1; int64 width = 2; int64 height = 3; bytes cells = 4;
//	  repeated Cell bombs = 5; repeated PlayerInfo players = 6; int64 self = 7;
//	}
//	message GameOver     { int64 winner = 1; int64 tick = 2; repeated PlayerInfo players = 3; }
//	message Pong         { int64 client_time = 1; int64 server_time = 2; int64 server_tick = 3; }
//
//	enum MessageType {
//	  UNSPECIFIED = 0; JOIN_REQUEST = 1; JOIN_RESPONSE = 2; STATE = 3;
//	  ACTION = 4; GAME_OVER = 5; PING = 6; PONG = 7;
//	}

// MessageType 数据包类型
type MessageType int32

const (
	MessageTypeUnspecified MessageType = iota
	MessageTypeJoinRequest
	MessageTypeJoinResponse
	MessageTypeState
	MessageTypeAction
	MessageTypeGameOver
	MessageTypePing
	MessageTypePong
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeJoinRequest:
		return "join_request"
	case MessageTypeJoinResponse:
		return "join_response"
	case MessageTypeState:
		return "state"
	case MessageTypeAction:
		return "action"
	case MessageTypeGameOver:
		return "game_over"
	case MessageTypePing:
		return "ping"
	case MessageTypePong:
		return "pong"
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// Message 可放入 Packet 的消息
type Message interface {
	Type() MessageType
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Packet 外层封包：{1: type, 2: payload}
type Packet struct {
	Type    MessageType
	Payload []byte
}

func (p *Packet) Marshal() []byte {
	var e encoder
	e.int(1, int64(p.Type))
	e.bytes(2, p.Payload)
	return e.buf
}

func (p *Packet) Unmarshal(data []byte) error {
	*p = Packet{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			p.Type = MessageType(f.int())
		case 2:
			p.Payload = f.b
		}
		return nil
	})
}

// ========== 客户端消息 ==========

// JoinRequest 加入对局，SessionToken 非空时表示断线重连
type JoinRequest struct {
	PlayerName   string
	SessionToken string
}

func (m *JoinRequest) Type() MessageType { return MessageTypeJoinRequest }

func (m *JoinRequest) Marshal() []byte {
	var e encoder
	e.string(1, m.PlayerName)
	e.string(2, m.SessionToken)
	return e.buf
}

func (m *JoinRequest) Unmarshal(data []byte) error {
	*m = JoinRequest{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.PlayerName = f.str()
		case 2:
			m.SessionToken = f.str()
		}
		return nil
	})
}

// Action 某个 tick 提交的动作，Symbol 为引擎动作字符（u d l r b，空串为 no_op）
type Action struct {
	Tick   int
	Symbol string
}

func (m *Action) Type() MessageType { return MessageTypeAction }

func (m *Action) Marshal() []byte {
	var e encoder
	e.int(1, int64(m.Tick))
	e.string(2, m.Symbol)
	return e.buf
}

func (m *Action) Unmarshal(data []byte) error {
	*m = Action{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Tick = int(f.int())
		case 2:
			m.Symbol = f.str()
		}
		return nil
	})
}

// Ping 心跳
type Ping struct {
	ClientTime int64
}

func (m *Ping) Type() MessageType { return MessageTypePing }

func (m *Ping) Marshal() []byte {
	var e encoder
	e.int(1, m.ClientTime)
	return e.buf
}

func (m *Ping) Unmarshal(data []byte) error {
	*m = Ping{}
	return eachField(data, func(f field) error {
		if f.num == 1 {
			m.ClientTime = f.int()
		}
		return nil
	})
}

// ========== 服务器消息 ==========

// JoinResponse 加入结果
type JoinResponse struct {
	Success      bool
	PlayerID     int
	ErrorMessage string
	SessionToken string
	TPS          int
	GameSeed     int64
}

func (m *JoinResponse) Type() MessageType { return MessageTypeJoinResponse }

func (m *JoinResponse) Marshal() []byte {
	var e encoder
	e.bool(1, m.Success)
	e.int(2, int64(m.PlayerID))
	e.string(3, m.ErrorMessage)
	e.string(4, m.SessionToken)
	e.int(5, int64(m.TPS))
	e.int(6, m.GameSeed)
	return e.buf
}

func (m *JoinResponse) Unmarshal(data []byte) error {
	*m = JoinResponse{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Success = f.bool()
		case 2:
			m.PlayerID = int(f.int())
		case 3:
			m.ErrorMessage = f.str()
		case 4:
			m.SessionToken = f.str()
		case 5:
			m.TPS = int(f.int())
		case 6:
			m.GameSeed = f.int()
		}
		return nil
	})
}

// Cell 格子坐标
type Cell struct {
	X, Y int
}

func (c *Cell) marshal() []byte {
	var e encoder
	e.int(1, int64(c.X))
	e.int(2, int64(c.Y))
	return e.buf
}

func (c *Cell) unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			c.X = int(f.int())
		case 2:
			c.Y = int(f.int())
		}
		return nil
	})
}

// PlayerInfo 玩家状态
type PlayerInfo struct {
	ID     int
	X, Y   int
	Ammo   int
	HP     int
	Reward int
}

func (p *PlayerInfo) marshal() []byte {
	var e encoder
	e.int(1, int64(p.ID))
	e.int(2, int64(p.X))
	e.int(3, int64(p.Y))
	e.int(4, int64(p.Ammo))
	e.int(5, int64(p.HP))
	e.int(6, int64(p.Reward))
	return e.buf
}

func (p *PlayerInfo) unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			p.ID = int(f.int())
		case 2:
			p.X = int(f.int())
		case 3:
			p.Y = int(f.int())
		case 4:
			p.Ammo = int(f.int())
		case 5:
			p.HP = int(f.int())
		case 6:
			p.Reward = int(f.int())
		}
		return nil
	})
}

// StateUpdate 每个 tick 下发给单个玩家的棋盘快照
//
// Cells 为静态层的行优先编码，每格一个地图模板字符。
type StateUpdate struct {
	Tick    int
	Width   int
	Height  int
	Cells   []byte
	Bombs   []Cell
	Players []PlayerInfo
	Self    int
}

func (m *StateUpdate) Type() MessageType { return MessageTypeState }

func (m *StateUpdate) Marshal() []byte {
	var e encoder
	e.int(1, int64(m.Tick))
	e.int(2, int64(m.Width))
	e.int(3, int64(m.Height))
	e.bytes(4, m.Cells)
	for i := range m.Bombs {
		e.message(5, m.Bombs[i].marshal())
	}
	for i := range m.Players {
		e.message(6, m.Players[i].marshal())
	}
	e.int(7, int64(m.Self))
	return e.buf
}

func (m *StateUpdate) Unmarshal(data []byte) error {
	*m = StateUpdate{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Tick = int(f.int())
		case 2:
			m.Width = int(f.int())
		case 3:
			m.Height = int(f.int())
		case 4:
			m.Cells = append([]byte(nil), f.b...)
		case 5:
			if !f.isBytes() {
				return fmt.Errorf("%w: bombs 字段类型 %v", ErrMalformed, f.typ)
			}
			var c Cell
			if err := c.unmarshal(f.b); err != nil {
				return err
			}
			m.Bombs = append(m.Bombs, c)
		case 6:
			if !f.isBytes() {
				return fmt.Errorf("%w: players 字段类型 %v", ErrMalformed, f.typ)
			}
			var p PlayerInfo
			if err := p.unmarshal(f.b); err != nil {
				return err
			}
			m.Players = append(m.Players, p)
		case 7:
			m.Self = int(f.int())
		}
		return nil
	})
}

// GameOver 对局结束，Winner 为 -1 表示平局
type GameOver struct {
	Winner  int
	Tick    int
	Players []PlayerInfo
}

func (m *GameOver) Type() MessageType { return MessageTypeGameOver }

func (m *GameOver) Marshal() []byte {
	var e encoder
	e.int(1, int64(m.Winner))
	e.int(2, int64(m.Tick))
	for i := range m.Players {
		e.message(3, m.Players[i].marshal())
	}
	return e.buf
}

func (m *GameOver) Unmarshal(data []byte) error {
	*m = GameOver{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Winner = int(f.int())
		case 2:
			m.Tick = int(f.int())
		case 3:
			if !f.isBytes() {
				return fmt.Errorf("%w: players 字段类型 %v", ErrMalformed, f.typ)
			}
			var p PlayerInfo
			if err := p.unmarshal(f.b); err != nil {
				return err
			}
			m.Players = append(m.Players, p)
		}
		return nil
	})
}

// Pong 心跳响应
type Pong struct {
	ClientTime int64
	ServerTime int64
	ServerTick int
}

func (m *Pong) Type() MessageType { return MessageTypePong }

func (m *Pong) Marshal() []byte {
	var e encoder
	e.int(1, m.ClientTime)
	e.int(2, m.ServerTime)
	e.int(3, int64(m.ServerTick))
	return e.buf
}

func (m *Pong) Unmarshal(data []byte) error {
	*m = Pong{}
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.ClientTime = f.int()
		case 2:
			m.ServerTime = f.int()
		case 3:
			m.ServerTick = int(f.int())
		}
		return nil
	})
}

// newMessage 按类型创建空消息
func newMessage(t MessageType) (Message, error) {
	switch t {
	case MessageTypeJoinRequest:
		return &JoinRequest{}, nil
	case MessageTypeJoinResponse:
		return &JoinResponse{}, nil
	case MessageTypeState:
		return &StateUpdate{}, nil
	case MessageTypeAction:
		return &Action{}, nil
	case MessageTypeGameOver:
		return &GameOver{}, nil
	case MessageTypePing:
		return &Ping{}, nil
	case MessageTypePong:
		return &Pong{}, nil
	}
	return nil, fmt.Errorf("未知消息类型: %v", t)
}
