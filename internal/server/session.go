package server

// Session 房间持有的客户端连接，房间只通过它下发数据
type Session interface {
	ID() int
	Send(data []byte) error
	Close()
	CloseWithoutNotify()
	SetPlayerID(id int)
}
