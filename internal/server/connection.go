package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"dungeonbot/pkg/protocol"
)

const (
	readTimeout  = heartbeatTimeout // 读取超时
	writeTimeout = 1 * time.Second  // 写入超时
	sendQueueLen = 256              // 发送队列缓冲区

	// 每个 tick 只需要一个动作，允许突发补发
	actionBurst = 4
)

var (
	ErrSendQueueFull    = errors.New("发送队列满")
	ErrConnectionClosed = errors.New("连接已关闭")
)

// Connection 表示一个客户端连接
type Connection struct {
	conn     net.Conn
	server   *GameServer
	playerID atomic.Int32
	room     atomic.Pointer[Room]

	// 动作限流：超过速率的动作直接丢弃
	limiter *rate.Limiter

	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64
}

var _ Session = (*Connection)(nil)

// NewConnection 创建新连接，动作速率上限为每秒 2*tps 个
func NewConnection(conn net.Conn, server *GameServer, tps int) *Connection {
	c := &Connection{
		conn:     conn,
		server:   server,
		limiter:  rate.NewLimiter(rate.Limit(2*tps), actionBurst),
		sendChan: make(chan []byte, sendQueueLen),
		closeCh:  make(chan struct{}),
	}
	c.playerID.Store(-1)
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle 处理连接
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	log.Printf("%s: 连接处理开始", c)

	wg.Add(3)
	go c.startHeartbeat(ctx, wg)
	go c.sendLoop(ctx, wg)
	go c.receiveLoop(ctx, wg)

	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}

	c.Close()
}

// Close 关闭连接并让出座位
func (c *Connection) Close() {
	c.closeWithNotify(true)
}

// CloseWithoutNotify 关闭连接但不通知房间（房间主动关闭或连接被接管时使用）
func (c *Connection) CloseWithoutNotify() {
	c.closeWithNotify(false)
}

func (c *Connection) closeWithNotify(notify bool) {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	close(c.closeCh)

	if c.conn != nil {
		c.conn.Close()
	}
	close(c.sendChan)
	c.closeMu.Unlock()

	// 房间循环可能正阻塞在 Send 上，先释放 closeMu 再通知
	if notify {
		if room := c.room.Load(); room != nil && c.ID() >= 0 {
			room.Leave(c.ID())
		}
	}

	log.Printf("%s: 连接已关闭", c)
}

// Send 发送数据（异步）
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.sendChan:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := protocol.WriteFrame(c.conn, data); err != nil {
				log.Printf("%s: 发送数据失败: %v", c, err)
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		default:
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		data, err := protocol.ReadFrame(c.conn)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Printf("%s: 读取超时", c)
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				log.Printf("%s: 读取数据失败: %v", c, err)
			}
			c.Close()
			return
		}
		if len(data) == 0 {
			continue
		}

		c.onMessageReceived()
		if err := c.handleMessage(data); err != nil {
			log.Printf("%s: 处理消息失败: %v", c, err)
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventJoin:
		if c.room.Load() != nil {
			return fmt.Errorf("重复加入请求")
		}
		room, err := c.server.handleJoinRequest(c, event.Join)
		if err != nil {
			c.sendJoinFailure(err)
			return fmt.Errorf("处理加入请求失败: %w", err)
		}
		c.room.Store(room)

	case EventAction:
		room := c.room.Load()
		if room == nil {
			return fmt.Errorf("尚未加入房间")
		}
		if !c.allowAction() {
			return nil
		}
		event.Action.PlayerID = c.ID()
		room.EnqueueAction(*event.Action)

	case EventPing:
		c.handlePing(event.Ping)

	case EventPong:
		c.handlePong(event.Pong)

	default:
		return fmt.Errorf("未知消息类型")
	}
	return nil
}

// allowAction 令牌桶限流
func (c *Connection) allowAction() bool {
	return c.limiter.Allow()
}

func (c *Connection) sendJoinFailure(cause error) {
	resp := &protocol.JoinResponse{Success: false, PlayerID: -1, ErrorMessage: cause.Error()}
	_ = c.Send(protocol.Encode(resp))
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	addr := "?"
	if c.conn != nil {
		addr = c.conn.RemoteAddr().String()
	}
	if id := c.ID(); id >= 0 {
		if room := c.room.Load(); room != nil {
			return fmt.Sprintf("Connection{%s/%d, %s}", room.ID(), id, addr)
		}
		return fmt.Sprintf("Connection{%d, %s}", id, addr)
	}
	return fmt.Sprintf("Connection{%s}", addr)
}

func (c *Connection) ID() int {
	return int(c.playerID.Load())
}

func (c *Connection) SetPlayerID(playerID int) {
	c.playerID.Store(int32(playerID))
}

// RTT 最近一次心跳往返时间（毫秒）
func (c *Connection) RTT() int64 {
	return c.rtt.Load()
}

const (
	heartbeatInterval = 5 * time.Second
	heartbeatTimeout  = 15 * time.Second
)

func (c *Connection) startHeartbeat(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if !lastRecv.IsZero() && time.Since(lastRecv) > heartbeatTimeout {
				log.Printf("%s: 心跳超时", c)
				c.Close()
				return
			}
			_ = c.Send(protocol.Encode(&protocol.Ping{ClientTime: time.Now().UnixMilli()}))
		}
	}
}

// handlePing 客户端发起的心跳，回复服务器时间与当前 tick
func (c *Connection) handlePing(ping *PingEvent) {
	pong := &protocol.Pong{
		ClientTime: ping.ClientTime,
		ServerTime: time.Now().UnixMilli(),
	}
	if room := c.room.Load(); room != nil {
		pong.ServerTick = room.CurrentTick()
	}
	_ = c.Send(protocol.Encode(pong))
}

// handlePong 服务器发起的心跳的回复，ClientTime 为服务器发送 Ping 的时间
func (c *Connection) handlePong(pong *PongEvent) {
	if pong == nil || pong.ClientTime <= 0 {
		return
	}
	c.rtt.Store(time.Now().UnixMilli() - pong.ClientTime)
}

func (c *Connection) onMessageReceived() {
	c.lastRecvTime.Store(time.Now())
}
