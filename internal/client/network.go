package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"

	"dungeonbot/pkg/ai"
	"dungeonbot/pkg/protocol"
)

var (
	ErrJoinTimeout   = errors.New("等待加入响应超时")
	ErrSendQueueFull = errors.New("发送队列满")
)

// BotClient 远程机器人：每收到一个快照就用 AIController 决策并回传动作
type BotClient struct {
	conn       net.Conn
	serverAddr string
	proto      string
	name       string
	config     *ai.AIConfig

	// 加入后由接收循环设置
	playerID   int
	token      string
	tps        int
	controller *ai.AIController

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	sendChan chan []byte
	joinChan chan *protocol.JoinResponse
	overChan chan *protocol.GameOver
	errChan  chan error
}

// NewBotClient 创建机器人客户端
func NewBotClient(serverAddr, proto, name string, config *ai.AIConfig) *BotClient {
	ctx, cancel := context.WithCancel(context.Background())

	return &BotClient{
		serverAddr: serverAddr,
		proto:      proto,
		name:       name,
		config:     config,
		playerID:   -1,
		ctx:        ctx,
		cancel:     cancel,
		sendChan:   make(chan []byte, SendQueueSize),
		joinChan:   make(chan *protocol.JoinResponse, 1),
		overChan:   make(chan *protocol.GameOver, 1),
		errChan:    make(chan error, 1),
	}
}

// Connect 连接服务器并加入对局，token 非空时重连到原座位
func (bc *BotClient) Connect(token string) error {
	log.Printf("连接到服务器: %s (%s)", bc.serverAddr, bc.proto)

	conn, err := bc.dial()
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}
	log.Printf("已连接到服务器: %s", conn.RemoteAddr())
	return bc.ConnectWith(conn, token)
}

// ConnectWith 在已建立的连接上加入对局
func (bc *BotClient) ConnectWith(conn net.Conn, token string) error {
	bc.conn = conn

	bc.wg.Add(2)
	go bc.receiveLoop()
	go bc.sendLoop()

	join := &protocol.JoinRequest{PlayerName: bc.name, SessionToken: token}
	if err := bc.send(protocol.Encode(join)); err != nil {
		bc.Close()
		return fmt.Errorf("发送加入请求失败: %w", err)
	}

	select {
	case resp := <-bc.joinChan:
		if !resp.Success {
			bc.Close()
			return fmt.Errorf("加入失败: %s", resp.ErrorMessage)
		}
		log.Printf("加入成功，玩家 ID: %d，TPS: %d", resp.PlayerID, resp.TPS)
		return nil

	case err := <-bc.errChan:
		bc.Close()
		return err

	case <-time.After(JoinTimeout):
		bc.Close()
		return ErrJoinTimeout
	}
}

func (bc *BotClient) dial() (net.Conn, error) {
	switch bc.proto {
	case "", "tcp":
		return net.DialTimeout("tcp", bc.serverAddr, DialTimeout)
	case "kcp":
		conn, err := kcp.DialWithOptions(bc.serverAddr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		conn.SetNoDelay(1, 10, 2, 1)
		conn.SetStreamMode(true)
		return conn, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", bc.proto)
	}
}

// Wait 阻塞直到对局结束、连接出错或 ctx 取消
func (bc *BotClient) Wait(ctx context.Context) (*protocol.GameOver, error) {
	select {
	case over := <-bc.overChan:
		return over, nil
	case err := <-bc.errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close 关闭连接
func (bc *BotClient) Close() {
	bc.closeOnce.Do(func() {
		bc.cancel()
		if bc.conn != nil {
			bc.conn.Close()
		}
		bc.wg.Wait()
		log.Printf("机器人客户端已关闭")
	})
}

// PlayerID 服务器分配的玩家 ID，加入前为 -1
func (bc *BotClient) PlayerID() int {
	return bc.playerID
}

// Token 重连用的座位 Token
func (bc *BotClient) Token() string {
	return bc.token
}

// Controller 加入后创建的决策控制器
func (bc *BotClient) Controller() *ai.AIController {
	return bc.controller
}

// ========== 消息接收 ==========

func (bc *BotClient) receiveLoop() {
	defer bc.wg.Done()

	for {
		data, err := protocol.ReadFrame(bc.conn)
		if err != nil {
			select {
			case <-bc.ctx.Done():
			default:
				if errors.Is(err, io.EOF) {
					err = errors.New("服务器关闭了连接")
				}
				bc.fail(fmt.Errorf("读取数据失败: %w", err))
			}
			return
		}
		if len(data) == 0 {
			continue
		}
		if err := bc.handleMessage(data); err != nil {
			log.Printf("处理消息失败: %v", err)
		}
	}
}

func (bc *BotClient) fail(err error) {
	select {
	case bc.errChan <- err:
	default:
	}
}

// handleMessage 处理接收到的消息；决策在接收循环里同步完成
func (bc *BotClient) handleMessage(data []byte) error {
	msg, err := protocol.Decode(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch m := msg.(type) {
	case *protocol.JoinResponse:
		if m.Success {
			bc.playerID = m.PlayerID
			bc.token = m.SessionToken
			bc.tps = m.TPS
			bc.controller = ai.NewAIControllerWithConfig(m.PlayerID, bc.config)
		}
		select {
		case bc.joinChan <- m:
		default:
		}

	case *protocol.StateUpdate:
		return bc.handleState(m)

	case *protocol.GameOver:
		select {
		case bc.overChan <- m:
		default:
		}

	case *protocol.Ping:
		pong := &protocol.Pong{ClientTime: m.ClientTime, ServerTime: time.Now().UnixMilli()}
		return bc.send(protocol.Encode(pong))

	case *protocol.Pong:
		// 服务器不会主动回 Pong，忽略

	default:
		return fmt.Errorf("未知消息类型: %v", msg.Type())
	}
	return nil
}

func (bc *BotClient) handleState(m *protocol.StateUpdate) error {
	if bc.controller == nil {
		return errors.New("尚未加入就收到状态")
	}
	snap, err := protocol.ProtoSnapshotToCore(m)
	if err != nil {
		return fmt.Errorf("快照无效: %w", err)
	}
	action := bc.controller.Decide(snap)
	return bc.send(protocol.Encode(protocol.CoreActionToProto(snap.TickNum, action)))
}

// ========== 消息发送 ==========

func (bc *BotClient) sendLoop() {
	defer bc.wg.Done()

	for {
		select {
		case <-bc.ctx.Done():
			return

		case data := <-bc.sendChan:
			_ = bc.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := protocol.WriteFrame(bc.conn, data); err != nil {
				bc.fail(fmt.Errorf("发送数据失败: %w", err))
				return
			}
		}
	}
}

func (bc *BotClient) send(data []byte) error {
	select {
	case bc.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}
