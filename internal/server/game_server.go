package server

import (
	"context"
	"fmt"
	"log"
	"sync"

	"dungeonbot/pkg/ai"
	"dungeonbot/pkg/core"
)

// DefaultTPS 服务器每秒推进的 tick 数
const DefaultTPS = 10

// Config 服务器配置
type Config struct {
	Addr     string
	Proto    string // tcp 或 kcp
	TPS      int
	Seed     int64
	EnableAI bool
	AIConfig *ai.AIConfig
	Rules    core.Rules
}

// GameServer 游戏服务器
type GameServer struct {
	cfg   Config
	rooms *RoomManager

	listener ServerListener

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg Config) *GameServer {
	if cfg.TPS <= 0 {
		cfg.TPS = DefaultTPS
	}
	if cfg.Rules.FuseTicks == 0 {
		cfg.Rules = core.DefaultRules
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &GameServer{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *GameServer) Start() error {
	log.Printf("启动游戏服务器: %s (%s)", s.cfg.Addr, s.cfg.Proto)

	listener, err := newListener(s.cfg.Proto, s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.listener = listener

	log.Printf("服务器监听中: %s", listener.Addr())

	s.rooms = NewRoomManager(s.ctx, RoomConfig{
		Rules:    s.cfg.Rules,
		TPS:      s.cfg.TPS,
		Seed:     s.cfg.Seed,
		EnableAI: s.cfg.EnableAI,
		AIConfig: s.cfg.AIConfig,
	})
	s.rooms.Run()

	s.wg.Add(1)
	go s.acceptLoop()

	<-s.shutdown

	log.Println("服务器正在关闭...")
	return nil
}

// Shutdown 优雅关闭服务器
func (s *GameServer) Shutdown() {
	log.Println("正在关闭服务器...")

	s.cancel()

	if s.rooms != nil {
		s.rooms.Shutdown()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	close(s.shutdown)
	s.wg.Wait()

	log.Println("服务器已关闭")
}

// acceptLoop 接受客户端连接
func (s *GameServer) acceptLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("停止接受新连接")
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				log.Printf("接受连接失败: %v", err)
				continue
			}
		}

		log.Printf("新连接来自: %s", conn.RemoteAddr())

		connection := NewConnection(conn, s, s.cfg.TPS)
		s.wg.Add(1)
		go connection.Handle(s.ctx, &s.wg)
	}
}

// handleJoinRequest 处理加入请求
func (s *GameServer) handleJoinRequest(conn *Connection, req *JoinEvent) (*Room, error) {
	if s.rooms == nil {
		return nil, fmt.Errorf("房间管理器未初始化")
	}
	return s.rooms.Join(conn, req)
}
