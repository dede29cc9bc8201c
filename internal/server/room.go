package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"dungeonbot/pkg/ai"
	"dungeonbot/pkg/core"
	"dungeonbot/pkg/protocol"
)

// GameState 服务端房间状态
type GameState int

const (
	StateWaiting GameState = iota
	StateRunning
	StateEnding
)

func (s GameState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateEnding:
		return "ending"
	}
	return "unknown"
}

// 房间结束后保留多久再关闭，让客户端收到结算消息
const endingLinger = 3 * time.Second

var (
	ErrRoomFull   = errors.New("房间已满")
	ErrRoomClosed = errors.New("房间已关闭")
)

// RoomConfig 房间规则
type RoomConfig struct {
	Rules    core.Rules
	Template []string
	TPS      int
	Seed     int64
	// EnableAI 为 true 时最后一个座位由内置 AI 占据
	EnableAI bool
	AIConfig *ai.AIConfig
}

func (c RoomConfig) tickDuration() time.Duration {
	return time.Second / time.Duration(c.TPS)
}

// seat 一个引擎玩家位，由远程会话或内置 AI 控制
type seat struct {
	playerID int
	name     string
	claimed  bool
	session  Session
	bot      *ai.AIController
}

// Room 一局对战。game 只在 Run 所在的 goroutine 中读写。
type Room struct {
	id     string
	cfg    RoomConfig
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	game    *core.Game
	state   GameState
	resetAt time.Time
	seats   []*seat
	pending map[int]core.Action
	// tickNum 供其他 goroutine 读取的当前 tick
	tickNum atomic.Int64

	joinCh   chan joinRequest
	actionCh chan ActionEvent
	leaveCh  chan int
}

type joinRequest struct {
	session Session
	req     *JoinEvent
	respCh  chan error
}

// NewRoom 创建房间，座位与地图出生点一一对应
func NewRoom(parent context.Context, id string, cfg RoomConfig) (*Room, error) {
	if cfg.TPS <= 0 {
		return nil, fmt.Errorf("TPS 必须为正数: %d", cfg.TPS)
	}
	if cfg.Template == nil {
		cfg.Template = core.DefaultTemplate
	}
	game, err := core.NewGameWithTemplate(cfg.Rules, cfg.Template, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("创建对局失败: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		id:       id,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		game:     game,
		state:    StateWaiting,
		pending:  make(map[int]core.Action),
		joinCh:   make(chan joinRequest),
		actionCh: make(chan ActionEvent, 256),
		leaveCh:  make(chan int, 16),
	}
	for _, p := range game.Players {
		r.seats = append(r.seats, &seat{playerID: p.ID})
	}
	if cfg.EnableAI {
		last := r.seats[len(r.seats)-1]
		last.bot = ai.NewAIControllerWithConfig(last.playerID, cfg.AIConfig)
		last.name = "ai"
		last.claimed = true
	}
	return r, nil
}

// ID 房间 ID
func (r *Room) ID() string {
	return r.id
}

// CurrentTick 当前 tick，可在任意 goroutine 调用
func (r *Room) CurrentTick() int {
	return int(r.tickNum.Load())
}

// Done 房间循环退出后关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.tickDuration())
	defer ticker.Stop()

	log.Printf("房间 %s 循环启动: %d TPS", r.id, r.cfg.TPS)

	for {
		select {
		case <-r.ctx.Done():
			r.closeAllSessions()
			log.Printf("房间 %s 循环停止", r.id)
			return

		case req := <-r.joinCh:
			req.respCh <- r.handleJoin(req.session, req.req)

		case ev := <-r.actionCh:
			r.handleAction(ev)

		case playerID := <-r.leaveCh:
			r.handleLeave(playerID)

		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) Shutdown() {
	r.cancel()
}

// Join 把会话放到一个空座位上；带 Token 时接管 Token 对应的座位
func (r *Room) Join(session Session, req *JoinEvent) error {
	respCh := make(chan error, 1)

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case r.joinCh <- joinRequest{session: session, req: req, respCh: respCh}:
	}

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case err := <-respCh:
		return err
	}
}

func (r *Room) EnqueueAction(ev ActionEvent) {
	select {
	case <-r.ctx.Done():
	case r.actionCh <- ev:
	}
}

func (r *Room) Leave(playerID int) {
	select {
	case <-r.ctx.Done():
	case r.leaveCh <- playerID:
	}
}

func (r *Room) seat(playerID int) *seat {
	for _, s := range r.seats {
		if s.playerID == playerID {
			return s
		}
	}
	return nil
}

func (r *Room) handleJoin(session Session, req *JoinEvent) error {
	if r.state == StateEnding {
		return fmt.Errorf("房间 %s 结算中，暂时无法加入", r.id)
	}

	var target *seat
	if req.SessionToken != "" {
		playerID, roomID, err := VerifySessionToken(req.SessionToken)
		if err != nil {
			return err
		}
		if roomID != r.id {
			return fmt.Errorf("%w: Token 属于房间 %s", ErrInvalidToken, roomID)
		}
		target = r.seat(playerID)
		if target == nil || target.bot != nil || !target.claimed {
			return fmt.Errorf("%w: 座位 %d 不可接管", ErrInvalidToken, playerID)
		}
		if target.session != nil && target.session != session {
			target.session.CloseWithoutNotify()
		}
	} else {
		for _, s := range r.seats {
			if !s.claimed {
				target = s
				break
			}
		}
		if target == nil {
			return ErrRoomFull
		}
		target.name = req.PlayerName
	}

	token, err := GenerateSessionToken(target.playerID, r.id)
	if err != nil {
		return fmt.Errorf("生成 Token 失败: %w", err)
	}
	resp := &protocol.JoinResponse{
		Success:      true,
		PlayerID:     target.playerID,
		SessionToken: token,
		TPS:          r.cfg.TPS,
		GameSeed:     r.cfg.Seed,
	}
	if err := session.Send(protocol.Encode(resp)); err != nil {
		return fmt.Errorf("发送加入响应失败: %w", err)
	}

	reconnect := target.claimed
	target.claimed = true
	target.session = session
	session.SetPlayerID(target.playerID)

	if reconnect {
		log.Printf("房间 %s: 玩家 %d 重连", r.id, target.playerID)
	} else {
		log.Printf("房间 %s: 玩家 %d (%s) 加入", r.id, target.playerID, target.name)
	}

	switch r.state {
	case StateWaiting:
		if r.allClaimed() {
			r.state = StateRunning
			log.Printf("房间 %s: 对局开始", r.id)
			r.broadcastState()
		}
	case StateRunning:
		r.sendState(target)
	}
	return nil
}

func (r *Room) allClaimed() bool {
	for _, s := range r.seats {
		if !s.claimed {
			return false
		}
	}
	return true
}

// handleAction 只接受针对当前 tick 的动作，同一 tick 内后到的覆盖先到的
func (r *Room) handleAction(ev ActionEvent) {
	if r.state != StateRunning {
		return
	}
	s := r.seat(ev.PlayerID)
	if s == nil || s.session == nil {
		return
	}
	if ev.Tick != r.game.TickNum {
		return
	}
	r.pending[ev.PlayerID] = ev.Action
}

func (r *Room) handleLeave(playerID int) {
	s := r.seat(playerID)
	if s == nil || s.session == nil {
		return
	}
	s.session = nil
	delete(r.pending, playerID)

	if r.state == StateWaiting {
		s.claimed = false
		s.name = ""
	}
	log.Printf("房间 %s: 玩家 %d 离开，剩余连接数 %d", r.id, playerID, r.connectedCount())

	if r.state == StateRunning && r.connectedCount() == 0 {
		log.Printf("房间 %s: 所有玩家已离开，对局中止", r.id)
		r.state = StateEnding
		r.resetAt = time.Now()
	}
}

func (r *Room) connectedCount() int {
	n := 0
	for _, s := range r.seats {
		if s.session != nil {
			n++
		}
	}
	return n
}

func (r *Room) tick() {
	switch r.state {
	case StateEnding:
		if time.Now().After(r.resetAt) {
			r.Shutdown()
		}
		return
	case StateWaiting:
		return
	}

	// 未提交动作的座位不放进 actions，由引擎记为 Missed
	actions := make(map[int]core.Action, len(r.seats))
	for _, s := range r.seats {
		if s.bot != nil {
			actions[s.playerID] = s.bot.Decide(r.game.View(s.playerID))
			continue
		}
		if a, ok := r.pending[s.playerID]; ok {
			actions[s.playerID] = a
		}
	}
	r.pending = make(map[int]core.Action, len(r.seats))

	r.game.Step(actions)
	r.tickNum.Store(int64(r.game.TickNum))

	if r.game.Over {
		r.handleGameOver()
		return
	}
	r.broadcastState()
}

func (r *Room) handleGameOver() {
	if r.state == StateEnding {
		return
	}
	r.state = StateEnding
	r.resetAt = time.Now().Add(endingLinger)

	log.Printf("房间 %s: 游戏结束，tick %d，获胜者: %d", r.id, r.game.TickNum, r.game.Winner)
	for _, p := range r.game.Players {
		log.Printf("房间 %s: 玩家 %d 奖励 %d，生命 %d，缺失动作 %d", r.id, p.ID, p.Reward, p.HP, p.Missed)
	}

	msg, err := protocol.CoreGameOverToProto(r.game)
	if err != nil {
		log.Printf("房间 %s: 构造结束消息失败: %v", r.id, err)
		return
	}
	data := protocol.Encode(msg)
	for _, s := range r.seats {
		if s.session == nil {
			continue
		}
		if err := s.session.Send(data); err != nil {
			log.Printf("发送游戏结束到玩家 %d 失败: %v", s.playerID, err)
		}
	}
}

// broadcastState 每个座位收到自己视角的快照
func (r *Room) broadcastState() {
	for _, s := range r.seats {
		r.sendState(s)
	}
}

func (r *Room) sendState(s *seat) {
	if s.session == nil {
		return
	}
	data := protocol.Encode(protocol.CoreSnapshotToProto(r.game.View(s.playerID)))
	if err := s.session.Send(data); err != nil {
		log.Printf("发送状态到玩家 %d 失败: %v", s.playerID, err)
	}
}

func (r *Room) closeAllSessions() {
	for _, s := range r.seats {
		if s.session != nil {
			s.session.CloseWithoutNotify()
			s.session = nil
		}
	}
}
