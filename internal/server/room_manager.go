package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	MaxRooms        = 100              // 最大房间数
	cleanupInterval = 30 * time.Second // 结束房间的回收间隔
)

// RoomManager 按顺序开房间：新玩家进入当前等待中的房间，坐满后再开下一间
type RoomManager struct {
	ctx context.Context
	cfg RoomConfig

	rooms     map[string]*Room
	open      *Room
	nextID    int
	roomMutex sync.Mutex

	wg       sync.WaitGroup
	shutdown chan struct{}
}

// NewRoomManager 创建新的房间管理器
func NewRoomManager(ctx context.Context, cfg RoomConfig) *RoomManager {
	return &RoomManager{
		ctx:      ctx,
		cfg:      cfg,
		rooms:    make(map[string]*Room),
		shutdown: make(chan struct{}),
	}
}

// Run 启动回收协程
func (m *RoomManager) Run() {
	m.wg.Add(1)
	go m.cleanupLoop()
}

func (m *RoomManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.shutdown:
			return
		case <-ticker.C:
			m.cleanupFinishedRooms()
		}
	}
}

// cleanupFinishedRooms 移除循环已退出的房间
func (m *RoomManager) cleanupFinishedRooms() {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()

	for id, room := range m.rooms {
		select {
		case <-room.Done():
			log.Printf("清理房间: %s", id)
			delete(m.rooms, id)
			if m.open == room {
				m.open = nil
			}
		default:
		}
	}
}

// createRoom 调用方需持有 roomMutex
func (m *RoomManager) createRoom() (*Room, error) {
	if len(m.rooms) >= MaxRooms {
		return nil, fmt.Errorf("房间数已达上限 %d", MaxRooms)
	}
	m.nextID++
	id := fmt.Sprintf("room-%d", m.nextID)

	cfg := m.cfg
	cfg.Seed = m.cfg.Seed + int64(m.nextID)
	room, err := NewRoom(m.ctx, id, cfg)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = room

	m.wg.Add(1)
	go room.Run(&m.wg)

	log.Printf("创建新房间: %s", id)
	return room, nil
}

func (m *RoomManager) openRoom(stale *Room) (*Room, error) {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()

	if m.open == nil || m.open == stale {
		room, err := m.createRoom()
		if err != nil {
			return nil, err
		}
		m.open = room
	}
	return m.open, nil
}

func (m *RoomManager) room(id string) (*Room, bool) {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Join 玩家加入房间，返回所在房间
func (m *RoomManager) Join(session Session, req *JoinEvent) (*Room, error) {
	if req.SessionToken != "" {
		_, roomID, err := VerifySessionToken(req.SessionToken)
		if err != nil {
			return nil, err
		}
		room, ok := m.room(roomID)
		if !ok {
			return nil, fmt.Errorf("房间 %s 不存在", roomID)
		}
		if err := room.Join(session, req); err != nil {
			return nil, err
		}
		return room, nil
	}

	var stale *Room
	for attempt := 0; attempt < 2; attempt++ {
		room, err := m.openRoom(stale)
		if err != nil {
			return nil, err
		}
		err = room.Join(session, req)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrRoomFull) && !errors.Is(err, ErrRoomClosed) {
			return nil, err
		}
		stale = room
	}
	return nil, ErrRoomFull
}

// Shutdown 关闭所有房间
func (m *RoomManager) Shutdown() {
	close(m.shutdown)

	m.roomMutex.Lock()
	log.Printf("关闭 %d 个房间...", len(m.rooms))
	for _, room := range m.rooms {
		room.Shutdown()
	}
	m.roomMutex.Unlock()

	m.wg.Wait()
	log.Println("所有房间已关闭")
}

// RoomCount 当前房间数
func (m *RoomManager) RoomCount() int {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()
	return len(m.rooms)
}
