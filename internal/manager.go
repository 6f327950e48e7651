package internal

import (
	"errors"
	"fmt"
	"log/slog"
)

// 協議錯誤：回傳給客戶端的 err 訊息，連線保持開啟
var (
	ErrRoomNotFound = errors.New(CodeRoomNotFound)
	ErrRoomFull     = errors.New(CodeRoomFull)
)

// createAttempts 創建房間時代碼碰撞的重試上限
//
// 代碼空間遠大於存活房間數，實務上第一次就會成功；
// 設上限只為了讓迴圈可證明地終止。
const createAttempts = 8

// Manager 房間管理器
//
// 對 Store 執行創建、加入、離開、奪旗四種操作，負責容量與
// 代碼唯一性的約束。所有操作同步完成，不等待其他連線。
type Manager struct {
	store  *Store
	gen    IDGenerator
	logger *slog.Logger
}

// NewManager 創建房間管理器
func NewManager(gen IDGenerator, logger *slog.Logger) *Manager {
	return &Manager{
		store:  NewStore(),
		gen:    gen,
		logger: logger,
	}
}

// CreateRoom 創建房間並註冊呼叫連線為唯一成員（席位 P1）
//
// 代碼與存活房間碰撞時重新生成。房間在發布到 Store 前就完成
// 成員註冊，因此創建者必定是 P1，不存在搶先加入的窗口。
func (m *Manager) CreateRoom(c *Conn) (string, Slot, error) {
	if _, _, ok := c.Assignment(); ok {
		return "", "", fmt.Errorf("連線已在房間中")
	}

	for range createAttempts {
		room := newRoom(m.gen.NewRoomID())
		slot := room.seed(c)
		if !m.store.Put(room) {
			// 代碼被存活房間佔用，重新生成
			continue
		}

		c.assign(room.id, slot)
		m.logger.Info("房間已創建",
			"room_id", room.id,
			"conn_id", c.ID)
		return room.id, slot, nil
	}

	return "", "", fmt.Errorf("無法產生可用的房間代碼")
}

// JoinRoom 加入既有房間
//
// 代碼大小寫不敏感。房間不存在（或已銷毀）回傳 ErrRoomNotFound，
// 已滿回傳 ErrRoomFull。成功時加入者先收到 joined，滿員時
// 全房間再收到 start（順序由房間鎖保證）。
func (m *Manager) JoinRoom(c *Conn, roomID string) (string, Slot, error) {
	room, ok := m.store.Get(roomID)
	if !ok {
		return "", "", ErrRoomNotFound
	}

	slot, err := room.admit(c)
	if err != nil {
		return "", "", err
	}

	c.assign(room.id, slot)
	m.logger.Info("連線加入房間",
		"room_id", room.id,
		"conn_id", c.ID,
		"slot", slot)
	return room.id, slot, nil
}

// LeaveRoom 將連線自其房間移除
//
// 未指派房間的連線無操作。成員數歸零時房間立即自 Store 銷毀，
// 代碼隨即可被重用。留下的成員不收到任何通知。
func (m *Manager) LeaveRoom(c *Conn) {
	roomID, _, ok := c.Assignment()
	if !ok {
		return
	}
	c.clearAssignment()

	room, ok := m.store.Get(roomID)
	if !ok {
		return
	}

	if room.leave(c) {
		m.store.Remove(roomID)
		m.logger.Info("房間已銷毀", "room_id", roomID)
	}

	m.logger.Info("連線離開房間",
		"room_id", roomID,
		"conn_id", c.ID)
}

// ClaimFlag 嘗試奪旗
//
// 連線未在房間中、房間不存在、或旗幟已被奪取時皆為無操作。
// 第一次成功的奪旗向全房間廣播 win，服務器不再採取其他動作，
// 房間存活至成員全部斷線。
func (m *Manager) ClaimFlag(c *Conn) {
	roomID, _, ok := c.Assignment()
	if !ok {
		return
	}

	room, ok := m.store.Get(roomID)
	if !ok {
		return
	}

	if room.claim(c) {
		_, slot, _ := c.Assignment()
		m.logger.Info("旗幟已被奪取",
			"room_id", roomID,
			"winner", slot)
	}
}

// RelayPos 將位置更新轉發給房間內的其他成員
//
// 未在房間中的連線無操作；訊息永不回送給發送者。
func (m *Manager) RelayPos(c *Conn, x, y float64) {
	roomID, _, ok := c.Assignment()
	if !ok {
		return
	}

	room, ok := m.store.Get(roomID)
	if !ok {
		return
	}

	room.relayPos(c, x, y)
}

// Stats 獲取統計資訊
func (m *Manager) Stats() map[string]any {
	rooms := m.store.Snapshot()

	totalMembers := 0
	activeRooms := 0
	for _, room := range rooms {
		n := room.memberCount()
		totalMembers += n
		if n == maxMembers {
			activeRooms++
		}
	}

	return map[string]any{
		"total_rooms":   len(rooms),
		"active_rooms":  activeRooms,
		"total_members": totalMembers,
	}
}
