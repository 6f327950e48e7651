package internal

import (
	"encoding/json"
	"errors"
	"log/slog"
)

// Router 訊息路由器
//
// 依訊息的 t 欄位分發到 Manager 的操作。路由本身無狀態，
// 所有前置條件都以連線的指派狀態判斷。
//
// 錯誤策略（刻意保持，客戶端行為依賴這份沉默）：
//   - 無法解析的幀：靜默丟棄，不回應
//   - 未知種類：靜默丟棄
//   - 狀態不符（未入房的 pos/claim_flag、已入房的 create/join）：靜默丟棄
//   - 協議錯誤（ROOM_NOT_FOUND / ROOM_FULL）：單播 err，連線保持開啟
//
// 任何一種壞輸入都不會讓房間狀態失步或中斷連線。
type Router struct {
	manager *Manager
	logger  *slog.Logger
}

// NewRouter 創建訊息路由器
func NewRouter(manager *Manager, logger *slog.Logger) *Router {
	return &Router{
		manager: manager,
		logger:  logger,
	}
}

// Dispatch 解碼並分發一個文字幀
//
// 同一連線的幀由單一讀取 goroutine 依序呼叫，天然保持接收順序。
func (rt *Router) Dispatch(c *Conn, frame []byte) {
	var msg clientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		rt.logger.Debug("丟棄無法解析的幀",
			"conn_id", c.ID,
			"error", err)
		return
	}

	switch msg.T {
	case kindCreate:
		rt.handleCreate(c)
	case kindJoin:
		rt.handleJoin(c, msg.RoomID)
	case kindPos:
		rt.manager.RelayPos(c, msg.X, msg.Y)
	case kindClaimFlag:
		rt.manager.ClaimFlag(c)
	default:
		rt.logger.Debug("丟棄未知種類的訊息",
			"kind", msg.T,
			"conn_id", c.ID)
	}
}

// handleCreate 處理 create：僅允許尚未入房的連線
func (rt *Router) handleCreate(c *Conn) {
	if _, _, ok := c.Assignment(); ok {
		return
	}

	roomID, slot, err := rt.manager.CreateRoom(c)
	if err != nil {
		rt.logger.Error("創建房間失敗", "error", err)
		return
	}

	c.send(createdMessage{T: kindCreated, RoomID: roomID, PlayerID: slot})
}

// handleJoin 處理 join：僅允許尚未入房的連線
//
// 成功回應（joined 與可能的 start）已在房間鎖內送出，
// 這裡只需回報協議錯誤。
func (rt *Router) handleJoin(c *Conn, roomID string) {
	if _, _, ok := c.Assignment(); ok {
		return
	}

	_, _, err := rt.manager.JoinRoom(c, roomID)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		c.send(errMessage{T: kindErr, M: CodeRoomNotFound})
	case errors.Is(err, ErrRoomFull):
		c.send(errMessage{T: kindErr, M: CodeRoomFull})
	}
}
