package internal

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// 心跳機制：
//   writePump 每 54 秒發送 Ping，readPump 設 60 秒讀取超時並在收到
//   Pong 時重置。54 秒避開常見代理的 60 秒超時閾值，留 6 秒余量。
const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	maxFrameSize = 1024
)

// Conn 單一客戶端連線的包裝
//
// 在原始 WebSocket 之上疊加連線期間的臨時狀態：目前的房間指派。
// 指派以明確的標記狀態表示——state 為 nil 代表尚未入房，
// 處理器不可能誤把未入房的連線當作房間成員操作。
//
// 連線由傳輸層（Hub 與讀寫 goroutine）獨占擁有，
// Room 只持有用於廣播的非擁有引用。
type Conn struct {
	ID   string      // 連線識別碼，僅用於日誌
	Send chan []byte // 出站幀緩衝

	ws     *websocket.Conn
	logger *slog.Logger

	mu        sync.Mutex
	state     *assignment
	closed    bool
	closeOnce sync.Once
}

// assignment 連線的房間指派（入房後不變，離房時整個清除）
type assignment struct {
	roomID string
	slot   Slot
}

// NewConn 包裝一條已升級的 WebSocket 連線
func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		Send:   make(chan []byte, 256),
		ws:     ws,
		logger: logger,
	}
}

// Assignment 獲取連線目前的房間指派
func (c *Conn) Assignment() (roomID string, slot Slot, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return "", "", false
	}
	return c.state.roomID, c.state.slot, true
}

func (c *Conn) assign(roomID string, slot Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = &assignment{roomID: roomID, slot: slot}
}

func (c *Conn) clearAssignment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
}

// enqueue 僅在傳輸仍開啟時投遞一個已編碼的幀
//
// 關閉中的連線靜默丟棄，不回報錯誤。緩衝區滿時同樣丟棄，
// 慢客戶端不能拖住持有房間鎖的廣播。
func (c *Conn) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// send 編碼並投遞一個服務器訊息
func (c *Conn) send(v any) {
	c.enqueue(encode(v))
}

// close 關閉連線（可安全重複呼叫）
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.Send)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

// Hub WebSocket 連線中心
//
// 接受升級後的連線、啟動讀寫 goroutine、追蹤存活連線以便關機時
// 統一收尾。房間層面的成員關係不在這裡——那是 Store 的職責，
// Hub 只認得「這條連線還活著」。
type Hub struct {
	manager  *Manager
	router   *Router
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewHub 創建 WebSocket Hub
func NewHub(manager *Manager, router *Router, logger *slog.Logger) *Hub {
	return &Hub{
		manager: manager,
		router:  router,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 在生產環境應該檢查來源
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*Conn]struct{}),
	}
}

// ServeWS 處理 WebSocket 連接
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("升級 WebSocket 失敗", "error", err)
		return
	}

	conn := NewConn(ws, h.logger)
	h.register(conn)

	go conn.writePump()
	go conn.readPump(h)

	h.logger.Info("WebSocket 連線建立", "conn_id", conn.ID)
}

func (h *Hub) register(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) unregister(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.close()
	}
}

// ConnCount 獲取存活連線數
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Stop 關閉所有連線
func (h *Hub) Stop() {
	h.mu.Lock()
	for conn := range h.conns {
		conn.close()
	}
	h.conns = make(map[*Conn]struct{})
	h.mu.Unlock()

	h.logger.Info("WebSocket Hub 已停止")
}

// readPump 讀取客戶端訊息
//
// 每條連線一個讀取 goroutine，訊息依接收順序逐一路由，
// 同一連線內不會重排。連線結束時先通知 Manager 處理離房
// （與同房間的其他操作經由房間鎖串行化），再自 Hub 註銷。
func (c *Conn) readPump(h *Hub) {
	defer func() {
		h.manager.LeaveRoom(c)
		h.unregister(c)
		h.logger.Info("WebSocket 連線結束", "conn_id", c.ID)
	}()

	c.ws.SetReadLimit(maxFrameSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("設置讀取期限失敗", "error", err)
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket 讀取錯誤",
					"error", err,
					"conn_id", c.ID)
			}
			break
		}

		if messageType == websocket.TextMessage {
			h.router.Dispatch(c, frame)
		}
	}
}

// writePump 寫入訊息到客戶端並定期發送 Ping
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("設置寫入期限失敗", "error", err)
			}
			if !ok {
				// Send 已關閉，優雅關閉連線
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// 批量送出隊列中剩餘的訊息
			n := len(c.Send)
			for range n {
				msg, ok := <-c.Send
				if !ok {
					return
				}
				if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}

		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("設置寫入期限失敗", "error", err)
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
