package internal

import (
	"encoding/json"
	"sync"
)

// 系統設計問題：
//   如何讓兩個玩家透過短代碼配對，並在同一房間內即時轉發狀態？
//
// 核心挑戰：
//   1. 生命週期：房間隨第一位成員誕生，隨最後一位成員離開即刻銷毀
//   2. 席位指派：第一位成員固定為 P1、第二位固定為 P2，不可交換
//   3. 一次性事件：奪旗只能成功一次，之後的嘗試全部忽略
//   4. 並發控制：兩個連線可能同時操作同一房間（加入、奪旗、離開）
//
// 設計方案：
//   ✅ 每房間一把互斥鎖 - 同房間的變更完全串行化，跨房間完全並行
//   ✅ defunct 標記 - 關閉「查到房間但房間已銷毀」的競態窗口
//   ✅ 鎖內廣播 - 訊息在持鎖時入隊，保證順序與狀態一致

// maxMembers 每個房間的成員上限
const maxMembers = 2

// Room 一場對戰的會話容器
//
// 並發模型：
//   - 所有讀寫都經由 mu 串行化，包含廣播入隊（enqueue 非阻塞，
//     持鎖廣播不會等待任何客戶端）
//   - members 以連線為鍵，Store 只保留對連線的非擁有引用，
//     連線本身由傳輸層擁有
//   - defunct 在成員數歸零時設置；之後任何加入一律視為房間不存在，
//     即使呼叫者在 Store 移除前就已取得此房間的指標
type Room struct {
	id            string
	members       map[*Conn]Slot
	flagClaimedBy Slot // 零值代表旗幟尚未被奪取
	defunct       bool
	mu            sync.Mutex
}

func newRoom(id string) *Room {
	return &Room{
		id:      id,
		members: make(map[*Conn]Slot),
	}
}

// seed 註冊房間的第一位成員（創建流程專用）
//
// 只在房間尚未發布到 Store 前呼叫，此時不可能有競爭者。
func (r *Room) seed(c *Conn) Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[c] = SlotP1
	return SlotP1
}

// admit 將連線納入房間並指派下一個空席位
//
// 成功時在鎖內先向加入者單播 joined，滿員時才廣播 start，
// 確保加入者總是先收到自己的回應、再收到開賽通知。
//
// 滿員時重置 flagClaimedBy：房間實際上不會被重用，
// 這裡只防範代碼碰撞的極端情況。
func (r *Room) admit(c *Conn) (Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defunct {
		return "", ErrRoomNotFound
	}
	if len(r.members) >= maxMembers {
		return "", ErrRoomFull
	}

	slot := SlotP1
	if len(r.members) == 1 {
		slot = SlotP2
	}
	r.members[c] = slot

	c.enqueue(encode(joinedMessage{T: kindJoined, RoomID: r.id, PlayerID: slot}))

	if len(r.members) == maxMembers {
		r.flagClaimedBy = ""
		r.broadcastLocked(startMessage{T: kindStart})
	}

	return slot, nil
}

// leave 將連線自房間移除
//
// 成員數歸零時標記 defunct 並回報 true，呼叫者負責將房間自
// Store 移除。留下的成員不會收到任何通知——協議中沒有
// 「對手離線」訊息，客戶端依賴這份沉默。
func (r *Room) leave(c *Conn) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, c)
	if len(r.members) == 0 {
		r.defunct = true
		return true
	}
	return false
}

// claim 嘗試奪旗
//
// 一次性狀態轉換：第一個成功的呼叫設置 flagClaimedBy 並向全房間
// 廣播 win；之後的呼叫（不論來自誰）都是無操作。非成員的呼叫
// 同樣忽略。
func (r *Room) claim(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.members[c]
	if !ok || r.flagClaimedBy != "" {
		return false
	}

	r.flagClaimedBy = slot
	r.broadcastLocked(winMessage{T: kindWin, Winner: slot})
	return true
}

// relayPos 將位置更新轉發給發送者以外的所有成員
func (r *Room) relayPos(from *Conn, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.members[from]
	if !ok {
		return
	}

	data := encode(posMessage{T: kindPos, X: x, Y: y, From: slot})
	for c := range r.members {
		if c != from {
			c.enqueue(data)
		}
	}
}

// broadcastLocked 向房間所有成員廣播（需持有 r.mu）
//
// 成員間的投遞順序不保證，對正確性也不可觀測。
func (r *Room) broadcastLocked(v any) {
	data := encode(v)
	for c := range r.members {
		c.enqueue(data)
	}
}

// memberCount 獲取目前成員數
func (r *Room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// slotOf 查詢連線在房間內的席位
func (r *Room) slotOf(c *Conn) (Slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.members[c]
	return slot, ok
}

// encode 序列化服務器訊息
//
// 所有服務器訊息都是固定結構，序列化不會失敗。
func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic("序列化服務器訊息失敗: " + err.Error())
	}
	return data
}
