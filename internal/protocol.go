package internal

// 訊息協議：
//   每個 WebSocket 文字幀攜帶一個 JSON 物件，以 t 欄位標示種類。
//   客戶端 → 服務器：create / join / pos / claim_flag
//   服務器 → 客戶端：created / joined / err / start / pos / win

// Slot 房間內的玩家席位
//
// 席位在加入時固定：房間的第一位成員永遠是 P1，第二位永遠是 P2，
// 房間存活期間不會重新指派或交換。
type Slot string

const (
	SlotP1 Slot = "P1"
	SlotP2 Slot = "P2"
)

// 客戶端訊息種類
const (
	kindCreate    = "create"
	kindJoin      = "join"
	kindPos       = "pos"
	kindClaimFlag = "claim_flag"
)

// 服務器訊息種類
const (
	kindCreated = "created"
	kindJoined  = "joined"
	kindErr     = "err"
	kindStart   = "start"
	kindWin     = "win"
)

// 協議錯誤代碼（err 訊息的 m 欄位）
const (
	CodeRoomNotFound = "ROOM_NOT_FOUND"
	CodeRoomFull     = "ROOM_FULL"
)

// clientMessage 客戶端傳入訊息的統一封包
//
// 各種類只使用自己需要的欄位，多餘欄位忽略。
// 解碼失敗的幀由路由器靜默丟棄（見 Router.Dispatch）。
type clientMessage struct {
	T      string  `json:"t"`
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type createdMessage struct {
	T        string `json:"t"`
	RoomID   string `json:"roomId"`
	PlayerID Slot   `json:"playerId"`
}

type joinedMessage struct {
	T        string `json:"t"`
	RoomID   string `json:"roomId"`
	PlayerID Slot   `json:"playerId"`
}

type errMessage struct {
	T string `json:"t"`
	M string `json:"m"`
}

type startMessage struct {
	T string `json:"t"`
}

type posMessage struct {
	T    string  `json:"t"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	From Slot    `json:"from"`
}

type winMessage struct {
	T      string `json:"t"`
	Winner Slot   `json:"winner"`
}
