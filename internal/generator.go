package internal

import (
	"crypto/rand"
	"time"
)

// IDGenerator 產生房間代碼
//
// 以介面隔離隨機來源，讓碰撞處理與代碼格式可以獨立測試
// （測試中注入固定序列的生成器）。
type IDGenerator interface {
	NewRoomID() string
}

const (
	roomIDLength  = 5
	roomIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// randomIDGenerator 預設實現：crypto/rand 產生 5 位大寫英數代碼
//
// 36^5 ≈ 6,000 萬種組合，對同時存活的房間數而言碰撞極罕見；
// 碰撞由 Manager 重新生成處理。
type randomIDGenerator struct{}

// NewRandomIDGenerator 創建預設的房間代碼生成器
func NewRandomIDGenerator() IDGenerator {
	return randomIDGenerator{}
}

func (randomIDGenerator) NewRoomID() string {
	b := make([]byte, roomIDLength)
	if _, err := rand.Read(b); err != nil {
		// 隨機讀取失敗時以時間戳作為備用來源
		n := time.Now().UnixNano()
		for i := range b {
			b[i] = roomIDCharset[int(n)%len(roomIDCharset)]
			n /= int64(len(roomIDCharset))
		}
		return string(b)
	}
	for i := range b {
		b[i] = roomIDCharset[int(b[i])%len(roomIDCharset)]
	}
	return string(b)
}
