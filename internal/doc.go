// Package internal 實現了一個雙人競技場遊戲的即時轉發服務器。
//
// 服務器不包含任何遊戲邏輯，只負責會話與廣播：玩家透過持久的
// WebSocket 連線進入，以 5 位大寫英數短代碼組成房間，交換位置
// 更新，並競爭一次性的奪旗事件。
//
// # 房間生命週期
//
// 房間隨 create 誕生（創建者即 P1），第二位玩家 join 後進入對戰
// 狀態（廣播 start），最後一位成員斷線的瞬間房間自註冊表銷毀，
// 代碼隨即可被重用。零成員的房間不存在——它被移除，而非留空。
//
// # 訊息路由
//
// 每個文字幀是一個以 t 欄位標示種類的 JSON 物件：
//   - create     創建房間，單播 created
//   - join       加入房間，單播 joined 或 err，滿員時廣播 start
//   - pos        位置更新，轉發給發送者以外的成員
//   - claim_flag 奪旗，首次成功時廣播 win
//
// 無法解析的幀、未知種類、狀態不符的訊息一律靜默丟棄；
// 壞輸入永遠不會中斷連線或讓房間狀態失步。
//
// # 併發模型
//
// 每條連線一對讀寫 goroutine，讀取端依序路由訊息。同一房間的
// 變更由房間自己的互斥鎖完全串行化（兩個並發的 join 不會都成功、
// 兩個並發的 claim_flag 只有一個獲勝），不同房間之間完全並行。
// 所有操作同步完成，不存在等待其他連線的阻塞點。
//
// # 架構分層
//
//   - Handler 層：健康檢查與統計端點
//   - Hub / Conn 層：連線生命週期、心跳、出站緩衝
//   - Router 層：解碼與分發
//   - Manager / Store 層：房間註冊表與四種操作
//   - Room 層：席位指派、一次性奪旗、房間內廣播
package internal
