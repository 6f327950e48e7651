// 簡易終端測試客戶端：連上轉發服務器後以指令操作房間。
//
// 指令：
//
//	create         創建房間
//	join <code>    以代碼加入房間
//	pos <x> <y>    發送位置更新
//	claim          奪旗
//	quit           離開
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

var (
	serverAddr = flag.String("server", "localhost:10000", "服務器位址 (host:port)")
)

var (
	infoColor  = color.New(color.FgCyan)
	eventColor = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed)
)

func main() {
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *serverAddr)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		errColor.Fprintf(os.Stderr, "連線失敗: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()

	okColor.Printf("已連上 %s\n", url)
	infoColor.Println("指令: create | join <code> | pos <x> <y> | claim | quit")

	// 讀取服務器事件
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, frame, err := ws.ReadMessage()
			if err != nil {
				errColor.Println("連線已關閉:", err)
				return
			}
			printEvent(frame)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var msg map[string]any
		switch fields[0] {
		case "create":
			msg = map[string]any{"t": "create"}
		case "join":
			if len(fields) < 2 {
				errColor.Println("用法: join <code>")
				continue
			}
			msg = map[string]any{"t": "join", "roomId": fields[1]}
		case "pos":
			if len(fields) < 3 {
				errColor.Println("用法: pos <x> <y>")
				continue
			}
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			if errX != nil || errY != nil {
				errColor.Println("座標必須是數字")
				continue
			}
			msg = map[string]any{"t": "pos", "x": x, "y": y}
		case "claim":
			msg = map[string]any{"t": "claim_flag"}
		case "quit":
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return
		default:
			errColor.Println("未知指令:", fields[0])
			continue
		}

		if err := ws.WriteJSON(msg); err != nil {
			errColor.Println("發送失敗:", err)
			return
		}
	}
}

// printEvent 以顏色標示服務器事件
func printEvent(frame []byte) {
	var msg map[string]any
	if err := json.Unmarshal(frame, &msg); err != nil {
		errColor.Println("無法解析的幀:", string(frame))
		return
	}

	switch msg["t"] {
	case "created":
		okColor.Printf("房間已創建: %v（你是 %v）\n", msg["roomId"], msg["playerId"])
	case "joined":
		okColor.Printf("已加入房間: %v（你是 %v）\n", msg["roomId"], msg["playerId"])
	case "start":
		eventColor.Println("雙方到齊，對戰開始！")
	case "pos":
		infoColor.Printf("%v 位置: (%v, %v)\n", msg["from"], msg["x"], msg["y"])
	case "win":
		eventColor.Printf("%v 奪旗獲勝！\n", msg["winner"])
	case "err":
		errColor.Printf("錯誤: %v\n", msg["m"])
	default:
		infoColor.Println(string(frame))
	}
}
