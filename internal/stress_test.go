package internal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 並發競態測試：同一房間的操作必須完全串行化——
// 兩個同時的 join 不能都搶到最後一個席位，兩個同時的
// claim_flag 只能有一個獲勝，離房不能與奪旗交錯出壞狀態。

// TestConcurrentJoins 測試同時加入只有一個成功
func TestConcurrentJoins(t *testing.T) {
	manager := newTestManager("AAAAA")
	creator := newTestConn()

	roomID, _, err := manager.CreateRoom(creator)
	require.NoError(t, err)

	const contenders = 16
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.JoinRoom(newTestConn(), roomID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}

	// 只有一個空席位，恰好一位搶到
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, manager.Stats()["total_members"])
}

// TestConcurrentClaims 測試同時奪旗只有一個獲勝
func TestConcurrentClaims(t *testing.T) {
	manager := newTestManager("AAAAA")
	c1 := newTestConn()
	c2 := newTestConn()

	roomID, _, err := manager.CreateRoom(c1)
	require.NoError(t, err)
	_, _, err = manager.JoinRoom(c2, roomID)
	require.NoError(t, err)
	drainMessages(t, c1)
	drainMessages(t, c2)

	var wg sync.WaitGroup
	for _, c := range []*Conn{c1, c2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.ClaimFlag(c)
		}()
	}
	wg.Wait()

	// 每位成員恰好收到一個 win，且兩邊的獲勝者一致
	msgs1 := drainMessages(t, c1)
	msgs2 := drainMessages(t, c2)
	require.Len(t, msgs1, 1)
	require.Len(t, msgs2, 1)
	assert.Equal(t, "win", msgs1[0]["t"])
	assert.Equal(t, msgs1[0]["winner"], msgs2[0]["winner"])
}

// TestConcurrentLeaveAndClaim 測試離房與奪旗的競態
func TestConcurrentLeaveAndClaim(t *testing.T) {
	manager := newTestManager("AAAAA")
	c1 := newTestConn()
	c2 := newTestConn()

	roomID, _, err := manager.CreateRoom(c1)
	require.NoError(t, err)
	_, _, err = manager.JoinRoom(c2, roomID)
	require.NoError(t, err)
	drainMessages(t, c1)
	drainMessages(t, c2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		manager.LeaveRoom(c2)
	}()
	go func() {
		defer wg.Done()
		manager.ClaimFlag(c1)
	}()
	wg.Wait()

	// 不論交錯順序，win 廣播至多一次
	msgs := drainMessages(t, c1)
	assert.LessOrEqual(t, len(msgs), 1)
	for _, msg := range msgs {
		assert.Equal(t, "win", msg["t"])
		assert.Equal(t, "P1", msg["winner"])
	}

	// 最後一位離開後房間消失
	manager.LeaveRoom(c1)
	assert.Equal(t, 0, manager.Stats()["total_rooms"])
}

// TestConcurrentRooms 測試不同房間完全並行
func TestConcurrentRooms(t *testing.T) {
	const rooms = 50

	ids := make([]string, rooms)
	for i := range ids {
		ids[i] = fmt.Sprintf("RM%03d", i)
	}
	manager := NewManager(&stubIDGenerator{ids: ids}, testLogger())

	var wg sync.WaitGroup
	for range rooms {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c1 := newTestConn()
			c2 := newTestConn()

			roomID, _, err := manager.CreateRoom(c1)
			if !assert.NoError(t, err) {
				return
			}
			_, _, err = manager.JoinRoom(c2, roomID)
			if !assert.NoError(t, err) {
				return
			}

			manager.ClaimFlag(c1)
			manager.RelayPos(c2, 1, 2)
			manager.LeaveRoom(c1)
			manager.LeaveRoom(c2)
		}()
	}
	wg.Wait()

	// 所有房間都已銷毀
	assert.Equal(t, 0, manager.Stats()["total_rooms"])
}
