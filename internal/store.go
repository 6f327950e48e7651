package internal

import (
	"strings"
	"sync"
)

// Store 進程內的房間註冊表
//
// 房間成員關係的唯一真實來源。註冊表本身只負責映射的並發安全，
// 房間內容的變更由各房間自己的鎖串行化——因此不同房間的操作
// 完全並行，同一房間的操作完全串行。
//
// 原始映射永不對外暴露，所有存取都經由這組方法。
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewStore 創建房間註冊表
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// Get 查找房間，代碼大小寫不敏感（統一轉為大寫查找）
func (s *Store) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[strings.ToUpper(id)]
	return room, ok
}

// Put 註冊房間；代碼已被存活房間佔用時回報 false
func (s *Store) Put(room *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.id]; exists {
		return false
	}
	s.rooms[room.id] = room
	return true
}

// Remove 移除房間，代碼自此可被新房間重用
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Len 獲取存活房間數
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Snapshot 獲取當前房間列表（用於統計）
func (s *Store) Snapshot() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
