package session

import (
	"crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/game/player"
)

const (
	defaultReconnectWindow = 2 * time.Minute
	// 离线会话保留时长（不短于重连窗口）
	retainOffline = 10 * time.Minute
	sweepInterval = time.Minute
)

// entry 一个玩家的会话。offlineSince 为零值表示在线。
type entry struct {
	player       *player.Player
	token        string
	offlineSince time.Time
}

// SessionManager 保存登录过的玩家，断线后凭重连 token 在窗口内取回余额与统计。
// 每次登录都会轮换 token，旧 token 立即失效。
type SessionManager struct {
	mu      sync.Mutex
	byID    map[string]*entry
	byToken map[string]*entry
	window  time.Duration
	retain  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager window <= 0 时使用默认重连窗口
func NewSessionManager(window time.Duration) *SessionManager {
	if window <= 0 {
		window = defaultReconnectWindow
	}
	sm := &SessionManager{
		byID:    make(map[string]*entry),
		byToken: make(map[string]*entry),
		window:  window,
		retain:  max(retainOffline, window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go sm.sweepLoop()
	return sm
}

// Close 停止清理协程
func (sm *SessionManager) Close() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}

// Issue 为玩家登记在线会话并返回新的重连 token
func (sm *SessionManager) Issue(p *player.Player) string {
	token := rand.Text()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if old, ok := sm.byID[p.ID]; ok {
		delete(sm.byToken, old.token)
	}
	e := &entry{player: p, token: token}
	sm.byID[p.ID] = e
	sm.byToken[token] = e
	return token
}

// Lookup 按玩家 ID 取会话中的玩家，没有会话时返回 nil
func (sm *SessionManager) Lookup(playerID string) *player.Player {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if e, ok := sm.byID[playerID]; ok {
		return e.player
	}
	return nil
}

// Restore 用重连 token 取回玩家；token 未知或离线超过重连窗口时失败
func (sm *SessionManager) Restore(token string) (*player.Player, bool) {
	if token == "" {
		return nil, false
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	e, ok := sm.byToken[token]
	if !ok {
		return nil, false
	}
	if !e.offlineSince.IsZero() && sm.now().Sub(e.offlineSince) > sm.window {
		return nil, false
	}
	return e.player, true
}

// SetOffline 标记离线，开始计算重连窗口
func (sm *SessionManager) SetOffline(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if e, ok := sm.byID[playerID]; ok && e.offlineSince.IsZero() {
		e.offlineSince = sm.now()
	}
}

// SetOnline 标记在线
func (sm *SessionManager) SetOnline(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if e, ok := sm.byID[playerID]; ok {
		e.offlineSince = time.Time{}
	}
}

func (sm *SessionManager) IsOnline(playerID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	e, ok := sm.byID[playerID]
	return ok && e.offlineSince.IsZero()
}

// NameInUse 是否有会话（含离线）使用该昵称
func (sm *SessionManager) NameInUse(name string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, e := range sm.byID {
		if e.player.Name == name {
			return true
		}
	}
	return false
}

// Len 当前保存的会话数（含离线）
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.byID)
}

func (sm *SessionManager) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			if n := sm.sweep(); n > 0 {
				log.Printf("🧹 清理 %d 个过期会话", n)
			}
		}
	}
}

// sweep 删除离线超过保留时长的会话，返回删除数
func (sm *SessionManager) sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	removed := 0
	for id, e := range sm.byID {
		if e.offlineSince.IsZero() || now.Sub(e.offlineSince) <= sm.retain {
			continue
		}
		delete(sm.byToken, e.token)
		delete(sm.byID, id)
		removed++
	}
	return removed
}
