package server

import "sync"

// registry 连接表：连接 ID → 客户端，玩家 ID → 客户端
type registry struct {
	mu      sync.RWMutex
	conns   map[string]*Client
	players map[string]*Client
}

func newRegistry() *registry {
	return &registry{
		conns:   make(map[string]*Client),
		players: make(map[string]*Client),
	}
}

// add 登记新连接
func (r *registry) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ConnID] = c
}

// bind 把玩家绑定到连接，返回被顶替的旧连接（没有则为 nil）
func (r *registry) bind(c *Client, playerID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.players[playerID]
	r.players[playerID] = c
	if old == c {
		return nil
	}
	return old
}

// release 注销连接，可重复调用。返回该连接此前是否持有玩家绑定。
func (r *registry) release(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c.ConnID)

	p := c.GetPlayer()
	if p == nil || r.players[p.ID] != c {
		return false
	}
	delete(r.players, p.ID)
	return true
}

// count 当前连接数
func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// clients 复制当前连接列表，遍历时不持有锁
func (r *registry) clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
