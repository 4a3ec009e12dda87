package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/config"
)

// idleRecordTTL 计数记录闲置多久后清理
const idleRecordTTL = 10 * time.Minute

// --- 固定窗口计数 ---

// window 一个 key 的秒级、分钟级计数
type window struct {
	second      int
	minute      int
	secondStart time.Time
	minuteStart time.Time
	lastSeen    time.Time

	blockedUntil time.Time // 封禁或冷却到期时间
	strikes      int       // 超限次数
}

// roll 窗口到期时清零
func (w *window) roll(now time.Time) {
	if now.Sub(w.secondStart) >= time.Second {
		w.second = 0
		w.secondStart = now
	}
	if now.Sub(w.minuteStart) >= time.Minute {
		w.minute = 0
		w.minuteStart = now
	}
	w.lastSeen = now
}

// windows 按 key 保存计数，所有读写在同一把锁内完成
type windows struct {
	mu  sync.Mutex
	m   map[string]*window
	now func() time.Time
}

func newWindows() *windows {
	return &windows{m: make(map[string]*window), now: time.Now}
}

// do 取出（必要时创建）key 的窗口，滚动后交给 fn
func (ws *windows) do(key string, fn func(w *window, now time.Time)) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.now()
	w, ok := ws.m[key]
	if !ok {
		w = &window{secondStart: now, minuteStart: now}
		ws.m[key] = w
	}
	w.roll(now)
	fn(w, now)
}

// peek 只读查看 key 的窗口，不存在时 fn 收到 nil
func (ws *windows) peek(key string, fn func(w *window, now time.Time)) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	fn(ws.m[key], ws.now())
}

// RemoveClient 删除 key 的记录
func (ws *windows) RemoveClient(key string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.m, key)
}

// purge 删除闲置且未被封禁的记录，返回删除条数
func (ws *windows) purge(idle time.Duration) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.now()
	removed := 0
	for key, w := range ws.m {
		if now.Sub(w.lastSeen) > idle && !now.Before(w.blockedUntil) {
			delete(ws.m, key)
			removed++
		}
	}
	return removed
}

// --- 握手限流 ---

// ConnLimiter 按 IP 限制握手频率，超限后封禁一段时间
type ConnLimiter struct {
	*windows
	perSecond int
	perMinute int
	ban       time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewConnLimiter 创建握手限流器并启动清理协程
func NewConnLimiter(cfg config.RateLimitConfig) *ConnLimiter {
	l := &ConnLimiter{
		windows:   newWindows(),
		perSecond: cfg.MaxPerSecond,
		perMinute: cfg.MaxPerMinute,
		ban:       cfg.BanDurationTime(),
		stop:      make(chan struct{}),
	}
	go l.janitor(5 * time.Minute)
	return l
}

// Allow 记录一次握手，返回是否放行
func (l *ConnLimiter) Allow(ip string) (allowed bool) {
	l.do(ip, func(w *window, now time.Time) {
		if now.Before(w.blockedUntil) {
			return
		}
		w.second++
		w.minute++
		if w.second > l.perSecond || w.minute > l.perMinute {
			w.blockedUntil = now.Add(l.ban)
			log.Printf("⚠️ IP %s 握手过于频繁，封禁 %v", ip, l.ban)
			return
		}
		allowed = true
	})
	return allowed
}

// Banned IP 是否处于封禁中
func (l *ConnLimiter) Banned(ip string) (banned bool) {
	l.peek(ip, func(w *window, now time.Time) {
		banned = w != nil && now.Before(w.blockedUntil)
	})
	return banned
}

// Close 停止清理协程
func (l *ConnLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *ConnLimiter) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			if n := l.purge(idleRecordTTL); n > 0 {
				log.Printf("🧹 清理 %d 条握手限流记录", n)
			}
		}
	}
}

// --- 消息限流 ---

// MessageLimiter 单连接每秒消息上限。过半时提醒，超限记一次 strike。
type MessageLimiter struct {
	*windows
	perSecond int
	warnAbove int
}

// NewMessageLimiter 创建消息限流器
func NewMessageLimiter(perSecond int) *MessageLimiter {
	return &MessageLimiter{
		windows:   newWindows(),
		perSecond: perSecond,
		warnAbove: perSecond / 2,
	}
}

// Allow 记录一条消息。allowed 为 false 时消息应丢弃；warn 表示接近或超过上限。
func (l *MessageLimiter) Allow(connID string) (allowed, warn bool) {
	l.do(connID, func(w *window, _ time.Time) {
		w.second++
		if w.second > l.perSecond {
			w.strikes++
			warn = true
			return
		}
		allowed = true
		warn = l.warnAbove > 0 && w.second > l.warnAbove
	})
	return allowed, warn
}

// Strikes 连接累计超限次数
func (l *MessageLimiter) Strikes(connID string) (strikes int) {
	l.peek(connID, func(w *window, _ time.Time) {
		if w != nil {
			strikes = w.strikes
		}
	})
	return strikes
}

// --- 聊天限流 ---

// ChatLimiter 聊天每秒、每分钟上限；超出每秒上限后禁言一段冷却时间
type ChatLimiter struct {
	*windows
	perSecond int
	perMinute int
	cooldown  time.Duration
}

// NewChatLimiter 创建聊天限流器
func NewChatLimiter(cfg config.ChatLimitConfig) *ChatLimiter {
	return &ChatLimiter{
		windows:   newWindows(),
		perSecond: cfg.MaxPerSecond,
		perMinute: cfg.MaxPerMinute,
		cooldown:  cfg.CooldownDuration(),
	}
}

// AllowChat 记录一次发言，拒绝时返回原因
func (l *ChatLimiter) AllowChat(playerID string) (allowed bool, reason string) {
	l.do(playerID, func(w *window, now time.Time) {
		switch {
		case now.Before(w.blockedUntil):
			wait := max(w.blockedUntil.Sub(now).Round(time.Second), time.Second)
			reason = fmt.Sprintf("chat is cooling down, try again in %v", wait)
		case w.minute >= l.perMinute:
			reason = "too many chat messages this minute, take a break"
		case w.second >= l.perSecond:
			w.blockedUntil = now.Add(l.cooldown)
			reason = fmt.Sprintf("slow down, chat muted for %v", l.cooldown)
		default:
			w.second++
			w.minute++
			allowed = true
		}
	})
	return allowed, reason
}

// --- 来源验证 ---

// OriginChecker 校验 WebSocket 握手的 Origin。
// 支持精确匹配（scheme://host[:port]）和 *.example.com 形式的子域名通配。
type OriginChecker struct {
	allowAll bool
	exact    map[string]bool
	suffixes []string // ".example.com"
}

// NewOriginChecker 创建来源验证器，"*" 放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{exact: make(map[string]bool)}
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
		switch {
		case origin == "":
		case origin == "*":
			oc.allowAll = true
		case strings.HasPrefix(origin, "*."):
			oc.suffixes = append(oc.suffixes, origin[1:])
		default:
			oc.exact[origin] = true
		}
	}
	return oc
}

// Check 没有 Origin 头的请求（本地客户端）直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if oc.allowAll || origin == "" {
		return true
	}

	origin = strings.ToLower(strings.TrimSuffix(origin, "/"))
	if oc.exact[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := u.Hostname()
	for _, suffix := range oc.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// --- IP 过滤 ---

// IPFilter 按地址或网段过滤。配置了允许列表时只放行列表内地址；拒绝列表优先。
type IPFilter struct {
	mu    sync.RWMutex
	allow []netip.Prefix
	deny  []netip.Prefix
}

// NewIPFilter 创建 IP 过滤器，无法解析的条目记录日志后忽略
func NewIPFilter(allow, deny []string) *IPFilter {
	return &IPFilter{
		allow: parsePrefixes(allow),
		deny:  parsePrefixes(deny),
	}
}

// ParsePrefix 解析单个地址或 CIDR 网段
func ParsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func parsePrefixes(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		p, err := ParsePrefix(e)
		if err != nil {
			log.Printf("⚠️ 忽略无效的 IP 规则 %q: %v", e, err)
			continue
		}
		prefixes = append(prefixes, p)
	}
	return prefixes
}

// Block 运行时拉黑一个地址或网段
func (f *IPFilter) Block(entry string) error {
	p, err := ParsePrefix(entry)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deny = append(f.deny, p)
	return nil
}

// Unblock 移除一条拒绝规则
func (f *IPFilter) Unblock(entry string) error {
	p, err := ParsePrefix(entry)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.deny[:0]
	for _, d := range f.deny {
		if d != p {
			kept = append(kept, d)
		}
	}
	f.deny = kept
	return nil
}

// IsAllowed 无法解析的地址一律拒绝
func (f *IPFilter) IsAllowed(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.deny {
		if p.Contains(addr) {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, p := range f.allow {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// --- 辅助函数 ---

// ClientIP 获取客户端 IP。trustProxy 为 true 时依次采用
// X-Forwarded-For 的第一个地址和 X-Real-IP。
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
				return addr.String()
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			if addr, err := netip.ParseAddr(realIP); err == nil {
				return addr.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
