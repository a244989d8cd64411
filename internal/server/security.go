package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// 超过该时长没有新连接的 IP 记录会被清理
const rateIdleExpiry = 10 * time.Minute

// RateLimiter 按 IP 限制新连接的频率，TCP 和 WebSocket 共用
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientRate

	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration
	now          func() time.Time
}

type clientRate struct {
	second, minute        int
	secondStart, minuteAt time.Time
	bannedUntil           time.Time
}

// NewRateLimiter 创建连接速率限制器，清理由 Run 负责
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:      make(map[string]*clientRate),
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		now:          time.Now,
	}
}

// Allow 记录一次连接并判断是否放行，超限的 IP 被封禁 banDuration
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rate, ok := rl.clients[ip]
	if !ok {
		rate = &clientRate{secondStart: now, minuteAt: now}
		rl.clients[ip] = rate
	}
	if now.Before(rate.bannedUntil) {
		return false
	}
	if now.Sub(rate.secondStart) >= time.Second {
		rate.second, rate.secondStart = 0, now
	}
	if now.Sub(rate.minuteAt) >= time.Minute {
		rate.minute, rate.minuteAt = 0, now
	}
	rate.second++
	rate.minute++

	if rate.second > rl.maxPerSecond || rate.minute > rl.maxPerMinute {
		rate.bannedUntil = now.Add(rl.banDuration)
		log.Printf("⚠️ IP %s 连接过于频繁，封禁 %v", ip, rl.banDuration)
		return false
	}
	return true
}

// IsBanned IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rate, ok := rl.clients[ip]
	return ok && rl.now().Before(rate.bannedUntil)
}

// Run 定期清理闲置记录，直到 ctx 结束
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, rate := range rl.clients {
		if now.Sub(rate.minuteAt) > rateIdleExpiry && now.After(rate.bannedUntil) {
			delete(rl.clients, ip)
		}
	}
}

// OriginChecker WebSocket 来源验证，"*" 放行所有来源
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			break
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 没有 Origin 头的请求（终端客户端）总是放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if oc.allowAll || origin == "" {
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// IPFilter 黑白名单；白名单非空时只放行白名单
type IPFilter struct {
	mu        sync.RWMutex
	whitelist map[string]bool
	blacklist map[string]bool
}

// NewIPFilter 按配置的名单创建过滤器，空白项被忽略
func NewIPFilter(whitelist, blacklist []string) *IPFilter {
	f := &IPFilter{
		whitelist: make(map[string]bool),
		blacklist: make(map[string]bool),
	}
	for _, ip := range whitelist {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.AddToWhitelist(ip)
		}
	}
	for _, ip := range blacklist {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.AddToBlacklist(ip)
		}
	}
	return f
}

func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[ip] = true
}

func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = true
}

func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.whitelist) > 0 && !f.whitelist[ip] {
		return false
	}
	return !f.blacklist[ip]
}

// GetClientIP 优先取代理头中最原始的客户端地址
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return hostOf(r.RemoteAddr)
}

// hostOf 去掉地址中的端口
func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// MessageRateLimiter 已连接客户端的消息速率限制，实现 transport.Limiter
type MessageRateLimiter struct {
	mu     sync.Mutex
	limits map[string]*messageRate

	maxPerSecond int
	warnAbove    int
	now          func() time.Time
}

type messageRate struct {
	count     int
	lastReset time.Time
	warnings  int
}

func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limits:       make(map[string]*messageRate),
		maxPerSecond: maxPerSecond,
		warnAbove:    maxPerSecond / 2,
		now:          time.Now,
	}
}

// AllowMessage 超过一半配额时给出警告，超过配额时拒绝并累计警告次数
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	rate, ok := ml.limits[clientID]
	if !ok || now.Sub(rate.lastReset) >= time.Second {
		if !ok {
			rate = &messageRate{}
			ml.limits[clientID] = rate
		}
		rate.count, rate.lastReset = 1, now
		return true, false
	}

	rate.count++
	if rate.count > ml.maxPerSecond {
		rate.warnings++
		return false, true
	}
	return true, rate.count > ml.warnAbove
}

func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if rate, ok := ml.limits[clientID]; ok {
		return rate.warnings
	}
	return 0
}

// RemoveClient 连接关闭后释放记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}
