// Package server 联网对局服务：TCP 和 WebSocket 监听、入座、牌桌驱动和持久化
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/floating-bridge/internal/config"
	"github.com/palemoky/floating-bridge/internal/server/session"
	"github.com/palemoky/floating-bridge/internal/server/storage"
	"github.com/palemoky/floating-bridge/internal/transport"
)

// Server 对局服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	store       *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	sessions    *session.SessionManager
	lobby       *Lobby
	upgrader    websocket.Upgrader

	clients   map[string]*client // peer ID -> client
	clientsMu sync.RWMutex

	tables   map[string]*session.TableSession
	tablesMu sync.RWMutex
	tablesWG sync.WaitGroup

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	maintenance atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	httpServer  *http.Server
	tcpListener net.Listener
}

// NewServer 创建服务器；启用 Redis 时连接失败返回错误
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   cfg,
		sessions: session.NewSessionManager(cfg.Game.ReconnectTimeoutDuration()),
		clients:  make(map[string]*client),
		tables:   make(map[string]*session.TableSession),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.IPWhitelist, cfg.Security.IPBlacklist),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		ctx:            ctx,
		cancel:         cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	s.lobby = NewLobby(s)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		s.useRedis(rdb)
	}

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 最大连接数=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond, cfg.Server.MaxConnections)
	return s, nil
}

func (s *Server) useRedis(rdb *redis.Client) {
	s.redis = rdb
	s.store = storage.NewRedisStore(rdb)
	s.leaderboard = storage.NewLeaderboardManager(rdb)
}

// Handler HTTP 路由：/ws、/health、/leaderboard、/stats
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/stats", s.handlePlayerStats)
	return mux
}

// Start 监听 TCP 和 HTTP 端口并阻塞到服务器关闭
func (s *Server) Start() error {
	tcpAddr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.TCPPort)
	ln, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", tcpAddr, err)
	}
	s.tcpListener = ln

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	s.restoreTables()
	go s.rateLimiter.Run(s.ctx)
	go s.sessions.Run(s.ctx)
	go s.monitorStats(s.ctx)
	go s.serveTCP(ln)

	log.Printf("🚀 服务器启动在 tcp://%s 和 ws://%s/ws (CPU核心数: %d)", tcpAddr, addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveTCP 接受 TCP 连接直到监听关闭
func (s *Server) serveTCP(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("TCP accept 失败: %v", err)
			}
			return
		}
		s.handleTCP(conn)
	}
}

// tableOptions 牌桌使用的超时和持久化
func (s *Server) tableOptions() session.Options {
	opts := session.Options{
		TurnTimeout:      s.config.Game.TurnTimeoutDuration(),
		ReadyTimeout:     s.config.Game.ReadyTimeoutDuration(),
		ReconnectTimeout: s.config.Game.ReconnectTimeoutDuration(),
	}
	if s.store != nil {
		opts.Store = s.store
	}
	if s.leaderboard != nil {
		opts.Recorder = s.leaderboard
	}
	return opts
}

// startTable 登记并在后台驱动牌桌
func (s *Server) startTable(ts *session.TableSession) {
	s.tablesMu.Lock()
	s.tables[ts.ID] = ts
	s.tablesMu.Unlock()

	s.tablesWG.Add(1)
	go func() {
		defer s.tablesWG.Done()
		err := ts.Run(s.ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.Is(err, session.ErrAbandoned):
			log.Printf("🗑️ 牌桌 %s 已放弃", ts.ID)
		default:
			log.Printf("❌ 牌桌 %s 异常结束: %v", ts.ID, err)
			if s.store != nil {
				_ = s.store.DeleteSnapshot(context.Background(), ts.ID)
			}
		}

		s.tablesMu.Lock()
		delete(s.tables, ts.ID)
		s.tablesMu.Unlock()
		if s.ctx.Err() == nil {
			s.sessions.DeleteTable(ts.ID)
		}
	}()
}

// restoreTables 恢复 Redis 中保存的牌桌，真人座位等待凭令牌重连
func (s *Server) restoreTables() {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	ids, err := s.store.TableIDs(ctx)
	if err != nil {
		log.Printf("读取牌桌列表失败: %v", err)
		return
	}
	for _, id := range ids {
		data, err := s.store.LoadSnapshot(ctx, id)
		if err != nil || data == nil {
			continue
		}
		ts, err := session.RestoreTableSession(data, s.tableOptions())
		if err != nil {
			log.Printf("恢复牌桌 %s 失败: %v", id, err)
			_ = s.store.DeleteSnapshot(ctx, id)
			continue
		}
		for seat, cfg := range ts.Seats() {
			if !cfg.Bot {
				s.sessions.Register(cfg.Token, cfg.Name, ts.ID, seat, false)
			}
		}
		s.startTable(ts)
		log.Printf("♻️ 已恢复牌桌 %s", id)
	}
}

// table 按 ID 查找运行中的牌桌
func (s *Server) table(id string) *session.TableSession {
	s.tablesMu.RLock()
	defer s.tablesMu.RUnlock()
	return s.tables[id]
}

// ActiveTables 运行中的牌桌数
func (s *Server) ActiveTables() int {
	s.tablesMu.RLock()
	defer s.tablesMu.RUnlock()
	return len(s.tables)
}

var _ transport.Limiter = (*MessageRateLimiter)(nil)
