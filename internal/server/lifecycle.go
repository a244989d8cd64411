package server

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/palemoky/floating-bridge/internal/protocol"
)

// GetOnlineCount 当前连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// monitorStats 定期输出服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		log.Printf("📊 [监控] 在线: %d | 牌桌: %d | 等待: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.ActiveTables(),
			s.lobby.Waiting(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode 拒绝新连接和新入座，进行中的牌桌不受影响
func (s *Server) EnterMaintenanceMode() {
	if s.maintenance.Swap(true) {
		return
	}
	s.lobby.Broadcast(protocol.NewErrorWithMessage(protocol.ErrCodeServerMaintenance,
		"👷🏻‍♂️ 维护模式：停止新的牌桌"))
	log.Println("🔧 进入维护模式：停止新连接和入座")
}

// IsMaintenanceMode 是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}

// GracefulShutdown 进入维护模式，等待牌桌结束（最多 timeout）后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.ActiveTables()
		if active == 0 {
			log.Println("✅ 所有牌桌已结束")
			break
		}
		log.Printf("⏳ 等待 %d 张牌桌结束...", active)
		<-ticker.C
	}
	if active := s.ActiveTables(); active > 0 {
		// 牌桌在退出时保存快照，重启后可恢复
		log.Printf("⚠️ 超时，仍有 %d 张牌桌进行中，保存后关闭", active)
	}
	s.Shutdown()
}

// Shutdown 停止所有牌桌和连接
func (s *Server) Shutdown() {
	s.cancel()
	s.tablesWG.Wait()

	if s.tcpListener != nil {
		_ = s.tcpListener.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("关闭 HTTP 服务失败: %v", err)
		}
	}

	s.clientsMu.RLock()
	for _, c := range s.clients {
		c.peer.Close()
	}
	s.clientsMu.RUnlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}
	log.Println("服务器已关闭")
}
