package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/palemoky/floating-bridge/internal/server/storage"
)

// 排行榜单次最多返回的条数
const maxLeaderboardLimit = 50

// HealthStatus /health 的响应
type HealthStatus struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Tables      int    `json:"tables"`
	Waiting     int    `json:"waiting"`
	Maintenance bool   `json:"maintenance"`
}

// PlayerStatsResult /stats 的响应
type PlayerStatsResult struct {
	*storage.PlayerStats
	Rank    int64   `json:"rank"`
	WinRate float64 `json:"win_rate"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := HealthStatus{
		Status:      "ok",
		Online:      s.GetOnlineCount(),
		Tables:      s.ActiveTables(),
		Waiting:     s.lobby.Waiting(),
		Maintenance: s.IsMaintenanceMode(),
	}
	if status.Maintenance {
		status.Status = "maintenance"
	}
	writeJSON(w, http.StatusOK, status)
}

// handleLeaderboard GET /leaderboard?period=total|daily|weekly&limit=10
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusNotFound)
		return
	}

	period := storage.Period(r.URL.Query().Get("period"))
	switch period {
	case storage.PeriodDaily, storage.PeriodWeekly, storage.PeriodTotal:
	default:
		period = storage.PeriodTotal
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > maxLeaderboardLimit {
		limit = 10
	}

	entries, err := s.leaderboard.GetLeaderboard(r.Context(), period, limit)
	if err != nil {
		log.Printf("获取排行榜失败: %v", err)
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handlePlayerStats GET /stats?name=<昵称>
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusNotFound)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	stats, err := s.leaderboard.GetPlayerStats(r.Context(), name)
	if err != nil {
		log.Printf("获取 %s 统计失败: %v", name, err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	rank, _ := s.leaderboard.GetPlayerRank(r.Context(), name)
	result := PlayerStatsResult{PlayerStats: stats, Rank: rank}
	if stats.TotalRounds > 0 {
		result.WinRate = float64(stats.Wins) / float64(stats.TotalRounds) * 100
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写响应失败: %v", err)
	}
}
