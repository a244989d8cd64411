package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// 角色，与 table.Role 的字符串形式一致
const (
	RoleDeclarer = "Declarer"
	RolePartner  = "Partner"
	RoleAttacker = "Attacker"
)

// PlayerStats 玩家统计数据，以昵称为 ID
type PlayerStats struct {
	PlayerName string `json:"player_name"`

	// 总计
	TotalRounds int `json:"total_rounds"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`

	// 按角色统计
	DeclarerRounds int `json:"declarer_rounds"`
	DeclarerWins   int `json:"declarer_wins"`
	PartnerRounds  int `json:"partner_rounds"`
	PartnerWins    int `json:"partner_wins"`
	AttackerRounds int `json:"attacker_rounds"`
	AttackerWins   int `json:"attacker_wins"`

	// 赢墩总数
	Tricks int `json:"tricks"`

	Score int `json:"score"`

	// 正数为连胜，负数为连败
	CurrentStreak int `json:"current_streak"`
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则
const (
	WinAsDeclarer  = 30
	WinAsPartner   = 20
	WinAsAttacker  = 15
	LoseAsDeclarer = -20
	LoseAsPartner  = -15
	LoseAsAttacker = -10

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// Period 排行榜周期
type Period string

const (
	PeriodTotal  Period = "total"
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

// GetPlayerStats 获取玩家统计，未上榜返回 nil, nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerName, data, 0).Err()
}

// updateRoleStats 更新角色统计并返回基础积分变化
func updateRoleStats(stats *PlayerStats, role string, won bool) (int, error) {
	switch role {
	case RoleDeclarer:
		stats.DeclarerRounds++
		if won {
			stats.DeclarerWins++
			return WinAsDeclarer, nil
		}
		return LoseAsDeclarer, nil
	case RolePartner:
		stats.PartnerRounds++
		if won {
			stats.PartnerWins++
			return WinAsPartner, nil
		}
		return LoseAsPartner, nil
	case RoleAttacker:
		stats.AttackerRounds++
		if won {
			stats.AttackerWins++
			return WinAsAttacker, nil
		}
		return LoseAsAttacker, nil
	default:
		return 0, fmt.Errorf("unknown role %q", role)
	}
}

// updateWinLossStats 更新胜负统计和连胜/连败
func updateWinLossStats(stats *PlayerStats, won bool) {
	if won {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
}

// calculateStreakBonus 计算连胜加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordRound 记录一名玩家在一局中的角色、胜负和赢墩数
func (lm *LeaderboardManager) RecordRound(ctx context.Context, name, role string, won bool, tricks int) error {
	stats, err := lm.GetPlayerStats(ctx, name)
	if err != nil {
		return err
	}
	now := lm.now().Unix()
	if stats == nil {
		stats = &PlayerStats{PlayerName: name, CreatedAt: now}
	}

	scoreChange, err := updateRoleStats(stats, role, won)
	if err != nil {
		return err
	}
	stats.TotalRounds++
	stats.Tricks += tricks
	stats.LastPlayedAt = now
	updateWinLossStats(stats, won)

	scoreChange += calculateStreakBonus(stats.CurrentStreak)
	stats.Score = max(0, stats.Score+scoreChange)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.UpdateLeaderboard(ctx, stats)
}

func (lm *LeaderboardManager) periodKey(period Period) string {
	now := lm.now()
	switch period {
	case PeriodDaily:
		return dailyLeaderboard + now.Format("2006-01-02")
	case PeriodWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
	default:
		return leaderboardKey
	}
}

// UpdateLeaderboard 更新总榜、日榜和周榜
func (lm *LeaderboardManager) UpdateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	z := redis.Z{Score: float64(stats.Score), Member: stats.PlayerName}

	pipe := lm.redis.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, z)
	daily := lm.periodKey(PeriodDaily)
	pipe.ZAdd(ctx, daily, z)
	pipe.Expire(ctx, daily, 48*time.Hour)
	weekly := lm.periodKey(PeriodWeekly)
	pipe.ZAdd(ctx, weekly, z)
	pipe.Expire(ctx, weekly, 8*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetLeaderboard 获取排行榜前 limit 名
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, period Period, limit int) ([]LeaderboardEntry, error) {
	results, err := lm.redis.ZRevRangeWithScores(ctx, lm.periodKey(period), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalRounds > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalRounds) * 100
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
