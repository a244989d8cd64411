package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	tableKeyPrefix = "table:"
	snapshotSuffix = ":snapshot"
	roundsSuffix   = ":rounds"

	// 牌局快照过期时间
	snapshotExpiration = 2 * time.Hour
	// 每张牌桌保留的局记录数
	maxRoundRecords = 200
)

// RoundRecord 一局的结果记录
type RoundRecord struct {
	TableID    string   `json:"table_id"`
	Round      int      `json:"round"`
	Voided     bool     `json:"voided"`
	Bid        int      `json:"bid"`
	Declarer   int      `json:"declarer"`
	Partner    int      `json:"partner"`
	Winner     string   `json:"winner"`
	Tricks     []int    `json:"tricks"`
	Players    []string `json:"players"`
	FinishedAt int64    `json:"finished_at"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func snapshotKey(tableID string) string { return tableKeyPrefix + tableID + snapshotSuffix }
func roundsKey(tableID string) string   { return tableKeyPrefix + tableID + roundsSuffix }

// --- 牌局快照 ---

// SaveSnapshot 保存牌局快照（已序列化的 JSON）
func (rs *RedisStore) SaveSnapshot(ctx context.Context, tableID string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return rs.client.Set(ctx, snapshotKey(tableID), data, snapshotExpiration).Err()
}

// LoadSnapshot 加载牌局快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadSnapshot(ctx context.Context, tableID string) ([]byte, error) {
	data, err := rs.client.Get(ctx, snapshotKey(tableID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// DeleteSnapshot 删除牌局快照
func (rs *RedisStore) DeleteSnapshot(ctx context.Context, tableID string) error {
	return rs.client.Del(ctx, snapshotKey(tableID)).Err()
}

// TableIDs 所有存有快照的牌桌
func (rs *RedisStore) TableIDs(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, tableKeyPrefix+"*"+snapshotSuffix).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = strings.TrimSuffix(strings.TrimPrefix(key, tableKeyPrefix), snapshotSuffix)
	}
	return ids, nil
}

// --- 局记录 ---

// AppendRound 追加一局记录，只保留最近 maxRoundRecords 条
func (rs *RedisStore) AppendRound(ctx context.Context, rec *RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化局记录失败: %w", err)
	}

	key := roundsKey(rec.TableID)
	pipe := rs.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -maxRoundRecords, -1)
	_, err = pipe.Exec(ctx)
	return err
}

// Rounds 最近 limit 局记录，按时间先后
func (rs *RedisStore) Rounds(ctx context.Context, tableID string, limit int) ([]RoundRecord, error) {
	items, err := rs.client.LRange(ctx, roundsKey(tableID), int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]RoundRecord, 0, len(items))
	for _, item := range items {
		var rec RoundRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("反序列化局记录失败: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
