package session

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/server/storage"
)

// 持久化操作的超时
const storeTimeout = 3 * time.Second

func (ts *TableSession) mark() progressMark {
	return progressMark{
		round:        ts.engine.Round(),
		currentRound: ts.engine.View().CurrentRound(),
		phase:        ts.engine.Phase(),
	}
}

// saveIfMoved 阶段变化或完成一墩后保存快照
func (ts *TableSession) saveIfMoved(ctx context.Context) {
	if m := ts.mark(); m != ts.saved {
		ts.save(ctx)
	}
}

func (ts *TableSession) save(ctx context.Context) {
	ts.saved = ts.mark()
	if ts.opts.Store == nil {
		return
	}
	data, err := ts.Record()
	if err != nil {
		log.Printf("序列化牌桌 %s 失败: %v", ts.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := ts.opts.Store.SaveSnapshot(ctx, ts.ID, data); err != nil {
		log.Printf("保存牌桌 %s 快照失败: %v", ts.ID, err)
	}
}

// record 保存局记录并更新真人玩家的战绩
func (ts *TableSession) record(ctx context.Context, res *table.RoundResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if ts.opts.Store != nil {
		rec := &storage.RoundRecord{
			TableID:    ts.ID,
			Round:      ts.engine.Round(),
			Voided:     res.Voided,
			Bid:        int(res.Bid),
			Declarer:   res.Declarer,
			Partner:    res.Partner,
			Winner:     res.Winner.String(),
			Tricks:     res.Scores[:],
			FinishedAt: time.Now().Unix(),
		}
		for _, s := range ts.seats {
			rec.Players = append(rec.Players, s.Name)
		}
		if err := ts.opts.Store.AppendRound(ctx, rec); err != nil {
			log.Printf("保存牌桌 %s 局记录失败: %v", ts.ID, err)
		}
	}

	if ts.opts.Recorder == nil || res.Voided {
		return
	}
	for i, s := range ts.seats {
		if s.Bot {
			continue
		}
		role := res.Roles[i]
		if err := ts.opts.Recorder.RecordRound(ctx, s.Name, role.String(), won(role, res.Winner), res.Scores[i]); err != nil {
			log.Printf("记录 %s 战绩失败: %v", s.Name, err)
		}
	}
}

// won 该角色是否属于获胜方
func won(role table.Role, winner table.Side) bool {
	switch role {
	case table.RoleDeclarer, table.RolePartner:
		return winner == table.SideDeclarer
	case table.RoleAttacker:
		return winner == table.SideAttacker
	default:
		return false
	}
}
