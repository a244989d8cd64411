package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/convert"
)

// Run 驱动牌桌直到 ctx 结束或牌桌被放弃
//
// 引擎只在这个 goroutine 中被访问。等待座位答复时阻塞在 select 上，
// 其他座位的消息经各自的写泵发送，不受等待影响。
func (ts *TableSession) Run(ctx context.Context) error {
	defer ts.shutdown()

	log.Printf("🎮 牌桌 %s 开局: %s", ts.ID, ts.names())
	for seat := range ts.seats {
		ts.sendState(seat)
	}

	for {
		if err := ctx.Err(); err != nil {
			ts.save(context.Background())
			return err
		}
		ts.drain()
		if !ts.anyHumanOnline() {
			if err := ts.waitForPlayers(ctx); err != nil {
				return err
			}
			continue
		}

		status, err := ts.engine.Advance()
		if err != nil && (status != table.StatusWaiting || ts.seats[ts.engine.Pending().Seat].Bot) {
			return fmt.Errorf("table %s: %w", ts.ID, err)
		}
		switch status {
		case table.StatusProgress:
			ts.saveIfMoved(ctx)
		case table.StatusWaiting:
			ts.saveIfMoved(ctx)
			if err := ts.await(ctx); err != nil {
				return err
			}
		case table.StatusRoundOver:
			if err := ts.endRound(ctx); err != nil {
				return err
			}
		}
	}
}

func (ts *TableSession) shutdown() {
	for _, s := range ts.seats {
		if s.Conn != nil {
			s.Conn.Close()
			s.Conn = nil
		}
	}
	close(ts.done)
}

// await 等待挂起请求的答复；座位离线或超时时按托管策略代答
func (ts *TableSession) await(ctx context.Context) error {
	req := ts.engine.Pending()
	if req == nil {
		return nil
	}
	if !ts.seats[req.Seat].online() {
		return ts.fallback(req, "离线")
	}
	ts.ask(req)

	timer := time.NewTimer(ts.opts.TurnTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case r := <-ts.replies:
			if r.seat != req.Seat {
				ts.sendError(r.seat, apperrors.ErrNotYourTurn)
				continue
			}
			if ts.submit(req, &r) {
				return nil
			}
			req = ts.engine.Pending()
			ts.ask(req)

		case a := <-ts.attaches:
			ts.attach(a)
			if a.seat == req.Seat {
				ts.ask(req)
			} else {
				ts.sendState(a.seat)
			}

		case l := <-ts.leaves:
			ts.leave(l)
			if !ts.seats[req.Seat].online() {
				return ts.fallback(req, "离线")
			}

		case <-timer.C:
			return ts.fallback(req, "超时")
		}
	}
}

// submit 解析并提交答复，非法时把错误发回该座位
func (ts *TableSession) submit(req *table.Request, r *reply) bool {
	a, err := convert.MessageToAnswer(req.Kind, &r.msg)
	if err == nil {
		err = ts.engine.Submit(r.seat, a)
	}
	if err != nil {
		ts.sendError(r.seat, err)
		return false
	}
	return true
}

// fallback 托管代答
func (ts *TableSession) fallback(req *table.Request, reason string) error {
	a, err := player.DefaultAction(req, ts.engine.View(), ts.engine.Hand(req.Seat))
	if err != nil {
		return fmt.Errorf("table %s seat %d: %w", ts.ID, req.Seat, err)
	}
	log.Printf("⏰ 牌桌 %s 座位 %d %s，托管代答 %s", ts.ID, req.Seat, reason, req.Kind)
	return ts.engine.Submit(req.Seat, a)
}

// ask 向座位发送当前状态和请求
func (ts *TableSession) ask(req *table.Request) {
	ts.sendState(req.Seat)
	ts.seats[req.Seat].send(convert.RequestToMessage(req, ts.opts.TurnTimeout))
}

// drain 处理等待之外到达的消息
func (ts *TableSession) drain() {
	for {
		select {
		case r := <-ts.replies:
			ts.sendError(r.seat, apperrors.ErrUnexpectedAnswer)
		case a := <-ts.attaches:
			ts.attach(a)
			ts.sendState(a.seat)
		case l := <-ts.leaves:
			ts.leave(l)
		default:
			return
		}
	}
}

func (ts *TableSession) attach(a attachment) {
	s := ts.seats[a.seat]
	if s.Conn != nil && s.Conn != a.conn {
		s.Conn.Close()
	}
	s.Conn = a.conn

	msg := protocol.NewEvent(protocol.EvtReconnected, a.seat)
	msg.Token = s.Token
	msg.Name = s.Name
	s.send(msg)

	ts.broadcast(protocol.NewEvent(protocol.EvtSeatOnline, a.seat))
	log.Printf("🔄 牌桌 %s 座位 %d (%s) 重连", ts.ID, a.seat, s.Name)
}

func (ts *TableSession) leave(l attachment) {
	s := ts.seats[l.seat]
	if s.Conn == nil || s.Conn != l.conn {
		return
	}
	s.Conn = nil
	ts.broadcast(protocol.NewEvent(protocol.EvtSeatOffline, l.seat))
	log.Printf("👋 牌桌 %s 座位 %d (%s) 掉线，改为托管", ts.ID, l.seat, s.Name)
}

func (ts *TableSession) anyHumanOnline() bool {
	for _, s := range ts.seats {
		if !s.Bot && s.Conn != nil {
			return true
		}
	}
	return false
}

// waitForPlayers 所有真人离线时暂停，超过重连时限放弃牌桌
func (ts *TableSession) waitForPlayers(ctx context.Context) error {
	ts.save(ctx)
	timer := time.NewTimer(ts.opts.ReconnectTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-ts.attaches:
			ts.attach(a)
			ts.sendState(a.seat)
			return nil
		case <-ts.leaves:
		case <-ts.replies:
		case <-timer.C:
			log.Printf("🗑️ 牌桌 %s 无人在线，已放弃", ts.ID)
			if ts.opts.Store != nil {
				if err := ts.opts.Store.DeleteSnapshot(ctx, ts.ID); err != nil {
					log.Printf("删除牌桌快照失败: %v", err)
				}
			}
			return ErrAbandoned
		}
	}
}

// endRound 记录结果，等待各座位确认后开始下一局
func (ts *TableSession) endRound(ctx context.Context) error {
	if res := ts.engine.Result(); res != nil && ts.recordedRound < ts.engine.Round() {
		ts.record(ctx, res)
		ts.recordedRound = ts.engine.Round()
	}
	ts.readyBarrier(ctx)
	if ctx.Err() != nil {
		// 保持在结算阶段，恢复后重新确认
		return nil
	}
	return ts.engine.NextRound()
}

// readyBarrier 等待所有在线座位回复 ready，超时视为已确认
func (ts *TableSession) readyBarrier(ctx context.Context) {
	waiting := make(map[int]bool)
	askReady := func(seat int) {
		s := ts.seats[seat]
		if s.Bot || s.Conn == nil {
			return
		}
		waiting[seat] = true
		msg := protocol.NewRequest(protocol.ReqReady, seat)
		msg.Timeout = int(ts.opts.ReadyTimeout.Seconds())
		s.send(msg)
	}
	for seat := range ts.seats {
		askReady(seat)
	}

	timer := time.NewTimer(ts.opts.ReadyTimeout)
	defer timer.Stop()

	for len(waiting) > 0 {
		select {
		case <-ctx.Done():
			return
		case r := <-ts.replies:
			delete(waiting, r.seat)
		case a := <-ts.attaches:
			ts.attach(a)
			ts.sendState(a.seat)
			askReady(a.seat)
		case l := <-ts.leaves:
			ts.leave(l)
			if ts.seats[l.seat].Conn == nil {
				delete(waiting, l.seat)
			}
		case <-timer.C:
			return
		}
	}
}
