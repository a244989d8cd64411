// Package input 把输入框中的文字解析为对请求的答复
package input

import (
	"errors"
	"strconv"
	"strings"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

var ErrUnknownVote = errors.New("请输入 y 或 n")

var yes = map[string]bool{"y": true, "yes": true, "是": true}
var no = map[string]bool{"": true, "n": true, "no": true, "否": true}

// ParseAnswer 按请求类型解析输入
//
// 重洗: y/n（空为 n）；叫牌: "3h"、"2n"，空或 p 为不叫；
// 伙伴和出牌: "qs"、"10h"。出牌时也可以输入合法牌列表中的序号。
func ParseAnswer(req *table.Request, text string) (table.Answer, error) {
	in := strings.ToLower(strings.TrimSpace(text))
	a := table.Answer{Kind: req.Kind}

	var err error
	switch req.Kind {
	case table.RequestReshuffle:
		switch {
		case yes[in]:
			a.Vote = true
		case no[in]:
		default:
			err = ErrUnknownVote
		}
	case table.RequestBid:
		a.Bid, err = rule.ParseBid(in)
	case table.RequestPartner:
		a.Card, err = card.Parse(in)
	case table.RequestPlay:
		if i, convErr := strconv.Atoi(in); convErr == nil && i >= 1 && i <= len(req.Legal) {
			a.Card = req.Legal[i-1]
			break
		}
		a.Card, err = card.Parse(in)
	default:
		err = errors.New("没有需要答复的请求")
	}
	return a, err
}

// FormatAnswer 把答复写回输入框能解析的形式
func FormatAnswer(a table.Answer) string {
	switch a.Kind {
	case table.RequestReshuffle:
		if a.Vote {
			return "y"
		}
		return "n"
	case table.RequestBid:
		if a.Bid.IsPass() {
			return "p"
		}
		return strconv.Itoa(a.Bid.Rounds()) + suitChar(a.Bid.Suit())
	default:
		return FormatCard(a.Card)
	}
}

// FormatCard "qs"、"10h" 形式
func FormatCard(c card.Card) string {
	if !c.Valid() {
		return ""
	}
	return strings.ToLower(c.Rank().String()) + suitChar(c.Suit())
}

func suitChar(s card.Suit) string {
	switch s {
	case card.Club:
		return "c"
	case card.Diamond:
		return "d"
	case card.Heart:
		return "h"
	case card.Spade:
		return "s"
	default:
		return "n"
	}
}
