package rule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
)

// Bid 叫牌，编码为 墩数*10 + 花色（5 为无将），0 表示不叫
type Bid int

const (
	Pass   Bid = 0
	MinBid Bid = 11 // 1 梅花
	MaxBid Bid = 75 // 7 无将

	MaxRounds = 7
	// BaseTricks 庄家方目标墩数 = 叫牌墩数 + 6
	BaseTricks = 6
	// TargetSum 双方目标墩数之和
	TargetSum = 14
	// PassesToEnd 加价后连续多少次不叫结束叫牌
	PassesToEnd = 3
	// ReshuffleThreshold 点数低于此值的玩家可以要求重新洗牌
	ReshuffleThreshold = 4
)

// NewBid 由墩数和花色构造叫牌
func NewBid(rounds int, s card.Suit) Bid {
	return Bid(rounds*10 + int(s))
}

// Rounds 叫牌墩数
func (b Bid) Rounds() int { return int(b) / 10 }

// Suit 将牌花色（可能为 card.NoTrump）
func (b Bid) Suit() card.Suit { return card.Suit(int(b) % 10) }

// IsPass 是否为不叫
func (b Bid) IsPass() bool { return b == Pass }

// Valid 墩数 1-7，花色 1-5
func (b Bid) Valid() bool {
	r, s := b.Rounds(), b.Suit()
	return r >= 1 && r <= MaxRounds && s >= card.Club && s <= card.NoTrump
}

func (b Bid) String() string {
	if b.IsPass() {
		return "Pass"
	}
	if !b.Valid() {
		return strconv.Itoa(int(b))
	}
	return fmt.Sprintf("%d %s", b.Rounds(), b.Suit().Name())
}

// ParseBid 解析 "4d"、"6n" 这类输入，空字符串或 "pass" 表示不叫
func ParseBid(input string) (Bid, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" || in == "pass" || in == "p" {
		return Pass, nil
	}
	if len(in) != 2 || in[0] < '1' || in[0] > '7' {
		return Pass, fmt.Errorf("无法识别的叫牌: %q", input)
	}
	suit, err := card.SuitFromChar(in[1])
	if err != nil {
		return Pass, fmt.Errorf("无法识别的叫牌: %q", input)
	}
	return NewBid(int(in[0]-'0'), suit), nil
}

// CheckBid 校验叫牌：不叫总是合法，否则必须合法且严格大于当前叫牌
func CheckBid(current, b Bid) error {
	if b.IsPass() {
		return nil
	}
	if !b.Valid() {
		return apperrors.ErrBidOutOfRange
	}
	if b <= current {
		return apperrors.ErrBidTooLow
	}
	return nil
}

// NextBids 所有比当前叫牌大的合法叫牌
func NextBids(current Bid) []Bid {
	var bids []Bid
	for r := 1; r <= MaxRounds; r++ {
		for s := card.Club; s <= card.NoTrump; s++ {
			if b := NewBid(r, s); b > current {
				bids = append(bids, b)
			}
		}
	}
	return bids
}

// Targets 庄家方与防守方各自需要赢的墩数
func Targets(b Bid) (declarer, attacker int) {
	declarer = b.Rounds() + BaseTricks
	return declarer, TargetSum - declarer
}

// CheckPartner 叫伙伴的牌必须是一张真实的牌且不在自己手中
func CheckPartner(c card.Card, hand []card.Card) error {
	if !c.Valid() {
		return apperrors.ErrInvalidCard
	}
	for _, h := range hand {
		if h == c {
			return apperrors.ErrPartnerInHand
		}
	}
	return nil
}
