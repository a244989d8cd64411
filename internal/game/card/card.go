package card

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

// Card 一张牌，编码为 花色*100 + 点数（如 黑桃A = 414）
type Card int

const (
	Club    Suit = iota + 1 // 梅花
	Diamond                 // 方块
	Heart                   // 红心
	Spade                   // 黑桃
	NoTrump                 // 无将，只出现在叫牌中
)

// Suits 四种真实花色，按从小到大排列
var Suits = []Suit{Club, Diamond, Heart, Spade}

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Club:    "♣",
	Diamond: "♦",
	Heart:   "♥",
	Spade:   "♠",
	NoTrump: "NT",
}

// suitNames 花色名称映射表
var suitNames = map[Suit]string{
	Club:    "Clubs",
	Diamond: "Diamonds",
	Heart:   "Hearts",
	Spade:   "Spades",
	NoTrump: "No Trump",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Name 返回花色的英文全名
func (s Suit) Name() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// IsRed 红色花色
func (s Suit) IsRed() bool {
	return s == Diamond || s == Heart
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Rank2:  "2",
	Rank3:  "3",
	Rank4:  "4",
	Rank5:  "5",
	Rank6:  "6",
	Rank7:  "7",
	Rank8:  "8",
	Rank9:  "9",
	Rank10: "10",
	RankJ:  "J",
	RankQ:  "Q",
	RankK:  "K",
	RankA:  "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

const (
	// Empty 空位（当前墩中尚未出牌的座位）
	Empty Card = 0
	// Lowest 最小的牌：梅花2
	Lowest Card = 102
	// Highest 最大的牌：黑桃A
	Highest Card = 414

	DeckSize = 52
	HandSize = 13
)

// New 由花色和点数构造一张牌
func New(s Suit, r Rank) Card {
	return Card(int(s)*100 + int(r))
}

// Suit 花色
func (c Card) Suit() Suit { return Suit(int(c) / 100) }

// Rank 点数
func (c Card) Rank() Rank { return Rank(int(c) % 100) }

// Valid 是否为 52 张牌中的一张
func (c Card) Valid() bool {
	s, r := c.Suit(), c.Rank()
	return s >= Club && s <= Spade && r >= Rank2 && r <= RankA
}

func (c Card) String() string {
	if !c.Valid() {
		return "--"
	}
	return c.Rank().String() + c.Suit().String()
}

// Name 返回 "Q Spades" 形式的名称
func (c Card) Name() string {
	if !c.Valid() {
		return "--"
	}
	return c.Rank().String() + " " + c.Suit().Name()
}

// charToSuit 输入字符对应的花色
var charToSuit = map[byte]Suit{
	'c': Club,
	'd': Diamond,
	'h': Heart,
	's': Spade,
	'n': NoTrump,
}

// inputToRank 输入字符串对应的点数
var inputToRank = map[string]Rank{
	"2":  Rank2,
	"3":  Rank3,
	"4":  Rank4,
	"5":  Rank5,
	"6":  Rank6,
	"7":  Rank7,
	"8":  Rank8,
	"9":  Rank9,
	"10": Rank10,
	"t":  Rank10,
	"j":  RankJ,
	"q":  RankQ,
	"k":  RankK,
	"a":  RankA,
}

// SuitFromChar 解析花色字母 c/d/h/s/n
func SuitFromChar(ch byte) (Suit, error) {
	if s, ok := charToSuit[ch|0x20]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("无法识别的花色: %c", ch)
}

// Parse 解析 "qs"、"10h"、"AH" 这类输入为一张牌，点数在前花色在后
func Parse(input string) (Card, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if len(in) < 2 {
		return Empty, fmt.Errorf("无法识别的牌: %q", input)
	}

	suit, err := SuitFromChar(in[len(in)-1])
	if err != nil || suit == NoTrump {
		return Empty, fmt.Errorf("无法识别的牌: %q", input)
	}
	rank, ok := inputToRank[in[:len(in)-1]]
	if !ok {
		return Empty, fmt.Errorf("无法识别的点数: %q", input)
	}
	return New(suit, rank), nil
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 创建 52 张牌，按牌值升序
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for r := Rank2; r <= RankA; r++ {
			deck = append(deck, New(s, r))
		}
	}
	return deck
}

// Shuffle 洗牌，r 为 nil 时使用全局随机源
func (d Deck) Shuffle(r *rand.Rand) {
	swap := func(i, j int) {
		d[i], d[j] = d[j], d[i]
	}
	if r == nil {
		rand.Shuffle(len(d), swap)
		return
	}
	r.Shuffle(len(d), swap)
}
