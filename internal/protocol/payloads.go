package protocol

// --- 通用数据结构 ---

// SeatInfo 座位信息
type SeatInfo struct {
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"` // 伙伴揭晓前只有庄家有身份
	Tricks   int    `json:"tricks"`         // 本局赢得的墩数
	HandSize int    `json:"hand_size"`
	Online   bool   `json:"online"`
	Bot      bool   `json:"bot"`
}

// TeamDTO 一方的目标和进度
type TeamDTO struct {
	Target int `json:"target"`
	Wins   int `json:"wins"`
}

// TrickDTO 一墩
type TrickDTO struct {
	Leader int   `json:"leader"`
	Cards  []int `json:"cards"` // 按座位号排列
	Winner int   `json:"winner"`
}

// ResultDTO 一局结果
type ResultDTO struct {
	Winner   string `json:"winner"` // declarer/attacker/none
	Voided   bool   `json:"voided"`
	Bid      int    `json:"bid"`
	Declarer int    `json:"declarer"`
	Partner  int    `json:"partner"`
	Tricks   []int  `json:"tricks"`
}

// GameStateDTO 某个座位可见的完整状态（用于重连恢复和界面刷新）
type GameStateDTO struct {
	Phase           string     `json:"phase"`
	Round           int        `json:"round"`
	YourSeat        int        `json:"your_seat"`
	Hand            []int      `json:"hand"` // 只有自己的手牌
	CurrentSeat     int        `json:"current_seat"`
	Bid             int        `json:"bid"`
	BidLeader       int        `json:"bid_leader"`
	TrumpSuit       int        `json:"trump_suit"`
	TrumpBroken     bool       `json:"trump_broken"`
	PartnerCard     int        `json:"partner_card"`
	PartnerRevealed bool       `json:"partner_revealed"`
	PartnerSeat     int        `json:"partner_seat"`
	LeadingPlayer   int        `json:"leading_player"`
	PlayedCards     []int      `json:"played_cards"`
	LastTrick       *TrickDTO  `json:"last_trick,omitempty"`
	Declarer        TeamDTO    `json:"declarer"`
	Attacker        TeamDTO    `json:"attacker"`
	CurrentRound    int        `json:"current_round"`
	ScoreLine       string     `json:"score_line"`
	Seats           []SeatInfo `json:"seats"`
}
