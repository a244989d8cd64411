package sound

// Cue 提示音名，对应音效目录下的文件名（不含扩展名）
type Cue string

const (
	CueYourTurn Cue = "turn"  // 轮到自己
	CueCardPlay Cue = "play"  // 有人出牌
	CueTrump    Cue = "trump" // 将牌已破
	CueTrick    Cue = "trick" // 一墩结算
	CueWin      Cue = "win"   // 本方获胜
	CueLose     Cue = "lose"  // 本方落败
	CueError    Cue = "error" // 输入被拒绝
)

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"
