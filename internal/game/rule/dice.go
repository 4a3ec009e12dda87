package rule

import (
	"math/rand/v2"
)

// BetType 下注类型
type BetType string

const (
	BetMain  BetType = "main" // 21 点主注
	BetBig   BetType = "big"
	BetSmall BetType = "small"
	BetOdd   BetType = "odd"
	BetEven  BetType = "even"
)

const (
	diceFaces = 6
	bigMin    = 11
	bigMax    = 17
	smallMin  = 4
	smallMax  = 10
)

// Roll 三颗骰子的点数
type Roll [3]int

// RollDice 掷三颗骰子；rng 为 nil 时使用全局随机源
func RollDice(rng *rand.Rand) Roll {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	var r Roll
	for i := range r {
		r[i] = intN(diceFaces) + 1
	}
	return r
}

// Total 点数和，范围 3-18
func (r Roll) Total() int {
	return r[0] + r[1] + r[2]
}

// IsTriple 三颗相同（围骰），不影响结算
func (r Roll) IsTriple() bool {
	return r[0] == r[1] && r[1] == r[2]
}

// IsDiceBet 是否为骰宝支持的下注类型
func IsDiceBet(bt BetType) bool {
	switch bt {
	case BetBig, BetSmall, BetOdd, BetEven:
		return true
	}
	return false
}

// DiceBetWins 判断某类下注是否命中
func DiceBetWins(bt BetType, r Roll) bool {
	total := r.Total()
	switch bt {
	case BetBig:
		return total >= bigMin && total <= bigMax
	case BetSmall:
		return total >= smallMin && total <= smallMax
	case BetOdd:
		return total%2 == 1
	case BetEven:
		return total%2 == 0
	}
	return false
}
