// Package payout 结算表。返回值是归还给玩家的总额（含本金），
// 本金在下注时已经扣除，输掉的注返回 0。
package payout

import (
	"github.com/Uwaniumnya/crystal-social/internal/game/rule"
)

// Outcome 21 点单手结果
type Outcome string

const (
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeWin       Outcome = "win"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
	OutcomeBust      Outcome = "bust"
)

// 赔率，以半倍为单位避免浮点
const (
	naturalHalves = 5 // 2.5x
	winHalves     = 4 // 2x
	pushHalves    = 2 // 1x
	diceHalves    = 4 // 2x
)

// Blackjack 结算 21 点单手：未被庄家黑杰克匹配的黑杰克 2.5 倍，
// 庄家爆牌或点数更高 2 倍，平局退回本金，其余没收。
func Blackjack(player, dealer *rule.Hand, stake int64) (Outcome, int64) {
	switch {
	case player.IsBust():
		return OutcomeBust, 0
	case player.IsNatural() && !dealer.IsNatural():
		return OutcomeBlackjack, halves(stake, naturalHalves)
	case dealer.IsBust() || player.Value() > dealer.Value():
		return OutcomeWin, halves(stake, winHalves)
	case player.Value() == dealer.Value():
		return OutcomePush, halves(stake, pushHalves)
	default:
		return OutcomeLose, 0
	}
}

// Dice 结算骰宝单注，所有类型统一 2 倍
func Dice(bt rule.BetType, roll rule.Roll, stake int64) int64 {
	if !rule.DiceBetWins(bt, roll) {
		return 0
	}
	return halves(stake, diceHalves)
}

// halves 按半倍计算，2.5 倍时奇数本金向下取整
func halves(stake int64, n int64) int64 {
	return stake * n / 2
}
