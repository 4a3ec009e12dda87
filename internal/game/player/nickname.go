package player

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var (
	nickAdjectives = []string{
		"Lucky", "Bold", "Velvet", "Crystal", "Midnight",
		"Golden", "Silver", "Neon", "Steady", "Sly",
		"Daring", "Quiet", "Royal", "Wild", "Sharp", "Mellow",
	}
	nickNouns = []string{
		"Ace", "Jack", "Dealer", "Shark", "Roller",
		"Joker", "Chip", "Fox", "Raven", "Tiger",
		"Lynx", "Falcon", "Otter", "Panda", "Heron", "Corgi",
	}
)

const (
	// 不带后缀的尝试次数，之后改用 "名字#1234"
	plainAttempts  = 8
	suffixAttempts = 64
)

// Namer 给没报名字的访客起昵称，避开 taken 判定为已占用的名字。
// 相同种子产生相同序列。
type Namer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNamer src 为 nil 时随机播种
func NewNamer(src rand.Source) *Namer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Namer{rng: rand.New(src)}
}

func (n *Namer) pick() string {
	return nickAdjectives[n.rng.IntN(len(nickAdjectives))] + nickNouns[n.rng.IntN(len(nickNouns))]
}

// Next 返回一个未被占用的昵称。taken 为 nil 时不检查。
// 后缀也全部冲突时返回最后一个候选。
func (n *Namer) Next(taken func(name string) bool) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	for range plainAttempts {
		name := n.pick()
		if taken == nil || !taken(name) {
			return name
		}
	}

	var name string
	for range suffixAttempts {
		name = fmt.Sprintf("%s#%04d", n.pick(), n.rng.IntN(10000))
		if !taken(name) {
			break
		}
	}
	return name
}
