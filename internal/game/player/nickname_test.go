package player

import (
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var suffixed = regexp.MustCompile(`^[A-Za-z]+#\d{4}$`)

func TestNamer_SameSeedSameNames(t *testing.T) {
	t.Parallel()

	a := NewNamer(rand.NewPCG(1, 2))
	b := NewNamer(rand.NewPCG(1, 2))
	for range 5 {
		assert.Equal(t, a.Next(nil), b.Next(nil))
	}
}

func TestNamer_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		taken func() func(string) bool
		check func(t *testing.T, got string)
	}{
		{
			name:  "没有占用",
			taken: func() func(string) bool { return nil },
			check: func(t *testing.T, got string) {
				assert.NotContains(t, got, "#")
			},
		},
		{
			// 前几次候选都被占用，之后才放行
			name: "避开已占用",
			taken: func() func(string) bool {
				calls := 0
				return func(string) bool {
					calls++
					return calls <= 2
				}
			},
			check: func(t *testing.T, got string) {
				assert.NotContains(t, got, "#")
			},
		},
		{
			name: "普通名字用完后加后缀",
			taken: func() func(string) bool {
				return func(name string) bool { return !suffixed.MatchString(name) }
			},
			check: func(t *testing.T, got string) {
				assert.Regexp(t, suffixed, got)
			},
		},
		{
			// 全部冲突时仍返回一个名字
			name: "全部占用",
			taken: func() func(string) bool {
				return func(string) bool { return true }
			},
			check: func(t *testing.T, got string) {
				assert.Regexp(t, suffixed, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := NewNamer(rand.NewPCG(42, 7))
			tt.check(t, n.Next(tt.taken()))
		})
	}
}

func TestNamer_RandomSeed(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, NewNamer(nil).Next(nil))
}
