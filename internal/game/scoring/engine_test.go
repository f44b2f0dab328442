package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSolveScore(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	duration := 180 * time.Second

	tests := []struct {
		name          string
		timeRemaining time.Duration
		guessesUsed   int
		allowance     int
		want          int
	}{
		{
			name:          "instant solve on first guess",
			timeRemaining: duration,
			guessesUsed:   1,
			allowance:     6,
			want:          200, // 100 base + 50 time + 50 capped efficiency
		},
		{
			name:          "last-second solve on last guess",
			timeRemaining: 0,
			guessesUsed:   6,
			allowance:     6,
			want:          100,
		},
		{
			name:          "half time, two guesses spare",
			timeRemaining: 90 * time.Second,
			guessesUsed:   4,
			allowance:     6,
			want:          145, // 100 + 25 + 20
		},
		{
			name:          "remaining time clamped to duration",
			timeRemaining: 500 * time.Second,
			guessesUsed:   6,
			allowance:     6,
			want:          150,
		},
		{
			name:          "extended allowance counts unused guesses",
			timeRemaining: 0,
			guessesUsed:   5,
			allowance:     7,
			want:          120, // 100 + 0 + 20
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eng.SolveScore(tt.timeRemaining, duration, tt.guessesUsed, tt.allowance)
			assert.Equal(t, tt.want, got)
		})
	}
}
