package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func statuses(r GuessResult) []LetterStatus {
	out := make([]LetterStatus, len(r))
	for i, cell := range r {
		out[i] = cell.Status
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		secret string
		want   []LetterStatus
	}{
		{
			name:   "exact match",
			guess:  "CRANE",
			secret: "CRANE",
			want:   []LetterStatus{StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect},
		},
		{
			name:   "no letters shared",
			guess:  "DUMMY",
			secret: "TREAT",
			want:   []LetterStatus{StatusAbsent, StatusAbsent, StatusAbsent, StatusAbsent, StatusAbsent},
		},
		{
			name:   "duplicate guess letter with single secret occurrence",
			guess:  "LLAMA",
			secret: "ALARM",
			// Second L is an exact match, so the first L finds no remaining
			// L in the secret and must be absent, not present.
			want: []LetterStatus{StatusAbsent, StatusCorrect, StatusCorrect, StatusPresent, StatusPresent},
		},
		{
			name:   "duplicate secret letters consumed left to right",
			guess:  "SPEED",
			secret: "ERASE",
			want:   []LetterStatus{StatusPresent, StatusAbsent, StatusPresent, StatusPresent, StatusAbsent},
		},
		{
			name:   "present count capped by secret occurrences",
			guess:  "GEESE",
			secret: "AGREE",
			// Final E is exact; secret has one E left for three guessed Es.
			want: []LetterStatus{StatusPresent, StatusPresent, StatusAbsent, StatusAbsent, StatusCorrect},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.guess, tt.secret)
			assert.Equal(t, tt.want, statuses(got))
			for i := range tt.guess {
				assert.Equal(t, string(tt.guess[i]), got[i].Letter)
			}
		})
	}
}

func TestGuessResultSolved(t *testing.T) {
	assert.True(t, Evaluate("CRANE", "CRANE").Solved())
	assert.False(t, Evaluate("CRATE", "CRANE").Solved())
	assert.False(t, GuessResult{}.Solved())
}
