package scoring

import (
	"time"
)

// Config holds configurable scoring constants (defaults match requirements).
type Config struct {
	BaseScore          int     // default: 100
	MaxTimeBonus       int     // default: 50
	EfficiencyBonusPct float64 // default: 0.10 (10% of base per unused guess)
	MaxEfficiencyBonus float64 // default: 0.50 (50% cap)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseScore:          100,
		MaxTimeBonus:       50,
		EfficiencyBonusPct: 0.10,
		MaxEfficiencyBonus: 0.50,
	}
}

// Engine computes server-side scores with configurable constants.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// SolveScore computes points for solving the word.
// Formula: base + time_bonus + efficiency_bonus
// - base: always awarded on a solve
// - time_bonus: max when solved instantly, decays linearly to 0 at the deadline
// - efficiency_bonus: percentage of base per unused guess, capped
func (e *Engine) SolveScore(
	timeRemaining time.Duration,
	matchDuration time.Duration,
	guessesUsed int,
	guessAllowance int,
) int {
	score := e.config.BaseScore

	// Time bonus: linear decay from max to 0
	if matchDuration > 0 {
		timeRatio := float64(timeRemaining) / float64(matchDuration)
		if timeRatio > 1.0 {
			timeRatio = 1.0
		}
		if timeRatio < 0.0 {
			timeRatio = 0.0
		}
		score += int(float64(e.config.MaxTimeBonus) * timeRatio)
	}

	// Efficiency bonus: percentage of base per unused guess, capped
	unused := guessAllowance - guessesUsed
	if unused > 0 {
		multiplier := float64(unused) * e.config.EfficiencyBonusPct
		if multiplier > e.config.MaxEfficiencyBonus {
			multiplier = e.config.MaxEfficiencyBonus
		}
		score += int(float64(e.config.BaseScore) * multiplier)
	}

	return score
}
