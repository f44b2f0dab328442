package game

// Evaluate scores a guess against the secret with the standard two-pass
// algorithm. Both inputs must be uppercase A-Z of equal length; callers
// validate before evaluating.
//
// Pass 1 marks exact matches correct and counts the remaining secret letters.
// Pass 2 resolves present/absent against those counts, so the total
// correct+present for any letter never exceeds its occurrences in the secret.
func Evaluate(guess, secret string) GuessResult {
	n := len(guess)
	result := make(GuessResult, n)

	var counts [26]int
	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			result[i] = LetterResult{Letter: string(guess[i]), Status: StatusCorrect}
		} else {
			counts[secret[i]-'A']++
		}
	}

	for i := 0; i < n; i++ {
		if result[i].Status == StatusCorrect {
			continue
		}
		j := int(guess[i] - 'A')
		status := StatusAbsent
		if j >= 0 && j < 26 && counts[j] > 0 {
			status = StatusPresent
			counts[j]--
		}
		result[i] = LetterResult{Letter: string(guess[i]), Status: status}
	}
	return result
}

// isUpperAlpha reports whether s is entirely uppercase ASCII letters.
func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
