package game

import (
	"strings"

	"github.com/google/uuid"
)

// candidatePoolSize bounds the random candidates drawn per bot turn.
const candidatePoolSize = 20

// Strategist picks bot guesses by filtering random dictionary draws against
// the constraints already learned from the bot's own rows.
type Strategist struct {
	dict Dictionary
}

// NewStrategist creates a strategist backed by the given dictionary.
func NewStrategist(dict Dictionary) *Strategist {
	return &Strategist{dict: dict}
}

// NextGuess returns a word for the bot's next turn. It draws a pool of random
// candidates, keeps the first one consistent with every prior row, and falls
// back to the first raw candidate when nothing in the pool fits.
func (s *Strategist) NextGuess(wordLength int, rows []GuessResult) string {
	pool := make([]string, 0, candidatePoolSize)
	for len(pool) < candidatePoolSize {
		w, err := s.dict.RandomWord(wordLength)
		if err != nil {
			break
		}
		pool = append(pool, strings.ToUpper(w))
	}
	if len(pool) == 0 {
		return ""
	}

	c := buildConstraints(rows)
	for _, w := range pool {
		if c.allows(w) {
			return w
		}
	}
	return pool[0]
}

// constraints is what the bot has learned from scored rows.
type constraints struct {
	correct map[int]byte    // position -> letter known correct
	present map[byte]bool   // letters known in the word
	absent  map[byte]bool   // letters known not in the word
	wrongAt map[int][]byte  // position -> letters known present but misplaced
}

func buildConstraints(rows []GuessResult) constraints {
	c := constraints{
		correct: make(map[int]byte),
		present: make(map[byte]bool),
		absent:  make(map[byte]bool),
		wrongAt: make(map[int][]byte),
	}
	for _, row := range rows {
		for i, cell := range row {
			if cell.Letter == "" {
				continue
			}
			ch := cell.Letter[0]
			switch cell.Status {
			case StatusCorrect:
				c.correct[i] = ch
				c.present[ch] = true
			case StatusPresent:
				c.present[ch] = true
				c.wrongAt[i] = append(c.wrongAt[i], ch)
			case StatusAbsent:
				c.absent[ch] = true
			}
		}
	}
	// A letter seen both present and absent (duplicate handling) counts as present.
	for ch := range c.present {
		delete(c.absent, ch)
	}
	return c
}

func (c constraints) allows(word string) bool {
	for i, ch := range c.correct {
		if i >= len(word) || word[i] != ch {
			return false
		}
	}
	for ch := range c.present {
		if !strings.ContainsRune(word, rune(ch)) {
			return false
		}
	}
	for i := 0; i < len(word); i++ {
		if c.absent[word[i]] {
			return false
		}
		for _, ch := range c.wrongAt[i] {
			if word[i] == ch {
				return false
			}
		}
	}
	return true
}

// PlayBotTurn picks and submits one guess for a bot player. Returns the word
// and whether the engine accepted it; frozen or exhausted bots skip the turn.
func (e *Engine) PlayBotTurn(botID uuid.UUID) (string, bool) {
	e.mu.Lock()
	if e.match == nil || e.match.Status != StatusPlaying {
		e.mu.Unlock()
		return "", false
	}
	bot := e.match.PlayerByID(botID)
	if bot == nil || !bot.IsBot || bot.Frozen || bot.Solved || bot.Exhausted() {
		e.mu.Unlock()
		return "", false
	}
	rows := append([]GuessResult(nil), bot.Rows...)
	wordLength := e.match.WordLength
	e.mu.Unlock()

	word := NewStrategist(e.dict).NextGuess(wordLength, rows)
	if word == "" {
		return "", false
	}
	accepted, _ := e.SubmitGuess(botID, word)
	return word, accepted
}
