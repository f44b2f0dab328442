package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Supported word lengths.
const (
	MinLength = 4
	MaxLength = 7
)

//go:embed words4.txt
var embedded4 string

//go:embed words5.txt
var embedded5 string

//go:embed words6.txt
var embedded6 string

//go:embed words7.txt
var embedded7 string

// Dictionary holds the word lists for all supported lengths. Lists are
// loaded once and immutable afterwards, so lookups need no locking.
type Dictionary struct {
	byLength map[int][]string
	sets     map[int]map[string]struct{}
}

var (
	loadOnce sync.Once
	shared   *Dictionary
	loadErr  error
)

// Load returns the process-wide dictionary. Lists come from
// WORDBATTLE_WORDS_DIR (one words<N>.txt per length) when set, otherwise
// from the embedded defaults. Loading runs once.
func Load() (*Dictionary, error) {
	loadOnce.Do(func() {
		shared, loadErr = load(os.Getenv("WORDBATTLE_WORDS_DIR"))
	})
	return shared, loadErr
}

func load(dir string) (*Dictionary, error) {
	embeds := map[int]string{4: embedded4, 5: embedded5, 6: embedded6, 7: embedded7}

	d := &Dictionary{
		byLength: make(map[int][]string, MaxLength-MinLength+1),
		sets:     make(map[int]map[string]struct{}, MaxLength-MinLength+1),
	}
	for n := MinLength; n <= MaxLength; n++ {
		var list []string
		var err error
		if dir != "" {
			list, err = readWordFile(filepath.Join(dir, fmt.Sprintf("words%d.txt", n)), n)
			if err != nil {
				return nil, fmt.Errorf("load %d-letter words: %w", n, err)
			}
		} else {
			list = normalizeLines(embeds[n], n)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("empty %d-letter word list", n)
		}
		d.byLength[n] = list
		d.sets[n] = toSet(list)
	}
	return d, nil
}

// readWordFile loads one word per line, uppercased, keeping only valid
// alphabetic words of the wanted length.
func readWordFile(path string, length int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(strings.ToUpper(sc.Text()))
		if len(w) == length && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalizeLines(s string, length int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(strings.ToUpper(line))
		if len(w) == length && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// RandomWord returns a cryptographically random word of the given length.
func (d *Dictionary) RandomWord(length int) (string, error) {
	list := d.byLength[length]
	if len(list) == 0 {
		return "", fmt.Errorf("unsupported word length %d", length)
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", err
	}
	return list[nBig.Int64()], nil
}

// IsValid reports whether w is a dictionary word of the given length.
func (d *Dictionary) IsValid(w string, length int) bool {
	set := d.sets[length]
	if set == nil {
		return false
	}
	_, ok := set[strings.ToUpper(w)]
	return ok
}

// Count returns how many words are loaded for a length.
func (d *Dictionary) Count(length int) int {
	return len(d.byLength[length])
}
