package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// codeAlphabet excludes lookalike characters (0/O, 1/I) from lobby codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Registry owns one engine per live match, keyed by lobby code. It is the
// single authority for code uniqueness.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	dict    Dictionary
	opts    Options
	rng     *rand.Rand
	rngMu   sync.Mutex
}

// NewRegistry creates an empty registry; opts seed every engine it creates.
func NewRegistry(dict Dictionary, opts Options) *Registry {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		engines: make(map[string]*Engine),
		dict:    dict,
		opts:    opts,
		rng:     rng,
	}
}

// Create allocates a new engine with a fresh unique lobby code and a waiting
// match hosted by the given player.
func (r *Registry) Create(mode string, wordLength int, host PlayerInfo) (*Engine, *Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCodeLocked()
	if err != nil {
		return nil, nil, err
	}

	eng := NewEngine(r.dict, r.opts)
	player, err := eng.CreateMatch(mode, wordLength, code, host)
	if err != nil {
		return nil, nil, err
	}
	r.engines[code] = eng
	return eng, player, nil
}

// Get returns the engine for a lobby code.
func (r *Registry) Get(code string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[code]
	return eng, ok
}

// Remove resets and drops the engine for a code. Safe to call twice.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	eng, ok := r.engines[code]
	delete(r.engines, code)
	r.mu.Unlock()
	if ok {
		eng.Reset()
	}
}

// Codes returns the live lobby codes.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.engines))
	for code := range r.engines {
		codes = append(codes, code)
	}
	return codes
}

// Len returns the number of live matches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

func (r *Registry) uniqueCodeLocked() (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		code := r.randomCode()
		if _, taken := r.engines[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("lobby code space exhausted")
}

func (r *Registry) randomCode() string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	b := make([]byte, 6)
	for i := range b {
		b[i] = codeAlphabet[r.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
