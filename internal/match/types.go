package match

// Coin rewards applied at settlement.
const (
	CoinsPerWin        = 50
	CoinsPerSolve      = 20
	CoinsParticipation = 5
)

// Emotes players may send during a match.
var AllowedEmotes = map[string]bool{
	"clap":       true,
	"cry":        true,
	"fire":       true,
	"laugh":      true,
	"mind_blown": true,
	"rage":       true,
	"sweat":      true,
	"wave":       true,
}

// CreateMatchRequest is the HTTP payload for creating a lobby.
type CreateMatchRequest struct {
	Mode       string `json:"mode"`
	WordLength int    `json:"word_length"`
}
