package game

import (
	"math/rand/v2"
	"strings"
)

const (
	CodeLength = 4
	Hidden     = '*'
)

// Rand is the source of secret digits. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}

func GenerateSecret(r Rand, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(byte('0' + r.IntN(10)))
	}
	return b.String()
}

// ValidGuess reports whether text is exactly length ASCII digits.
func ValidGuess(text string, length int) bool {
	if len(text) != length {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

type Result struct {
	Pattern  string
	Attempts int
	Solved   bool
}

type Game struct {
	secret   string
	revealed []byte
	attempts int
}

func New(secret string) *Game {
	revealed := make([]byte, len(secret))
	for i := range revealed {
		revealed[i] = Hidden
	}
	return &Game{secret: secret, revealed: revealed}
}

func (g *Game) Secret() string { return g.secret }

func (g *Game) Attempts() int { return g.attempts }

func (g *Game) Pattern() string { return string(g.revealed) }

// Guess counts an attempt and reveals every position the guess gets right.
// Positions revealed by earlier guesses stay revealed. The guess must have
// been checked with ValidGuess.
func (g *Game) Guess(guess string) Result {
	g.attempts++
	for i := 0; i < len(g.secret) && i < len(guess); i++ {
		if guess[i] == g.secret[i] {
			g.revealed[i] = guess[i]
		}
	}

	return Result{
		Pattern:  string(g.revealed),
		Attempts: g.attempts,
		Solved:   guess == g.secret,
	}
}
