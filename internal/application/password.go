package application

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// PasswordAlphabet holds every printable non-space ASCII character.
	PasswordAlphabet = "abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789" +
		"!@#$%^&*()_+~`|}{[]:;?><,./-=\"'\\"

	// DefaultPasswordLength is used when the caller does not ask for a length.
	DefaultPasswordLength = 12

	// MaxPasswordLength bounds lengths accepted from user input.
	MaxPasswordLength = 1024
)

// GeneratePassword returns length characters drawn uniformly, with
// replacement, from PasswordAlphabet using the runtime's shared generator.
// A length of zero or less yields "".
func GeneratePassword(length int) string {
	return generatePassword(length, rand.IntN)
}

// PasswordGenerator draws passwords from an explicit random source. It is safe
// for concurrent use.
type PasswordGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPasswordGenerator creates a generator over src.
func NewPasswordGenerator(src rand.Source) *PasswordGenerator {
	return &PasswordGenerator{rng: rand.New(src)}
}

// Generate behaves like GeneratePassword but uses the generator's source.
func (g *PasswordGenerator) Generate(length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return generatePassword(length, g.rng.IntN)
}

func generatePassword(length int, intN func(int) int) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(PasswordAlphabet[intN(len(PasswordAlphabet))])
	}
	return b.String()
}
