package checkout

import (
	"crypto/rand"
	"strings"
	"sync"
)

// TrackingAlphabet is the character set of generated tracking codes.
const TrackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces client-side tracking codes.
//
// Implemented by RandomCodes (production) and FixedCodes (tests).
type CodeGenerator interface {
	Generate() string
}

// RandomCodes generates Prefix followed by Length characters drawn
// uniformly from TrackingAlphabet.
//
// Thread-safety: RandomCodes is stateless and safe for concurrent use.
type RandomCodes struct {
	Prefix string
	Length int
}

// Generate returns a fresh code such as "ESPR-7QK2ZD".
func (g RandomCodes) Generate() string {
	var b strings.Builder
	b.Grow(len(g.Prefix) + g.Length)
	b.WriteString(g.Prefix)

	// Reject bytes past the largest multiple of the alphabet size so every
	// character is equally likely.
	limit := byte(256 - 256%len(TrackingAlphabet))
	buf := make([]byte, 1)
	for n := 0; n < g.Length; {
		_, _ = rand.Read(buf)
		if buf[0] >= limit {
			continue
		}
		b.WriteByte(TrackingAlphabet[int(buf[0])%len(TrackingAlphabet)])
		n++
	}
	return b.String()
}

// FixedCodes returns predetermined codes in order.
//
// Panics once all codes are consumed, which flags a test that submitted
// more often than it expected.
//
// Thread-safety: FixedCodes is safe for concurrent use via internal mutex.
type FixedCodes struct {
	mu    sync.Mutex
	codes []string
	idx   int
}

// NewFixedCodes creates a generator that returns codes in order.
func NewFixedCodes(codes ...string) *FixedCodes {
	return &FixedCodes{codes: codes}
}

// Generate returns the next predetermined code.
func (g *FixedCodes) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.codes) {
		panic("FixedCodes: all codes exhausted")
	}
	code := g.codes[g.idx]
	g.idx++
	return code
}
