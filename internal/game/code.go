package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

// Code alphabet excludes visually ambiguous characters (0/O, 1/I/L).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 4

	maxCodeAttempts = 100
)

// CodeGenerator produces unique 4-character session codes. A code is usable
// when no session holds it, or when the session holding it has expired (the
// leftover row is overwritten on create).
type CodeGenerator struct {
	store Store
	clock Clock
	rand  *rand.Rand
}

// NewCodeGenerator builds a generator checking collisions against the store.
// A nil source uses the shared global source.
func NewCodeGenerator(store Store, clock Clock, src rand.Source) *CodeGenerator {
	g := &CodeGenerator{store: store, clock: clock}
	if src != nil {
		g.rand = rand.New(src)
	}
	return g
}

// Generate returns a code not held by any live session, giving up after a
// bounded number of attempts.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	now := g.clock.Now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := g.randomCode()

		existing, err := g.store.Get(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check code %s: %w", code, err)
		}
		if existing.Expired(now) {
			// Recycle codes whose sessions are past TTL but not yet swept.
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique game code")
}

func (g *CodeGenerator) randomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[g.intn(len(codeAlphabet))]
	}
	return string(buf)
}

func (g *CodeGenerator) intn(n int) int {
	if g.rand != nil {
		return g.rand.Intn(n)
	}
	return rand.Intn(n)
}
