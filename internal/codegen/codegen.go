// Package codegen derives short human-readable product codes such as
// "CAF-0427" from a product name.
package codegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"bazarpos/internal/apierror"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackPrefix is used when a name yields no usable characters.
const FallbackPrefix = "PRD"

const (
	prefixLen          = 3
	digits             = 4
	defaultMaxAttempts = 1000
)

// Checker reports whether a code is already taken.
type Checker interface {
	CodigoExists(ctx context.Context, codigo string) (bool, error)
}

// Generator builds codes. The zero value is not usable; use New.
type Generator struct {
	rand        func(n int) int
	maxAttempts int
}

type Option func(*Generator)

// WithRand replaces the digit source, mainly for tests.
func WithRand(fn func(n int) int) Option {
	return func(g *Generator) { g.rand = fn }
}

// WithMaxAttempts bounds Unique. Values below 1 keep the default.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{rand: rand.IntN, maxAttempts: defaultMaxAttempts}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Prefix takes the first three characters of name with accents folded,
// drops anything that is not an ASCII letter or digit, and upper-cases the rest.
func Prefix(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	n := 0
	for _, r := range folded {
		if n == prefixLen {
			break
		}
		n++
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return FallbackPrefix
	}
	return b.String()
}

// Format joins a prefix and a number as PREFIX-DDDD.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s-%0*d", prefix, digits, n)
}

// Generate returns a candidate code for name. It does not check uniqueness.
func (g *Generator) Generate(name string) string {
	return Format(Prefix(name), g.rand(10000))
}

// Unique generates candidates until checker reports one as free.
func (g *Generator) Unique(ctx context.Context, name string, checker Checker) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.Generate(name)
		taken, err := checker.CodigoExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apierror.E(apierror.KindConflict,
		fmt.Sprintf("No se encontró un código libre para %q tras %d intentos", name, g.maxAttempts))
}
