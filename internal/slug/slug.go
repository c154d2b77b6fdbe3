// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxBaseLen = 100

const maxAttempts = 5

var ErrExhausted = errors.New("slug: could not find a free slug")

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make lowercases name, strips accents and joins the remaining
// alphanumeric runs with single hyphens: "Formula Rossa!" -> "formula-rossa".
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	s := b.String()
	if len(s) > maxBaseLen {
		s = strings.TrimRight(s[:maxBaseLen], "-")
	}
	return s
}

// Unique returns Make(name) if it is free, otherwise the base with a short
// random suffix. Slugs are generated once at creation and never change.
func Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	return unique(ctx, Make(name), true, exists)
}

// Suffixed always appends a random suffix to the base, for slugs derived from
// values that repeat, like the author of a review.
func Suffixed(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	return unique(ctx, Make(name), false, exists)
}

func unique(ctx context.Context, base string, tryBase bool, exists ExistsFunc) (string, error) {
	if tryBase && base != "" {
		taken, err := exists(ctx, base)
		if err != nil {
			return "", err
		}
		if !taken {
			return base, nil
		}
	}

	for range maxAttempts {
		candidate := withSuffix(base)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func withSuffix(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
