package repositories

import (
	"context"
	"time"
)

// TranslationCache is a shared key-value store for completed translations.
// Implementations are best-effort: callers treat read errors as misses and
// write errors as dropped writes, never as turn failures.
type TranslationCache interface {
	// Get returns the cached translation for key. The second return value
	// reports whether an entry was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores a translation under key with the given expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
