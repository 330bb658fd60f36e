package lexecrypto

import (
	"crypto/rand"
	"io"
	"sync"
)

// Reader is the default source of randomness.
//
//nolint:gochecknoglobals // Package-level RNG is required for testability
var Reader io.Reader = rand.Reader

// RandomBytes reads n bytes from rng, falling back to Reader when rng is nil.
func RandomBytes(rng io.Reader, n int) ([]byte, error) {
	if rng == nil {
		rng = Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, err
	}
	return b, nil
}

// LockedReader serializes reads from an io.Reader that may not be safe for
// concurrent use.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r. A nil r wraps Reader.
func NewLockedReader(r io.Reader) *LockedReader {
	if r == nil {
		r = Reader
	}
	return &LockedReader{r: r}
}

func (l *LockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
