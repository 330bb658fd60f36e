// Package lexecrypto holds the small set of cryptographic helpers the SDK
// needs around secret material: locked memory, password encryption and
// randomness.
package lexecrypto

import (
	"errors"
	"runtime"
	"sync"
)

var errEmptyRegion = errors.New("lexecrypto: nothing to lock")

// SecureBytes wraps a sensitive byte slice. The memory is mlocked when the
// platform allows it and zeroed on Destroy or finalization.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes allocates size bytes of secure memory.
func NewSecureBytes(size int) *SecureBytes {
	sb := &SecureBytes{data: make([]byte, size)}
	sb.locked = pin(sb.data) == nil

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})

	return sb
}

// SecureBytesFromSlice copies data into secure memory.
// The caller remains responsible for zeroing its own copy.
func SecureBytesFromSlice(data []byte) *SecureBytes {
	sb := NewSecureBytes(len(data))
	copy(sb.data, data)
	return sb
}

// Bytes returns the underlying slice, or nil once destroyed.
// Callers must not retain the slice beyond the SecureBytes lifetime.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Copy returns an independent, non-locked copy of the data.
func (s *SecureBytes) Copy() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// IsLocked reports whether the memory is mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Len returns the length of the data.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Destroy zeros and unlocks the memory. Safe to call multiple times.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	Zero(s.data)
	if s.locked {
		unpin(s.data)
		s.locked = false
	}
	s.data = nil

	runtime.SetFinalizer(s, nil)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
