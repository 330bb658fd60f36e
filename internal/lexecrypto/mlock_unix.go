//go:build !windows

package lexecrypto

import "golang.org/x/sys/unix"

// pin keeps the pages backing b out of swap.
func pin(b []byte) error {
	if len(b) == 0 {
		return errEmptyRegion
	}
	return unix.Mlock(b)
}

// unpin undoes pin. Failures are ignored since the pages are zeroed first.
func unpin(b []byte) {
	if len(b) > 0 {
		_ = unix.Munlock(b)
	}
}
