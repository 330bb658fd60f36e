//go:build windows

package lexecrypto

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// region returns the address and size of b for the Virtual* calls.
func region(b []byte) (uintptr, uintptr) {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b))), uintptr(len(b))
}

// pin keeps the pages backing b in the working set.
func pin(b []byte) error {
	if len(b) == 0 {
		return errEmptyRegion
	}
	return windows.VirtualLock(region(b))
}

// unpin undoes pin. Failures are ignored since the pages are zeroed first.
func unpin(b []byte) {
	if len(b) > 0 {
		_ = windows.VirtualUnlock(region(b))
	}
}
