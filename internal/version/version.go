// Package version carries build metadata and compares the semantic versions
// used for CLI releases and node enclave releases.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Set via -ldflags at build time.
//
//nolint:gochecknoglobals // ldflags targets
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build metadata of this binary.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent is sent with every gateway request.
func UserAgent() string {
	return fmt.Sprintf("lexe-go/%s (%s/%s)", NormalizeVersion(Version), runtime.GOOS, runtime.GOARCH)
}

// CompareVersions compares two version strings.
// Returns:
//   - 1 if v1 > v2
//   - 0 if v1 == v2
//   - -1 if v1 < v2
//
// Empty, "dev" and commit-hash versions sort below every release, so an
// unprovisioned node ("") is always older than the latest enclave.
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimSpace(strings.TrimPrefix(v1, "v"))
	v2 = strings.TrimSpace(strings.TrimPrefix(v2, "v"))

	dev1 := isUnreleased(v1)
	dev2 := isUnreleased(v2)
	switch {
	case dev1 && dev2:
		return 0
	case dev1:
		return -1
	case dev2:
		return 1
	}

	p1 := parseVersion(v1)
	p2 := parseVersion(v2)
	for i := range 3 {
		if p1[i] != p2[i] {
			if p1[i] > p2[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewerVersion reports whether latest is newer than current.
func IsNewerVersion(current, latest string) bool {
	return CompareVersions(latest, current) > 0
}

// Valid reports whether v parses as a release version.
func Valid(v string) bool {
	v = NormalizeVersion(v)
	if v == "" {
		return false
	}
	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		return false
	}
	for _, part := range parts {
		if _, err := strconv.ParseUint(part, 10, 32); err != nil {
			return false
		}
	}
	return true
}

// parseVersion returns major, minor and patch, treating missing parts as 0.
func parseVersion(v string) [3]int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		out[i] = n
	}
	return out
}

// NormalizeVersion trims whitespace, any leading 'v' and any pre-release or
// build suffix (-rc1, -dirty, +build).
func NormalizeVersion(v string) string {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	return strings.TrimLeft(strings.TrimSpace(v), "v")
}

func isUnreleased(v string) bool {
	return v == "" || v == "dev" || isCommitHash(v)
}

// isCommitHash matches 7-40 hex characters with at least one letter, so
// "1234567" still reads as a number.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}
	hasLetter := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
