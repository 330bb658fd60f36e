package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // Test seams for interactive input
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptConfirmFn     = promptConfirmation
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new backup password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPasswordFn("Enter backup password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < credentials.MinBackupPasswordLen {
		lexecrypto.Zero(password)
		return nil, lexeerr.WithSuggestion(
			lexeerr.ErrWeakPassword,
			fmt.Sprintf("password must be at least %d characters", credentials.MinBackupPasswordLen),
		)
	}

	confirm, err := promptPasswordFn("Confirm backup password: ")
	if err != nil {
		lexecrypto.Zero(password)
		return nil, err
	}
	defer lexecrypto.Zero(confirm)

	if string(password) != string(confirm) {
		lexecrypto.Zero(password)
		return nil, lexeerr.WithSuggestion(
			lexeerr.ErrInvalidInput,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptConfirmation asks a yes/no question on stderr.
func promptConfirmation(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
