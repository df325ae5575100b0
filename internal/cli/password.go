package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// PasswordEnvVar is the environment variable consulted when -p is not
// given. Per spec.md §6, it is used as-is, without prompting, when set and
// non-empty.
const PasswordEnvVar = "RESQRYPT_PASSWORD"

var ErrPasswordMismatch = errors.New("passwords do not match")

// isTerminal returns true if stdin is a terminal (not piped/redirected).
func isTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// readPasswordSecure reads a password from stdin without echo, falling back
// to a buffered line read when stdin is not a terminal (e.g. piped input).
func readPasswordSecure(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if !isTerminal() {
		reader := bufio.NewReader(os.Stdin)
		pw, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(pw, "\r\n"), nil
	}

	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// ResolvePassword implements spec.md §6's password resolution order:
// explicit -p flag, then RESQRYPT_PASSWORD, then interactive TTY prompt
// (with confirmation on encrypt). It fails with ErrPasswordUnavailable if
// none of those sources can supply one.
func ResolvePassword(flagValue string, confirm bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(PasswordEnvVar); env != "" {
		return env, nil
	}
	if !isTerminal() {
		return "", rqerrors.ErrPasswordUnavailable
	}

	password, err := readPasswordSecure("Password: ")
	if err != nil {
		return "", err
	}

	if confirm {
		confirmation, err := readPasswordSecure("Confirm password: ")
		if err != nil {
			return "", err
		}
		if password != confirmation {
			return "", ErrPasswordMismatch
		}
	}

	return password, nil
}
