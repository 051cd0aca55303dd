package ui

import (
	"errors"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	envNoInteraction = "NO_INTERACTION"
	envCI            = "CI"
	envTerm          = "TERM"
)

// ErrNoInteraction is returned when a prompt is needed but stdin or stderr
// is not a terminal.
var ErrNoInteraction = errors.New("not running in an interactive terminal")

// IsInteractive reports whether prompts and live progress can be shown.
func IsInteractive() bool {
	if envTruthy(envNoInteraction) || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	return isTerminal(os.Stderr.Fd()) && isTerminal(os.Stdin.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
