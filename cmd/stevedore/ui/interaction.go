package ui

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoInput = "NO_INPUT"
	envCI      = "CI"
	envTerm    = "TERM"
)

type interactionState struct {
	interactive bool
}

var current atomic.Pointer[interactionState]

// ConfigureInteraction fixes whether this run may prompt and color.
// noInput forces both off regardless of the terminal.
func ConfigureInteraction(noInput bool) {
	interactive := detectInteractive(noInput)
	current.Store(&interactionState{interactive: interactive})

	if interactive {
		lipgloss.SetColorProfile(termenv.ColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// IsInteractive reports whether prompting is allowed. Self-configures on
// first use when ConfigureInteraction was never called.
func IsInteractive() bool {
	if s := current.Load(); s != nil {
		return s.interactive
	}
	ConfigureInteraction(false)
	return current.Load().interactive
}

func detectInteractive(noInput bool) bool {
	if noInput {
		return false
	}
	if envTruthy(envNoInput) || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	return stderrIsTerminal()
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
