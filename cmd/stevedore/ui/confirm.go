package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stderr and reads one line from
// stdin. When the run is non-interactive it refuses instead of guessing;
// hint should tell the caller which flag skips the question.
func Confirm(question, hint string) (bool, error) {
	if !IsInteractive() {
		return false, fmt.Errorf("confirmation required in non-interactive mode (%s)", hint)
	}

	fmt.Fprintf(os.Stderr, "%s %s [y/N]: ", WarnStyle.Render("?"), question)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
