package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user declines a confirmation.
var ErrAborted = errors.New("aborted")

// Confirmer asks a yes/no question.
type Confirmer func(ctx context.Context, title, description string) (bool, error)

// Confirm asks on the terminal, defaulting to no. bypassHint tells
// non-interactive users how to skip the prompt, e.g. "use --yes".
func Confirm(bypassHint string) Confirmer {
	return func(ctx context.Context, title, description string) (bool, error) {
		if !IsInteractive() {
			return false, fmt.Errorf("confirmation required (%s): %w", bypassHint, ErrNoInteraction)
		}

		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Description(description).
					Affirmative("Yes").
					Negative("No").
					Value(&ok),
			),
		).RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("confirm prompt: %w", err)
		}
		return ok, nil
	}
}
