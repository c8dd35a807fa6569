package tui

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// HuhConfirmer asks yes/no questions on the terminal.
type HuhConfirmer struct {
	accessible bool
}

// NewHuhConfirmer creates a HuhConfirmer. Accessible mode prints plain
// prompts, for screen readers and dumb terminals.
func NewHuhConfirmer(accessible bool) *HuhConfirmer {
	return &HuhConfirmer{accessible: accessible}
}

// Confirm implements ports.Confirmer. Escaping the prompt counts as "no".
func (c *HuhConfirmer) Confirm(title, description string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	err := huh.NewForm(huh.NewGroup(field)).WithAccessible(c.accessible).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// AutoConfirmer answers every question with yes, for --yes.
type AutoConfirmer struct{}

// Confirm implements ports.Confirmer.
func (AutoConfirmer) Confirm(_, _ string) (bool, error) {
	return true, nil
}

var (
	_ ports.Confirmer = (*HuhConfirmer)(nil)
	_ ports.Confirmer = AutoConfirmer{}
)
