package interactive

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

// Confirmer asks yes/no questions on the terminal
type Confirmer struct {
	config *config.RuntimeConfig
}

// NewConfirmer creates a new confirmer
func NewConfirmer(cfg *config.RuntimeConfig) *Confirmer {
	return &Confirmer{config: cfg}
}

// Confirm shows message with the network name and waits for y/N.
// Non-interactive mode answers yes without prompting.
func (c *Confirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if c.config.NonInteractive {
		return true, nil
	}

	network := c.config.NetworkName()
	label := fmt.Sprintf("%s on %s", message, color.New(color.FgRed, color.Bold).Sprint(network))
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		// promptui reports "n" as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, fmt.Errorf("confirmation interrupted")
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return true, nil
}

var _ usecase.Confirmer = (*Confirmer)(nil)
