package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompt configures a single line prompt for the command line.
type Prompt struct {
	Message     string
	Default     string
	Placeholder string
	Required    bool
	// Secret hides the typed characters.
	Secret bool
}

// PromptForString asks for one line of input.
func PromptForString(p Prompt) (string, error) {
	value := p.Default

	input := huh.NewInput().
		Title(p.Message).
		Placeholder(p.Placeholder).
		Value(&value)
	if p.Secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if p.Required {
		input = input.Validate(requiredText(strings.ToLower(strings.TrimSuffix(p.Message, ":"))))
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	value = strings.TrimSpace(value)
	if p.Required && value == "" {
		return "", fmt.Errorf("value is required")
	}
	return value, nil
}

// PromptForConfirmation asks a yes/no question.
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// PromptForSelect asks the user to pick one of options.
func PromptForSelect(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	var selected string
	field := huh.NewSelect[string]().
		Title(message).
		Options(huh.NewOptions(options...)...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt reports whether commands may ask for missing input.
// Prompts are off in CI, when AMPLY_NO_PROMPT is set, or when stdin is
// not a terminal.
func ShouldPrompt() bool {
	for _, envVar := range []string{
		"AMPLY_NO_PROMPT",
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	} {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}
