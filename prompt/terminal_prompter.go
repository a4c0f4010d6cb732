// Package prompt asks the operator yes/no questions on the terminal.
package prompt

import (
	"os"

	"github.com/charmbracelet/huh"
)

// TerminalPrompter implements ports.Prompter with a huh confirm form.
type TerminalPrompter struct {
	input    *os.File
	disabled bool
}

// Option configures a TerminalPrompter.
type Option func(*TerminalPrompter)

// WithNonInteractive turns prompting off regardless of the terminal.
func WithNonInteractive(disabled bool) Option {
	return func(p *TerminalPrompter) { p.disabled = disabled }
}

// WithInput sets the file checked for a terminal. Defaults to stdin.
func WithInput(f *os.File) Option {
	return func(p *TerminalPrompter) { p.input = f }
}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter(opts ...Option) *TerminalPrompter {
	p := &TerminalPrompter{input: os.Stdin}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	if p.disabled || p.input == nil {
		return false
	}
	fileInfo, err := p.input.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Confirm asks question and returns the answer. def is preselected.
func (p *TerminalPrompter) Confirm(question string, def bool) (bool, error) {
	answer := def

	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&answer).
		Run()
	if err != nil {
		return false, err
	}
	return answer, nil
}
