// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80
	// DefaultTerminalHeight is the fallback height when detection fails.
	DefaultTerminalHeight = 24
)

// GetTerminalSize returns the terminal size, or 80x24 when unknown.
func GetTerminalSize() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return DefaultTerminalWidth, DefaultTerminalHeight
	}
	return w, h
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used. NO_COLOR wins
// over FORCE_COLOR, which wins over TTY detection.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorsEnabled = false
		case os.Getenv("FORCE_COLOR") != "":
			colorsEnabled = true
		default:
			colorsEnabled = IsStdoutTTY()
		}
	})
	return colorsEnabled
}

// ForceColorsEnabled overrides detection. Tests only.
func ForceColorsEnabled(enabled bool) {
	colorsEnabledOnce = sync.Once{}
	colorsEnabledOnce.Do(func() { colorsEnabled = enabled })
}

// GetColorProfile returns the termenv profile for stdout.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// PROMPTS
// =============================================================================

// ErrAborted is returned when the user cancels a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// Prompter reads answers from the user. On a terminal it uses liner for line
// editing and hidden password entry; otherwise it reads lines from in.
type Prompter struct {
	line   *liner.State
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter returns a prompter on stdin.
func NewPrompter() *Prompter {
	if IsTTY() {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		return &Prompter{line: line, out: os.Stdout}
	}
	return NewReaderPrompter(os.Stdin, os.Stdout)
}

// NewReaderPrompter reads answers from in, one per line.
func NewReaderPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

// Ask prompts for a line of text. def is returned for an empty answer.
func (p *Prompter) Ask(label, def string) (string, error) {
	prompt := label + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, def)
	}
	var answer string
	var err error
	if p.line != nil {
		answer, err = p.line.Prompt(prompt)
	} else {
		answer, err = p.readLine(prompt)
	}
	if err != nil {
		return "", p.mapErr(err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = def
	}
	return answer, nil
}

// Password prompts without echo.
func (p *Prompter) Password(label string) (string, error) {
	if p.line != nil {
		pw, err := p.line.PasswordPrompt(label + ": ")
		if err != nil {
			return "", p.mapErr(err)
		}
		return pw, nil
	}
	pw, err := p.readLine(label + ": ")
	if err != nil {
		return "", p.mapErr(err)
	}
	return strings.TrimRight(pw, "\r\n"), nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) mapErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

// Close restores the terminal.
func (p *Prompter) Close() {
	if p.line != nil {
		_ = p.line.Close()
	}
}
