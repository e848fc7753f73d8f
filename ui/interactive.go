package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on a plain terminal, outside the explorer
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Input prompts the user for input with a default value
func (p *Prompter) Input(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(p.out, ColorSection("%s [default: %s]: "), prompt, ColorHighlight(defaultValue))
	} else {
		fmt.Fprintf(p.out, ColorSection("%s: "), prompt)
	}

	input, _ := p.in.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// Confirm asks a yes/no question
func (p *Prompter) Confirm(prompt string, defaultYes bool) bool {
	def := "n"
	if defaultYes {
		def = "y"
	}
	switch strings.ToLower(p.Input(prompt+" (y/n)", def)) {
	case "y", "yes":
		return true
	}
	return false
}
