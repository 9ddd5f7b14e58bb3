// Package confirm asks the person running the checks to confirm post-check
// items, either through a terminal UI or a plain line prompt.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/seitarof/speccheck/internal/suite"
)

// ErrNoAnswer is returned when input ends before a question is answered.
var ErrNoAnswer = errors.New("no answer")

// Always answers every question with the same value.
type Always bool

// ReviewList returns the fixed answer.
func (a Always) ReviewList(string, string, []string) (bool, error) { return bool(a), nil }

// Checklist returns the fixed answer.
func (a Always) Checklist(string, []string) (bool, error) { return bool(a), nil }

// Prompt asks questions line by line.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads answers from in and writes questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// ReviewList shows items and asks one yes/no question about all of them.
func (p *Prompt) ReviewList(title, prompt string, items []string) (bool, error) {
	fmt.Fprintf(p.out, "%s\n\n%s\n\n", title, prompt)
	for _, item := range items {
		fmt.Fprintf(p.out, "  %s\n", item)
	}
	fmt.Fprintln(p.out)
	return p.ask("Are these good names?")
}

// Checklist asks about each item in turn and stops at the first no.
func (p *Prompt) Checklist(title string, items []string) (bool, error) {
	fmt.Fprintf(p.out, "%s\n\n", title)
	for _, item := range items {
		ok, err := p.ask(item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (p *Prompt) ask(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/n] ", question)
		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("read answer: %w", err)
		}
	}
}

// Auto returns the terminal UI when both in and out are terminals and the
// line prompt otherwise.
func Auto(in, out *os.File) suite.Confirmer {
	if isTerminal(in) && isTerminal(out) {
		return NewTUI(in, out)
	}
	return NewPrompt(in, out)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
