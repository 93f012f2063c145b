// Package terminal reads interactive input for the lodge commands: plain lines, hidden
// secrets and one-time codes, and tidies prompts away once answered.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	inFD  int
	outFD int
	tty   bool
}

// New returns a Prompter over the process' stdin and stderr. Prompts go to stderr so
// command output on stdout stays clean for pipes.
func New() *Prompter {
	return &Prompter{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stderr,
		inFD:  int(os.Stdin.Fd()),
		outFD: int(os.Stderr.Fd()),
		tty:   term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewWithIO returns a non-interactive Prompter, for scripts and tests.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, inFD: -1, outFD: -1}
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool { return p.tty }

// Line prints prompt and reads one trimmed line. A default shown in brackets is
// returned for an empty answer.
func (p *Prompter) Line(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Secret prints prompt and reads a line without echo. Without a terminal the line is
// read as plain input, which lets scripts pipe a password in.
func (p *Prompter) Secret(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	if !p.tty {
		s, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && s != "") {
			return "", err
		}
		return strings.TrimRight(s, "\r\n"), nil
	}
	b, err := term.ReadPassword(p.inFD)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	s, err := p.Line(prompt+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Width returns the terminal width, 80 when unknown.
func (p *Prompter) Width() int {
	if p.outFD >= 0 {
		if w, _, err := term.GetSize(p.outFD); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// ClearPreviousLines erases textLength characters of prompt and answer printed just
// before, plus the line Enter moved to.
func (p *Prompter) ClearPreviousLines(textLength int) {
	if !p.tty {
		return
	}
	lines := int(math.Ceil(float64(textLength) / float64(p.Width())))
	if lines < 1 {
		lines = 1
	}
	lines++
	for i := 0; i < lines; i++ {
		fmt.Fprint(p.out, "\r\x1b[2K")
		if i < lines-1 {
			fmt.Fprint(p.out, "\x1b[1A")
		}
	}
}
