package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads interactive answers from the user.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

// TermPrompter prompts on a terminal. Secrets are read without echo when in is a tty.
type TermPrompter struct {
	in  *os.File
	out io.Writer
	r   *bufio.Reader
}

// NewTermPrompter returns a prompter reading from in and writing labels to out.
func NewTermPrompter(in *os.File, out io.Writer) *TermPrompter {
	return &TermPrompter{in: in, out: out, r: bufio.NewReader(in)}
}

func (p *TermPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TermPrompter) PromptSecret(label string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Prompt(label)
	}
	fmt.Fprint(p.out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
