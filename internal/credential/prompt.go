package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for input. Every call gives up when ctx is done.
type Prompter interface {
	Line(ctx context.Context, prompt string) (string, error)
	Secret(ctx context.Context, prompt string) (string, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// IsYes accepts the same answers the portal scripts always have.
func IsYes(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y", "yes", "YES":
		return true
	}
	return false
}

type readResult struct {
	s   string
	err error
}

// TerminalPrompter reads from In and writes prompts to Out. Secrets are read
// without echo when In is a terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	r   *bufio.Reader

	// read left behind by a cancelled prompt; the next prompt takes it over
	pending chan readResult
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{In: in, Out: out, r: bufio.NewReader(in)}
}

// await runs one blocking read in the background and waits for it or ctx.
func (p *TerminalPrompter) await(ctx context.Context, read func() (string, error)) (string, error) {
	if p.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			s, err := read()
			ch <- readResult{s: s, err: err}
		}()
		p.pending = ch
	}
	select {
	case res := <-p.pending:
		p.pending = nil
		return res.s, res.err
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return "", ctx.Err()
	}
}

func (p *TerminalPrompter) Line(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	return p.await(ctx, p.readLine)
}

func (p *TerminalPrompter) readLine() (string, error) {
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *TerminalPrompter) Secret(ctx context.Context, prompt string) (string, error) {
	f, ok := p.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(ctx, prompt)
	}
	fd := int(f.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	fmt.Fprint(p.Out, prompt)
	s, err := p.await(ctx, func() (string, error) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	})
	if err != nil && ctx.Err() != nil {
		// ReadPassword is still blocked with echo off
		_ = term.Restore(fd, state)
		return "", err
	}
	fmt.Fprintln(p.Out)
	return s, err
}

func (p *TerminalPrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	s, err := p.Line(ctx, prompt)
	if err != nil {
		return false, err
	}
	return IsYes(s), nil
}
