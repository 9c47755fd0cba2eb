package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

var (
	passwordPrompt = regexp.MustCompile(`(?i)password:\s*$`)
	// Lines a Cisco-style CLI prints when enable is refused.
	deniedPattern = regexp.MustCompile(`(?i)^%\s*(access denied|bad (secrets|passwords?)|authentication failed)`)
)

// streamTerminal drives a prompt-based CLI over a pair of byte streams.
// The SSH dialer wires it to a PTY shell; tests wire it to pipes.
type streamTerminal struct {
	stdin   io.Writer
	data    chan []byte
	readErr error
	pending string
	prompt  *regexp.Regexp

	closer    func() error
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func newTerminal(stdin io.Writer, stdout io.Reader, prompt *regexp.Regexp, closer func() error) *streamTerminal {
	t := &streamTerminal{
		stdin:  stdin,
		data:   make(chan []byte, 64),
		prompt: prompt,
		closer: closer,
		done:   make(chan struct{}),
	}
	go t.readLoop(stdout)
	return t
}

func (t *streamTerminal) readLoop(r io.Reader) {
	defer close(t.data)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case t.data <- chunk:
			case <-t.done:
				return
			}
		}
		if err != nil {
			t.readErr = err
			return
		}
	}
}

// readUntil accumulates output until match accepts the buffer.
func (t *streamTerminal) readUntil(ctx context.Context, match func(string) bool) (string, error) {
	for {
		if match(t.pending) {
			out := t.pending
			t.pending = ""
			return out, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case chunk, ok := <-t.data:
			if !ok {
				err := t.readErr
				if err == nil {
					err = io.EOF
				}
				return "", fmt.Errorf("session closed by device: %w", err)
			}
			t.pending += sanitize(string(chunk))
		}
	}
}

func (t *streamTerminal) atPrompt(buf string) bool {
	return t.prompt.MatchString(lastLine(buf))
}

func (t *streamTerminal) waitPrompt(ctx context.Context) (string, error) {
	return t.readUntil(ctx, t.atPrompt)
}

func (t *streamTerminal) write(s string) error {
	if _, err := io.WriteString(t.stdin, s+"\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Send implements Terminal.
func (t *streamTerminal) Send(ctx context.Context, command string) ([]string, error) {
	if err := t.write(command); err != nil {
		return nil, err
	}
	out, err := t.waitPrompt(ctx)
	if err != nil {
		return nil, err
	}
	return commandOutput(out, command), nil
}

// Elevate implements Terminal.
func (t *streamTerminal) Elevate(ctx context.Context, secret string) error {
	if err := t.write("enable"); err != nil {
		return err
	}
	promptOrPassword := func(buf string) bool {
		return t.atPrompt(buf) || passwordPrompt.MatchString(lastLine(buf))
	}
	out, err := t.readUntil(ctx, promptOrPassword)
	if err != nil {
		return err
	}
	if passwordPrompt.MatchString(lastLine(out)) {
		if err := t.write(secret); err != nil {
			return err
		}
		out, err = t.readUntil(ctx, promptOrPassword)
		if err != nil {
			return err
		}
		if passwordPrompt.MatchString(lastLine(out)) {
			return errors.New("privilege secret rejected")
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if deniedPattern.MatchString(strings.TrimSpace(line)) {
			return fmt.Errorf("privilege elevation refused: %s", strings.TrimSpace(line))
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(lastLine(out)), "#") {
		return fmt.Errorf("privilege elevation refused: prompt %q", strings.TrimSpace(lastLine(out)))
	}
	return nil
}

// Close implements Terminal. Safe to call more than once.
func (t *streamTerminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		if t.closer != nil {
			t.closeErr = t.closer()
		}
	})
	return t.closeErr
}

// commandOutput strips the echoed command, the trailing prompt and
// surrounding blank lines from raw command output.
func commandOutput(raw, command string) []string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 {
		lines = lines[:len(lines)-1] // prompt
	}
	if len(lines) > 0 && strings.HasSuffix(strings.TrimSpace(lines[0]), command) {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// sanitize drops carriage returns and applies backspaces some platforms
// emit when redrawing the line.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	if !strings.Contains(s, "\b") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\b' {
			str := b.String()
			if len(str) > 0 {
				b.Reset()
				b.WriteString(str[:len(str)-1])
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
