package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeDevice emulates a Cisco-style CLI on a pair of pipes. Responses are
// keyed by the command line received.
type fakeDevice struct {
	hostname  string
	enabled   bool
	secret    string
	responses map[string]string
	// hangOn makes the device stop answering after receiving this command.
	hangOn string
	// dropOn makes the device close the stream after receiving this command.
	dropOn string
}

func (d *fakeDevice) prompt() string {
	if d.enabled {
		return d.hostname + "#"
	}
	return d.hostname + ">"
}

func (d *fakeDevice) serve(in io.ReadCloser, out io.WriteCloser) {
	defer in.Close()
	defer out.Close()
	io.WriteString(out, "\r\nUnauthorized access prohibited\r\n\r\n"+d.prompt())

	scanner := bufio.NewScanner(in)
	awaitingSecret := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == d.dropOn:
			io.WriteString(out, line+"\r\n partial row\r\n")
			return
		case line == d.hangOn:
			io.WriteString(out, line+"\r\n")
			<-make(chan struct{})
		case awaitingSecret:
			awaitingSecret = false
			if line == d.secret {
				d.enabled = true
				io.WriteString(out, "\r\n"+d.prompt())
			} else {
				io.WriteString(out, "\r\n% Access denied\r\n\r\n"+d.prompt())
			}
		case line == "enable":
			io.WriteString(out, "enable\r\nPassword: ")
			awaitingSecret = true
		case line == "disable":
			d.enabled = false
			io.WriteString(out, "disable\r\n"+d.prompt())
		default:
			// Echo, response body, then prompt, split across writes.
			io.WriteString(out, d.prompt()+line+"\r\n")
			body := d.responses[line]
			half := len(body) / 2
			io.WriteString(out, body[:half])
			io.WriteString(out, body[half:])
			io.WriteString(out, d.prompt())
		}
	}
}

func startFakeDevice(t *testing.T, d *fakeDevice) *streamTerminal {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	go d.serve(inR, outW)

	term := newTerminal(inW, outR, DefaultPrompt, func() error {
		inW.Close()
		outR.Close()
		return nil
	})
	t.Cleanup(func() { term.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := term.waitPrompt(ctx); err != nil {
		t.Fatalf("waitPrompt() error = %v", err)
	}
	return term
}

const arpOutput = "Protocol  Address          Age (min)  Hardware Addr   Type   Interface\r\n" +
	"Internet  10.82.250.129           -   0000.0c9f.f002  ARPA   GigabitEthernet0/3.2335\r\n" +
	"Internet  10.82.250.130          12   0024.b20e.fe0f  ARPA   GigabitEthernet0/3.2335\r\n\r\n"

func TestStreamTerminal_Send(t *testing.T) {
	term := startFakeDevice(t, &fakeDevice{
		hostname:  "core-sw1",
		responses: map[string]string{"show ip arp": arpOutput},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lines, err := term.Send(ctx, "terminal length 0")
	if err != nil {
		t.Fatalf("Send(terminal length 0) error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("terminal length 0 output = %q, want none", lines)
	}

	lines, err = term.Send(ctx, "show ip arp")
	if err != nil {
		t.Fatalf("Send(show ip arp) error = %v", err)
	}
	want := []string{
		"Protocol  Address          Age (min)  Hardware Addr   Type   Interface",
		"Internet  10.82.250.129           -   0000.0c9f.f002  ARPA   GigabitEthernet0/3.2335",
		"Internet  10.82.250.130          12   0024.b20e.fe0f  ARPA   GigabitEthernet0/3.2335",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Send() = %q\nwant %q", lines, want)
	}
}

func TestStreamTerminal_Elevate(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		term := startFakeDevice(t, &fakeDevice{hostname: "core-sw1", secret: "enablepw"})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := term.Elevate(ctx, "enablepw"); err != nil {
			t.Fatalf("Elevate() error = %v", err)
		}
		if _, err := term.Send(ctx, "disable"); err != nil {
			t.Fatalf("Send(disable) error = %v", err)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		term := startFakeDevice(t, &fakeDevice{hostname: "core-sw1", secret: "enablepw"})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := term.Elevate(ctx, "wrong")
		if err == nil {
			t.Fatal("Elevate() with wrong secret should fail")
		}
		if !strings.Contains(err.Error(), "Access denied") {
			t.Errorf("error = %v, want access denied", err)
		}
	})
}

func TestStreamTerminal_Timeout(t *testing.T) {
	term := startFakeDevice(t, &fakeDevice{hostname: "core-sw1", hangOn: "show ip arp"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := term.Send(ctx, "show ip arp")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send() error = %v, want deadline exceeded", err)
	}
}

func TestStreamTerminal_Disconnect(t *testing.T) {
	term := startFakeDevice(t, &fakeDevice{hostname: "core-sw1", dropOn: "show ip arp"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	lines, err := term.Send(ctx, "show ip arp")
	if err == nil {
		t.Fatal("Send() should fail when the device drops the session")
	}
	if lines != nil {
		t.Errorf("partial output returned: %q", lines)
	}
	if !strings.Contains(err.Error(), "session closed") {
		t.Errorf("error = %v, want session closed", err)
	}

	// A dead session fails fast on the next command.
	if _, err := term.Send(ctx, "terminal no length"); err == nil {
		t.Error("Send() after disconnect should fail")
	}
}

func TestCommandOutput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		command string
		want    []string
	}{
		{
			name:    "echo and prompt removed",
			raw:     "core-sw1#show ip arp\nheader\nrow\ncore-sw1#",
			command: "show ip arp",
			want:    []string{"header", "row"},
		},
		{
			name:    "no echo",
			raw:     "header\nrow\n\ncore-sw1#",
			command: "show ip arp",
			want:    []string{"header", "row"},
		},
		{
			name:    "blank lines trimmed",
			raw:     "show mac-address-table dynamic\n\n\nheader\n\ncore-sw1#",
			command: "show mac-address-table dynamic",
			want:    []string{"header"},
		},
		{
			name:    "prompt only",
			raw:     "core-sw1#",
			command: "terminal length 0",
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commandOutput(tt.raw, tt.command)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("commandOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("abc\r\n"); got != "abc\n" {
		t.Errorf("sanitize() = %q", got)
	}
	if got := sanitize("abX\bc"); got != "abc" {
		t.Errorf("sanitize() = %q, want abc", got)
	}
}

func TestDefaultPrompt(t *testing.T) {
	for _, p := range []string{"core-sw1>", "core-sw1#", "core-sw1(config)#", "sw1# "} {
		if !DefaultPrompt.MatchString(p) {
			t.Errorf("DefaultPrompt should match %q", p)
		}
	}
	for _, p := range []string{"Internet  10.0.0.1  -  0000.0c9f.f002  ARPA  Gi0/1", "Password: ", ""} {
		if DefaultPrompt.MatchString(p) {
			t.Errorf("DefaultPrompt should not match %q", p)
		}
	}
}
