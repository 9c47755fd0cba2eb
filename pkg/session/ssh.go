package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/newtron-network/newtscrape/pkg/config"
	"github.com/newtron-network/newtscrape/pkg/credential"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// DefaultPrompt matches the last line of a Cisco-style prompt:
// "core-sw1>", "core-sw1#", "core-sw1(config)#".
var DefaultPrompt = regexp.MustCompile(`^\S+[>#]\s*$`)

// SSHDialer opens interactive shell sessions over SSH.
type SSHDialer struct {
	port            int
	hostKeyCallback ssh.HostKeyCallback
	prompt          *regexp.Regexp
	log             logrus.FieldLogger
}

// NewSSHDialer builds a dialer from the ssh section of the configuration.
// Host keys are checked against opts.KnownHosts (default
// ~/.ssh/known_hosts) unless InsecureIgnoreHostKey is set explicitly.
func NewSSHDialer(opts config.SSHOptions, log logrus.FieldLogger) (*SSHDialer, error) {
	d := &SSHDialer{
		port:   opts.Port,
		prompt: DefaultPrompt,
		log:    util.OrDiscard(log),
	}
	if d.port == 0 {
		d.port = 22
	}
	if opts.Prompt != "" {
		re, err := regexp.Compile(opts.Prompt)
		if err != nil {
			return nil, util.NewConfigError("ssh.prompt", "%v", err)
		}
		d.prompt = re
	}

	if opts.InsecureIgnoreHostKey {
		d.hostKeyCallback = ssh.InsecureIgnoreHostKey()
		return d, nil
	}

	path := opts.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, util.NewConfigError("ssh.known_hosts", "no known_hosts file and no home directory: %v", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, util.NewConfigError("ssh.known_hosts", "%v", err)
	}
	d.hostKeyCallback = cb
	return d, nil
}

// Dial connects, authenticates and starts an interactive shell. It returns
// once the first prompt has been seen.
func (d *SSHDialer) Dial(ctx context.Context, host string, cred *credential.Credential) (Terminal, error) {
	cfg := &ssh.ClientConfig{
		User: cred.Login,
		Auth: []ssh.AuthMethod{
			ssh.Password(cred.Secret),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = cred.Secret
				}
				return answers, nil
			}),
		},
		HostKeyCallback: d.hostKeyCallback,
		Timeout:         cred.Timeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(d.port))
	nd := &net.Dialer{Timeout: cred.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	// Bound the handshake by the same deadline.
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	conn.SetDeadline(time.Time{})
	client := ssh.NewClient(c, chans, reqs)

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ssh session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 38400,
		ssh.TTY_OP_OSPEED: 38400,
	}
	// Wide terminal so table rows are not wrapped.
	if err := sess.RequestPty("vt100", 200, 511, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("request pty: %w", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdin: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdout: %w", err)
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	term := newTerminal(stdin, stdout, d.prompt, func() error {
		serr := sess.Close()
		cerr := client.Close()
		if serr != nil && !errors.Is(serr, io.EOF) {
			return serr
		}
		return cerr
	})
	if _, err := term.waitPrompt(ctx); err != nil {
		term.Close()
		return nil, fmt.Errorf("waiting for prompt: %w", err)
	}
	d.log.WithFields(logrus.Fields{"device": host, "login": cred.Login}).Debug("ssh session established")
	return term, nil
}
