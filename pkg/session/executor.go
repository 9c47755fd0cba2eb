// Package session runs single show commands on network devices over an
// interactive CLI session.
package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/credential"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// Session bootstrap commands. Paging is disabled for the duration of the
// session and restored to the device default before closing.
const (
	CmdDisablePaging = "terminal length 0"
	CmdRestorePaging = "terminal no length"
	CmdDisable       = "disable"
)

// Session steps, reported in util.SessionError.Step.
const (
	StepConnect = "connect"
	StepPaging  = "paging"
	StepElevate = "elevate"
	StepCommand = "command"
	StepRestore = "restore"
)

// Terminal is an interactive CLI session on one device.
type Terminal interface {
	// Send issues one command and returns its output lines, without the
	// echoed command and trailing prompt.
	Send(ctx context.Context, command string) ([]string, error)
	// Elevate enters privileged mode with secret.
	Elevate(ctx context.Context, secret string) error
	Close() error
}

// Dialer opens a Terminal to host using cred.
type Dialer interface {
	Dial(ctx context.Context, host string, cred *credential.Credential) (Terminal, error)
}

// Executor opens one session per command. Dialers are keyed by transport
// name ("SSH").
type Executor struct {
	dialers map[string]Dialer
	log     logrus.FieldLogger
}

// NewExecutor creates an executor with no dialers registered.
func NewExecutor(log logrus.FieldLogger) *Executor {
	return &Executor{
		dialers: make(map[string]Dialer),
		log:     util.OrDiscard(log),
	}
}

// Register installs the dialer for a transport.
func (e *Executor) Register(transport string, d Dialer) *Executor {
	e.dialers[transport] = d
	return e
}

// Run connects to host, disables paging, elevates when cred carries a
// privilege secret, issues command and returns its output. Paging is
// restored, privilege dropped and the session closed on every exit path.
// Any failure is returned as a single *util.SessionError and no partial
// output is returned.
func (e *Executor) Run(ctx context.Context, host string, cred *credential.Credential, command string) (lines []string, err error) {
	log := e.log.WithFields(logrus.Fields{"device": host, "command": command})

	dialer, ok := e.dialers[cred.Transport]
	if !ok {
		return nil, util.NewSessionError(host, StepConnect,
			fmt.Errorf("%w: %q", util.ErrUnsupportedTransport, cred.Transport))
	}

	dialCtx, cancel := withTimeout(ctx, cred)
	term, err := dialer.Dial(dialCtx, host, cred)
	cancel()
	if err != nil {
		return nil, util.NewSessionError(host, StepConnect, err)
	}

	elevated := false
	defer func() {
		rerr := e.release(ctx, term, cred, elevated, log)
		if rerr != nil && err == nil {
			lines = nil
			err = util.NewSessionError(host, StepRestore, rerr)
		}
	}()

	if _, err := e.send(ctx, term, cred, CmdDisablePaging); err != nil {
		return nil, util.NewSessionError(host, StepPaging, err)
	}

	if cred.PrivilegeSecret != "" {
		stepCtx, cancel := withTimeout(ctx, cred)
		err := term.Elevate(stepCtx, cred.PrivilegeSecret)
		cancel()
		if err != nil {
			return nil, util.NewSessionError(host, StepElevate, err)
		}
		elevated = true
	}

	out, err := e.send(ctx, term, cred, command)
	if err != nil {
		return nil, util.NewSessionError(host, StepCommand, err)
	}
	log.WithField("lines", len(out)).Debug("command completed")
	return out, nil
}

// release returns the session to baseline and closes it. Restore errors are
// returned (the session was not left as found); close errors are only
// logged.
func (e *Executor) release(ctx context.Context, term Terminal, cred *credential.Credential, elevated bool, log logrus.FieldLogger) error {
	var firstErr error
	if _, err := e.send(ctx, term, cred, CmdRestorePaging); err != nil {
		firstErr = fmt.Errorf("%s: %w", CmdRestorePaging, err)
	}
	if elevated {
		if _, err := e.send(ctx, term, cred, CmdDisable); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", CmdDisable, err)
		}
	}
	if err := term.Close(); err != nil {
		log.WithError(err).Debug("closing session")
	}
	return firstErr
}

func (e *Executor) send(ctx context.Context, term Terminal, cred *credential.Credential, command string) ([]string, error) {
	stepCtx, cancel := withTimeout(ctx, cred)
	defer cancel()
	return term.Send(stepCtx, command)
}

func withTimeout(ctx context.Context, cred *credential.Credential) (context.Context, context.CancelFunc) {
	if cred.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cred.Timeout)
}
