// Package credential maps device hostnames to CLI login material using
// ordered pattern rules.
package credential

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/newtron-network/newtscrape/pkg/config"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// Credential is the normalized login material for one device.
type Credential struct {
	Login           string
	Secret          string
	PrivilegeSecret string
	Transport       string // upper case, "SSH" unless configured
	Timeout         time.Duration

	// Rule is the index of the rule that produced this credential.
	Rule int
}

type rule struct {
	pattern *regexp.Regexp
	src     config.CredentialRule
}

// Resolver holds compiled rules. It is read-only after construction and safe
// to share across goroutines.
type Resolver struct {
	rules []rule
}

// NewResolver compiles rules in order. An empty list or a structurally
// invalid rule is a configuration defect and wraps util.ErrInvalidConfig.
func NewResolver(rules []config.CredentialRule) (*Resolver, error) {
	if len(rules) == 0 {
		return nil, util.NewConfigError("credentials", "no credential rules configured")
	}
	var v util.ValidationBuilder
	r := &Resolver{rules: make([]rule, 0, len(rules))}
	for i, src := range rules {
		if errs := config.ValidateRule(i, src); len(errs) > 0 {
			v.AddAll(errs)
			continue
		}
		r.rules = append(r.rules, rule{
			pattern: regexp.MustCompile(src.Pattern),
			src:     src,
		})
	}
	if err := v.Build(); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve returns the credential of the first rule whose pattern matches
// anywhere in hostname. No match returns an error wrapping
// util.ErrNoCredentials; that is a warning for the caller, not a defect.
func (r *Resolver) Resolve(hostname string) (*Credential, error) {
	for i, rl := range r.rules {
		if !rl.pattern.MatchString(hostname) {
			continue
		}
		return &Credential{
			Login:           rl.src.Login,
			Secret:          rl.src.Secret,
			PrivilegeSecret: rl.src.PrivilegeSecret,
			Transport:       strings.ToUpper(util.CoalesceString(rl.src.Transport, config.DefaultTransport)),
			Timeout:         rl.src.Timeout(),
			Rule:            i,
		}, nil
	}
	return nil, fmt.Errorf("%w for %q", util.ErrNoCredentials, hostname)
}

// Len returns the number of rules.
func (r *Resolver) Len() int {
	return len(r.rules)
}
