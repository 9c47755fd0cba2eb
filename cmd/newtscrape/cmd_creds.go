package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtscrape/pkg/cli"
	"github.com/newtron-network/newtscrape/pkg/credential"
	"github.com/newtron-network/newtscrape/pkg/util"
)

var credsCmd = &cobra.Command{
	Use:   "creds <hostname>",
	Short: "Show which credential rule matches a hostname",
	Long: `Resolve a hostname against the configured credential rules and show the
result. Secrets are masked.

Examples:
  newtscrape creds core-sw1
  newtscrape -c lab.yaml creds edge-rtr2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, err := credential.NewResolver(cfg.Credentials)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		cred, err := resolver.Resolve(args[0])
		if errors.Is(err, util.ErrNoCredentials) {
			fmt.Fprintf(w, "%s: no rule matches (%d rules)\n", cli.Red(args[0]), resolver.Len())
			return nil
		}
		if err != nil {
			return err
		}

		t := cli.NewTable(w, "FIELD", "VALUE")
		t.Row("rule", strconv.Itoa(cred.Rule)+" ("+cfg.Credentials[cred.Rule].Pattern+")")
		t.Row("login", cred.Login)
		t.Row("secret", util.MaskSecret(cred.Secret))
		t.Row("privilege_secret", util.CoalesceString(util.MaskSecret(cred.PrivilegeSecret), "(none)"))
		t.Row("transport", cred.Transport)
		t.Row("timeout", cred.Timeout.String())
		return t.Flush()
	},
}
