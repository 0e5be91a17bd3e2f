package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/policy"
)

var checkCmd = &cobra.Command{
	Use:   "check <host>...",
	Short: "Evaluate hosts against the configured network policy",
	Long: `Evaluate hosts against the merged network policy (config file
defaults widened by --allow-host/--block-host) and report the verdict for
each. Exits non-zero when any host is blocked.

Patterns:
  *                Allow/block every host
  *.example.com    Subdomains of example.com (not example.com itself)
  api.example.com  Exact match`,
	Example: `  airgap check example.com
  airgap check --allow-host "localhost,*.local" localhost sub.local example.com
  airgap check --allow-host "*" --block-host evil.com evil.com anything.else`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("allow-host", nil, "Widen the allow-list (can be repeated)")
	checkCmd.Flags().StringSlice("block-host", nil, "Widen the block-list (can be repeated)")
	viper.BindPFlag("check.allow-host", checkCmd.Flags().Lookup("allow-host"))
	viper.BindPFlag("check.block-host", checkCmd.Flags().Lookup("block-host"))
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}

	// Through viper so a config file can supply the lists; a set flag wins.
	allow := viper.GetStringSlice("check.allow-host")
	block := viper.GetStringSlice("check.block-host")
	conf := policy.Merge(defaults, &api.Override{
		AllowedHosts: allow,
		BlockedHosts: block,
	})

	blocked := 0
	for _, host := range args {
		verdict := conf.Evaluate(host)
		if verdict.Allowed {
			fmt.Printf("%s: allowed", host)
		} else {
			blocked++
			fmt.Printf("%s: blocked (%s)", host, verdict.Reason)
		}
		if verdict.Pattern != "" {
			fmt.Printf(" [pattern %q]", verdict.Pattern)
		}
		fmt.Println()
	}

	if blocked > 0 {
		return errx.With(ErrHostsBlocked, ": %d of %d", blocked, len(args))
	}
	return nil
}
