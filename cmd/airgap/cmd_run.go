package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/bridge"
	"github.com/airgaplab/airgap/pkg/policy"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command with a network policy snapshot in its environment",
	Long: `Run a command with the merged network policy encoded into the
` + bridge.PolicyEnv + ` environment variable. A child process built with this
module adopts the snapshot at startup, which is how forked test processes
inherit the parent runner's policy.`,
	Example: `  airgap run --allow-host localhost -- go test ./...
  airgap run --block-host "*.amazonaws.com" -- ./integration.sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSlice("allow-host", nil, "Widen the allow-list (can be repeated)")
	runCmd.Flags().StringSlice("block-host", nil, "Widen the block-list (can be repeated)")
	viper.BindPFlag("run.allow-host", runCmd.Flags().Lookup("allow-host"))
	viper.BindPFlag("run.block-host", runCmd.Flags().Lookup("block-host"))
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}

	// Through viper so a config file can supply the lists; a set flag wins.
	allow := viper.GetStringSlice("run.allow-host")
	block := viper.GetStringSlice("run.block-host")
	conf := policy.Merge(defaults, &api.Override{
		AllowedHosts: allow,
		BlockedHosts: block,
	})

	encoded, _, err := bridge.EncodeEnv(conf)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	child := exec.CommandContext(ctx, args[0], args[1:]...)
	child.Env = append(os.Environ(), bridge.PolicyEnv+"="+encoded)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	if err := child.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return errx.Wrap(ErrRunCommand, err)
	}
	return nil
}

func contextWithSignal(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
