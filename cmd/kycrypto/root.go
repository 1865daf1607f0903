package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "kycrypto",
		Short:         "KYCrypto questionnaire, recommendation and checkout backend",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "config file path")

	cmd.AddCommand(
		newServeCommand(opts),
		newRecommendCommand(opts),
		newEntitlementCommand(opts),
	)
	return cmd
}
