package main

import (
	"github.com/spf13/cobra"

	"certforge/internal/logger"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "certctl",
		Short:         "Compose electrical installation condition reports",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.AddCommand(newComposeCmd(opts), newMigrateCmd(opts))
	return cmd
}

func (o *rootOptions) logger() (logger.Logger, error) {
	return logger.New(logger.Config{Level: o.logLevel, OutputPaths: []string{"stderr"}})
}
