package cmd

import (
	"os"

	"github.com/aqlanhadi/baldigest/config"
	"github.com/aqlanhadi/baldigest/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "baldigest [path]",
		Short: "Reduce bank statements to one transaction line per month",
		Long: `baldigest pulls the transaction rows out of bank statements and keeps,
for each month, the last transaction on or before a target day.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runDigest(cmd.Context(), cmd.OutOrStdout(), args[0], false, false)
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.baldigest.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	logger.Init(verbose)
}

func initConfig() {
	cobra.CheckErr(config.Init(cfgFile))
}
