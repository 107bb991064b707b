package cmd

import (
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Lists the transaction rows of statement(s)",
	Long: `Prints the lines that start with a recognised date, without any
monthly selection. A file without such lines reports no_candidates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("file")
		return runDigest(cmd.Context(), cmd.OutOrStdout(), target, false, true)
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringP("file", "f", ".", "File or folder in which baldigest will scan for statements")
}
