package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/aqlanhadi/baldigest/config"
	"github.com/aqlanhadi/baldigest/extractor"
	"github.com/aqlanhadi/baldigest/summarize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digests statement(s)",
	Long: `Digests a given statement or every statement in a folder.
Each file is filtered down to its transaction rows and one row is
kept per month, the last one on or before the target day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("file")
		selectedOnly, _ := cmd.Flags().GetBool("selected-only")
		candidatesOnly, _ := cmd.Flags().GetBool("candidates-only")
		return runDigest(cmd.Context(), cmd.OutOrStdout(), target, selectedOnly, candidatesOnly)
	},
}

func runDigest(ctx context.Context, w io.Writer, target string, selectedOnly, candidatesOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	settings := config.Load()
	opts := extractor.Options{TargetDay: settings.TargetDayDefault, MaxMonths: settings.MaxMonthsDefault}

	results, err := extractor.ExecuteAgainstPath(target, opts)
	if err != nil {
		return err
	}

	var summarizer summarize.Summarizer
	if settings.SummarizeEnabled && !candidatesOnly {
		summarizer, err = newSummarizer(ctx, settings)
		if err != nil {
			return err
		}
	}

	single := len(results) == 1 && results[0].Path == target
	outputs := make([]interface{}, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			if single {
				return r.Err
			}
			continue
		}
		summarize.Apply(ctx, summarizer, &r.Digest, settings.SummarizeTimeout)
		outputs = append(outputs, extractor.CreateFinalOutput(r.Digest, selectedOnly, candidatesOnly))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if single {
		return enc.Encode(outputs[0])
	}
	return enc.Encode(outputs)
}

// newSummarizer returns the configured model-backed summarizer.
func newSummarizer(ctx context.Context, settings config.Config) (summarize.Summarizer, error) {
	g, err := summarize.NewGemini(ctx, settings.APIKey, settings.Model)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", settings.Model).Msg("summaries enabled")
	return g, nil
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().StringP("file", "f", ".", "File or folder in which baldigest will scan for statements")
	digestCmd.Flags().Int("day", 5, "Target day of month (1-31)")
	digestCmd.Flags().Int("months", 6, "Maximum number of months to keep")
	digestCmd.Flags().Bool("summarize", false, "Summarize the selected lines with a language model")
	digestCmd.Flags().Bool("selected-only", false, "Only print the selected lines")
	digestCmd.Flags().Bool("candidates-only", false, "Only print the transaction candidates")
	viper.BindPFlag("digest.target_day", digestCmd.Flags().Lookup("day"))
	viper.BindPFlag("digest.max_months", digestCmd.Flags().Lookup("months"))
	viper.BindPFlag("summarize.enabled", digestCmd.Flags().Lookup("summarize"))
}
