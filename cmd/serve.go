package cmd

import (
	"os"
	"strings"

	"github.com/aqlanhadi/baldigest/api"
	"github.com/aqlanhadi/baldigest/config"
	"github.com/aqlanhadi/baldigest/summarize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts statement uploads and returns monthly digests as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Load()

		cfg := api.Config{
			Port:        ":" + strings.TrimPrefix(settings.Port, ":"),
			MaxUploadMB: settings.MaxUploadMB,
			Settings:    settings,
		}

		var summarizer summarize.Summarizer
		if summariesConfigured(settings) {
			s, err := newSummarizer(cmd.Context(), settings)
			if err != nil {
				log.Warn().Err(err).Msg("summaries unavailable")
			} else {
				summarizer = s
			}
		}

		server := api.New(cfg, summarizer, log.Logger)
		return server.Start()
	},
}

// summariesConfigured reports whether the server should build a model client:
// summaries are on by default, or a key is available for per-request use.
func summariesConfigured(settings config.Config) bool {
	if settings.SummarizeEnabled || settings.APIKey != "" {
		return true
	}
	return os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != ""
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
