package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/voiceeval/config"
	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/logger"
)

var (
	verbose    bool
	configPath string

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "voiceeval",
	Short: "Score speech transcripts for pronunciation, pace, pauses and filler words",
	Long: `voiceeval runs the speech analysis pipeline offline on a word-level transcript
produced by a speech-to-text provider and prints the evaluation as JSON.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		}
		log = logger.NewTo(cmd.ErrOrStderr(), level)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves thresholds from --config, falling back to ANALYSIS_CONFIG.
func loadConfig() (analysis.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("ANALYSIS_CONFIG")
	}
	cfg, err := config.LoadAnalysis(path)
	if err != nil {
		return analysis.Config{}, err
	}
	log.WithField("config", path).Debug("analysis config loaded")
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "analysis thresholds file (yaml, json or toml)")
}
