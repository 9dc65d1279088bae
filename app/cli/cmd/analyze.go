package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/utils"
)

var compact bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript.json|->",
	Short: "Analyze a provider transcript",
	Long: `Analyze reads a transcript JSON document with "text" and "words" (each word with
"text", "start" and "end" in milliseconds and "confidence") and prints the evaluation.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&compact, "compact", false, "print single-line JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raw, err := readTranscript(cmd, args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := analysis.NewAnalyzer(cfg).Run(*raw)
	if err != nil {
		log.WithError(err).WithField("code", utils.CodeOf(err)).Debug("analysis failed")
		return fmt.Errorf("%s: %s", utils.CodeOf(err), utils.SafeMessage(err))
	}

	log.WithFields(logrus.Fields{
		"words":               len(res.Words),
		"pronunciation_score": res.PronunciationScore,
	}).Debug("analysis completed")

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func readTranscript(cmd *cobra.Command, path string) (*analysis.RawTranscription, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open transcript: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw analysis.RawTranscription
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &raw, nil
}
