package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/yoockh/voiceeval/internal/analysis"
)

const analysisEnvPrefix = "VOICEEVAL"

// LoadAnalysis resolves analyzer thresholds from defaults, an optional yaml/json/toml
// file at path, and VOICEEVAL_* environment variables, in increasing precedence.
func LoadAnalysis(path string) (analysis.Config, error) {
	v := viper.New()

	def := analysis.DefaultConfig()
	v.SetDefault("confidence_threshold", def.ConfidenceThreshold)
	v.SetDefault("pause_threshold", def.PauseThreshold)
	v.SetDefault("long_pause_threshold", def.LongPauseThreshold)
	v.SetDefault("poor_pause_count", def.PoorPauseCount)
	v.SetDefault("poor_pause_seconds", def.PoorPauseSeconds)
	v.SetDefault("moderate_pause_count", def.ModeratePauseCount)
	v.SetDefault("fluency_pause_count", def.FluencyPauseCount)
	v.SetDefault("slow_wpm", def.SlowWPM)
	v.SetDefault("fast_wpm", def.FastWPM)
	v.SetDefault("filler_words", def.FillerWords)

	v.SetEnvPrefix(analysisEnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return analysis.Config{}, fmt.Errorf("read analysis config %s: %w", path, err)
		}
	}

	var cfg analysis.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return analysis.Config{}, fmt.Errorf("decode analysis config: %w", err)
	}
	if err := validateAnalysis(cfg); err != nil {
		return analysis.Config{}, err
	}
	return cfg, nil
}

func validateAnalysis(c analysis.Config) error {
	switch {
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("confidence_threshold must be within [0,1], got %v", c.ConfidenceThreshold)
	case c.PauseThreshold < 0:
		return errors.New("pause_threshold must not be negative")
	case c.LongPauseThreshold < c.PauseThreshold:
		return fmt.Errorf("long_pause_threshold (%v) must not be below pause_threshold (%v)", c.LongPauseThreshold, c.PauseThreshold)
	case c.ModeratePauseCount < 0 || c.PoorPauseCount < c.ModeratePauseCount:
		return errors.New("pause counts must satisfy 0 <= moderate_pause_count <= poor_pause_count")
	case c.SlowWPM < 0 || c.FastWPM < c.SlowWPM:
		return fmt.Errorf("wpm bounds must satisfy 0 <= slow_wpm (%d) <= fast_wpm (%d)", c.SlowWPM, c.FastWPM)
	case len(c.FillerWords) == 0:
		return errors.New("filler_words must not be empty")
	}
	return nil
}
