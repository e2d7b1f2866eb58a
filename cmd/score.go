package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Compute the final score of a matching payload read from a JSON file or stdin",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := mustLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		mode, _ := cmd.Flags().GetString("mode")
		agg, err := newAggregator(config.Scoring, mode)
		if err != nil {
			logger.Fatal("building aggregator", zap.Error(err))
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				logger.Fatal("opening payload", zap.Error(err))
			}
			defer f.Close()
			in = f
		}

		if err := score(in, cmd.OutOrStdout(), agg); err != nil {
			logger.Fatal("scoring payload", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("mode", "m", "", "aggregation mode: lenient or strict (default from config)")
}

func score(r io.Reader, w io.Writer, agg *scoring.Aggregator) error {
	var payload map[string]any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	result, err := agg.Evaluate(payload)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
