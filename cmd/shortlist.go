package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/recruiting"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var confirmPrompt = promptui.Select{
	Label: "Send shortlist notifications?",
	Items: []string{PromptYes, PromptNo},
}

var shortlistCmd = &cobra.Command{
	Use:   "shortlist <job name>",
	Short: "Notify the best matching candidates of a job over WhatsApp",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		shortlist(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)

	shortlistCmd.Flags().IntP("top-n", "n", 0, "number of candidates to notify (default 5)")
	shortlistCmd.Flags().Float64("minimum-score", 0, "skip candidates scoring below this value")
	shortlistCmd.Flags().Bool("skip-notified", false, "skip candidates already notified for this job")
	shortlistCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func shortlist(cmd *cobra.Command, jobName string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := mustLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building application", zap.Error(err))
	}
	defer a.close()

	topN, _ := cmd.Flags().GetInt("top-n")
	minScore, _ := cmd.Flags().GetFloat64("minimum-score")
	skipNotified, _ := cmd.Flags().GetBool("skip-notified")
	yes, _ := cmd.Flags().GetBool("yes")

	req := recruiting.ShortlistRequest{
		JobName:      jobName,
		TopN:         topN,
		MinimumScore: minScore,
		SkipNotified: skipNotified,
		DryRun:       true,
	}

	preview, err := a.svc.ShortlistNotify(ctx, req)
	if err != nil {
		logger.Fatal("selecting shortlist", zap.Error(err))
	}

	if len(preview.Candidates) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	for i, c := range preview.Candidates {
		logger.Info(fmt.Sprintf("%d. %s", i+1, c.CandidateName),
			zap.String("candidate_id", c.CandidateID),
			zap.String("phone", c.CandidatePhone),
			zap.Float64("score", c.Score),
		)
	}

	if !yes {
		_, action, err := confirmPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	req.DryRun = false
	res, err := a.svc.ShortlistNotify(ctx, req)
	if err != nil {
		logger.Fatal("sending shortlist", zap.Error(err))
	}

	logger.Info("shortlist notifications sent",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("total", res.Total),
	)
}
