package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/catalog"
	"github.com/confscout/speaker-scout/internal/matcher"
	"github.com/confscout/speaker-scout/internal/util"
)

const (
	PromptShowReasoning = "Show reasoning"
	PromptDumpToFile    = "Dump matches to file"
	PromptExit          = "Exit"

	reasoningPreviewLength = 240
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReasoning, PromptDumpToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match [business context]",
	Short: "Score the speaker catalog against your business context and print ranked matches",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		match(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64P("threshold", "t", 0, "minimum score (0-10) for a speaker to be listed (overrides matching.threshold)")
	matchCmd.Flags().BoolP("no-prompt", "y", false, "print matches and exit without the interactive prompt")

	viper.BindPFlag("matching.threshold", matchCmd.Flags().Lookup("threshold"))
}

// match is the one-shot CLI counterpart of the /match endpoint.
func match(cmd *cobra.Command, businessContext string) {
	ctx := context.Background()

	log := mustLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		log.Fatal("config is required")
	}

	catalogFile := config.CatalogFile
	if catalogFile == "" {
		catalogFile = defaultCatalogFile
	}

	cat, err := catalog.FromFile(catalogFile)
	if err != nil {
		log.Fatal("loading speaker catalog", zap.Error(err))
	}

	log.Info("loaded speaker catalog", zap.Int("count", cat.Len()))

	engine, err := newMatcher(ctx, config, log)
	if err != nil {
		log.Fatal("building matcher", zap.Error(err))
	}
	defer engine.Close()

	threshold := viper.GetFloat64("matching.threshold")

	set, err := engine.Recommend(ctx, matcher.Query{Context: businessContext, Threshold: threshold}, cat)
	if err != nil {
		log.Fatal("matching failed", zap.Error(err))
	}

	log.Info("matching completed",
		zap.Int("total_speakers", set.TotalCount),
		zap.Int("matches_found", set.MatchedCount),
		zap.Float64("threshold", threshold),
	)

	printMatches(set)

	if cmd.Flag("no-prompt").Value.String() == "true" || set.MatchedCount == 0 {
		return
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(action, set, log); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(action string, set *matcher.MatchSet, log *zap.Logger) error {
	switch action {
	case PromptShowReasoning:
		for i, m := range set.Matches {
			fmt.Printf("%d. %s (%.1f/10)\n   %s\n", i+1, m.Name, m.Score, util.TruncateForLog(m.Reasoning, reasoningPreviewLength))
		}
		return nil
	case PromptDumpToFile:
		filename, err := set.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		log.Info("dumped matches to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printMatches(set *matcher.MatchSet) {
	if set.MatchedCount == 0 {
		fmt.Println("No speakers matched the threshold.")
		return
	}

	for i, m := range set.Matches {
		line := m.Name
		if m.Title != "" {
			line += " / " + m.Title
		}
		if m.Organization != "" {
			line += " / " + m.Organization
		}
		fmt.Printf("%d. %s - %.1f/10\n", i+1, line, m.Score)
	}
}
