package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/logger"
	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/output"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

const (
	PromptShowReasons         = "Show match reasons"
	PromptReportByCompany     = "Report by company"
	PromptShortlistToFile     = "Dump shortlist to file"
	PromptAppendToExcludeFile = "Append shortlist to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the candidate pool for the configured seeker",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("pool", "p", "", "candidate pool file (.json, .yaml)")
	matchCmd.Flags().String("field", "", "seeker field of study")
	matchCmd.Flags().String("domain", "", "seeker interested domain")
	matchCmd.Flags().String("goal", "", "seeker career goal (Mentorship, Internship, Career Switch, Higher Studies, Other)")
	matchCmd.Flags().String("band", "", "preferred mentor experience band (0-2, 2-5, 5-10, 10+, Any)")
	matchCmd.Flags().StringP("output", "o", output.FormatTable, "output format: table or json")
	matchCmd.Flags().Bool("explain", false, "show per-criterion sub-scores")
	matchCmd.Flags().Bool("no-color", false, "disable colored output")
	matchCmd.Flags().BoolP("yes", "y", false, "do not ask for follow-up actions")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")

	viper.BindPFlag("pool.file", matchCmd.Flags().Lookup("pool"))
	viper.BindPFlag("seeker.field-of-study", matchCmd.Flags().Lookup("field"))
	viper.BindPFlag("seeker.interested-domain", matchCmd.Flags().Lookup("domain"))
	viper.BindPFlag("seeker.career-goal", matchCmd.Flags().Lookup("goal"))
	viper.BindPFlag("seeker.experience-band", matchCmd.Flags().Lookup("band"))
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	format, _ := cmd.Flags().GetString("output")
	if err := output.ValidateFormat(format); err != nil {
		logger.Fatal("checking flags", zap.Error(err))
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	engine, err := buildEngine(config, logger)
	if err != nil {
		logger.Fatal("building the matching engine", zap.Error(err))
	}

	source, closeSource, err := buildSource(config, logger)
	if err != nil {
		logger.Fatal("preparing candidate source", zap.Error(err))
	}
	defer closeSource()

	pool, err := loadPool(ctx, source, config, logger)
	if err != nil {
		logger.Fatal("preparing candidate pool", zap.Error(err))
	}

	if pool.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	results, err := engine.FindMatches(&config.Seeker, pool.Items)
	if err != nil {
		logger.Fatal("ranking candidates", zap.Error(err))
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	printer := output.NewPrinter(os.Stdout, !noColor && os.Getenv("NO_COLOR") == "")

	var explain output.Explainer
	if on, _ := cmd.Flags().GetBool("explain"); on {
		explain = func(c *matching.CandidateProfile) matching.Breakdown {
			b, err := engine.Score(config.Seeker, *c)
			if err != nil {
				logger.Warn("explaining score", zap.String("candidate", c.ID), zap.Error(err))
			}
			return b
		}
	}

	if err := printer.Shortlist(format, results, explain); err != nil {
		logger.Fatal("printing shortlist", zap.Error(err))
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if yes || format == output.FormatJSON || len(results) == 0 {
		return
	}

	shortlist := &profiles.Candidates{}
	for _, r := range results {
		shortlist.Items = append(shortlist.Items, *r.Candidate)
	}

	for {
		items := []string{PromptShowReasons, PromptReportByCompany, PromptShortlistToFile}
		if config.ExcludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}
		prompt := promptui.Select{
			Label: "What next?",
			Items: append(items, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, printer, config, results, shortlist); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, printer *output.Printer, config *Config, results []matching.MatchResult, shortlist *profiles.Candidates) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptShowReasons:
		printer.Reasons(results)
		return nil
	case PromptReportByCompany:
		return printer.JSON(shortlist.ReportByCompany())
	case PromptShortlistToFile:
		filename, err := profiles.DumpToTmpFile(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping shortlist to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(config.ExcludeFile, logger, results)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(path string, logger *zap.Logger, results []matching.MatchResult) error {
	excluded, err := profiles.GetExcludedCandidatesFromFile(path)
	if err != nil {
		return err
	}

	candidates := make([]*matching.CandidateProfile, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, r.Candidate)
	}
	excluded.Append(profiles.ToExcluded(candidates))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", len(candidates)))
	return nil
}
