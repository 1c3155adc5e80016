package cmd

import (
	"context"

	"github.com/Dolphinator7/airtable-automation/internal/eligibility"
	"github.com/Dolphinator7/airtable-automation/internal/pipeline"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var decompressPrompt = promptui.Select{
	Label: "Decompress creates new child records on every run. Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Store every applicant's child records as a single Compressed JSON document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd, pipeline.OperationCompress, func(_ context.Context, env *environment) (operation, error) {
			return pipeline.NewCompressor(env.deps), nil
		})
	},
}

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Recreate child records from every applicant's Compressed JSON document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd, pipeline.OperationDecompress, func(_ context.Context, env *environment) (operation, error) {
			if err := confirmDecompress(env); err != nil {
				return nil, err
			}
			return pipeline.NewDecompressor(env.deps), nil
		})
	},
}

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Create a shortlisted lead for every applicant passing the eligibility rules",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd, pipeline.OperationShortlist, func(_ context.Context, env *environment) (operation, error) {
			criteria := eligibility.DefaultCriteria()
			if env.config.Shortlist != nil {
				criteria = *env.config.Shortlist
			}
			return pipeline.NewShortlister(env.deps, eligibility.New(criteria)), nil
		})
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Ask a language model to summarise and score every applicant",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd, pipeline.OperationEnrich, func(ctx context.Context, env *environment) (operation, error) {
			generator, err := newGenerator(ctx, env.config.LLM, env.logger, env.metrics)
			if err != nil {
				return nil, err
			}

			maxLogLength := 0
			if env.config.LLM != nil {
				maxLogLength = env.config.LLM.MaxLogLength
			}
			return pipeline.NewEnricher(env.deps, generator, maxLogLength), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(compressCmd, decompressCmd, shortlistCmd, enrichCmd)

	decompressCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before creating child records")
}

func confirmDecompress(env *environment) error {
	if env.cmd.Flag("yes").Value.String() == "true" {
		return nil
	}

	_, answer, err := decompressPrompt.Run()
	if err != nil {
		return err
	}

	if answer != PromptYes {
		env.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	}

	return nil
}
