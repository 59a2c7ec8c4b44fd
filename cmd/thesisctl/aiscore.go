package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"thesis-verification-api/services"

	"github.com/spf13/cobra"
)

type aiScoreCommander struct {
	title    string
	abstract string
}

func newAIScoreCmd() *cobra.Command {
	cmder := &aiScoreCommander{}
	cmd := &cobra.Command{
		Use:   "ai-score <file>",
		Short: "Estimate the AI-generated-text probability of a document or text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&cmder.title, "title", "", "document title")
	cmd.Flags().StringVar(&cmder.abstract, "abstract", "", "abstract text")
	return cmd
}

func (c *aiScoreCommander) run(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc":
		if _, err := services.ValidateDocument(filepath.Base(path), data); err != nil {
			return err
		}
		text, err = services.DocumentExtractor{}.Extract(filepath.Base(path), data)
		if err != nil {
			return err
		}
	}

	res := services.AnalyzeAIContent(text, c.title, c.abstract)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "AI probability: %.1f%% (%s)\n", res.ProbabilityPct, res.ConclusionLabel)
	fmt.Fprintf(out, "Sample length: %d, confidence factor: %.2f\n", res.SampleLength, res.ConfidenceFactor)
	for _, ind := range res.Indicators {
		fmt.Fprintf(out, "  - %s\n", ind)
	}
	return nil
}
