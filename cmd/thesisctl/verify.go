package main

import (
	"os"
	"path/filepath"
	"thesis-verification-api/config"
	"thesis-verification-api/models"
	"thesis-verification-api/services"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const verifyLongDesc = `Verify a local PDF or DOCX against the registered corpus and print the report as JSON.

Examples:
  thesisctl verify thesis.pdf --title "Crop Yield Prediction" --author "A. Student"
  thesisctl verify thesis.docx --title "..." --author "..." --role submitter`

type verifyCommander struct {
	title       string
	author      string
	department  string
	institution string
	abstract    string
	role        string
}

func newVerifyCmd() *cobra.Command {
	cmder := &verifyCommander{}
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a document against the corpus",
		Long:  verifyLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&cmder.title, "title", "", "declared title (required)")
	cmd.Flags().StringVar(&cmder.author, "author", "", "declared author (required)")
	cmd.Flags().StringVar(&cmder.department, "department", "", "department")
	cmd.Flags().StringVar(&cmder.institution, "institution", "", "institution")
	cmd.Flags().StringVar(&cmder.abstract, "abstract", "", "abstract text")
	cmd.Flags().StringVar(&cmder.role, "role", models.RoleReviewer, "viewer role: reviewer or submitter")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func (c *verifyCommander) run(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := openDatabase(); err != nil {
		return err
	}
	s := config.Current()

	verifier := services.NewVerificationService(services.VerificationDeps{
		Corpus:   services.NewGormCorpusStore(config.DB),
		Embedder: services.NewOllamaEmbedder(s.OllamaURL, s.OllamaModel, s.EmbeddingTimeout),
	})
	report, err := verifier.Verify(cmd.Context(), services.VerificationRequest{
		Title:        c.title,
		Author:       c.author,
		Department:   c.department,
		Institution:  c.institution,
		AbstractText: c.abstract,
		FileName:     filepath.Base(path),
		Content:      data,
	}, c.role)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
