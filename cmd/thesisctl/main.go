package main

import (
	"fmt"
	"log"
	"os"
	"thesis-verification-api/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "thesisctl",
		Short:         "Operator tools for the thesis verification registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			s := config.Load()
			_, _ = config.InitLogging(s)
		},
	}
	root.AddCommand(newVerifyCmd(), newAIScoreCmd(), newRetryLedgerCmd())
	return root
}

// openDatabase connects to the configured database. Only commands that read
// the corpus need it.
func openDatabase() error {
	return config.InitDB(config.Current())
}
