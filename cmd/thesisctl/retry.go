package main

import (
	"fmt"
	"thesis-verification-api/config"
	"thesis-verification-api/services"

	"github.com/spf13/cobra"
)

func newRetryLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry-ledger",
		Short: "Re-drive ledger commits for approved theses left pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := openDatabase(); err != nil {
				return err
			}
			s := config.Current()
			approvals := services.NewApprovalService(services.ApprovalDeps{
				DB:            config.DB,
				Ledger:        services.NewLedger(s),
				LedgerTimeout: s.LedgerTimeout,
			})

			res, err := approvals.RetryPendingLedger(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger retry: attempted %d, committed %d, failed %d\n",
				res.Attempted, res.Committed, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d records still pending", res.Failed)
			}
			return nil
		},
	}
}
