package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rfpdesk-server/src/budget"
	"rfpdesk-server/src/db"
	sqlstore "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/export"

	"github.com/spf13/cobra"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Work with proposal budgets",
	}
	cmd.AddCommand(newBudgetExportCmd(a))
	return cmd
}

func newBudgetExportCmd(a *app) *cobra.Command {
	var proposalID, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a proposal budget as CSV or HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			_, ext, ok := export.ContentType(format)
			if !ok {
				return fmt.Errorf("unsupported format %q", format)
			}

			ctx := cmd.Context()
			pool, err := db.Connect(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			store := sqlstore.NewStore(pool, nil)

			proposal, err := store.GetProposal(ctx, proposalID)
			if err != nil {
				return err
			}
			persons, err := store.ListPersons(ctx)
			if err != nil {
				return err
			}
			rows, err := store.LoadRows(ctx, proposalID)
			if err != nil {
				return err
			}
			ledger, err := budget.NewLedger(proposalID, persons, rows)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if ext == "csv" {
				return export.WriteCSV(w, ledger.Export())
			}
			return export.WriteHTML(w, proposal.Title+" Budget", ledger.Export())
		},
	}
	cmd.Flags().StringVar(&proposalID, "proposal", "", "proposal id")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("proposal")
	return cmd
}
