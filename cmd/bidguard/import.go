package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securetender/bidguard/internal/models"
	"github.com/securetender/bidguard/pkg/io/csv"
)

func (a *app) importCmd() *cobra.Command {
	var hasHeader bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import bids from a CSV file into the bid store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := csv.NewReader(args[0], csv.WithHeader(hasHeader))
			if err != nil {
				return err
			}
			defer reader.Close()

			records, err := reader.Read()
			if err != nil {
				return err
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			inserted := 0
			for _, r := range records {
				bid := &models.Bid{
					TenderID:     r.TenderID,
					CompanyName:  r.CompanyName,
					ContactEmail: r.ContactEmail,
					BidAmount:    r.BidAmount,
					Proposal:     r.Proposal,
					SubmittedAt:  r.SubmittedAt,
				}
				if _, err := store.InsertBid(bid); err != nil {
					return fmt.Errorf("import row %d: %w", inserted+1, err)
				}
				inserted++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bids from %s\n", inserted, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&hasHeader, "header", true, "treat the first row as a header")
	return cmd
}
