package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func pricesCmd() *cobra.Command {
	var billing bool
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Print the live mandi listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			feed := newFeed(cfg.LiveFeed)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			if billing {
				return enc.Encode(feed.BillingItems(cmd.Context()))
			}

			listing := feed.Fetch(cmd.Context(), cfg.LiveFeed.ListingLimit)
			fmt.Fprintf(os.Stderr, "source: %s\n", listing.Provenance)
			return enc.Encode(listing.Records)
		},
	}
	cmd.Flags().BoolVar(&billing, "billing", false, "print billing items instead of market records")
	return cmd
}
