package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var givingCmd = &cobra.Command{
	Use:   "giving",
	Short: "Your personal giving",
	Long: `Show your donations and totals.

Examples:
  amply giving summary
  amply giving history --page 2 --output yaml`,
}

var givingHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List your donations",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenGiving); err != nil {
			return err
		}
		p, err := rt.api.GivingHistory(ctx, listOptions())
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"DATE", "ORGANIZATION", "CAMPAIGN", "AMOUNT", "STATUS", "RECEIPT"}, func(g types.GivingHistoryItem) []string {
			return []string{
				shortDate(orFallback(g.CompletedAt, g.CreatedAt)),
				g.OrganizationName,
				orDash(g.CampaignTitle),
				types.FormatAmount(g.Amount, g.Currency),
				g.Status,
				orDash(g.ReceiptNumber),
			}
		})
	}),
}

var givingSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show your giving totals",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenGiving); err != nil {
			return err
		}
		s, err := rt.api.GivingSummary(ctx)
		if err != nil {
			return err
		}
		return render(cmd, s, record{
			{"Total donated", types.FormatAmount(s.TotalDonated, s.Currency)},
			{"Donations", fmt.Sprintf("%d", s.TotalDonations)},
			{"Organizations", fmt.Sprintf("%d", s.TotalOrganizations)},
		})
	}),
}

func init() {
	addListFlags(givingHistoryCmd)

	givingCmd.AddCommand(givingHistoryCmd)
	givingCmd.AddCommand(givingSummaryCmd)
	rootCmd.AddCommand(givingCmd)
}
