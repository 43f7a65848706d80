package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	Aliases: []string{"organization"},
	Short:   "Show or edit your organization",
	Long: `Show or edit the organization you administer.

Examples:
  amply org show
  amply org summary --output json
  amply org update --website https://example.org --mission "Clean water for all"`,
}

var orgShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the organization profile and review status",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenOrganization); err != nil {
			return err
		}
		o, err := rt.api.Organization(ctx)
		if err != nil {
			return err
		}
		return render(cmd, o, organizationRecord(o))
	}),
}

var orgSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show donation totals, fund balances and recent donations",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		// Totals are operating data, gated like the donations screen.
		if err := rt.authorize(ctx, route.ScreenDonations); err != nil {
			return err
		}
		s, err := rt.api.OrganizationSummary(ctx)
		if err != nil {
			return err
		}
		return render(cmd, s, summaryView(s))
	}),
}

var orgUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields of the organization",
	Long: `Update profile fields. Only the flags you pass are sent.

Examples:
  amply org update --display-name "Clean Water e.V."
  amply org update --description "$(cat about.md)"`,
	Args: cobra.NoArgs,
	RunE: runE(runOrgUpdate),
}

var donationsCmd = &cobra.Command{
	Use:   "donations",
	Short: "Donations received by your organization",
}

var donationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List donations",
	Long: `List donations, newest first.

Examples:
  amply donations list
  amply donations list --status completed --page 2`,
	Args: cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenDonations); err != nil {
			return err
		}
		p, err := rt.api.Donations(ctx, listOptions())
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"DATE", "DONOR", "FUND", "AMOUNT", "NET", "STATUS"}, func(d types.DonationListItem) []string {
			return []string{
				shortDate(orFallback(d.CompletedAt, d.CreatedAt)),
				d.DonorName(),
				orDash(d.FundName),
				types.FormatAmount(d.Amount, d.Currency),
				types.FormatAmount(d.NetAmount, d.Currency),
				d.Status,
			}
		})
	}),
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "The public ledger of your organization",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries",
	Long: `List ledger entries in sequence order.

Examples:
  amply ledger list
  amply ledger list --type donation_received --fund f_general`,
	Args: cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenLedger); err != nil {
			return err
		}
		p, err := rt.api.Ledger(ctx, listOptions())
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"#", "DATE", "TYPE", "FUND", "AMOUNT", "DESCRIPTION"}, func(e types.LedgerEntry) []string {
			return []string{
				fmt.Sprintf("%d", e.SequenceNumber),
				shortDate(e.CreatedAt),
				string(e.EntryType),
				orDash(e.FundName),
				types.FormatAmount(e.Amount, e.Currency),
				orDash(e.Description),
			}
		})
	}),
}

var fundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "Funds of your organization",
}

var fundsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List funds",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenFunds); err != nil {
			return err
		}
		p, err := rt.api.Funds(ctx)
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"ID", "NAME", "TYPE", "BALANCE", "GOAL", "ACTIVE"}, func(f types.Fund) []string {
			name := f.Name
			if f.IsDefault {
				name += " (default)"
			}
			goal := "-"
			if f.GoalAmount != nil {
				goal = fmt.Sprintf("%s (%.0f%%)", types.FormatAmount(*f.GoalAmount, f.Currency), f.Progress())
			}
			return []string{f.ID, name, string(f.FundType), types.FormatAmount(f.CurrentAmount, f.Currency), goal, yesNo(f.IsActive)}
		})
	}),
}

var fundsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a fund",
	Long: `Create a fund.

Examples:
  amply funds create --name "Emergency relief" --type emergency --goal 10000`,
	Args: cobra.NoArgs,
	RunE: runE(runFundsCreate),
}

var (
	listPage      int
	listPageSize  int
	listStatus    string
	listFund      string
	listEntryType string

	fundName        string
	fundDescription string
	fundType        string
	fundCurrency    string
	fundGoal        string
)

// orgFields maps org update flags to the fields they set.
var orgFields = []struct {
	flag  string
	usage string
	set   func(u *types.OrganizationUpdate, v *string)
}{
	{"display-name", "public display name", func(u *types.OrganizationUpdate, v *string) { u.DisplayName = v }},
	{"description", "description (markdown)", func(u *types.OrganizationUpdate, v *string) { u.Description = v }},
	{"mission", "mission statement", func(u *types.OrganizationUpdate, v *string) { u.MissionStatement = v }},
	{"website", "website URL", func(u *types.OrganizationUpdate, v *string) { u.WebsiteURL = v }},
	{"contact-email", "contact email", func(u *types.OrganizationUpdate, v *string) { u.ContactEmail = v }},
	{"contact-phone", "contact phone", func(u *types.OrganizationUpdate, v *string) { u.ContactPhone = v }},
	{"city", "city", func(u *types.OrganizationUpdate, v *string) { u.City = v }},
	{"postal-code", "postal code", func(u *types.OrganizationUpdate, v *string) { u.PostalCode = v }},
}

func init() {
	for _, f := range orgFields {
		orgUpdateCmd.Flags().String(f.flag, "", f.usage)
	}
	orgCmd.AddCommand(orgShowCmd)
	orgCmd.AddCommand(orgSummaryCmd)
	orgCmd.AddCommand(orgUpdateCmd)

	addListFlags(donationsListCmd)
	donationsListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (pending, completed, refunded, failed)")
	donationsListCmd.Flags().StringVar(&listFund, "fund", "", "filter by fund ID")
	donationsCmd.AddCommand(donationsListCmd)

	addListFlags(ledgerListCmd)
	ledgerListCmd.Flags().StringVar(&listFund, "fund", "", "filter by fund ID")
	ledgerListCmd.Flags().StringVar(&listEntryType, "type", "", "filter by entry type (genesis, donation_received, refund_issued, adjustment)")
	ledgerCmd.AddCommand(ledgerListCmd)

	fundsCreateCmd.Flags().StringVar(&fundName, "name", "", "fund name (required)")
	fundsCreateCmd.Flags().StringVar(&fundDescription, "description", "", "description")
	fundsCreateCmd.Flags().StringVar(&fundType, "type", string(types.FundGeneral), "fund type (general, project, restricted, emergency)")
	fundsCreateCmd.Flags().StringVar(&fundCurrency, "currency", "", "ISO currency code (default: the organization currency)")
	fundsCreateCmd.Flags().StringVar(&fundGoal, "goal", "", "goal amount in major units, e.g. 2500 or 99.50")
	fundsCmd.AddCommand(fundsListCmd)
	fundsCmd.AddCommand(fundsCreateCmd)

	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(donationsCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(fundsCmd)
}

func addListFlags(c *cobra.Command) {
	c.Flags().IntVar(&listPage, "page", 1, "page number")
	c.Flags().IntVar(&listPageSize, "page-size", 0, "items per page (default: the endpoint default)")
}

func listOptions() platform.ListOptions {
	return platform.ListOptions{
		Page:      listPage,
		PageSize:  listPageSize,
		Status:    listStatus,
		FundID:    listFund,
		EntryType: listEntryType,
	}
}

func runOrgUpdate(cmd *cobra.Command, _ []string, rt *runtime) error {
	var update types.OrganizationUpdate
	changed := false
	for _, f := range orgFields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		v = strings.TrimSpace(v)
		f.set(&update, &v)
		changed = true
	}
	if !changed {
		return amplyerrors.New(amplyerrors.ErrCodeFieldRequired, "nothing to update").
			WithSuggestion("Pass at least one field flag, see 'amply org update --help'")
	}
	if w := update.WebsiteURL; w != nil && *w != "" && !strings.HasPrefix(*w, "https://") && !strings.HasPrefix(*w, "http://") {
		return amplyerrors.NewFieldInvalidError("website", "must start with http:// or https://")
	}

	ctx := cmd.Context()
	if err := rt.authorize(ctx, route.ScreenOrganizationSettings); err != nil {
		return err
	}
	o, err := rt.api.UpdateOrganization(ctx, update)
	if err != nil {
		return err
	}
	rt.session.UpdateUser(session.UserPatch{Organization: o.Summary()})
	say(cmd, "Organization saved.")
	return render(cmd, o, organizationRecord(o))
}

func runFundsCreate(cmd *cobra.Command, _ []string, rt *runtime) error {
	req := types.FundCreate{
		Name:        strings.TrimSpace(fundName),
		Description: strings.TrimSpace(fundDescription),
		FundType:    types.FundType(strings.ToLower(fundType)),
		Currency:    strings.ToUpper(strings.TrimSpace(fundCurrency)),
	}
	if req.Name == "" {
		return amplyerrors.NewFieldRequiredError("name").WithSuggestion("Pass --name")
	}
	switch req.FundType {
	case types.FundGeneral, types.FundProject, types.FundRestricted, types.FundEmergency:
	default:
		return amplyerrors.NewFieldInvalidError("type", "must be general, project, restricted or emergency")
	}
	if fundGoal != "" {
		goal, err := types.ParseAmount(fundGoal)
		if err != nil || goal <= 0 {
			return amplyerrors.NewFieldInvalidError("goal", "must be a positive amount")
		}
		req.GoalAmount = &goal
	}

	ctx := cmd.Context()
	if err := rt.authorize(ctx, route.ScreenFunds); err != nil {
		return err
	}
	f, err := rt.api.CreateFund(ctx, req)
	if err != nil {
		return err
	}
	return render(cmd, f, fmt.Sprintf("Created fund %s (%s)", f.Name, f.ID))
}

func organizationRecord(o *types.OrganizationDetail) record {
	return record{
		{"Name", orFallback(o.DisplayName, o.Name)},
		{"Slug", o.Slug},
		{"Type", orDash(o.OrganizationType)},
		{"Review status", orDash(string(o.ReviewStatus))},
		{"Verification", orDash(o.VerificationStatus)},
		{"Public", yesNo(o.IsPublic)},
		{"Accepts donations", yesNo(o.CanReceiveDonations)},
		{"Currency", orDash(o.DefaultCurrency)},
		{"Mission", orDash(o.MissionStatement)},
		{"Website", orDash(o.WebsiteURL)},
		{"Contact", orDash(o.ContactEmail)},
		{"City", orDash(o.City)},
	}
}

type organizationSummary struct {
	*types.OrganizationSummary
}

func summaryView(s *types.OrganizationSummary) organizationSummary {
	return organizationSummary{s}
}

func (s organizationSummary) String() string {
	var b strings.Builder
	b.WriteString(record{
		{"Total raised", fmt.Sprintf("%s (%d donations)", types.FormatAmount(s.TotalAmount, s.Currency), s.TotalDonations)},
		{"This month", fmt.Sprintf("%s (%d donations)", types.FormatAmount(s.ThisMonthAmount, s.Currency), s.ThisMonthCount)},
		{"Pending", types.FormatAmount(s.PendingAmount, s.Currency)},
	}.String())

	if len(s.Funds) > 0 {
		b.WriteString("\n\nFunds\n")
		funds := make(record, 0, len(s.Funds))
		for _, f := range s.Funds {
			name := f.Name
			if f.IsDefault {
				name += " (default)"
			}
			funds = append(funds, [2]string{name, types.FormatAmount(f.Balance, f.Currency)})
		}
		b.WriteString(funds.String())
	}
	if len(s.RecentDonations) > 0 {
		b.WriteString("\n\nRecent donations\n")
		recent := make(record, 0, len(s.RecentDonations))
		for _, d := range s.RecentDonations {
			recent = append(recent, [2]string{shortDate(d.CompletedAt), d.DonorName + "  " + types.FormatAmount(d.Amount, d.Currency)})
		}
		b.WriteString(recent.String())
	}
	return b.String()
}

func orFallback(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
