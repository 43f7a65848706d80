package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Fundraising campaigns of your organization",
	Long: `List, inspect and create campaigns.

Examples:
  amply campaigns list --status active
  amply campaigns get c_123
  amply campaigns create --title "Clean water" --goal 5000 --type project`,
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenCampaigns); err != nil {
			return err
		}
		p, err := rt.api.Campaigns(ctx, listOptions())
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"ID", "TITLE", "STATUS", "RAISED", "GOAL", "PROGRESS"}, func(c types.Campaign) []string {
			return []string{
				c.ID,
				c.Title,
				string(c.Status),
				types.FormatAmount(c.CurrentAmount, c.Currency),
				types.FormatAmount(c.GoalAmount, c.Currency),
				fmt.Sprintf("%.0f%%", c.ProgressPercent),
			}
		})
	}),
}

var campaignsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenCampaignDetail); err != nil {
			return err
		}
		c, err := rt.api.Campaign(ctx, args[0])
		if err != nil {
			return err
		}
		return render(cmd, c, campaignRecord(c))
	}),
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Long: `Create a campaign. New campaigns start as drafts.

Examples:
  amply campaigns create --title "Clean water" --goal 5000
  amply campaigns create --title "Flood relief" --type emergency --goal 20000 --fund f_emergency --ends 2026-12-31`,
	Args: cobra.NoArgs,
	RunE: runE(runCampaignsCreate),
}

var (
	campaignTitle   string
	campaignType    string
	campaignSummary string
	campaignStory   string
	campaignGoal    string
	campaignFund    string
	campaignStarts  string
	campaignEnds    string
	campaignPublic  bool
)

func init() {
	addListFlags(campaignsListCmd)
	campaignsListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (draft, active, paused, completed, cancelled)")

	f := campaignsCreateCmd.Flags()
	f.StringVar(&campaignTitle, "title", "", "campaign title (required)")
	f.StringVar(&campaignType, "type", string(types.CampaignFundraiser), "campaign type (fundraiser, project, emergency, recurring)")
	f.StringVar(&campaignSummary, "summary", "", "short description")
	f.StringVar(&campaignStory, "story", "", "story (markdown)")
	f.StringVar(&campaignGoal, "goal", "", "goal amount in major units (required)")
	f.StringVar(&campaignFund, "fund", "", "fund ID donations go to")
	f.StringVar(&campaignStarts, "starts", "", "start date (YYYY-MM-DD)")
	f.StringVar(&campaignEnds, "ends", "", "end date (YYYY-MM-DD)")
	f.BoolVar(&campaignPublic, "public", true, "list the campaign publicly")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsGetCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	rootCmd.AddCommand(campaignsCmd)
}

func runCampaignsCreate(cmd *cobra.Command, _ []string, rt *runtime) error {
	req := types.CampaignCreate{
		Title:            strings.TrimSpace(campaignTitle),
		Type:             types.CampaignType(strings.ToLower(campaignType)),
		ShortDescription: strings.TrimSpace(campaignSummary),
		Story:            campaignStory,
		FundID:           strings.TrimSpace(campaignFund),
		StartsAt:         strings.TrimSpace(campaignStarts),
		EndsAt:           strings.TrimSpace(campaignEnds),
		IsPublic:         &campaignPublic,
	}
	if req.Title == "" {
		return amplyerrors.NewFieldRequiredError("title").WithSuggestion("Pass --title")
	}
	switch req.Type {
	case types.CampaignFundraiser, types.CampaignProject, types.CampaignEmergency, types.CampaignRecurring:
	default:
		return amplyerrors.NewFieldInvalidError("type", "must be fundraiser, project, emergency or recurring")
	}
	if campaignGoal == "" {
		return amplyerrors.NewFieldRequiredError("goal").WithSuggestion("Pass --goal, e.g. --goal 5000")
	}
	goal, err := types.ParseAmount(campaignGoal)
	if err != nil || goal <= 0 {
		return amplyerrors.NewFieldInvalidError("goal", "must be a positive amount")
	}
	req.GoalAmount = goal
	if req.StartsAt != "" && req.EndsAt != "" && req.EndsAt < req.StartsAt {
		return amplyerrors.NewFieldInvalidError("ends", "must not be before the start date")
	}

	ctx := cmd.Context()
	if err := rt.authorize(ctx, route.ScreenCampaignNew); err != nil {
		return err
	}
	c, err := rt.api.CreateCampaign(ctx, req)
	if err != nil {
		return err
	}
	return render(cmd, c, fmt.Sprintf("Created campaign %s (%s), status %s", c.Title, c.ID, c.Status))
}

func campaignRecord(c *types.Campaign) record {
	r := record{
		{"ID", c.ID},
		{"Title", c.Title},
		{"Type", string(c.Type)},
		{"Status", string(c.Status)},
		{"Raised", fmt.Sprintf("%s of %s (%.0f%%)", types.FormatAmount(c.CurrentAmount, c.Currency), types.FormatAmount(c.GoalAmount, c.Currency), c.ProgressPercent)},
		{"Donations", fmt.Sprintf("%d", c.DonationCount)},
		{"Public", yesNo(c.IsPublic)},
	}
	if c.StartsAt != "" || c.EndsAt != "" {
		r = append(r, [2]string{"Runs", shortDate(c.StartsAt) + " to " + shortDate(c.EndsAt)})
	}
	if c.ShortDescription != "" {
		r = append(r, [2]string{"Summary", c.ShortDescription})
	}
	return r
}
