package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/tui"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var widgetsCmd = &cobra.Command{
	Use:   "widgets",
	Short: "Embeddable donation widgets",
	Long: `List, create and delete donation widgets.

Examples:
  amply widgets list
  amply widgets create --name "Footer button" --type donation_button
  amply widgets delete w_123 --yes`,
}

var widgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List widgets",
	Args:  cobra.NoArgs,
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		ctx := cmd.Context()
		if err := rt.authorize(ctx, route.ScreenWidgets); err != nil {
			return err
		}
		p, err := rt.api.Widgets(ctx)
		if err != nil {
			return err
		}
		return renderList(cmd, p, []string{"ID", "NAME", "TYPE", "THEME", "EMBEDS", "ACTIVE"}, func(w types.Widget) []string {
			return []string{w.ID, w.Name, string(w.Type), string(w.Theme), fmt.Sprintf("%d", w.EmbedCount), yesNo(w.IsActive)}
		})
	}),
}

var widgetsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a widget and print its embed code",
	Args:  cobra.NoArgs,
	RunE:  runE(runWidgetsCreate),
}

var widgetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a widget",
	Long: `Delete a widget. Pages embedding it stop showing it.

Asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runE(runWidgetsDelete),
}

var (
	widgetName     string
	widgetType     string
	widgetTheme    string
	widgetButton   string
	widgetFund     string
	widgetCampaign string
	widgetShowGoal bool
	deleteYes      bool
)

func init() {
	f := widgetsCreateCmd.Flags()
	f.StringVar(&widgetName, "name", "", "widget name (required)")
	f.StringVar(&widgetType, "type", string(types.WidgetDonationButton), "widget type (donation_button, donation_form, progress_bar, leaderboard, recent_donations)")
	f.StringVar(&widgetTheme, "theme", string(types.WidgetThemeAuto), "color theme (light, dark, auto)")
	f.StringVar(&widgetButton, "button-text", "", "button label")
	f.StringVar(&widgetFund, "fund", "", "fund ID donations go to")
	f.StringVar(&widgetCampaign, "campaign", "", "campaign ID to show progress for")
	f.BoolVar(&widgetShowGoal, "show-goal", true, "show the goal and progress")

	widgetsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking")

	widgetsCmd.AddCommand(widgetsListCmd)
	widgetsCmd.AddCommand(widgetsCreateCmd)
	widgetsCmd.AddCommand(widgetsDeleteCmd)
	rootCmd.AddCommand(widgetsCmd)
}

func runWidgetsCreate(cmd *cobra.Command, _ []string, rt *runtime) error {
	req := types.WidgetCreate{
		Name:       strings.TrimSpace(widgetName),
		Type:       types.WidgetType(strings.ToLower(widgetType)),
		Theme:      types.WidgetTheme(strings.ToLower(widgetTheme)),
		ButtonText: strings.TrimSpace(widgetButton),
		FundID:     strings.TrimSpace(widgetFund),
		CampaignID: strings.TrimSpace(widgetCampaign),
		ShowGoal:   &widgetShowGoal,
	}
	if req.Name == "" {
		return amplyerrors.NewFieldRequiredError("name").WithSuggestion("Pass --name")
	}
	if !validWidgetType(req.Type) {
		return amplyerrors.NewFieldInvalidError("type", "is not a widget type").
			WithSuggestion("Use one of: donation_button, donation_form, progress_bar, leaderboard, recent_donations")
	}
	switch req.Theme {
	case types.WidgetThemeLight, types.WidgetThemeDark, types.WidgetThemeAuto:
	default:
		return amplyerrors.NewFieldInvalidError("theme", "must be light, dark or auto")
	}

	ctx := cmd.Context()
	if err := rt.authorize(ctx, route.ScreenWidgetNew); err != nil {
		return err
	}
	w, err := rt.api.CreateWidget(ctx, req)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Created widget %s (%s)", w.Name, w.ID)
	if w.EmbedCode != "" {
		text += "\n\nEmbed code:\n" + w.EmbedCode
	}
	return render(cmd, w, text)
}

func runWidgetsDelete(cmd *cobra.Command, args []string, rt *runtime) error {
	ctx := cmd.Context()
	id := args[0]
	if err := rt.authorize(ctx, route.ScreenWidgetDetail); err != nil {
		return err
	}

	if !deleteYes {
		if !tui.ShouldPrompt() {
			return amplyerrors.New(amplyerrors.ErrCodeFieldRequired, "refusing to delete without confirmation").
				WithField("yes").
				WithSuggestion("Pass --yes to delete non-interactively")
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Delete widget %s?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			say(cmd, "Cancelled.")
			return nil
		}
	}

	if err := rt.api.DeleteWidget(ctx, id); err != nil {
		return err
	}
	say(cmd, "Deleted widget %s.", id)
	return nil
}

func validWidgetType(t types.WidgetType) bool {
	for _, known := range types.WidgetTypes {
		if t == known {
			return true
		}
	}
	return false
}
