package cmd

import (
	"github.com/spf13/cobra"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/internal/tui"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "View or change dashboard preferences",
	Long: `View or change the dashboard preferences stored in the state directory.

Preferences: theme, sidebar_collapsed, background_mode, language.
They survive logging out.

Examples:
  amply prefs get
  amply prefs get theme
  amply prefs set theme dark
  amply prefs set language     # pick from a list`,
}

var prefsGetCmd = &cobra.Command{
	Use:       "get [name]",
	Short:     "Show one or all preferences",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: prefs.Names(),
	RunE:      runPrefsGet,
}

var prefsSetCmd = &cobra.Command{
	Use:       "set <name> [value]",
	Short:     "Change a preference",
	Long:      `Change a preference. Without a value, choose one from a list.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: prefs.Names(),
	RunE:      runPrefsSet,
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}

// preferenceChoices lists the accepted values of each preference.
var preferenceChoices = map[string][]string{
	"theme":             {string(prefs.ThemeSystem), string(prefs.ThemeLight), string(prefs.ThemeDark)},
	"sidebar_collapsed": {"false", "true"},
	"background_mode":   {string(prefs.BackgroundWallpaper), string(prefs.BackgroundGradient)},
	"language":          prefs.LanguageCodes(),
}

func loadPrefs() (*prefs.Manager, error) {
	files, err := storage.NewFileStore(settings.State.Dir)
	if err != nil {
		return nil, err
	}
	return prefs.Load(files)
}

func runPrefsGet(cmd *cobra.Command, args []string) error {
	m, err := loadPrefs()
	if err != nil {
		return err
	}

	names := prefs.Names()
	if len(args) == 1 {
		names = args[:1]
	}
	values := make(map[string]string, len(names))
	view := make(record, 0, len(names))
	for _, name := range names {
		v, err := m.Get(name)
		if err != nil {
			return err
		}
		values[name] = v
		view = append(view, [2]string{name, v})
	}
	if len(args) == 1 {
		return render(cmd, values, values[args[0]])
	}
	return render(cmd, values, view)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	choices, known := preferenceChoices[name]
	if !known {
		return amplyerrors.NewFieldInvalidError(name, "is not a known preference").
			WithSuggestion("Known preferences: theme, sidebar_collapsed, background_mode, language")
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !tui.ShouldPrompt() {
			return amplyerrors.NewFieldRequiredError("value").WithSuggestion("Pass the value, e.g. 'amply prefs set " + name + " " + choices[0] + "'")
		}
		v, err := tui.PromptForSelect(name, choices)
		if err != nil {
			return err
		}
		value = v
	}

	m, err := loadPrefs()
	if err != nil {
		return err
	}
	if err := m.Set(name, value); err != nil {
		return err
	}
	saved, err := m.Get(name)
	if err != nil {
		return err
	}
	say(cmd, "%s = %s", name, saved)
	return nil
}
