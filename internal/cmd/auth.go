package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amply-impact/amply/internal/access"
	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/tui"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Amply",
	Long: `Sign in with your email address and password.

The access token is sealed and stored in the state directory, so later
commands and the dashboard reuse the session until it expires.

Examples:
  # Prompt for email and password
  amply login

  # Non-interactive, e.g. in scripts
  echo "$AMPLY_PASSWORD" | amply login --email you@example.org --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runE(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runE(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runE(runWhoami),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account with the registration wizard",
	Long: `Open the registration wizard in the terminal dashboard.

The wizard asks for the account type first (donor or organization), then
the details that type needs. After registering, verify your email and run
'amply login'.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE: runE(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		return runDashboard(cmd, rt, route.At(route.ScreenRegister))
	}),
}

var (
	loginEmail         string
	loginPasswordStdin bool
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email address")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
}

func runLogin(cmd *cobra.Command, _ []string, rt *runtime) error {
	email := strings.TrimSpace(loginEmail)
	var password string

	if loginPasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return amplyerrors.NewFieldRequiredError("password").
				WithSuggestion("Pipe the password on stdin when using --password-stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if email == "" {
		if !tui.ShouldPrompt() {
			return amplyerrors.NewFieldRequiredError("email").WithSuggestion("Pass --email")
		}
		v, err := tui.PromptForString(tui.Prompt{Message: "Email", Placeholder: "you@example.org", Required: true})
		if err != nil {
			return err
		}
		email = v
	}
	if password == "" {
		if !tui.ShouldPrompt() {
			return amplyerrors.NewFieldRequiredError("password").WithSuggestion("Pass --password-stdin")
		}
		v, err := tui.PromptForString(tui.Prompt{Message: "Password", Required: true, Secret: true})
		if err != nil {
			return err
		}
		password = v
	}

	user, err := rt.session.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	return render(cmd, user, fmt.Sprintf("Signed in as %s (%s)", user.Name(), user.Email))
}

func runLogout(cmd *cobra.Command, _ []string, rt *runtime) error {
	if !rt.session.Hydrate() {
		say(cmd, "Not logged in.")
		return nil
	}
	rt.session.SignOut(cmd.Context())
	say(cmd, "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string, rt *runtime) error {
	ctx := cmd.Context()
	rt.session.Boot(ctx)
	snap := rt.session.Snapshot()
	if !access.IsAuthenticated(snap) {
		return amplyerrors.NewNotLoggedInError()
	}
	return render(cmd, snap.User, userRecord(snap, rt.prefs.Language()))
}

func userRecord(s types.Session, lang prefs.Language) record {
	u := s.User
	r := record{
		{"Name", u.Name()},
		{"Email", u.Email},
		{"Email verified", yesNo(u.IsEmailVerified)},
		{"Account type", string(u.AccountType)},
	}
	if u.ContributorType != "" {
		r = append(r, [2]string{"Contributor type", string(u.ContributorType)})
	}
	if o := s.Organization; o != nil {
		r = append(r,
			[2]string{"Organization", o.Name},
			[2]string{"Review status", string(o.ReviewStatus)},
			[2]string{"Public", yesNo(o.IsPublic)},
		)
	}
	if b, ok := access.BannerFor(s); ok {
		r = append(r, [2]string{"Notice", prefs.T(lang, b.MessageKey)})
	}
	return r
}
