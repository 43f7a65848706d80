package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amply-impact/amply/internal/access"
	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/tui"
	"github.com/amply-impact/amply/internal/wizard"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Reset a forgotten password",
	Long: `Reset a forgotten password in two steps.

Examples:
  # Email a reset link
  amply password request-reset --email you@example.org

  # Set the new password with the token from that email
  echo "$NEW_PASSWORD" | amply password reset --token <token> --password-stdin`,
}

var requestResetCmd = &cobra.Command{
	Use:   "request-reset",
	Short: "Email a password reset link",
	Args:  cobra.NoArgs,
	RunE:  runE(runRequestReset),
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with an emailed token",
	Args:  cobra.NoArgs,
	RunE:  runE(runResetPassword),
}

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <token>",
	Short: "Confirm your email address",
	Long: `Confirm your email address with the token from the verification email.

When you are signed in, the stored session is refreshed afterwards so
'amply whoami' shows the verified address.`,
	Args: cobra.ExactArgs(1),
	RunE: runE(runVerifyEmail),
}

var (
	resetEmail         string
	resetToken         string
	resetPasswordStdin bool
)

func init() {
	requestResetCmd.Flags().StringVar(&resetEmail, "email", "", "account email address")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "token from the reset email")
	resetPasswordCmd.Flags().BoolVar(&resetPasswordStdin, "password-stdin", false, "read the new password from stdin")

	passwordCmd.AddCommand(requestResetCmd)
	passwordCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(verifyEmailCmd)
}

func runRequestReset(cmd *cobra.Command, _ []string, rt *runtime) error {
	email := strings.TrimSpace(resetEmail)
	if email == "" {
		if !tui.ShouldPrompt() {
			return amplyerrors.NewFieldRequiredError("email").WithSuggestion("Pass --email")
		}
		v, err := tui.PromptForString(tui.Prompt{Message: "Email", Placeholder: "you@example.org", Required: true})
		if err != nil {
			return err
		}
		email = strings.TrimSpace(v)
	}

	resp, err := rt.api.RequestPasswordReset(cmd.Context(), email)
	if err != nil {
		return err
	}
	return render(cmd, resp, acknowledged(resp, "If an account exists for that email, a reset link is on its way."))
}

func runResetPassword(cmd *cobra.Command, _ []string, rt *runtime) error {
	token := strings.TrimSpace(resetToken)
	if token == "" {
		return amplyerrors.NewFieldRequiredError("token").WithSuggestion("Pass --token from the reset email")
	}

	var password string
	if resetPasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return amplyerrors.NewFieldRequiredError("password").
				WithSuggestion("Pipe the new password on stdin when using --password-stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		if !tui.ShouldPrompt() {
			return amplyerrors.NewFieldRequiredError("password").WithSuggestion("Pass --password-stdin")
		}
		v, err := tui.PromptForString(tui.Prompt{Message: "New password", Required: true, Secret: true})
		if err != nil {
			return err
		}
		password = v
	}
	if err := wizard.CheckPassword(password); err != nil {
		return err
	}

	resp, err := rt.api.ResetPassword(cmd.Context(), token, password)
	if err != nil {
		return err
	}
	return render(cmd, resp, acknowledged(resp, "Password updated. Run 'amply login' with the new password."))
}

func runVerifyEmail(cmd *cobra.Command, args []string, rt *runtime) error {
	ctx := cmd.Context()
	token := strings.TrimSpace(args[0])
	if token == "" {
		return amplyerrors.NewFieldRequiredError("token")
	}

	resp, err := rt.api.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	if err := render(cmd, resp, acknowledged(resp, "Email verified.")); err != nil {
		return err
	}

	if !rt.session.Hydrate() {
		return nil
	}
	user, err := rt.session.Refresh(ctx)
	if err != nil {
		rt.logger.WithError(err).Debug("could not refresh session after verification")
		return nil
	}
	if access.IsAuthenticated(rt.session.Snapshot()) {
		say(cmd, "Signed in as %s, email verified: %s", user.Email, yesNo(user.IsEmailVerified))
	}
	return nil
}

func acknowledged(resp *types.MessageResponse, fallback string) string {
	if resp != nil && strings.TrimSpace(resp.Message) != "" {
		return resp.Message
	}
	return fallback
}
