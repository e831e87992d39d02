package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"school-admin/internal/config"
	"school-admin/internal/mailer"
	"school-admin/internal/printer"
)

var gmailTokenCmd = &cobra.Command{
	Use:   "gmail-token",
	Short: "Obtain the Gmail refresh token used to email invoices",
	Long: `Obtain the Gmail refresh token used to email invoices.

Opens the Google consent page, catches the redirect on a local callback
server and prints the variables to add to your .env file. The OAuth2
client must allow http://127.0.0.1:8090/callback as a redirect URI.`,
	Args: cobra.NoArgs,
	RunE: runGmailToken,
}

func init() {
	gmailTokenCmd.Flags().String("client-id", "", "OAuth2 client ID (default: configured value)")
	gmailTokenCmd.Flags().String("client-secret", "", "OAuth2 client secret (default: configured value)")
	gmailTokenCmd.Flags().String("callback", mailer.DefaultCallbackAddr, "Local address receiving the OAuth2 redirect")
	rootCmd.AddCommand(gmailTokenCmd)
}

func runGmailToken(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	clientID := stringFlag(cmd, "client-id")
	if clientID == "" {
		clientID = a.config.Gmail.ClientID
	}
	clientSecret := stringFlag(cmd, "client-secret")
	if clientSecret == "" {
		clientSecret = a.config.Gmail.ClientSecret
	}

	out := cmd.OutOrStdout()
	flow := mailer.TokenFlow{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Addr:         stringFlag(cmd, "callback"),
		Logger:       a.logger,
		Open: func(url string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Visit this URL to authorize sending mail:\n\n%s\n\n", url)
			return printer.OpenBrowser(url)
		},
	}

	token, err := flow.Run(cmd.Context())
	if err != nil {
		return a.fail(err)
	}
	if token.RefreshToken == "" {
		a.formatter.PrintWarning("Google returned no refresh token; revoke the previous grant and retry")
	}

	fmt.Fprintln(out, "# Add to your .env file")
	fmt.Fprintf(out, "%s_GMAIL_CLIENT_ID=%s\n", config.EnvPrefix, clientID)
	fmt.Fprintf(out, "%s_GMAIL_CLIENT_SECRET=%s\n", config.EnvPrefix, clientSecret)
	fmt.Fprintf(out, "%s_GMAIL_REFRESH_TOKEN=%s\n", config.EnvPrefix, token.RefreshToken)
	return nil
}
