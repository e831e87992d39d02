package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"school-admin/internal/api"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
	"school-admin/internal/session"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a school administrator",
	Long: `Log in with an administrator account. The password is read from the
terminal without echo, or from stdin with --password-stdin.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in administrator",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Administrator email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewReader(cmd.InOrStdin())

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
		if email, err = readLine(in); err != nil {
			return a.fail(err)
		}
	}

	password, err := readPassword(cmd, in, loginPasswordStdin)
	if err != nil {
		return a.fail(err)
	}

	input := models.LoginInput{Email: email, Password: password}
	if err := a.validator.Struct(input); err != nil {
		a.notifier.Failure(err)
		return err
	}

	s, err := a.client.Login(cmd.Context(), input)
	if err != nil {
		return a.fail(err)
	}

	a.formatter.PrintSuccess(a.catalog.T(i18n.MsgLoggedIn, s.Email))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Logout(cmd.Context()); err != nil {
		return a.fail(err)
	}

	a.formatter.PrintSuccess(a.catalog.T(i18n.MsgLoggedOut))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.sessions.ExpireIfNeeded(); err != nil {
		a.logger.Warn("Failed to clear expired session", "error", err)
	}

	current := a.sessions.Get()
	if current == nil {
		return a.fail(api.ErrNotAuthenticated)
	}

	expiresAt, err := session.ExpiresAt(current.Token)
	if err != nil {
		return a.fail(err)
	}

	return a.formatter.PrintSession(current, expiresAt)
}

// readPassword reads without echo from a terminal, otherwise one line from in
func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			raw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return "", fmt.Errorf("failed to read password: %w", err)
			}
			return string(raw), nil
		}
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", fmt.Errorf("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
