package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/qui/internal/tokenfile"
	"github.com/tonimelisma/qui/internal/traq"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with traQ in the browser",
		Long: `Authenticate with traQ using the OAuth2 authorization code flow.

A local callback server listens on redirect_port (default 8080) and the
browser is opened at the server's consent page. If the port is taken, the
URL is printed instead and the address the browser was redirected to is
read from stdin.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token for the current server",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

// openBrowser launches the platform URL opener. Replaced in tests.
var openBrowser = func(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()
	logger := cc.Logger

	logger.Info("login started", "server", cc.Cfg.ServerURL)

	ts, err := traq.Login(ctx, oauthOptions(cc.Cfg), cc.Cfg.TokenPath, openBrowser, cc.Stdin, logger)
	if err != nil {
		return err
	}

	client := traq.NewClient(cc.Cfg.ServerURL, newHTTPClient(cc.Cfg), ts, logger, userAgent(cc.Cfg))

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}

	meta := map[string]string{
		tokenfile.MetaUserID:    user.ID,
		tokenfile.MetaUserName:  user.Name,
		tokenfile.MetaServerURL: cc.Cfg.ServerURL,
	}
	if err := traq.SaveTokenMeta(cc.Cfg.TokenPath, meta); err != nil {
		// The token itself is saved; missing metadata only affects display.
		logger.Warn("failed to save account metadata", "error", err)
	}

	logger.Info("login successful", "user", user.Name)
	cc.Statusf("Logged in as @%s on %s\n", user.Name, cc.Cfg.ServerURL)

	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	meta, err := traq.LoadTokenMeta(cc.Cfg.TokenPath)
	if err != nil {
		cc.Logger.Debug("could not read token metadata", "error", err)
	}

	if err := traq.Logout(cc.Cfg.TokenPath, cc.Logger); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	if name := meta[tokenfile.MetaUserName]; name != "" {
		cc.Statusf("Logged out @%s from %s\n", name, cc.Cfg.ServerURL)
	} else {
		cc.Statusf("Logged out from %s\n", cc.Cfg.ServerURL)
	}

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Bot         bool   `json:"bot"`
	Server      string `json:"server"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	client, err := newTraqClient(ctx, cc)
	if err != nil {
		return err
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetching user: %w", err)
	}

	return printWhoami(cc, user)
}

func printWhoami(cc *CLIContext, user *traq.User) error {
	if cc.Flags.JSON {
		return printJSON(cc.Stdout, whoamiOutput{
			ID:          user.ID,
			Name:        user.Name,
			DisplayName: user.DisplayName,
			Bot:         user.Bot,
			Server:      cc.Cfg.ServerURL,
		})
	}

	fmt.Fprintf(cc.Stdout, "User:   @%s (%s)\n", user.Name, user.DisplayName)
	fmt.Fprintf(cc.Stdout, "ID:     %s\n", user.ID)
	fmt.Fprintf(cc.Stdout, "Server: %s\n", cc.Cfg.ServerURL)

	return nil
}
