package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Store a bearer token",
		Args:  noArgs,
		RunE:  authLogin,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token",
		Args:  noArgs,
		RunE:  authLogout,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  noArgs,
		RunE:  authStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Decode the token locally (JWT only)",
		Args:  noArgs,
		RunE:  authWhoAmI,
	})
	return cmd
}

func authLogin(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		return usagef("read token: no input")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	if err := auth.SetToken(sc.Text(), nil); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	ui.OK(cmd.OutOrStdout(), "logged in")
	return nil
}

func authLogout(cmd *cobra.Command, args []string) error {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK(cmd.OutOrStdout(), "token is provided by "+auth.EnvVar+" env var (nothing to delete)")
		return nil
	}
	if err := auth.DeleteToken(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	ui.OK(cmd.OutOrStdout(), "logged out")
	return nil
}

func authStatus(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	ti, err := auth.GetToken()
	if err != nil {
		return err
	}
	if ti == nil {
		fmt.Fprintln(w, ui.Muted("not logged in"))
		fmt.Fprintln(w, "Run: todo auth login")
		return nil
	}
	fmt.Fprintf(w, "source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Fprintf(w, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "expires: (unknown)")
	}
	fmt.Fprintln(w, "env override: "+auth.EnvVar)
	return nil
}

// authWhoAmI decodes a JWT payload locally (unsigned); opaque tokens print basic info.
func authWhoAmI(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	ti, _ := auth.GetToken()
	if ti == nil || strings.TrimSpace(ti.Token) == "" {
		return usagef("not logged in. Run: todo auth login")
	}
	if payload, ok := auth.JWTPayload(ti.Token); ok {
		fmt.Fprintln(w, "JWT payload:")
		fmt.Fprintln(w, payload)
		return nil
	}
	fmt.Fprintln(w, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(w, "source:", ti.Source)
	return nil
}
