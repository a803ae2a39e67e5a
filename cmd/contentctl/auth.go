package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harvestchurch/content-platform/internal/client/session"
	"github.com/harvestchurch/content-platform/internal/core/domain"
)

type meResponse struct {
	Actor             *domain.Actor `json:"actor"`
	AllowedCategories []string      `json:"allowed_categories"`
	Capabilities      []string      `json:"capabilities"`
	IsAdmin           bool          `json:"is_admin"`
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := secretFrom(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			actor, err := a.session.Login(cmd.Context(), email, secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", actor.DisplayName, actor.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var reg session.Registration
	var password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store its credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := secretFrom(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			reg.Secret = secret
			actor, err := a.session.Signup(cmd.Context(), reg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account created for %s (%s)\n", actor.DisplayName, actor.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "account password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and what it may do",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := a.session.Start(cmd.Context()); err != nil {
				return err
			}
			if a.session.CurrentActor() == nil {
				fmt.Fprintln(out, "not signed in")
				return nil
			}

			var me meResponse
			if err := a.manager.Call(cmd.Context(), http.MethodGet, "/v1/me", nil, &me); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s <%s>\n", me.Actor.DisplayName, me.Actor.ID)
			fmt.Fprintf(out, "role:         %s\n", me.Actor.Role)
			fmt.Fprintf(out, "categories:   %s\n", listOrNone(me.AllowedCategories))
			fmt.Fprintf(out, "capabilities: %s\n", listOrNone(me.Capabilities))
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored credential for a fresh one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := a.manager.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credential refreshed for %s\n", actor.DisplayName)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

// secretFrom returns flag when set, otherwise the first line of in.
func secretFrom(in io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("password required: pass --password or pipe it on stdin")
	}
	return secret, nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
