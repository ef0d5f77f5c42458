// Package authcheck probes a deployed auth service end to end: a real
// login, an identity check with the issued token, and a negative check
// with a garbage token.
package authcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/tools/common"
	"github.com/fragansa/movies-web/internal/tools/ui"
)

type options struct {
	authURL  string
	email    string
	password string
	timeout  time.Duration
	ci       bool
}

func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "authcheck",
		Short: "Probe the auth API: login, identity check, token rejection",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts)
			if opts.ci {
				common.PrintCIResult(err == nil, "authcheck", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.authURL, "auth-url", "http://localhost:5000", "auth API base URL")
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func run(opts *options) ([]string, error) {
	probe := func(ctx context.Context) ([]string, error) {
		return check(ctx, opts)
	}
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		return probe(ctx)
	}
	return ui.Run("authcheck", probe)
}

func check(ctx context.Context, opts *options) ([]string, error) {
	client := authapi.New(opts.authURL, opts.timeout)
	var details []string

	res, err := client.Login(ctx, domain.Credentials{Email: opts.email, Password: opts.password})
	if err != nil {
		return details, fmt.Errorf("login: %w", err)
	}
	details = append(details, "login: ok")

	user, err := client.Me(ctx, res.AccessToken)
	if err != nil {
		return details, fmt.Errorf("identity check: %w", err)
	}
	if user.Email != opts.email {
		return details, fmt.Errorf("identity mismatch: got %q", user.Email)
	}
	details = append(details, "identity check: ok user="+user.Email)

	_, err = client.Me(ctx, "not-a-token")
	var apiErr *authapi.APIError
	if !errors.As(err, &apiErr) {
		return details, errors.New("garbage token was not rejected")
	}
	details = append(details, fmt.Sprintf("token rejection: ok status=%d", apiErr.Status))
	return details, nil
}
