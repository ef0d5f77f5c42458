package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fragansa/movies-web/internal/app"
	"github.com/fragansa/movies-web/internal/tools/authcheck"
	"github.com/fragansa/movies-web/internal/tools/common"
	"github.com/fragansa/movies-web/internal/tools/loadgen"
)

func main() {
	root := &cobra.Command{
		Use:   "moviesweb",
		Short: "Fragansa movie catalog web frontend",
	}

	var envFile string
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file loaded before the environment is read")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return common.LoadEnvFile(envFile)
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(authcheck.NewCommand())
	root.AddCommand(newLoadgenCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.InitializeApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := a.Shutdown(shutdownCtx); err != nil {
					a.Logger.Error("shutdown", "error", err)
				}
			}()

			return a.Run(ctx)
		},
	}
}

func newLoadgenCommand() *cobra.Command {
	cfg := loadgen.Config{}
	var ci bool
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate synthetic browser traffic against the frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			details := []string{
				fmt.Sprintf("total=%d failures=%d", res.TotalRequests, res.Failures),
			}
			for class, n := range res.StatusCounts {
				details = append(details, fmt.Sprintf("status %s=%d", class, n))
			}
			if ci {
				common.PrintCIResult(res.Failures == 0, "loadgen", details, nil)
				return nil
			}
			for _, d := range details {
				fmt.Println(d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "frontend base URL")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "mixed", "traffic profile: auth, catalog or mixed")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 10*time.Second, "how long to run")
	cmd.Flags().IntVar(&cfg.RPS, "rps", 10, "requests per second")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 4, "worker count")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 42, "random seed")
	cmd.Flags().BoolVar(&ci, "ci", false, "machine-readable output")
	return cmd
}
