package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/bloom/internal/api"
	"github.com/terraincognita07/bloom/internal/config"
)

// NewRootCmd creates the top-level "bloom" command.
func NewRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "bloom",
		Short:         "PCOS cycle, symptom and health score service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(cfg, logger),
		newTokenCmd(cfg),
		newSummaryCmd(cfg, logger),
		newScoreCmd(cfg, logger),
		newPhaseCmd(cfg, logger),
		newDigestCmd(cfg, logger),
	)
	return root
}

func newTokenCmd(cfg *config.Config) *cobra.Command {
	var userID string
	var ttl time.Duration
	var promptForSecret bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if promptForSecret {
				secret, err := promptSecret(os.Stdin, cmd.ErrOrStderr(), "SECRET_KEY")
				if err != nil {
					return fmt.Errorf("read secret: %w", err)
				}
				cfg.SecretKey = secret
			}
			secret, err := cfg.ResolveSecretKey()
			if err != nil {
				return err
			}
			key, err := api.DeriveSigningKey(secret)
			if err != nil {
				return err
			}
			token, err := api.IssueToken(key, userID, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", api.DefaultTokenTTL, "Token lifetime")
	cmd.Flags().BoolVar(&promptForSecret, "prompt-secret", false, "Read SECRET_KEY from the terminal instead of the environment")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSummaryCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the AI-facing health snapshot for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), cfg, logger, func(ctx context.Context, runtime *Runtime) error {
				snapshot, err := runtime.Summary.BuildSummary(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), snapshot)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newScoreCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var userID string
	var days int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the Health Score breakdown for a trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), cfg, logger, func(ctx context.Context, runtime *Runtime) error {
				breakdown, err := runtime.Dashboard.Score(ctx, userID, days)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), breakdown)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&days, "days", 7, "Trailing window in days")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPhaseCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var userID string
	var date string

	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Print the cycle day and phase for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			var reference time.Time
			if date != "" {
				parsed, err := time.ParseInLocation(time.DateOnly, date, cfg.Location)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				reference = parsed
			}

			return withRuntime(cmd.Context(), cfg, logger, func(ctx context.Context, runtime *Runtime) error {
				result, err := runtime.Dashboard.Phase(ctx, userID, reference)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newDigestCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send today's digest to every known user once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), cfg, logger, func(ctx context.Context, runtime *Runtime) error {
				delivered, err := runtime.Digest.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "delivered %d digest(s)\n", delivered)
				return nil
			})
		},
	}
}

func withRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, run func(ctx context.Context, runtime *Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runtime, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runtime.Close(context.Background()); closeErr != nil {
			logger.Warn("close store failed", "error", closeErr)
		}
	}()
	return run(ctx, runtime)
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
