package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one cycle and print its report",
		Long: "check runs a single cycle against the marketplace, sending\n" +
			"notifications like a scheduled cycle would, then prints the report.",
		Example: `  discogs-alert check --wantlist-path wantlist.yaml --verbose
  discogs-alert check --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.Close(closeCtx)
	}()

	report, err := a.engine.Run(ctx)

	if jsonOutput() {
		if outErr := outputJSON(os.Stdout, report); outErr != nil {
			return outErr
		}
	} else if outErr := printReport(os.Stdout, &report); outErr != nil {
		return outErr
	}

	return err
}
