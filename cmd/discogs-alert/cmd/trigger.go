package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/discogs-alert/internal/api/client"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ask a running server to run a cycle now",
		Example: `  discogs-alert trigger
  discogs-alert trigger --server http://alerts.local:8080 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newClient().TriggerCycle(cmd.Context())
			if apiclient.IsConflict(err) {
				return errors.New("the server is already running a cycle; try again later")
			}
			if err != nil {
				return err
			}
			return showReport(report)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last cycle report of a running server",
		Example: `  discogs-alert status
  discogs-alert status --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newClient().LastCycle(cmd.Context())
			if apiclient.IsNotFound(err) {
				fmt.Println("No cycle has run yet.")
				return nil
			}
			if err != nil {
				return err
			}
			return showReport(report)
		},
	}
}

func showReport(report *domain.CycleReport) error {
	if jsonOutput() {
		return outputJSON(os.Stdout, report)
	}
	return printReport(os.Stdout, report)
}
