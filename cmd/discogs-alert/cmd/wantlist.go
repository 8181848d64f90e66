package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/discogs-alert/internal/discogs"
	"github.com/donaldgifford/discogs-alert/internal/wantlist"
)

func wantlistCmd() *cobra.Command {
	var stats bool

	c := &cobra.Command{
		Use:   "wantlist",
		Short: "Print the releases that would be checked",
		Long: "wantlist loads and validates the configured wantlist and prints it.\n" +
			"Use it to make sure a wantlist file parses before running.",
		Example: `  discogs-alert wantlist --wantlist-path wantlist.yaml
  discogs-alert wantlist --list-id 123456 --stats`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(&cfg.Logging)
			if err != nil {
				return err
			}
			defer closer.Close()

			var (
				src wantlist.Source
				api *discogs.APIClient
			)
			if cfg.Discogs.ListID != 0 || stats {
				api = discogs.NewAPIClient(cfg.Discogs.UserToken,
					discogs.WithAPIURL(cfg.Discogs.APIURL),
					discogs.WithAPIUserAgent(cfg.Discogs.UserAgent),
				)
			}
			if cfg.Discogs.ListID != 0 {
				src = wantlist.NewListSource(api, cfg.Discogs.ListID)
			} else {
				src = wantlist.NewFileSource(cfg.Discogs.WantlistPath)
			}

			ctx := cmd.Context()
			releases, err := src.Load(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, releases)
			}
			if len(releases) == 0 {
				fmt.Println("The wantlist is empty.")
				return nil
			}
			if !stats {
				return printReleasesTable(os.Stdout, releases, nil)
			}

			forSale := make(map[int64]string, len(releases))
			for i := range releases {
				s, err := api.GetReleaseStats(ctx, releases[i].ID)
				if err != nil {
					log.Warn("fetching release stats", "release_id", releases[i].ID, "error", err)
					forSale[releases[i].ID] = "?"
					continue
				}
				forSale[releases[i].ID] = s.Summary()
			}
			return printReleasesTable(os.Stdout, releases, forSale)
		},
	}
	c.Flags().BoolVar(&stats, "stats", false, "also show how many copies are for sale")

	return c
}
