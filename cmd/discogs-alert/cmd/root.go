// Package cmd implements the discogs-alert CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/discogs-alert/internal/config"
	"github.com/donaldgifford/discogs-alert/pkg/logger"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

const (
	envPrefix         = "DISCOGS_ALERT"
	defaultConfigPath = "config.yaml"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "discogs-alert",
		Short: "Get notified when records on your wantlist go on sale",
		Long: "discogs-alert checks the Discogs marketplace for the releases on your\n" +
			"wantlist and sends a notification when a listing matches your seller,\n" +
			"condition and price criteria.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// overrideFlags maps flag names to config keys. Environment variables are
// DISCOGS_ALERT_ plus the upper-cased key with dots as underscores; the
// legacy names are accepted as well.
var overrideFlags = []struct {
	flag, key string
	legacyEnv []string
}{
	{"list-id", "discogs.list_id", []string{"LIST_ID"}},
	{"wantlist-path", "discogs.wantlist_path", []string{"WANTLIST_PATH"}},
	{"user-token", "discogs.user_token", []string{"DISCOGS_TOKEN", "USER_TOKEN"}},
	{"user-agent", "discogs.user_agent", []string{"USER_AGENT"}},
	{"frequency", "schedule.frequency", []string{"FREQUENCY"}},
	{"country", "filters.country", []string{"COUNTRY"}},
	{"currency", "filters.currency", []string{"CURRENCY"}},
	{"min-seller-rating", "filters.min_seller_rating", []string{"MIN_SELLER_RATING"}},
	{"min-seller-sales", "filters.min_seller_sales", []string{"MIN_SELLER_SALES"}},
	{"min-media-condition", "filters.min_media_condition", []string{"MIN_MEDIA_CONDITION"}},
	{"min-sleeve-condition", "filters.min_sleeve_condition", []string{"MIN_SLEEVE_CONDITION"}},
	{"accept-generic-sleeve", "filters.accept_generic_sleeve", []string{"ACCEPT_GENERIC_SLEEVE"}},
	{"accept-no-sleeve", "filters.accept_no_sleeve", []string{"ACCEPT_NO_SLEEVE"}},
	{"accept-ungraded-sleeve", "filters.accept_ungraded_sleeve", []string{"ACCEPT_UNGRADED_SLEEVE"}},
	{"country-whitelist", "filters.country_whitelist", nil},
	{"country-blacklist", "filters.country_blacklist", nil},
	{"backend", "notifications.backend", nil},
	{"pushbullet-token", "notifications.pushbullet.token", []string{"PUSHBULLET_TOKEN"}},
	{"log-level", "logging.level", nil},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", defaultConfigPath, "config file path")
	pf.String("server", "http://localhost:8080", "API server URL (trigger, status)")
	pf.String("output", "table", "output format (table, json)")
	pf.BoolP("verbose", "V", false, "log every rejected listing")

	pf.Int64("list-id", 0, "Discogs list to use as the wantlist")
	pf.String("wantlist-path", "", "local wantlist file (.json, .yaml)")
	pf.String("user-token", "", "Discogs user token")
	pf.String("user-agent", "", "user agent sent to Discogs")
	pf.Int("frequency", 0, "cycles per hour (1-60)")
	pf.String("country", "", "country you are buying from")
	pf.String("currency", "", "currency prices are compared in")
	pf.Float64("min-seller-rating", 0, "minimum seller rating in percent")
	pf.Int("min-seller-sales", 0, "minimum number of seller ratings")
	pf.String("min-media-condition", "", "minimum media condition (e.g. VG+)")
	pf.String("min-sleeve-condition", "", "minimum sleeve condition (e.g. VG+)")
	pf.Bool("accept-generic-sleeve", false, "also accept generic sleeves")
	pf.Bool("accept-no-sleeve", false, "also accept listings without a sleeve")
	pf.Bool("accept-ungraded-sleeve", false, "also accept ungraded sleeves")
	pf.StringSlice("country-whitelist", nil, "only accept sellers shipping from these countries")
	pf.StringSlice("country-blacklist", nil, "never accept sellers shipping from these countries")
	pf.String("backend", "", "notification backend (pushbullet, telegram, discord, noop)")
	pf.String("pushbullet-token", "", "Pushbullet access token")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	cobra.CheckErr(viper.BindPFlag("server", pf.Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", pf.Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("verbose", pf.Lookup("verbose")))

	for _, o := range overrideFlags {
		cobra.CheckErr(viper.BindPFlag(o.key, pf.Lookup(o.flag)))
		envs := append([]string{envName(o.key)}, o.legacyEnv...)
		cobra.CheckErr(viper.BindEnv(append([]string{o.key}, envs...)...))
	}

	rootCmd.AddCommand(
		runCmd(),
		checkCmd(),
		wantlistCmd(),
		triggerCmd(),
		statusCmd(),
		versionCmd(),
	)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
}

// loadConfig reads the config file, layers flag and environment overrides
// on top and validates the result. The default config path may be absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Parse(cfgFile)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := applyOverrides(cfg); err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) error {
	d, f := &cfg.Discogs, &cfg.Filters

	if viper.IsSet("discogs.list_id") {
		d.ListID = viper.GetInt64("discogs.list_id")
		if !viper.IsSet("discogs.wantlist_path") {
			d.WantlistPath = ""
		}
	}
	if viper.IsSet("discogs.wantlist_path") {
		d.WantlistPath = viper.GetString("discogs.wantlist_path")
		if !viper.IsSet("discogs.list_id") {
			d.ListID = 0
		}
	}
	overrideString(&d.UserToken, "discogs.user_token")
	overrideString(&d.UserAgent, "discogs.user_agent")

	if viper.IsSet("schedule.frequency") {
		cfg.Schedule.Frequency = viper.GetInt("schedule.frequency")
	}

	overrideString(&f.Country, "filters.country")
	if viper.IsSet("filters.currency") {
		f.Currency = strings.ToUpper(strings.TrimSpace(viper.GetString("filters.currency")))
	}
	if viper.IsSet("filters.min_seller_rating") {
		v := viper.GetFloat64("filters.min_seller_rating")
		f.MinSellerRating = &v
	}
	if viper.IsSet("filters.min_seller_sales") {
		v := viper.GetInt("filters.min_seller_sales")
		f.MinSellerSales = &v
	}
	if err := overrideCondition(&f.MinMediaCondition, "filters.min_media_condition"); err != nil {
		return err
	}
	if err := overrideCondition(&f.MinSleeveCondition, "filters.min_sleeve_condition"); err != nil {
		return err
	}
	overrideBool(&f.AcceptGenericSleeve, "filters.accept_generic_sleeve")
	overrideBool(&f.AcceptNoSleeve, "filters.accept_no_sleeve")
	overrideBool(&f.AcceptUngradedSleeve, "filters.accept_ungraded_sleeve")
	if viper.IsSet("filters.country_whitelist") {
		f.CountryWhitelist = viper.GetStringSlice("filters.country_whitelist")
	}
	if viper.IsSet("filters.country_blacklist") {
		f.CountryBlacklist = viper.GetStringSlice("filters.country_blacklist")
	}

	if viper.IsSet("notifications.backend") {
		cfg.Notifications.Backend = strings.ToLower(viper.GetString("notifications.backend"))
	}
	overrideString(&cfg.Notifications.Pushbullet.Token, "notifications.pushbullet.token")
	overrideString(&cfg.Logging.Level, "logging.level")

	return nil
}

func overrideString(dst *string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

func overrideBool(dst *bool, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

func overrideCondition(dst **domain.Condition, key string) error {
	if !viper.IsSet(key) {
		return nil
	}
	c, err := domain.ConditionFromName(viper.GetString(key))
	if err != nil {
		return fmt.Errorf("--%s: %w", strings.ReplaceAll(strings.TrimPrefix(key, "filters."), "_", "-"), err)
	}
	*dst = &c
	return nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg *config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	log, closer, err := logger.NewWithFile(cfg.Level, cfg.Format, logger.FileOptions{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	slog.SetDefault(log)
	return log, closer, nil
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
