// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/discogs-alert/pkg/currency"
	"github.com/donaldgifford/discogs-alert/pkg/filter"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// Notification backends.
const (
	BackendPushbullet = "pushbullet"
	BackendTelegram   = "telegram"
	BackendDiscord    = "discord"
	BackendNoOp       = "noop"
)

// Config is the top-level application configuration.
type Config struct {
	Discogs       DiscogsConfig       `yaml:"discogs"`
	Filters       FiltersConfig       `yaml:"filters"`
	Currency      CurrencyConfig      `yaml:"currency"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// DiscogsConfig defines where the wantlist comes from and how Discogs is
// contacted.
type DiscogsConfig struct {
	UserToken         string        `yaml:"user_token"`
	UserAgent         string        `yaml:"user_agent"`
	ListID            int64         `yaml:"list_id"`
	WantlistPath      string        `yaml:"wantlist_path"`
	MarketplaceURL    string        `yaml:"marketplace_url"`
	APIURL            string        `yaml:"api_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
}

// FiltersConfig defines the global acceptance criteria. Releases in the
// wantlist may override the condition settings individually.
type FiltersConfig struct {
	Country              string            `yaml:"country"`
	Currency             string            `yaml:"currency"`
	MinSellerRating      *float64          `yaml:"min_seller_rating"`
	MinSellerSales       *int              `yaml:"min_seller_sales"`
	MinMediaCondition    *domain.Condition `yaml:"min_media_condition"`
	MinSleeveCondition   *domain.Condition `yaml:"min_sleeve_condition"`
	AcceptGenericSleeve  bool              `yaml:"accept_generic_sleeve"`
	AcceptNoSleeve       bool              `yaml:"accept_no_sleeve"`
	AcceptUngradedSleeve bool              `yaml:"accept_ungraded_sleeve"`
	CountryWhitelist     []string          `yaml:"country_whitelist"`
	CountryBlacklist     []string          `yaml:"country_blacklist"`
}

// CurrencyConfig defines the exchange rate provider.
type CurrencyConfig struct {
	RatesURL string        `yaml:"rates_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ScheduleConfig defines how often the wantlist is checked.
type ScheduleConfig struct {
	// Frequency is the number of cycles per hour, 1 to 60.
	Frequency int `yaml:"frequency"`
}

// Interval returns the time between cycles.
func (s ScheduleConfig) Interval() time.Duration {
	if s.Frequency <= 0 {
		return time.Hour
	}
	return time.Hour / time.Duration(s.Frequency)
}

// NotificationsConfig selects and configures the notification backend.
type NotificationsConfig struct {
	Backend    string           `yaml:"backend"` // pushbullet, telegram, discord, noop
	Pushbullet PushbulletConfig `yaml:"pushbullet"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Discord    DiscordConfig    `yaml:"discord"`
}

// PushbulletConfig defines Pushbullet settings.
type PushbulletConfig struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url"`
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text, json
	File       string `yaml:"file"`   // optional; rotated when set
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// TracingConfig defines OpenTelemetry export. Tracing is disabled when
// Endpoint is empty.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns a configuration with every default applied and no
// wantlist source set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse reads a config file and applies defaults without validating, so
// callers can layer flag overrides before calling Validate.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// Criteria converts the filter settings into acceptance criteria.
func (c *Config) Criteria() filter.Criteria {
	f := c.Filters
	return filter.Criteria{
		Country:  f.Country,
		Currency: f.Currency,
		Seller: domain.SellerFilters{
			MinSellerRating: f.MinSellerRating,
			MinSellerSales:  f.MinSellerSales,
		},
		Record: domain.RecordFilters{
			MinMediaCondition:    f.MinMediaCondition,
			MinSleeveCondition:   f.MinSleeveCondition,
			AcceptGenericSleeve:  f.AcceptGenericSleeve,
			AcceptNoSleeve:       f.AcceptNoSleeve,
			AcceptUngradedSleeve: f.AcceptUngradedSleeve,
		},
		CountryWhitelist: filter.CountrySet(f.CountryWhitelist...),
		CountryBlacklist: filter.CountrySet(f.CountryBlacklist...),
	}
}

func applyDefaults(cfg *Config) {
	applyDiscogsDefaults(&cfg.Discogs)
	applyFiltersDefaults(&cfg.Filters)
	applyCurrencyDefaults(&cfg.Currency)
	applyScheduleDefaults(&cfg.Schedule)
	applyNotificationsDefaults(&cfg.Notifications)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyDiscogsDefaults(d *DiscogsConfig) {
	if d.UserAgent == "" {
		d.UserAgent = "discogs-alert/1.0 +https://github.com/donaldgifford/discogs-alert"
	}
	if d.MarketplaceURL == "" {
		d.MarketplaceURL = "https://www.discogs.com"
	}
	if d.APIURL == "" {
		d.APIURL = "https://api.discogs.com"
	}
	if d.RequestsPerSecond == 0 {
		d.RequestsPerSecond = 0.5
	}
	if d.Burst == 0 {
		d.Burst = 1
	}
	if d.Timeout == 0 {
		d.Timeout = 30 * time.Second
	}
}

func applyFiltersDefaults(f *FiltersConfig) {
	if f.Country == "" {
		f.Country = "Germany"
	}
	if f.Currency == "" {
		f.Currency = "EUR"
	}
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
	if f.MinSellerRating == nil {
		v := 99.0
		f.MinSellerRating = &v
	}
	if f.MinMediaCondition == nil {
		c := domain.VeryGoodPlus
		f.MinMediaCondition = &c
	}
	if f.MinSleeveCondition == nil {
		c := domain.VeryGoodPlus
		f.MinSleeveCondition = &c
	}
}

func applyCurrencyDefaults(c *CurrencyConfig) {
	if c.RatesURL == "" {
		c.RatesURL = "https://api.exchangerate.host"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = currency.DefaultTTL
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Frequency == 0 {
		s.Frequency = 1
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.Backend == "" {
		n.Backend = BackendNoOp
	}
	n.Backend = strings.ToLower(n.Backend)
	if n.Pushbullet.URL == "" {
		n.Pushbullet.URL = "https://api.pushbullet.com"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
	if l.MaxSizeMB == 0 {
		l.MaxSizeMB = 50
	}
	if l.MaxBackups == 0 {
		l.MaxBackups = 3
	}
	if l.MaxAgeDays == 0 {
		l.MaxAgeDays = 28
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "discogs-alert"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, validateDiscogs(&c.Discogs)...)
	errs = append(errs, validateFilters(&c.Filters)...)

	if c.Schedule.Frequency < 1 || c.Schedule.Frequency > 60 {
		errs = append(errs, fmt.Errorf(
			"schedule.frequency must be between 1 and 60 (got %d)", c.Schedule.Frequency))
	}

	errs = append(errs, validateNotifications(&c.Notifications)...)

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf(
			"logging.format must be one of: text, json (got %q)", c.Logging.Format))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf(
			"tracing.sample_ratio must be between 0 and 1 (got %v)", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}

func validateDiscogs(d *DiscogsConfig) []error {
	var errs []error

	switch {
	case d.ListID == 0 && d.WantlistPath == "":
		errs = append(errs, fmt.Errorf("one of discogs.list_id or discogs.wantlist_path is required"))
	case d.ListID != 0 && d.WantlistPath != "":
		errs = append(errs, fmt.Errorf("discogs.list_id and discogs.wantlist_path are mutually exclusive"))
	case d.ListID != 0 && d.UserToken == "":
		errs = append(errs, fmt.Errorf("discogs.user_token is required when discogs.list_id is set"))
	}

	if d.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("discogs.requests_per_second must not be negative"))
	}

	return errs
}

func validateFilters(f *FiltersConfig) []error {
	var errs []error

	if _, err := currency.Normalize(f.Currency); err != nil {
		errs = append(errs, fmt.Errorf(
			"filters.currency must be one of: %s (got %q)",
			strings.Join(currency.SupportedCodes(), ", "), f.Currency))
	}
	if f.MinSellerRating != nil && (*f.MinSellerRating < 0 || *f.MinSellerRating > 100) {
		errs = append(errs, fmt.Errorf(
			"filters.min_seller_rating must be between 0 and 100 (got %v)", *f.MinSellerRating))
	}
	if f.MinSellerSales != nil && *f.MinSellerSales < 0 {
		errs = append(errs, fmt.Errorf("filters.min_seller_sales must not be negative"))
	}
	if f.MinMediaCondition != nil && !f.MinMediaCondition.Valid() {
		errs = append(errs, fmt.Errorf("filters.min_media_condition is not a known condition"))
	}
	if f.MinSleeveCondition != nil && !f.MinSleeveCondition.Valid() {
		errs = append(errs, fmt.Errorf("filters.min_sleeve_condition is not a known condition"))
	}

	return errs
}

func validateNotifications(n *NotificationsConfig) []error {
	var errs []error

	switch n.Backend {
	case BackendPushbullet:
		if n.Pushbullet.Token == "" {
			errs = append(errs, fmt.Errorf(
				"notifications.pushbullet.token is required when backend is pushbullet"))
		}
	case BackendTelegram:
		if n.Telegram.Token == "" {
			errs = append(errs, fmt.Errorf(
				"notifications.telegram.token is required when backend is telegram"))
		}
		if n.Telegram.ChatID == 0 {
			errs = append(errs, fmt.Errorf(
				"notifications.telegram.chat_id is required when backend is telegram"))
		}
	case BackendDiscord:
		if n.Discord.WebhookURL == "" {
			errs = append(errs, fmt.Errorf(
				"notifications.discord.webhook_url is required when backend is discord"))
		}
	case BackendNoOp:
	default:
		errs = append(errs, fmt.Errorf(
			"notifications.backend must be one of: pushbullet, telegram, discord, noop (got %q)",
			n.Backend))
	}

	return errs
}
