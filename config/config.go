package config

import (
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string         `mapstructure:"env"`
	LogLevel        string         `mapstructure:"log_level"`
	LogType         string         `mapstructure:"log_type"`
	ServiceName     string         `mapstructure:"service_name"`
	Port            string         `mapstructure:"port"`
	Version         string         `mapstructure:"version"`
	APIToken        string         `mapstructure:"api_token"`
	CorsOrigins     []string       `mapstructure:"cors_origins"`
	PortalSettings  *PortalConfig  `mapstructure:"portal"`
	ScraperSettings *ScraperConfig `mapstructure:"scraper"`
	CacheSettings   *CacheConfig   `mapstructure:"cache"`
}

// PortalConfig describes the single target portal: where it lives, how to log
// in, and which signals mark a successful login.
type PortalConfig struct {
	BaseURL         string   `mapstructure:"base_url"`
	SearchPath      string   `mapstructure:"search_path"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	PostLoginPaths  []string `mapstructure:"post_login_paths"`
	AccountLinkText string   `mapstructure:"account_link_text"`
}

type ScraperConfig struct {
	Headless             bool          `mapstructure:"headless"`
	UserAgent            string        `mapstructure:"user_agent"`
	PageLoadTimeout      time.Duration `mapstructure:"page_load_timeout"`
	ElementTimeout       time.Duration `mapstructure:"element_timeout"`
	OptionalTimeout      time.Duration `mapstructure:"optional_timeout"`
	ScriptTimeout        time.Duration `mapstructure:"script_timeout"`
	SnapshotTimeout      time.Duration `mapstructure:"snapshot_timeout"`
	LoginFallbackDelay   time.Duration `mapstructure:"login_fallback_delay"`
	LoginRecheckTimeout  time.Duration `mapstructure:"login_recheck_timeout"`
	ContentChangeTimeout time.Duration `mapstructure:"content_change_timeout"`
	SettleDelay          time.Duration `mapstructure:"settle_delay"`
	PolitenessDelay      time.Duration `mapstructure:"politeness_delay"`
	MaxPages             int           `mapstructure:"max_pages"`
	StatusFilters        []string      `mapstructure:"status_filters"`
	AreaFilters          []string      `mapstructure:"area_filters"`
}

type CacheConfig struct {
	TtlForResult time.Duration `mapstructure:"ttl_for_result"`
}

func MustLoad() *Config {
	viper.AddConfigPath(path.Join("."))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		slog.Error("can't initialize config file.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("error unmarshalling viper config.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	cfg.ApplyDefaults()

	return &cfg
}

// ApplyDefaults fills in every setting that is safe to default. Credentials
// are deliberately not defaulted; their absence is surfaced by the scraper
// as a configuration error.
func (c *Config) ApplyDefaults() {
	if c.ScraperSettings == nil {
		c.ScraperSettings = &ScraperConfig{}
	}
	s := c.ScraperSettings
	if s.PageLoadTimeout == 0 {
		s.PageLoadTimeout = 30 * time.Second
	}
	if s.ElementTimeout == 0 {
		s.ElementTimeout = 10 * time.Second
	}
	if s.OptionalTimeout == 0 {
		s.OptionalTimeout = 3 * time.Second
	}
	if s.ScriptTimeout == 0 {
		s.ScriptTimeout = 5 * time.Second
	}
	if s.SnapshotTimeout == 0 {
		s.SnapshotTimeout = 10 * time.Second
	}
	if s.LoginFallbackDelay == 0 {
		s.LoginFallbackDelay = 8 * time.Second
	}
	if s.LoginRecheckTimeout == 0 {
		s.LoginRecheckTimeout = 2 * time.Second
	}
	if s.ContentChangeTimeout == 0 {
		s.ContentChangeTimeout = 10 * time.Second
	}
	if s.SettleDelay == 0 {
		s.SettleDelay = 2 * time.Second
	}
	if s.PolitenessDelay == 0 {
		s.PolitenessDelay = 500 * time.Millisecond
	}
	if s.MaxPages == 0 {
		s.MaxPages = 60
	}
	if len(s.StatusFilters) == 0 {
		s.StatusFilters = []string{"Open for Applications", "Opening Soon"}
	}
	if len(s.AreaFilters) == 0 {
		s.AreaFilters = []string{"Community", "Education", "Health and Wellbeing", "Environment"}
	}
	if c.CacheSettings == nil {
		c.CacheSettings = &CacheConfig{}
	}
	if c.CacheSettings.TtlForResult == 0 {
		c.CacheSettings.TtlForResult = 10 * time.Minute
	}
	if c.PortalSettings == nil {
		c.PortalSettings = &PortalConfig{}
	}
	p := c.PortalSettings
	if len(p.PostLoginPaths) == 0 {
		p.PostLoginPaths = []string{"/dashboard", "/funding-search"}
	}
	if p.AccountLinkText == "" {
		p.AccountLinkText = "My Account"
	}
	if p.SearchPath == "" {
		p.SearchPath = "/funding-search"
	}
}
