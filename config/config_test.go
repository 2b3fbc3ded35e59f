package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, 60, cfg.ScraperSettings.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.ScraperSettings.PageLoadTimeout)
	assert.Equal(t, 5*time.Second, cfg.ScraperSettings.ScriptTimeout)
	assert.Equal(t, 10*time.Second, cfg.ScraperSettings.SnapshotTimeout)
	assert.Equal(t, 2*time.Second, cfg.ScraperSettings.LoginRecheckTimeout)
	assert.Equal(t, []string{"Open for Applications", "Opening Soon"}, cfg.ScraperSettings.StatusFilters)
	assert.NotEmpty(t, cfg.ScraperSettings.AreaFilters)
	assert.Equal(t, []string{"/dashboard", "/funding-search"}, cfg.PortalSettings.PostLoginPaths)
	assert.Equal(t, "My Account", cfg.PortalSettings.AccountLinkText)
	assert.Equal(t, 10*time.Minute, cfg.CacheSettings.TtlForResult)

	// credentials are never defaulted
	assert.Empty(t, cfg.PortalSettings.Username)
	assert.Empty(t, cfg.PortalSettings.Password)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		ScraperSettings: &ScraperConfig{
			MaxPages:        5,
			PageLoadTimeout: time.Second,
			StatusFilters:   []string{"Closed"},
		},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 5, cfg.ScraperSettings.MaxPages)
	assert.Equal(t, time.Second, cfg.ScraperSettings.PageLoadTimeout)
	assert.Equal(t, []string{"Closed"}, cfg.ScraperSettings.StatusFilters)
	// untouched settings still get defaults
	assert.Equal(t, 2*time.Second, cfg.ScraperSettings.SettleDelay)
}
