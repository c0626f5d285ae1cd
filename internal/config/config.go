// Package config provides viper-backed configuration for jirasieve.
//
// Precedence: explicit Set (flags) > environment (JIRASIEVE_*) > config
// file (jirasieve.yaml in cwd or $HOME) > registered defaults. All the
// hard-coded collaborator assumptions of the export pipeline (attachment
// base URL, UTC offset suffix, placeholder identity, exclusion list,
// recency windows) live here as named keys so they are swappable without
// touching the join logic.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	// Output assembly
	KeyOutputDir         = "export.output-dir"
	KeyAttachmentBaseURL = "export.attachment-base-url"
	KeyProjectType       = "export.project-type"

	// Date normalization. The dump carries no timezone, so a fixed offset
	// suffix is appended verbatim (no conversion happens).
	KeyUTCOffset = "export.utc-offset"

	// Identity resolution
	KeyPlaceholderUser = "export.placeholder-user"
	KeyExcludedUsers   = "export.excluded-users"

	// Join filters
	KeyExcludedLabels        = "export.excluded-labels"
	KeyExcludedHistoryFields = "export.excluded-history-fields"

	// Active-users recency windows, in years back from now
	KeyActiveIssueYears   = "active.issue-window-years"
	KeyActiveHistoryYears = "active.history-window-years"

	// Source fetching
	KeyFetchTimeout = "fetch.timeout"
	KeyFetchRetries = "fetch.max-retries"
)

var v *viper.Viper

// Initialize sets up the package viper instance. Call once at startup,
// before any getter.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("jirasieve")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("JIRASIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	registerDefaults()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the normal case.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func registerDefaults() {
	v.SetDefault(KeyOutputDir, "out")
	v.SetDefault(KeyAttachmentBaseURL, "https://attachments.example.com")
	v.SetDefault(KeyProjectType, "software")
	v.SetDefault(KeyUTCOffset, "-0600")
	v.SetDefault(KeyPlaceholderUser, "import")
	v.SetDefault(KeyExcludedUsers, []string{"anonymous", "jira-bot"})
	v.SetDefault(KeyExcludedLabels, []string{"enhancement", "bug", "test", "patch"})
	v.SetDefault(KeyExcludedHistoryFields, []string{"Waiting On", "Workflow"})
	v.SetDefault(KeyActiveIssueYears, 2)
	v.SetDefault(KeyActiveHistoryYears, 4)
	v.SetDefault(KeyFetchTimeout, "60s")
	v.SetDefault(KeyFetchRetries, 4)
}

// SetConfigFile overrides config file discovery with an explicit path.
// Must be called before Initialize takes effect, so callers re-read here.
func SetConfigFile(path string) error {
	if v == nil {
		if err := Initialize(); err != nil {
			return err
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Set overrides a key at runtime (flag binding, tests).
func Set(key string, value interface{}) {
	ensureInitialized()
	v.Set(key, value)
}

// GetString returns a string config value.
func GetString(key string) string {
	ensureInitialized()
	return v.GetString(key)
}

// GetStringSlice returns a string slice config value.
func GetStringSlice(key string) []string {
	ensureInitialized()
	return v.GetStringSlice(key)
}

// GetInt returns an integer config value.
func GetInt(key string) int {
	ensureInitialized()
	return v.GetInt(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	ensureInitialized()
	return v.GetDuration(key)
}

func ensureInitialized() {
	if v == nil {
		_ = Initialize()
	}
}
