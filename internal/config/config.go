package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Jenkins JenkinsConfig
	Check   CheckConfig
	Report  ReportConfig
}

type JenkinsConfig struct {
	URL             string
	View            string
	Timeout         int // seconds
	BreakerFailures int
}

type CheckConfig struct {
	AllowMissing  int
	WatchSchedule string
}

type ReportConfig struct {
	Format     string
	TimeFormat string
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Jenkins: JenkinsConfig{
			URL:             getEnv("JENKINS_URL", "http://localhost:8080/"),
			View:            getEnv("JENKINS_VIEW", "Cronjobs"),
			Timeout:         getEnvAsInt("CRONWATCH_HTTP_TIMEOUT", 10),
			BreakerFailures: getEnvAsInt("CRONWATCH_BREAKER_FAILURES", 5),
		},
		Check: CheckConfig{
			AllowMissing:  getEnvAsInt("CRONWATCH_ALLOW_MISSING", 0),
			WatchSchedule: getEnv("CRONWATCH_WATCH_SCHEDULE", ""),
		},
		Report: ReportConfig{
			Format:     strings.ToLower(getEnv("CRONWATCH_REPORT_FORMAT", FormatText)),
			TimeFormat: getEnv("CRONWATCH_TIME_FORMAT", "15:04 02/01/2006"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// FeedURL is the latest-builds feed of the configured view, or of the whole
// server when no view is set.
func (c *Config) FeedURL() string {
	base := strings.TrimRight(c.Jenkins.URL, "/")
	if c.Jenkins.View == "" {
		return base + "/rssLatest"
	}
	return base + "/view/" + url.PathEscape(c.Jenkins.View) + "/rssLatest"
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Jenkins.Timeout) * time.Second
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Jenkins.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid JENKINS_URL %q", c.Jenkins.URL)
	}
	if c.Check.AllowMissing < 0 {
		return fmt.Errorf("allowed missing executions must be >= 0, got %d", c.Check.AllowMissing)
	}
	if c.Jenkins.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %d", c.Jenkins.Timeout)
	}
	if c.Report.Format != FormatText && c.Report.Format != FormatJSON {
		return fmt.Errorf("unknown report format %q (want %s or %s)", c.Report.Format, FormatText, FormatJSON)
	}
	return nil
}
