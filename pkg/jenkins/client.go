// Package jenkins reads the latest-builds feed and job descriptions from a
// Jenkins server.
package jenkins

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/models"
)

// Client fetches Jenkins resources. Every request is a single attempt.
type Client struct {
	httpClient *http.Client
	feedURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
}

// Config holds configuration for the Jenkins client
type Config struct {
	FeedURL         string
	Timeout         time.Duration
	BreakerFailures int
}

// DefaultConfig returns a default configuration
func DefaultConfig(feedURL string) *Config {
	return &Config{
		FeedURL:         feedURL,
		Timeout:         10 * time.Second,
		BreakerFailures: 5,
	}
}

// NewClient creates a new Jenkins client
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig("")
	}

	log := logger.New("jenkins-client")
	failures := uint32(1)
	if config.BreakerFailures > 0 {
		failures = uint32(config.BreakerFailures)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "jenkins-description",
		// Half-open after a minute so a later watch run tries Jenkins again.
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		feedURL: config.FeedURL,
		breaker: breaker,
		logger:  log,
	}
}

// FeedURL returns the feed this client reads
func (c *Client) FeedURL() string {
	return c.feedURL
}

// FetchFeed downloads and parses the latest-builds feed
func (c *Client) FetchFeed(ctx context.Context) ([]models.JobEntry, error) {
	body, err := c.get(ctx, c.feedURL)
	if err != nil {
		return nil, err
	}
	return ParseFeed(bytes.NewReader(body))
}

// FetchDescription downloads the plain-text description of a job.
// Once too many consecutive fetches fail the breaker rejects further calls.
func (c *Client) FetchDescription(ctx context.Context, resourceID string) (string, error) {
	descURL, err := url.JoinPath(resourceID, "description")
	if err != nil {
		return "", &NetworkError{URL: resourceID, Err: fmt.Errorf("invalid job url: %w", err)}
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, descURL)
	})
	if err != nil {
		if _, ok := err.(*NetworkError); ok {
			return "", err
		}
		return "", &NetworkError{URL: descURL, Err: err}
	}

	return string(body.([]byte)), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogAPICall(http.MethodGet, target, 0, time.Since(start), err)
		return nil, &NetworkError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		netErr := &NetworkError{URL: target, StatusCode: resp.StatusCode}
		c.logger.LogAPICall(http.MethodGet, target, resp.StatusCode, time.Since(start), netErr)
		return nil, netErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.LogAPICall(http.MethodGet, target, resp.StatusCode, time.Since(start), err)
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.LogAPICall(http.MethodGet, target, resp.StatusCode, time.Since(start), nil)
	return body, nil
}
