package services

import (
	"context"

	"github.com/cronwatch/core/pkg/models"
)

// JenkinsAPI is the subset of the Jenkins client the monitor needs
type JenkinsAPI interface {
	FeedURL() string
	FetchFeed(ctx context.Context) ([]models.JobEntry, error)
	FetchDescription(ctx context.Context, resourceID string) (string, error)
}
