package utils

import (
	"github.com/gosimple/slug"
)

// NormalizeSlug creates a URL-friendly slug using the gosimple/slug library
func NormalizeSlug(text string) string {
	if text == "" {
		return ""
	}

	return slug.Make(text)
}

// GenerateJobKey creates a stable key for a Jenkins job name
func GenerateJobKey(jobName string) string {
	if key := NormalizeSlug(jobName); key != "" {
		return key
	}
	return "job"
}
