package jenkins

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cronwatch/core/pkg/models"
)

// Jenkins prefixes entry ids with this tag URI
const hudsonTagPrefix = "tag:hudson.dev.java.net,2008:"

// Jenkins omits the zone on some versions; such timestamps are UTC.
const naiveTimestampLayout = "2006-01-02T15:04:05"

// ParseFeed decodes a latest-builds Atom feed into job entries, in feed order
func ParseFeed(r io.Reader) ([]models.JobEntry, error) {
	var feed models.JenkinsFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, &ParseError{Err: err}
	}

	entries := make([]models.JobEntry, 0, len(feed.Entries))
	for i, e := range feed.Entries {
		raw := e.Updated
		if strings.TrimSpace(raw) == "" {
			raw = e.Published
		}
		updated, err := ParseTimestamp(raw)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("entry %d (%s): %w", i, e.Title, err)}
		}

		name, status := SplitTitle(e.Title)
		entries = append(entries, models.JobEntry{
			Title:       name,
			StatusLabel: status,
			ResourceID:  resourceID(e),
			LastUpdated: updated,
		})
	}

	return entries, nil
}

// SplitTitle splits a build title such as "backup #42 (stable)" into job name
// and status label.
func SplitTitle(title string) (name, status string) {
	title = strings.TrimSpace(title)
	hash := strings.Index(title, "#")
	if hash < 0 {
		return title, ""
	}

	name = strings.TrimSpace(title[:hash])
	rest := title[hash:]
	open := strings.Index(rest, "(")
	closing := strings.LastIndex(rest, ")")
	if open < 0 || closing < open {
		return name, ""
	}
	return name, strings.TrimSpace(rest[open+1 : closing])
}

// ParseTimestamp parses a feed timestamp as UTC
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(naiveTimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t, nil
}

func resourceID(e models.JenkinsFeedEntry) string {
	id := strings.TrimPrefix(strings.TrimSpace(e.ID), hudsonTagPrefix)
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	if link := e.AlternateLink(); link != "" {
		return link
	}
	return id
}
