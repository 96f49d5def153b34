package models

import (
	"encoding/xml"
	"time"
)

// JobEntry is one job from the latest-builds feed
type JobEntry struct {
	Title       string    `json:"title"`
	StatusLabel string    `json:"status"`
	ResourceID  string    `json:"url"`
	LastUpdated time.Time `json:"last_updated"`
}

// JenkinsFeed is the Atom document served by rssLatest
type JenkinsFeed struct {
	XMLName xml.Name           `xml:"feed"`
	Title   string             `xml:"title"`
	Updated string             `xml:"updated"`
	Entries []JenkinsFeedEntry `xml:"entry"`
}

type JenkinsFeedEntry struct {
	Title     string            `xml:"title"`
	ID        string            `xml:"id"`
	Links     []JenkinsFeedLink `xml:"link"`
	Published string            `xml:"published"`
	Updated   string            `xml:"updated"`
}

type JenkinsFeedLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

// AlternateLink returns the entry's alternate (or first) link
func (e JenkinsFeedEntry) AlternateLink() string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}
