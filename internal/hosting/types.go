// Package hosting talks to the third-party video hosting providers: paginated
// listing fetches, per-video detail fetches, and the on-demand resolver that
// fans out across all hosts for a single title.
package hosting

import (
	"encoding/json"
	"fmt"
)

// hostDomains maps a host identifier to the public domain used for
// deterministic embed/download URL construction.
var hostDomains = map[string]string{
	"streamwish": "streamwish.to",
	"filemoon":   "filemoon.sx",
	"vidhide":    "vidhide.com",
	"streamruby": "streamruby.com",
}

// VideoEntry is one playable unit at one host. Immutable once created;
// discarded on process restart or the next index build.
type VideoEntry struct {
	Host        string `json:"host"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	EmbedURL    string `json:"embedUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// RawVideo is a listing record as returned by a provider. Providers disagree
// about field names, so the accessor methods probe candidates in priority
// order.
type RawVideo struct {
	FileCode  string      `json:"file_code"`
	Code      string      `json:"code"`
	RawID     json.Number `json:"id"`
	Title     string      `json:"title"`
	FileTitle string      `json:"file_title"`
	FileName  string      `json:"name"`
}

// VideoID returns the provider-assigned video identifier.
func (v RawVideo) VideoID() string {
	if v.FileCode != "" {
		return v.FileCode
	}
	if v.Code != "" {
		return v.Code
	}
	return v.RawID.String()
}

// VideoName returns the raw filename for the video.
func (v RawVideo) VideoName() string {
	if v.Title != "" {
		return v.Title
	}
	if v.FileTitle != "" {
		return v.FileTitle
	}
	return v.FileName
}

// EmbedURL builds the deterministic embed URL for a host/id pair.
func EmbedURL(host, id string) string {
	domain, ok := hostDomains[host]
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://%s/e/%s", domain, id)
}

// DownloadURL builds the deterministic download URL for a host/id pair.
func DownloadURL(host, id string) string {
	domain, ok := hostDomains[host]
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://%s/d/%s", domain, id)
}

// NewVideoEntry builds a VideoEntry from a listing record using the host
// URL templates.
func NewVideoEntry(host string, v RawVideo) VideoEntry {
	id := v.VideoID()
	return VideoEntry{
		Host:        host,
		ID:          id,
		Name:        v.VideoName(),
		EmbedURL:    EmbedURL(host, id),
		DownloadURL: DownloadURL(host, id),
	}
}
