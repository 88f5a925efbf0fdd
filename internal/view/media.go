// Package view assembles the dashboard view models: which media element a
// course renders with, how a page's course sections load, and the upload
// form draft. Everything here is pure view state; no HTTP, no storage.
package view

import "github.com/coursedeck/backend/internal/model"

// MediaKind tags the single playable media reference a course renders
// with. A course has at most one.
type MediaKind string

const (
	// MediaEmbed renders an external embed link in a video frame.
	MediaEmbed MediaKind = "embed"
	// MediaVideo renders an uploaded file in a native video element.
	MediaVideo MediaKind = "video"
	// MediaNone renders the "no video available" placeholder.
	MediaNone MediaKind = "none"
)

// Media is the resolved media variant for one course.
type Media struct {
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url,omitempty"`
}

// ResolveMedia derives the media variant for a course. The embed link wins
// over an uploaded file, and a course with neither gets the placeholder.
// This precedence is load-bearing rendering behavior, derived once per
// course so every dashboard applies the same rule.
func ResolveMedia(c model.Course) Media {
	switch {
	case c.YoutubeLink != "":
		return Media{Kind: MediaEmbed, URL: c.YoutubeLink}
	case c.VideoURL != "":
		return Media{Kind: MediaVideo, URL: c.VideoURL}
	default:
		return Media{Kind: MediaNone}
	}
}
