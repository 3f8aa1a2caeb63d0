// Package provider defines the scraper plug-in contract and the validated provider registry.
package provider

import (
	"fmt"
	"strings"
)

// MediaType distinguishes the two requestable media kinds.
type MediaType string

const (
	Movie MediaType = "movie"
	Show  MediaType = "show"
)

// SeasonRef identifies a season within a show.
type SeasonRef struct {
	Number int    `json:"number"`
	TMDBID string `json:"tmdbId,omitempty"`
}

// EpisodeRef identifies an episode within a season.
type EpisodeRef struct {
	Number int    `json:"number"`
	TMDBID string `json:"tmdbId,omitempty"`
}

// Media is the descriptor of the requested item. It arrives pre-identified;
// the engine performs no title search of its own.
type Media struct {
	Type        MediaType `json:"type"`
	Title       string    `json:"title"`
	ReleaseYear int       `json:"releaseYear"`
	TMDBID      string    `json:"tmdbId"`
	IMDBID      string    `json:"imdbId,omitempty"`

	// Season and Episode are populated for shows only.
	Season  SeasonRef  `json:"season,omitzero"`
	Episode EpisodeRef `json:"episode,omitzero"`
}

// Key returns a stable identifier for the media item, used by the resolution history.
func (m *Media) Key() string {
	if m.Type == Show {
		return strings.ToLower(fmt.Sprintf("%s:%s:s%d:e%d", m.Type, m.TMDBID, m.Season.Number, m.Episode.Number))
	}
	return strings.ToLower(fmt.Sprintf("%s:%s", m.Type, m.TMDBID))
}
