package history

import (
	"fmt"
	"time"

	"github.com/streamscout-cli/streamscout/provider"
)

// Record remembers which provider last produced a playable stream for a piece
// of media, so later resolutions can try that provider first.
type Record struct {
	MediaKey   string    `json:"media_key"`
	Title      string    `json:"title"`
	SourceID   string    `json:"source_id"`
	EmbedID    string    `json:"embed_id,omitempty"`
	StreamType string    `json:"stream_type"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (r *Record) String() string {
	if r.EmbedID != "" {
		return fmt.Sprintf("%s : %s via %s", r.Title, r.SourceID, r.EmbedID)
	}
	return fmt.Sprintf("%s : %s", r.Title, r.SourceID)
}

func newRecord(media *provider.Media, sourceID, embedID, streamType string) *Record {
	return &Record{
		MediaKey:   media.Key(),
		Title:      media.Title,
		SourceID:   sourceID,
		EmbedID:    embedID,
		StreamType: streamType,
		ResolvedAt: time.Now(),
	}
}
