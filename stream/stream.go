// Package stream defines the common playable-stream representation returned by all providers.
package stream

import (
	"github.com/streamscout-cli/streamscout/flags"
)

// Type discriminates the two stream shapes.
type Type string

const (
	// TypeHLS is an HLS playlist stream.
	TypeHLS Type = "hls"

	// TypeFile is a progressive file stream with one or more quality variants.
	TypeFile Type = "file"
)

// Format identifies the container of a file variant.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatMKV  Format = "mkv"
	FormatWebM Format = "webm"
)

// Variant is a single quality entry of a file stream.
type Variant struct {
	Format  Format            `json:"format"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Stream is the normalized playable stream produced by a provider.
// The Type field discriminates which of PlaylistURL and Qualities is populated;
// provider output is validated at the plug-in boundary so a malformed shape
// never enters the orchestrator.
type Stream struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	// PlaylistURL is set for HLS streams only.
	PlaylistURL string `json:"playlistUrl,omitempty"`

	// Qualities is set for file streams only.
	Qualities map[Quality]Variant `json:"qualities,omitempty"`

	// Headers must accompany every request for the stream.
	Headers map[string]string `json:"headers,omitempty"`

	// PreferredHeaders improve playback but are not required.
	PreferredHeaders map[string]string `json:"preferredHeaders,omitempty"`

	Captions []Caption `json:"captions,omitempty"`
	Flags    flags.Set `json:"-"`

	// SkipValidation exempts the stream from the live reachability probe.
	SkipValidation bool `json:"-"`

	// ProxyDepth counts how many relay hops the stream already passes through.
	ProxyDepth int `json:"-"`
}

// StructurallyValid reports whether the stream carries enough data to be playable at all:
// an HLS stream needs a playlist URL, a file stream needs at least one quality with a URL.
func (s *Stream) StructurallyValid() bool {
	if s == nil {
		return false
	}

	switch s.Type {
	case TypeHLS:
		return s.PlaylistURL != ""
	case TypeFile:
		for _, variant := range s.Qualities {
			if variant.URL != "" {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Clone returns a deep copy of the stream. Probing and proxy rewriting operate
// on copies so a provider's original output is never mutated.
func (s *Stream) Clone() *Stream {
	if s == nil {
		return nil
	}

	out := *s
	out.Headers = cloneHeaders(s.Headers)
	out.PreferredHeaders = cloneHeaders(s.PreferredHeaders)
	out.Flags = s.Flags.Clone()
	out.Captions = append([]Caption(nil), s.Captions...)

	if s.Qualities != nil {
		out.Qualities = make(map[Quality]Variant, len(s.Qualities))
		for q, v := range s.Qualities {
			v.Headers = cloneHeaders(v.Headers)
			out.Qualities[q] = v
		}
	}

	return &out
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
