package stream

// CaptionKind is the subtitle file format.
type CaptionKind string

const (
	CaptionSRT CaptionKind = "srt"
	CaptionVTT CaptionKind = "vtt"
)

// Caption is a subtitle track attached to a stream.
type Caption struct {
	ID string `json:"id"`

	// Language is an ISO-639-1 code.
	Language string      `json:"language"`
	Kind     CaptionKind `json:"kind"`
	URL      string      `json:"url"`

	// HasCORSRestrictions indicates the caption origin cannot be fetched cross-origin.
	HasCORSRestrictions bool `json:"hasCorsRestrictions"`
}
