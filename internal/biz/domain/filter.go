package domain

import "time"

// MediaKind identifies which single media payload a filter carries.
type MediaKind string

const (
	MediaNone      MediaKind = ""
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAnimation MediaKind = "animation"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaSticker   MediaKind = "sticker"
)

// MediaRef is a tagged reference to a single media payload. The zero value
// means no media. Modeling this as one kind+id pair (instead of seven
// nullable fields) makes "two media kinds set at once" unrepresentable.
type MediaRef struct {
	Kind   MediaKind `json:"kind,omitempty"`
	FileID string    `json:"file_id,omitempty"`
}

// IsZero reports whether no media is referenced.
func (m MediaRef) IsZero() bool {
	return m.Kind == MediaNone
}

// Button is one interactive control: a label with either a target URL or an
// opaque callback token.
type Button struct {
	Label        string `json:"label"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// Filter is a named, admin-authored content snippet triggerable by keyword.
// Filters are keyed by lowercase name in the filter store.
type Filter struct {
	Text            string     `json:"text"`
	Media           MediaRef   `json:"media,omitempty"`
	Entities        []Span     `json:"entities,omitempty"`
	CaptionEntities []Span     `json:"caption_entities,omitempty"`
	Buttons         [][]Button `json:"buttons,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       int64      `json:"created_by"`
}

// HasContent reports whether the filter has anything to send. A stored
// filter without content indicates a creation bug upstream.
func (f *Filter) HasContent() bool {
	return !f.Media.IsZero() || f.Text != ""
}

// CaptionSpans returns the spans to style a media caption with: caption
// entities take priority, message entities are the fallback.
func (f *Filter) CaptionSpans() []Span {
	if len(f.CaptionEntities) > 0 {
		return f.CaptionEntities
	}
	return f.Entities
}

// TextSpans returns the spans to style a standalone text message with:
// message entities first, caption entities as the fallback.
func (f *Filter) TextSpans() []Span {
	if len(f.Entities) > 0 {
		return f.Entities
	}
	return f.CaptionEntities
}

// Clone returns a deep copy, used by the clone admin action so the copy does
// not share span or button slices with the original.
func (f *Filter) Clone() *Filter {
	out := &Filter{
		Text:      f.Text,
		Media:     f.Media,
		CreatedAt: f.CreatedAt,
		CreatedBy: f.CreatedBy,
	}
	if len(f.Entities) > 0 {
		out.Entities = append([]Span(nil), f.Entities...)
	}
	if len(f.CaptionEntities) > 0 {
		out.CaptionEntities = append([]Span(nil), f.CaptionEntities...)
	}
	if len(f.Buttons) > 0 {
		out.Buttons = make([][]Button, len(f.Buttons))
		for i, row := range f.Buttons {
			out.Buttons[i] = append([]Button(nil), row...)
		}
	}
	return out
}
