package domain

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf16"
)

// SpanKind is a formatting annotation type. Values follow the Telegram
// message entity type names.
type SpanKind string

const (
	SpanBold          SpanKind = "bold"
	SpanItalic        SpanKind = "italic"
	SpanUnderline     SpanKind = "underline"
	SpanStrikethrough SpanKind = "strikethrough"
	SpanCode          SpanKind = "code"
	SpanPre           SpanKind = "pre"
	SpanSpoiler       SpanKind = "spoiler"
	SpanTextLink      SpanKind = "text_link"
	SpanTextMention   SpanKind = "text_mention"

	// Auto-detected kinds carry no styling of their own; the client
	// linkifies them on its side.
	SpanMention     SpanKind = "mention"
	SpanHashtag     SpanKind = "hashtag"
	SpanCashtag     SpanKind = "cashtag"
	SpanBotCommand  SpanKind = "bot_command"
	SpanURL         SpanKind = "url"
	SpanEmail       SpanKind = "email"
	SpanPhoneNumber SpanKind = "phone_number"
)

// Span is an offset/length-tagged formatting annotation over a text string.
// Offset and Length count UTF-16 code units, matching the Telegram wire
// convention. Spans are assumed non-overlapping; they need not arrive sorted.
type Span struct {
	Kind   SpanKind `json:"type"`
	Offset int      `json:"offset"`
	Length int      `json:"length"`
	URL    string   `json:"url,omitempty"`
	UserID int64    `json:"user_id,omitempty"`
}

// OutOfRangeSpanError reports a span that does not fit inside its text.
// Malformed spans are a fatal input condition: truncating silently would
// corrupt user-authored formatting.
type OutOfRangeSpanError struct {
	Offset  int
	Length  int
	TextLen int
}

func (e *OutOfRangeSpanError) Error() string {
	return fmt.Sprintf("span [%d,%d) out of range for text of %d code units",
		e.Offset, e.Offset+e.Length, e.TextLen)
}

// RenderHTML reconstructs HTML formatting from annotation spans over text.
// Gaps between spans are emitted as escaped plain text, styled spans are
// wrapped in their HTML tag, and auto-detected spans pass through escaped
// but unwrapped. The output is safe to send with HTML parse mode.
func RenderHTML(text string, spans []Span) (string, error) {
	units := utf16.Encode([]rune(text))

	if len(spans) == 0 {
		return escapeUnits(units), nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	var sb strings.Builder
	cursor := 0
	for _, sp := range sorted {
		end := sp.Offset + sp.Length
		// An overlap would rewind the cursor and duplicate code units,
		// so it is rejected the same way as an out-of-bounds span.
		if sp.Offset < cursor || sp.Length < 0 || end > len(units) {
			return "", &OutOfRangeSpanError{Offset: sp.Offset, Length: sp.Length, TextLen: len(units)}
		}
		if sp.Offset > cursor {
			sb.WriteString(escapeUnits(units[cursor:sp.Offset]))
		}
		sb.WriteString(wrapSpan(sp, escapeUnits(units[sp.Offset:end])))
		cursor = end
	}
	sb.WriteString(escapeUnits(units[cursor:]))

	return sb.String(), nil
}

// escapeUnits decodes a UTF-16 slice back to a string and escapes the
// HTML-significant characters.
func escapeUnits(units []uint16) string {
	return html.EscapeString(string(utf16.Decode(units)))
}

// wrapSpan wraps an already-escaped body in the HTML construct for the
// span's kind.
func wrapSpan(sp Span, body string) string {
	switch sp.Kind {
	case SpanBold:
		return "<b>" + body + "</b>"
	case SpanItalic:
		return "<i>" + body + "</i>"
	case SpanUnderline:
		return "<u>" + body + "</u>"
	case SpanStrikethrough:
		return "<s>" + body + "</s>"
	case SpanCode:
		return "<code>" + body + "</code>"
	case SpanPre:
		return "<pre>" + body + "</pre>"
	case SpanSpoiler:
		return `<span class="tg-spoiler">` + body + "</span>"
	case SpanTextLink:
		return `<a href="` + html.EscapeString(sp.URL) + `">` + body + "</a>"
	case SpanTextMention:
		return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, sp.UserID, body)
	default:
		// url, mention, hashtag, cashtag, bot_command, email,
		// phone_number: the client auto-linkifies these.
		return body
	}
}
