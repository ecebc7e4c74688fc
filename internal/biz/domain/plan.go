package domain

// ParseMode selects how the transport interprets message text. Only the
// HTML dialect is used for styled content; the legacy Markdown dialect is
// unsafe against unescaped special characters.
type ParseMode string

const (
	ParseModeNone ParseMode = ""
	ParseModeHTML ParseMode = "HTML"
)

// SendPlan is a transport-agnostic description of what to dispatch for a
// matched filter. Building a plan performs no I/O; the transport layer
// consumes it.
//
// Exactly one content branch is active: Media.Kind selects the media
// primitive (Text is then the caption), or Media is zero and Text is the
// message body. Stickers cannot carry a caption, so their text travels in
// FollowUpText as a second message.
type SendPlan struct {
	Media     MediaRef
	Text      string
	ParseMode ParseMode
	Buttons   [][]Button

	FollowUpText      string
	FollowUpParseMode ParseMode
}
