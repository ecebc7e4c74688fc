package usecase

import (
	"telegram-filter-bot/internal/biz/domain"
)

// RenderUsecase turns a matched filter into a side-effect-free send plan.
type RenderUsecase struct{}

// NewRenderUsecase creates a new render usecase.
func NewRenderUsecase() *RenderUsecase {
	return &RenderUsecase{}
}

// Plan builds the send plan for a filter. Exactly one content branch is
// chosen: the filter's single media kind, or plain text when no media is
// set. A contentless filter is a caller error and fails loudly.
//
// When annotation spans are present the text is reconstructed as HTML and
// the plan enables HTML parse mode; without spans the text goes out plain,
// since the legacy Markdown dialect is unsafe against unescaped special
// characters.
func (uc *RenderUsecase) Plan(f *domain.Filter) (*domain.SendPlan, error) {
	if !f.HasContent() {
		return nil, domain.ErrEmptyFilterContent
	}

	plan := &domain.SendPlan{
		Media:   f.Media,
		Buttons: copyButtons(f.Buttons),
	}

	switch {
	case f.Media.Kind == domain.MediaSticker:
		// Stickers carry no caption; text goes out as a second message.
		if f.Text != "" {
			text, mode, err := styledText(f.Text, f.TextSpans())
			if err != nil {
				return nil, err
			}
			plan.FollowUpText = text
			plan.FollowUpParseMode = mode
		}

	case !f.Media.IsZero():
		text, mode, err := styledText(f.Text, f.CaptionSpans())
		if err != nil {
			return nil, err
		}
		plan.Text = text
		plan.ParseMode = mode

	default:
		text, mode, err := styledText(f.Text, f.TextSpans())
		if err != nil {
			return nil, err
		}
		plan.Text = text
		plan.ParseMode = mode
	}

	return plan, nil
}

// styledText renders text with its spans, falling back to a plain send when
// there is nothing to style.
func styledText(text string, spans []domain.Span) (string, domain.ParseMode, error) {
	if len(spans) == 0 {
		return text, domain.ParseModeNone, nil
	}
	rendered, err := domain.RenderHTML(text, spans)
	if err != nil {
		return "", domain.ParseModeNone, err
	}
	return rendered, domain.ParseModeHTML, nil
}

func copyButtons(buttons [][]domain.Button) [][]domain.Button {
	if len(buttons) == 0 {
		return nil
	}
	out := make([][]domain.Button, len(buttons))
	for i, row := range buttons {
		out[i] = append([]domain.Button(nil), row...)
	}
	return out
}
