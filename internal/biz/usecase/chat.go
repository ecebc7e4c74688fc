package usecase

import (
	"context"
	"log"
	"strings"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// DefaultSystemPrompt frames the completion provider as a concise group
// chat assistant.
const DefaultSystemPrompt = `You are a helpful assistant in a group chat. Answer concisely and directly. Keep answers under 300 words unless the question truly requires more.`

// ChatUsecase runs the AI fallback path: route the query to an eligible
// model, call the completion provider, and record usage on success.
type ChatUsecase struct {
	router       *RouterUsecase
	completion   repo.CompletionRepo
	systemPrompt string
}

// NewChatUsecase creates a new chat usecase. An empty systemPrompt uses the
// default.
func NewChatUsecase(router *RouterUsecase, completion repo.CompletionRepo, systemPrompt string) *ChatUsecase {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ChatUsecase{router: router, completion: completion, systemPrompt: systemPrompt}
}

// Ask answers a question through the routed model. Capacity exhaustion and
// provider failures propagate to the dispatch boundary; usage is recorded
// only after a successful completion.
func (uc *ChatUsecase) Ask(ctx context.Context, requester domain.RequesterTier, question string) (string, error) {
	model, err := uc.router.Select(requester, question)
	if err != nil {
		return "", err
	}

	messages := []repo.Message{
		{Role: "system", Content: uc.systemPrompt},
		{Role: "user", Content: question},
	}

	resp, err := uc.completion.Complete(ctx, model.Name, messages)
	if err != nil {
		return "", err
	}

	if err := uc.router.RecordUsage(ctx, model); err != nil {
		// The completion already succeeded; a persistence hiccup must
		// not fail the user's answer.
		log.Printf("[Chat] Failed to record usage for %s: %v", model.Name, err)
	}

	log.Printf("[Chat] model=%s tokens=%d", model.Name, resp.TokensUsed)
	return strings.TrimSpace(resp.Text), nil
}
