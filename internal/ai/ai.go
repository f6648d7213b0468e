// Package ai wraps the generative-language service used for relevance
// classification and paraphrasing.
package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

const defaultModel = "claude-3-5-haiku-20241022"

var (
	linkRe  = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|t\.me/\S+)`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
)

const classifySystemPrompt = "Ты — модератор канала про инсайды/сливы/хайп вокруг блогеров. " +
	"Ответь одним словом 'Да' если текст релевантен (инсайд/слив/важная новость про блогера), " +
	"иначе ответь 'Нет'. Отвечай только 'Да' или 'Нет'."

const rewriteSystemPrompt = "Ты — автор популярного Telegram-канала про блогеров и тиктокеров. " +
	"Перепиши текст в разговорном, молодёжном стиле (18+), добавь лёгкий сарказм, эмодзи (👀, 😭, 💅 и т.д.), " +
	"короткие шутки и мемный сленг там, где уместно. " +
	"Убери любые ссылки/упоминания/хэштеги и не вставляй их. " +
	"Не выдумывай фактов — только подача."

// Client talks to the Anthropic API via llmkit.
type Client struct {
	apiKey string
	model  string
}

// New creates a Client. An empty model selects the default.
func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{apiKey: apiKey, model: model}
}

// ClassifyRelevance asks the model for a yes/no relevance verdict. Any
// error propagates so the caller can fail closed.
func (c *Client) ClassifyRelevance(_ context.Context, text string) (bool, error) {
	settings := types.RequestSettings{
		Model:       c.model,
		MaxTokens:   10,
		Temperature: 0,
	}
	resp, err := anthropic.PromptWithSettings(classifySystemPrompt, "Текст: "+text, "", c.apiKey, settings)
	if err != nil {
		return false, fmt.Errorf("classify relevance: %w", err)
	}
	if len(resp.Content) == 0 {
		return false, fmt.Errorf("classify relevance: empty response")
	}
	return parseVerdict(resp.Content[0].Text), nil
}

// parseVerdict reads a yes/no answer leniently: anything starting with
// "д" or "y" counts as yes, everything else as no.
func parseVerdict(answer string) bool {
	ans := strings.ToLower(strings.TrimSpace(answer))
	return strings.HasPrefix(ans, "д") || strings.HasPrefix(ans, "y")
}

// Rewrite paraphrases the text for publication and appends the signature.
// Links the model reintroduces are stripped and horizontal whitespace is
// collapsed; the caller substitutes its own fallback on error.
func (c *Client) Rewrite(_ context.Context, text, signature string) (string, error) {
	settings := types.RequestSettings{
		Model:       c.model,
		MaxTokens:   700,
		Temperature: 0.8,
	}
	user := fmt.Sprintf("В конце добавь подпись %s.\n\nИсходный текст:\n%s", signature, text)
	resp, err := anthropic.PromptWithSettings(rewriteSystemPrompt, user, "", c.apiKey, settings)
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("rewrite: empty response")
	}
	return sanitizeRewrite(resp.Content[0].Text), nil
}

// sanitizeRewrite strips links the model reintroduced and collapses
// horizontal whitespace, keeping line breaks intact.
func sanitizeRewrite(text string) string {
	out := linkRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(out, " "))
}
