package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	DefaultModel = openai.ChatModelGPT5Mini2025_08_07

	baseMaxOutputTokens  int64 = 1024
	limitMaxOutputTokens int64 = 4096

	systemPrompt = `You explain finance and money concepts in the simplest possible terms, as if to a 5-year-old.

Rules:
- Use lots of emojis and analogies with toys, games and everyday things kids understand.
- Keep answers short, friendly and encouraging.
- If background is given, answer about it.
- Always end with an encouraging emoji combo.`
)

// OpenAIAssistant calls an OpenAI-compatible Responses API.
type OpenAIAssistant struct {
	client openai.Client
	model  string
}

// NewOpenAIAssistant builds an assistant. Empty baseURL and model use the
// OpenAI defaults.
func NewOpenAIAssistant(apiKey string, baseURL string, model string) (*OpenAIAssistant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key is empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &OpenAIAssistant{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (a *OpenAIAssistant) Ask(ctx context.Context, q Question) (string, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return "", errors.New("question is empty")
	}

	promptBuilder := strings.Builder{}
	if background := strings.TrimSpace(q.Context); background != "" {
		promptBuilder.WriteString("Background:\n")
		promptBuilder.WriteString(background)
		promptBuilder.WriteString("\n\n")
	}
	promptBuilder.WriteString("Question:\n")
	promptBuilder.WriteString(text)

	maxOutputTokens := baseMaxOutputTokens
	for {
		params := responses.ResponseNewParams{
			Model:           a.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Instructions:    openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(promptBuilder.String()),
			},
		}
		if a.model == DefaultModel {
			params.Reasoning = responses.ReasoningParam{Effort: openai.ReasoningEffortLow}
		}

		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)

				continue
			}

			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		answer := strings.TrimSpace(resp.OutputText())
		if answer == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}

		return answer, nil
	}
}
