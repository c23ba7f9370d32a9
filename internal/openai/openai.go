package openai

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
	"github.com/lehigh-university-libraries/imagenamer/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAI is a provider for OpenAI compatible chat completion APIs
type OpenAI struct {
	client *goopenai.Client
}

// New returns a new OpenAI provider. An empty baseURL targets api.openai.com.
func New(apiKey, baseURL string) *OpenAI {
	if apiKey == "" {
		// the client is still usable, calls fail with an auth error and fall back
		apiKey = "placeholder"
	}
	clientConfig := goopenai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	clientConfig.BaseURL = baseURL

	return &OpenAI{client: goopenai.NewClientWithConfig(clientConfig)}
}

// ExtractText sends the prompt and image as one user message
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if config.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: config.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{
				Type: goopenai.ChatMessagePartTypeText,
				Text: config.Prompt,
			},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL: naming.DataURL(config.MIMEType, config.Image),
				},
			},
		},
	})

	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       config.Model,
		Messages:    messages,
		MaxTokens:   config.MaxTokens,
		Temperature: float32(config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call chat completion API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
