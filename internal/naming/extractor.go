package naming

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/imagenamer/internal/providers"
)

// DefaultPrompt is used when a batch does not carry its own naming instruction
const DefaultPrompt = "识别图片内容，将图片命名为日期，客户名称，金额，不要其他多余的文字（最后要加一个。号），比如：2022年5月10日，中海上湾卖水泥陈培，金额0元。"

// SystemPrompt constrains the model to answer with a bare filename
const SystemPrompt = "You name image files. Reply with exactly one filename on a single line, without an extension, numbering, quotes, explanations or any other text."

var enumerationPrefix = regexp.MustCompile(`^\d+\.\s?`)

// Request is a single naming request for one image
type Request struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

// Extractor asks a vision provider for a filename
type Extractor struct {
	provider    providers.Provider
	model       string
	temperature float64
	maxTokens   int
}

// NewExtractor wraps a provider with the model settings used for every request
func NewExtractor(provider providers.Provider, model string, temperature float64, maxTokens int) *Extractor {
	return &Extractor{
		provider:    provider,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Extract returns the model's suggested name, or UnknownImage on any failure.
// Errors are logged and never returned.
func (e *Extractor) Extract(ctx context.Context, req Request) string {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	text, err := e.provider.ExtractText(ctx, providers.Config{
		Model:        e.model,
		Temperature:  e.temperature,
		MaxTokens:    e.maxTokens,
		SystemPrompt: SystemPrompt,
		Prompt:       prompt,
		Image:        req.Image,
		MIMEType:     req.MIMEType,
	})
	if err != nil {
		slog.Error("Failed to extract name from image", "model", e.model, "err", err)
		return UnknownImage
	}

	name := CleanResponse(text)
	if name == "" {
		slog.Warn("Model returned an empty name", "model", e.model)
		return UnknownImage
	}

	slog.Info("Model returned name", "model", e.model, "name", name)
	return name
}

// CleanResponse keeps the first line of a model reply and drops a leading "1. " style prefix
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	text = enumerationPrefix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
