package generator

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kalambet/devfolio/internal/errors"
	"github.com/kalambet/devfolio/internal/logfields"
	"github.com/kalambet/devfolio/internal/openai"
)

// Sampling parameters are fixed: output must be well-formed markup and
// nothing downstream repairs it.
const (
	Temperature = 0.2
	MaxTokens   = 2500
)

// Chatter is the chat completion call the generator depends on.
type Chatter interface {
	Chat(ctx context.Context, req openai.ChatRequest) (string, error)
}

// Generator renders a profile into a single HTML page using a hosted model.
type Generator struct {
	client Chatter
	model  string
}

// New creates a Generator using the given client and model name.
func New(client Chatter, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate returns the model's completion for profile verbatim. Any failure
// is a generation error; quota refusals additionally carry "quota": true.
func (g *Generator) Generate(ctx context.Context, profile any) (string, error) {
	messages, err := BuildPrompt(profile)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryGeneration, "building prompt")
	}

	start := time.Now()
	out, err := g.client.Chat(ctx, openai.ChatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		var qe *openai.QuotaError
		if stderrors.As(err, &qe) {
			return "", errors.Wrap(err, errors.CategoryGeneration, "generation quota exceeded").
				WithContext("quota", true).
				WithContext("status_code", qe.Status)
		}
		return "", errors.Wrap(err, errors.CategoryGeneration, "chat completion failed")
	}

	slog.Info("generated site markup",
		logfields.Model(g.model),
		slog.Int("bytes", len(out)),
		slog.String("title", pageTitle(out)),
		logfields.Since(start))
	return out, nil
}

// pageTitle returns the text of the first <title> element, or "" if the
// markup has none. It only reads the markup.
func pageTitle(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		}
	}
}
