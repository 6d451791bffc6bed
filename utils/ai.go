package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chayo-ai/backend/onboarding"
)

type AIConfig struct {
	APIKey   string
	GenModel string
}

func NewAIClient(ctx context.Context, cfg AIConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
}

// GenerateText runs one prompt against a configured model and returns the
// concatenated text parts.
func GenerateText(ctx context.Context, m *genai.GenerativeModel, parts ...genai.Part) (string, error) {
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp != nil {
		for _, c := range resp.Candidates {
			if c == nil || c.Content == nil {
				continue
			}
			for _, p := range c.Content.Parts {
				if t, ok := p.(genai.Text); ok {
					b.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// GeminiVibeCards generates VibeCards with Gemini in JSON response mode.
type GeminiVibeCards struct {
	client *genai.Client
	model  string
}

var _ onboarding.VibeCardGenerator = (*GeminiVibeCards)(nil)

func NewGeminiVibeCards(ctx context.Context, cfg AIConfig) (*GeminiVibeCards, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai disabled: missing api key")
	}
	client, err := NewAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiVibeCards{client: client, model: cfg.GenModel}, nil
}

func (g *GeminiVibeCards) Close() error { return g.client.Close() }

func (g *GeminiVibeCards) GenerateVibeCard(ctx context.Context, answered map[onboarding.FieldName]string) (onboarding.VibeCard, error) {
	m := g.client.GenerativeModel(g.model)
	m.ResponseMIMEType = "application/json"
	txt, err := GenerateText(ctx, m, genai.Text(vibeCardPrompt(answered)))
	if err != nil {
		return onboarding.VibeCard{}, err
	}
	if txt == "" {
		return onboarding.VibeCard{}, errors.New("empty vibe card response")
	}
	return parseVibeCard(txt, answered)
}

func vibeCardPrompt(answered map[onboarding.FieldName]string) string {
	// map keys marshal sorted, so the prompt is stable for a given profile
	data, _ := json.Marshal(answered)
	return strings.Join([]string{
		"You write short, warm marketing summaries for small businesses.",
		"Using only the business profile below, return strict JSON with keys:",
		`{"business_name":"","business_type":"","industry":"","tone":"","origin_story":"","aesthetic":"","audience":"","values":[""],"tagline":""}.`,
		"Keep origin_story under 60 words and tagline under 12 words. Do not invent facts.",
		"BusinessProfileJSON: " + string(data),
	}, "\n")
}

// parseVibeCard decodes the model output; empty fields fall back to the
// deterministic card for the same profile.
func parseVibeCard(txt string, answered map[onboarding.FieldName]string) (onboarding.VibeCard, error) {
	t := strings.TrimSpace(txt)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	var card onboarding.VibeCard
	if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &card); err != nil {
		return onboarding.VibeCard{}, fmt.Errorf("decode vibe card: %w", err)
	}
	base := onboarding.BuildVibeCard(answered)
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&card.BusinessName, base.BusinessName)
	fill(&card.BusinessType, base.BusinessType)
	fill(&card.Industry, base.Industry)
	fill(&card.Tone, base.Tone)
	fill(&card.OriginStory, base.OriginStory)
	fill(&card.Aesthetic, base.Aesthetic)
	fill(&card.Audience, base.Audience)
	fill(&card.Tagline, base.Tagline)
	if len(card.Values) == 0 {
		card.Values = base.Values
	}
	return card, nil
}
