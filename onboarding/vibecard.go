package onboarding

import (
	"context"
	"strings"
)

type VibeCard struct {
	BusinessName string   `json:"business_name"`
	BusinessType string   `json:"business_type"`
	Industry     string   `json:"industry"`
	Tone         string   `json:"tone"`
	OriginStory  string   `json:"origin_story"`
	Aesthetic    string   `json:"aesthetic"`
	Audience     string   `json:"audience"`
	Values       []string `json:"values"`
	Tagline      string   `json:"tagline"`
}

// VibeCardGenerator produces a card from a snapshot of answered fields.
type VibeCardGenerator interface {
	GenerateVibeCard(ctx context.Context, answered map[FieldName]string) (VibeCard, error)
}

// BuildVibeCard derives a card from answered fields without any external call.
// The same input always yields the same card.
func BuildVibeCard(answered map[FieldName]string) VibeCard {
	card := VibeCard{
		BusinessName: answered[FieldBusinessName],
		BusinessType: answered[FieldBusinessType],
		Industry:     answered[FieldIndustry],
		Tone:         answered[FieldTone],
		OriginStory:  answered[FieldOriginStory],
		Aesthetic:    answered[FieldAesthetic],
		Audience:     answered[FieldTargetAudience],
		Values:       splitList(answered[FieldBrandValues]),
	}
	if card.BusinessType == "" {
		card.BusinessType = card.Industry
	}
	card.Tagline = tagline(card, answered[FieldDifferentiator])
	return card
}

func tagline(card VibeCard, differentiator string) string {
	name := card.BusinessName
	if name == "" {
		name = "Your business"
	}
	if differentiator != "" {
		return name + ": " + firstSentence(differentiator)
	}
	if card.Tone != "" && card.Industry != "" {
		return name + ", " + strings.ToLower(card.Tone) + " " + strings.ToLower(card.Industry)
	}
	return name
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		return s[:i]
	}
	return s
}
