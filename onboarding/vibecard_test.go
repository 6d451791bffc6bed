package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVibeCard(t *testing.T) {
	answered := map[FieldName]string{
		FieldBusinessName:   "Acme",
		FieldIndustry:       "Retail",
		FieldTone:           "Friendly",
		FieldOriginStory:    "Started in a garage.",
		FieldAesthetic:      "warm minimalism",
		FieldTargetAudience: "young families",
		FieldBrandValues:    "honesty, craft;  community ",
		FieldDifferentiator: "Hand-built toys. Shipped same day.",
	}
	card := BuildVibeCard(answered)
	assert.Equal(t, "Acme", card.BusinessName)
	assert.Equal(t, "Retail", card.BusinessType)
	assert.Equal(t, []string{"honesty", "craft", "community"}, card.Values)
	assert.Equal(t, "Acme: Hand-built toys", card.Tagline)
	assert.Equal(t, card, BuildVibeCard(answered))
}

func TestBuildVibeCardTaglineFallbacks(t *testing.T) {
	card := BuildVibeCard(map[FieldName]string{FieldBusinessName: "Acme", FieldTone: "Bold", FieldIndustry: "Coffee"})
	assert.Equal(t, "Acme, bold coffee", card.Tagline)

	card = BuildVibeCard(map[FieldName]string{})
	assert.Equal(t, "Your business", card.Tagline)
	assert.Empty(t, card.Values)
}
