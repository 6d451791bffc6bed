package onboarding

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldName is a business info key. Only recognized names and custom_* keys
// are valid; use ParseFieldName at the boundary.
type FieldName string

const (
	FieldBusinessName   FieldName = "business_name"
	FieldTone           FieldName = "tone"
	FieldIndustry       FieldName = "industry"
	FieldBusinessType   FieldName = "business_type"
	FieldGoals          FieldName = "goals"
	FieldTargetAudience FieldName = "target_audience"
	FieldContactEmail   FieldName = "contact_email"
	FieldContactPhone   FieldName = "contact_phone"
	FieldOriginStory    FieldName = "origin_story"
	FieldAesthetic      FieldName = "aesthetic"
	FieldBrandValues    FieldName = "brand_values"
	FieldDifferentiator FieldName = "differentiator"
)

const customPrefix = "custom_"

var customSlug = regexp.MustCompile(`^[a-z0-9_]{1,48}$`)

// RecognizedFields lists every recognized key in stage order.
var RecognizedFields = []FieldName{
	FieldBusinessName, FieldTone, FieldIndustry,
	FieldBusinessType, FieldGoals, FieldTargetAudience, FieldContactEmail, FieldContactPhone,
	FieldOriginStory, FieldAesthetic, FieldBrandValues, FieldDifferentiator,
}

func (n FieldName) IsRecognized() bool {
	for _, f := range RecognizedFields {
		if f == n {
			return true
		}
	}
	return false
}

func (n FieldName) IsCustom() bool {
	s := string(n)
	return strings.HasPrefix(s, customPrefix) && customSlug.MatchString(strings.TrimPrefix(s, customPrefix))
}

// ParseFieldName normalizes and validates a raw key.
func ParseFieldName(raw string) (FieldName, error) {
	n := FieldName(strings.ToLower(strings.TrimSpace(raw)))
	if n.IsRecognized() || n.IsCustom() {
		return n, nil
	}
	return "", fmt.Errorf("%w: field name %q", ErrUnrecognizedValue, raw)
}

// Field is one BusinessInfoField row.
type Field struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           FieldName `json:"field_name"`
	Value          *string   `json:"value"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f Field) IsAnswered() bool {
	return f.Value != nil && strings.TrimSpace(*f.Value) != ""
}

// answeredSet collapses fields to the set of answered names. A later row for the
// same name wins, mirroring last-write-wins upserts.
func answeredSet(fields []Field) map[FieldName]string {
	out := make(map[FieldName]string, len(fields))
	for _, f := range fields {
		if f.IsAnswered() {
			out[f.Name] = strings.TrimSpace(*f.Value)
		} else {
			delete(out, f.Name)
		}
	}
	return out
}
