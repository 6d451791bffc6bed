package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// UpsertFieldRequest carries a field answer. Value may be a string, any JSON
// payload (stored as compact JSON text) or null to clear the answer.
type UpsertFieldRequest struct {
	Value json.RawMessage `json:"value"`
}

func (r UpsertFieldRequest) FieldValue() (*string, error) {
	raw := bytes.TrimSpace(r.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, errors.New("value must be valid JSON")
	}
	s := buf.String()
	return &s, nil
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type CreateOrganizationResponse struct {
	OrganizationID string `json:"organization_id"`
}
