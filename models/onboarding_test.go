package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFieldRequestValue(t *testing.T) {
	cases := []struct {
		body string
		want *string
	}{
		{`{}`, nil},
		{`{"value":null}`, nil},
		{`{"value":"Acme"}`, strp("Acme")},
		{`{"value":{"open": "9am",  "close":"5pm"}}`, strp(`{"open":"9am","close":"5pm"}`)},
		{`{"value":["a", "b"]}`, strp(`["a","b"]`)},
		{`{"value":12}`, strp(`12`)},
	}
	for _, tc := range cases {
		var req UpsertFieldRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req), tc.body)
		got, err := req.FieldValue()
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.want, got, tc.body)
	}
}

func strp(s string) *string { return &s }
