package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected ServiceList
	}{
		{"Array of strings", `{"services":["SEO","Paid Media"]}`, ServiceList{"SEO", "Paid Media"}},
		{"Empty array", `{"services":[]}`, ServiceList{}},
		{"Mixed elements", `{"services":["SEO",42,null,{"a":1},"Social"]}`, ServiceList{"SEO", "Social"}},
		{"String instead of array", `{"services":"SEO"}`, ServiceList{}},
		{"Object instead of array", `{"services":{"0":"SEO"}}`, ServiceList{}},
		{"Number instead of array", `{"services":3}`, ServiceList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s ContactSubmission
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &s))
			assert.Equal(t, tt.expected, s.Services)
		})
	}

	t.Run("Absent field", func(t *testing.T) {
		var s ContactSubmission
		require.NoError(t, json.Unmarshal([]byte(`{"fullName":"Jane"}`), &s))
		assert.Empty(t, s.Services)
	})
}

func TestContactSubmission_RequiredFields(t *testing.T) {
	s := ContactSubmission{FullName: "Jane", RecaptchaToken: "tok"}
	fields := s.RequiredFields()

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"fullName", "companyName", "workEmail", "projectBrief", "recaptchaToken"}, names)
	assert.Equal(t, "Jane", fields[0].Value)
	assert.Equal(t, "tok", fields[4].Value)
}
