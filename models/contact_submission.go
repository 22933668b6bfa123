package models

import (
	"bytes"
	"encoding/json"
)

// ContactSubmission is the JSON payload posted by the landing page contact form
type ContactSubmission struct {
	FullName       string      `json:"fullName"`
	CompanyName    string      `json:"companyName"`
	WorkEmail      string      `json:"workEmail"`
	PhoneNumber    string      `json:"phoneNumber"`
	Industry       string      `json:"industry"`
	Services       ServiceList `json:"services"`
	ProjectBrief   string      `json:"projectBrief"`
	RecaptchaToken string      `json:"recaptchaToken"`
}

// RequiredField pairs a wire name with its value for presence checks
type RequiredField struct {
	Name  string
	Value string
}

// RequiredFields returns the mandatory fields in the order they are reported when missing
func (s *ContactSubmission) RequiredFields() []RequiredField {
	return []RequiredField{
		{Name: "fullName", Value: s.FullName},
		{Name: "companyName", Value: s.CompanyName},
		{Name: "workEmail", Value: s.WorkEmail},
		{Name: "projectBrief", Value: s.ProjectBrief},
		{Name: "recaptchaToken", Value: s.RecaptchaToken},
	}
}

// ServiceList is the list of services ticked on the form.
// Anything other than a JSON array decodes to an empty list, and non-string
// array elements are dropped.
type ServiceList []string

func (l *ServiceList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = ServiceList{}
		return nil
	}

	out := make(ServiceList, 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	*l = out
	return nil
}

// SanitizedContact holds a submission after validation and sanitation
type SanitizedContact struct {
	SubmissionID string
	FullName     string
	CompanyName  string
	WorkEmail    string
	PhoneNumber  string
	Industry     string
	Services     []string
	ProjectBrief string
	RemoteIP     string
}
