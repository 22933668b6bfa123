// Package emails renders the notification emails sent by the site.
package emails

import (
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/a-h/templ"
)

//go:embed contact_inquiry.html contact_inquiry.txt
var files embed.FS

var (
	inquiryHTML = htmltemplate.Must(htmltemplate.ParseFS(files, "contact_inquiry.html"))
	inquiryText = texttemplate.Must(texttemplate.ParseFS(files, "contact_inquiry.txt"))
)

// ContactInquiryData is the content of a business inquiry notification
type ContactInquiryData struct {
	Heading      string
	FullName     string
	CompanyName  string
	WorkEmail    string
	PhoneNumber  string
	Industry     string
	Services     []string
	ProjectBrief string
	SubmittedAt  string
	SubmissionID string
}

// ContactInquiry renders the HTML body. Values are escaped by html/template.
func ContactInquiry(data ContactInquiryData) templ.Component {
	return templ.FromGoHTML(inquiryHTML, data)
}

// ContactInquiryText renders the plain-text alternative body
func ContactInquiryText(data ContactInquiryData) (string, error) {
	var b strings.Builder
	if err := inquiryText.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
