package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	subjectQuoteResolvedFmt   = "Quote ready: %s (%s)"
	subjectQuoteFailedFmt     = "Quote failed: %s"
	subjectLeadTransferredFmt = "Lead transferred: %s"
	timeLayout                = "2 Jan 2006 15:04"
)

type baseEmailData struct {
	Title          string
	Heading        string
	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
}

type quoteResolvedEmailData struct {
	baseEmailData
	ReferenceID string
	QuoteID     string
	Premium     string
	Excess      string
	AgentBranch string
	OccurredAt  string
}

type quoteFailedEmailData struct {
	baseEmailData
	ReferenceID  string
	ErrorCode    string
	ErrorMessage string
}

type leadTransferredEmailData struct {
	baseEmailData
	ClientID    string
	QuoteID     string
	RedirectURL string
	Agent       string
	Branch      string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatRand renders an amount as "R 1,234.50".
func formatRand(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "R " + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
