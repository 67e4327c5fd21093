package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type quoteLineView struct {
	Combination string
	Glaseo      string
	FOB         string
	CFR         string
	DDP         string
	Destination string
}

type quoteSummaryEmailData struct {
	baseEmailData
	UserID       string
	Channel      string
	RequestText  string
	Lines        []quoteLineView
	FailureCount int
}

type quoteFailureEmailData struct {
	baseEmailData
	UserID      string
	Channel     string
	Reason      string
	RequestText string
}

func newQuoteSummaryData(summary QuoteSummary) quoteSummaryEmailData {
	lines := make([]quoteLineView, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		lines = append(lines, newQuoteLineView(line))
	}

	heading := "Cotización enviada"
	if len(summary.Lines) > 1 {
		heading = fmt.Sprintf("Cotización consolidada enviada (%d productos)", len(summary.Lines))
	}

	return quoteSummaryEmailData{
		baseEmailData: baseEmailData{
			Title:      "Cotización enviada",
			Heading:    heading,
			Subheading: fmt.Sprintf("Cliente %s vía %s", summary.UserID, summary.Channel),
		},
		UserID:       summary.UserID,
		Channel:      summary.Channel,
		RequestText:  strings.TrimSpace(summary.RequestText),
		Lines:        lines,
		FailureCount: summary.FailureCount,
	}
}

func newQuoteLineView(line QuoteLine) quoteLineView {
	view := quoteLineView{
		Combination: strings.TrimSpace(line.Product + " " + line.Size),
		Glaseo:      "0%",
		FOB:         fmt.Sprintf("$%.2f/kg", line.FOBPrice),
		Destination: line.Destination,
	}
	if line.GlaseoPct != nil {
		view.Glaseo = fmt.Sprintf("%d%%", *line.GlaseoPct)
	}
	if line.CFRPrice != nil {
		view.CFR = fmt.Sprintf("$%.2f/kg", *line.CFRPrice)
	}
	if line.DDPPrice != nil {
		view.DDP = fmt.Sprintf("$%.2f/kg", *line.DDPPrice)
	}
	return view
}

func newQuoteFailureData(failure QuoteFailure) quoteFailureEmailData {
	return quoteFailureEmailData{
		baseEmailData: baseEmailData{
			Title:      "Consulta sin cotizar",
			Heading:    "Consulta sin cotizar",
			Subheading: fmt.Sprintf("Cliente %s vía %s", failure.UserID, failure.Channel),
		},
		UserID:      failure.UserID,
		Channel:     failure.Channel,
		Reason:      failure.Reason,
		RequestText: strings.TrimSpace(failure.RequestText),
	}
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
