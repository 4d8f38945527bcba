// Package report renders the portfolio overview as Markdown, for the
// terminal through glamour and for browsers through goldmark.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	"ichinichi/internal/format"
)

//go:embed templates/*.md
var templates embed.FS

// Report is the data behind one rendering.
type Report struct {
	Period      core.DisplayPeriod
	GeneratedAt time.Time
	Summary     core.SummaryData
	Shares      []core.CategoryShare
	Top         []core.Item
	ItemCount   int
}

// Build summarizes items for the given display period and keeps the topN
// items by cost per day.
func Build(items []core.Item, period core.DisplayPeriod, topN int, now time.Time) *Report {
	summary := cost.Summarize(items)
	return &Report{
		Period:      period,
		GeneratedAt: now,
		Summary:     summary,
		Shares:      cost.Shares(summary, period),
		Top:         cost.TopItems(items, topN),
		ItemCount:   len(items),
	}
}

// Markdown renders r with amounts in f's currency.
func Markdown(r *Report, f *format.Formatter) (string, error) {
	return render("report.md", r, f)
}

// ItemsMarkdown renders items as a table, in the given order.
func ItemsMarkdown(items []core.Item, f *format.Formatter) (string, error) {
	return render("items.md", items, f)
}

// ItemMarkdown renders every field of one item with its normalized costs.
func ItemMarkdown(item core.Item, f *format.Formatter) (string, error) {
	return render("item.md", item, f)
}

func render(name string, data any, f *format.Formatter) (string, error) {
	funcs := template.FuncMap{
		"amount":   f.Amount,
		"detailed": f.Detailed,
		"percent":  format.Percent,
		"money": func(p core.DisplayPeriod, v float64) string {
			if p == core.PeriodDay {
				return f.Detailed(v)
			}
			return f.Amount(v)
		},
		"perMonth": cost.PerMonth,
		"perYear":  cost.PerYear,
		"cell":     escapeCell,
		"inc":      func(i int) int { return i + 1 },
		"date":     func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}
	t, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// Terminal renders Markdown for a terminal of the given width.
func Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	return r.Render(md)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageHead = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem;color:#222}
table{border-collapse:collapse;width:100%%;margin-bottom:1.5rem}
th,td{padding:.35rem .6rem;border-bottom:1px solid #ddd}
th{background:#f5f5f5}
</style>
</head>
<body>
`

// HTML writes md as a standalone HTML page. Raw HTML in md is dropped.
func HTML(w io.Writer, title, md string) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	if _, err := fmt.Fprintf(w, pageHead, html.EscapeString(title)); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// escapeCell keeps user text from breaking a Markdown table row.
func escapeCell(s string) string {
	r := strings.NewReplacer(
		"|", `\|`,
		"\n", " ",
		"\r", " ",
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"<", `\<`,
		"[", `\[`,
	)
	return r.Replace(s)
}
