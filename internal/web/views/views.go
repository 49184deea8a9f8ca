// Package views renders the HTML fragments served by the web package.
//
// Components are built with templ.ComponentFunc and escape every value with
// templ.EscapeString.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/storyimport/internal/core"
)

// esc is a short alias used throughout the components.
var esc = templ.EscapeString

// ErrorAlert renders a coded error message with its suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, esc(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, esc(action))
		}
		fmt.Fprintf(&b, `<p class="alert-code">Code: %s</p>`, esc(code))
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportReport renders the last import summary as a standalone page.
// Created story titles are written in the direction of their language.
func ImportReport(summary *core.Summary, languages *core.Languages) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Story import report</title></head><body>`)
		fmt.Fprintf(&b, `<h1>Story import %s</h1>`, esc(summary.ImportID))
		fmt.Fprintf(&b, `<p class="meta">Started %s, took %s.`,
			esc(summary.StartedAt.Format(time.RFC3339)), esc(summary.Duration.Round(time.Millisecond).String()))
		if summary.MappingPath != "" {
			fmt.Fprintf(&b, ` Mapping written to <code>%s</code>.`, esc(summary.MappingPath))
		}
		b.WriteString(`</p>`)

		fmt.Fprintf(&b, `<ul class="counts"><li>Created: %d</li><li>Skipped: %d</li><li>Failed: %d</li></ul>`,
			summary.CreatedCount, summary.SkippedCount, summary.FailedCount)

		writeCreated(&b, summary, languages)
		writeSkipped(&b, summary.Skipped)
		writeFailed(&b, summary.Failed)

		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeCreated(b *strings.Builder, summary *core.Summary, languages *core.Languages) {
	b.WriteString(`<h2>Created</h2>`)
	if len(summary.Created) == 0 {
		b.WriteString(`<p class="empty">No stories created.</p>`)
		return
	}
	b.WriteString(`<table class="created"><thead><tr><th>Story</th><th>Title</th><th>Language</th></tr></thead><tbody>`)
	for _, name := range summary.Created {
		label := summary.Languages[name]
		dir := "ltr"
		if schema, err := languages.Lookup(label); err == nil {
			dir = schema.Direction()
		}
		fmt.Fprintf(b, `<tr><td>%s</td><td dir="%s">%s</td><td>%s</td></tr>`,
			esc(name), dir, esc(summary.Titles[name]), esc(label))
	}
	b.WriteString(`</tbody></table>`)
}

func writeSkipped(b *strings.Builder, rows []core.SkippedRow) {
	b.WriteString(`<h2>Skipped</h2>`)
	if len(rows) == 0 {
		b.WriteString(`<p class="empty">No rows skipped.</p>`)
		return
	}
	b.WriteString(`<table class="skipped"><thead><tr><th>Existing story</th><th>Reason</th></tr></thead><tbody>`)
	for _, row := range rows {
		fmt.Fprintf(b, `<tr><td>%s</td><td>%s</td></tr>`, esc(row.Story), esc(row.Reason))
	}
	b.WriteString(`</tbody></table>`)
}

func writeFailed(b *strings.Builder, rows []core.FailedRow) {
	b.WriteString(`<h2>Failed</h2>`)
	if len(rows) == 0 {
		b.WriteString(`<p class="empty">No rows failed.</p>`)
		return
	}
	b.WriteString(`<table class="failed"><thead><tr><th>Line</th><th>Title</th><th>Error</th></tr></thead><tbody>`)
	for _, row := range rows {
		fmt.Fprintf(b, `<tr><td>%d</td><td dir="auto">%s</td><td><pre>%s</pre></td></tr>`,
			row.Line, esc(row.Title), esc(row.Error))
	}
	b.WriteString(`</tbody></table>`)
}
