package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/storyimport/internal/core"
)

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Story not found", "Check <name>", "STY001").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Story not found", "Check &lt;name&gt;", "Code: STY001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestImportReport(t *testing.T) {
	summary := &core.Summary{
		ImportID:     "imp-1",
		CreatedCount: 2,
		SkippedCount: 1,
		FailedCount:  1,
		Created:      []string{"story-ur", "story-mr"},
		Skipped:      []core.SkippedRow{{Status: "skipped", Reason: "already exists", Story: "old-1"}},
		Failed:       []core.FailedRow{{Title: "<b>bad</b>", Error: "Unsupported language: Tamil", Line: 7}},
		Languages:    map[string]string{"story-ur": "Urdu", "story-mr": "Marathi"},
		Titles:       map[string]string{"story-ur": "کوا", "story-mr": "Kavla"},
		MappingPath:  "private/story_node_mapping.csv",
		StartedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	if err := ImportReport(summary, core.DefaultLanguages()).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	checks := []string{
		"Story import imp-1",
		"Created: 2",
		"Skipped: 1",
		"Failed: 1",
		`<td>story-ur</td><td dir="rtl">کوا</td>`,
		`<td>story-mr</td><td dir="ltr">Kavla</td>`,
		"old-1",
		"&lt;b&gt;bad&lt;/b&gt;",
		"Unsupported language: Tamil",
		"<td>7</td>",
		"private/story_node_mapping.csv",
		"1.5s",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "<b>bad</b>") {
		t.Error("title not escaped")
	}
}

func TestImportReport_Empty(t *testing.T) {
	summary := &core.Summary{ImportID: "imp-2"}

	var buf bytes.Buffer
	if err := ImportReport(summary, core.DefaultLanguages()).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"No stories created.", "No rows skipped.", "No rows failed."} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "Mapping written") {
		t.Error("mapping mentioned for an import that wrote none")
	}
}
