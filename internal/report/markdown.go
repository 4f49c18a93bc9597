package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// Markdown writes summary.md.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Write(dir string, results *scenario.Results) (string, error) {
	path := filepath.Join(dir, "summary.md")
	return path, os.WriteFile(path, []byte(Summary(results)), 0o644)
}

// HTML writes summary.html, the markdown summary rendered to a page.
type HTML struct{}

func (HTML) Name() string { return "html" }

func (HTML) Write(dir string, results *scenario.Results) (string, error) {
	body, err := RenderHTML(Summary(results))
	if err != nil {
		return "", err
	}
	page := fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>snipeit-e2e %s</title>
<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>
</head><body>
%s</body></html>
`, results.RunID, body)
	path := filepath.Join(dir, "summary.html")
	return path, os.WriteFile(path, []byte(page), 0o644)
}

// RenderHTML converts GitHub flavoured markdown to HTML.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

var outcomeIcon = map[scenario.Outcome]string{
	scenario.Passed:  "✅",
	scenario.Failed:  "❌",
	scenario.Skipped: "⏭️",
}

// Summary renders the results as a markdown document.
func Summary(results *scenario.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Snipe-IT E2E run\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", results.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", results.Started.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Duration: %s\n", seconds(results.Duration())+"s")
	fmt.Fprintf(&b, "- Passed: %d, Failed: %d, Skipped: %d\n\n",
		results.Count(scenario.Passed), results.Count(scenario.Failed), results.Count(scenario.Skipped))

	b.WriteString("| | Scenario | Duration | Details |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range results.Scenarios {
		fmt.Fprintf(&b, "| %s | %s | %ss | %s |\n", outcomeIcon[r.Outcome], cell(r.Name), seconds(r.Duration), cell(r.Message()))
	}

	var failures []scenario.Result
	for _, r := range results.Scenarios {
		if r.Outcome == scenario.Failed {
			failures = append(failures, r)
		}
	}
	if len(failures) == 0 {
		return b.String()
	}

	b.WriteString("\n## Failures\n")
	for _, r := range failures {
		fmt.Fprintf(&b, "\n### %s\n\n", r.Name)
		if step := r.FailedStep(); step != "" {
			fmt.Fprintf(&b, "- Step: %s\n", step)
		}
		fmt.Fprintf(&b, "- Type: %s\n", failureType(r.Err))
		if r.URL != "" {
			fmt.Fprintf(&b, "- URL: <%s>\n", r.URL)
		}
		if r.Screenshot != "" {
			fmt.Fprintf(&b, "- Screenshot: `%s`\n", r.Screenshot)
		}
		fmt.Fprintf(&b, "\n```\n%s\n```\n", r.Message())
	}
	return b.String()
}

// cell escapes text for a single markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
