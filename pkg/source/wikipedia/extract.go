package wikipedia

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/semgraph/semgraph/pkg/source"
)

// headingPattern matches MediaWiki plain-text extract headings, e.g.
// "== Conquest ==" or "=== Treaty of Bardo ===".
var headingPattern = regexp.MustCompile(`(?m)^(={2,6})\s*(.+?)\s*={2,6}\s*$`)

// boilerplateSections are appendix headings that carry no topical prose.
// Their body lines feed the reference list instead of becoming nodes.
var boilerplateSections = map[string]bool{
	"references":      true,
	"notes":           true,
	"citations":       true,
	"bibliography":    true,
	"sources":         true,
	"further reading": true,
	"external links":  true,
	"see also":        true,
}

// splitExtract divides a plain-text extract into the lead summary, the
// topical sections in document order, and the raw lines of appendix
// sections.
func splitExtract(extract string) (string, []source.Section, []string) {
	matches := headingPattern.FindAllStringSubmatchIndex(extract, -1)

	summary := strings.TrimSpace(extract)
	if len(matches) > 0 {
		summary = strings.TrimSpace(extract[:matches[0][0]])
	}

	sections := make([]source.Section, 0, len(matches))
	referenceLines := make([]string, 0)

	for i, match := range matches {
		level := match[3] - match[2] - 1
		title := strings.TrimSpace(extract[match[4]:match[5]])

		bodyStart := match[1]
		bodyEnd := len(extract)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(extract[bodyStart:bodyEnd])

		if boilerplateSections[strings.ToLower(title)] {
			for _, line := range strings.Split(body, "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					referenceLines = append(referenceLines, line)
				}
			}
			continue
		}

		sections = append(sections, source.Section{
			ID:    fmt.Sprintf("section%d", len(sections)+1),
			Title: title,
			Text:  body,
			Level: level,
		})
	}

	return summary, sections, referenceLines
}

// referenceLabel shortens a citation line to a display label.
func referenceLabel(line string) string {
	const maxLabel = 40
	label := strings.TrimSpace(line)
	if idx := strings.IndexAny(label, ".;"); idx > 0 && idx < maxLabel {
		return label[:idx]
	}
	runes := []rune(label)
	if len(runes) > maxLabel {
		return strings.TrimSpace(string(runes[:maxLabel])) + "…"
	}
	return label
}
