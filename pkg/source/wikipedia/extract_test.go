package wikipedia

import (
	"testing"
)

const sampleExtract = `The French protectorate of Tunisia was established in 1881.

It lasted until Tunisian independence in 1956.

== Context ==
Before the protectorate, Tunisia was a province of the Ottoman Empire.

== Conquest ==
French military campaigns ended with the Treaty of Bardo.

=== Treaty of Bardo ===
The treaty was signed on 12 May 1881.

== See also ==
History of Tunisia

== References ==
Perkins, Kenneth J. Tunisia: Crossroads of the Islamic and European World
Ling, Dwight L. The French Invasion of Tunisia, 1881
`

func TestSplitExtract(t *testing.T) {
	summary, sections, refs := splitExtract(sampleExtract)

	if summary == "" || summary[:3] != "The" {
		t.Errorf("Expected lead text as summary, got %q", summary)
	}

	if len(sections) != 3 {
		t.Fatalf("Expected 3 topical sections, got %d", len(sections))
	}

	tests := []struct {
		index int
		id    string
		title string
		level int
	}{
		{0, "section1", "Context", 1},
		{1, "section2", "Conquest", 1},
		{2, "section3", "Treaty of Bardo", 2},
	}
	for _, test := range tests {
		sec := sections[test.index]
		if sec.ID != test.id || sec.Title != test.title || sec.Level != test.level {
			t.Errorf("Section %d: expected %s/%s/level %d, got %s/%s/level %d",
				test.index, test.id, test.title, test.level, sec.ID, sec.Title, sec.Level)
		}
	}

	if sections[1].Text != "French military campaigns ended with the Treaty of Bardo." {
		t.Errorf("Expected section body without heading markup, got %q", sections[1].Text)
	}

	// "See also" and "References" lines both land in the reference list.
	if len(refs) != 3 {
		t.Errorf("Expected 3 reference lines, got %d: %v", len(refs), refs)
	}
}

func TestSplitExtractNoHeadings(t *testing.T) {
	summary, sections, refs := splitExtract("Just a short article body.")
	if summary != "Just a short article body." {
		t.Errorf("Expected whole text as summary, got %q", summary)
	}
	if len(sections) != 0 || len(refs) != 0 {
		t.Errorf("Expected no sections or references, got %d/%d", len(sections), len(refs))
	}
}

func TestSplitExtractEmpty(t *testing.T) {
	summary, sections, refs := splitExtract("")
	if summary != "" || len(sections) != 0 || len(refs) != 0 {
		t.Errorf("Expected empty result for empty extract")
	}
}

func TestReferenceLabel(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"Perkins, Kenneth J. Tunisia: Crossroads", "Perkins, Kenneth J"},
		{"Short line", "Short line"},
		{"A very long citation line without early punctuation marks at all", "A very long citation line without early…"},
	}
	for _, test := range tests {
		if got := referenceLabel(test.line); got != test.expected {
			t.Errorf("referenceLabel(%q): expected %q, got %q", test.line, test.expected, got)
		}
	}
}
