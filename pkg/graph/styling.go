package graph

import "math/rand"

// Visual scaling constants. The similarity width scale is the single place
// the similarity-to-width mapping lives; earlier revisions mixed a factor
// of 3 and 5 across call sites.
const (
	similarityWidthScale = 5.0
	citationEdgeWidth    = 1.0

	minNodeSize    = 5.0
	sourceNodeSize = 8.0

	sectionBorderWidth = 3

	ShapeBox = "box"
	ShapeDot = "dot"
)

// levelPalette maps heading level 0 through 4+ to a background/border pair.
// Levels past the end of the palette clamp to the last entry.
var levelPalette = []NodeColor{
	{Background: "#D4B896", Border: "#8B0000"},
	{Background: "#D4B896", Border: "#B22222"},
	{Background: "#D4B896", Border: "#CD5C5C"},
	{Background: "#D4B896", Border: "#DC143C"},
	{Background: "#D4B896", Border: "#E9967A"},
}

// sourceShades are the accent colors used for reference-source dots. The
// shade is picked with the build's seeded generator so output is
// reproducible for a given seed.
var sourceShades = []string{"#DC143C", "#C41E3A", "#B22222", "#A52A2A"}

const crossLanguageSourceColor = "#28A745"

// LevelColor returns the palette entry for a heading level, clamped to the
// palette bounds.
func LevelColor(level int) NodeColor {
	if level < 0 {
		level = 0
	}
	if level >= len(levelPalette) {
		level = len(levelPalette) - 1
	}
	return levelPalette[level]
}

// NodeSize derives a node's visual weight from its text length and degree.
// The result is monotonic non-decreasing in both inputs and never below
// minNodeSize.
func NodeSize(textLength, degree int) float64 {
	if textLength < 0 {
		textLength = 0
	}
	if degree < 0 {
		degree = 0
	}

	base := minNodeSize + min(float64(textLength)/400.0, 6.0)
	bonus := min(float64(degree)*0.5, 4.0)

	return base + bonus
}

// EdgeWidth maps a similarity score to edge width, monotonic in similarity.
func EdgeWidth(similarity float64) float64 {
	return similarity * similarityWidthScale
}

func sourceColor(rng *rand.Rand, language string) string {
	if language != "" && language != "en" {
		return crossLanguageSourceColor
	}
	return sourceShades[rng.Intn(len(sourceShades))]
}
