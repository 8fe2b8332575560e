package graph

import "fmt"

func sprintfSim(verb string, sim float64) string {
	return fmt.Sprintf("%s: %.2f", verb, sim)
}

// SampleGraph returns the built-in demonstration graph covering the French
// protectorate of Tunisia article: one article node, its sections, the
// Wikipedia references backing them, and the containment, chronology, and
// citation edges between them. The server seeds its store with this graph
// so all read endpoints work before the first build.
func SampleGraph() *Graph {
	sectionBg := "#D4B896"

	nodes := []Node{
		{
			ID:          "article1",
			Label:       "French protectorate of Tunisia",
			Content:     "The French protectorate of Tunisia was established by the Treaty of Bardo in 1881",
			Group:       1,
			Size:        15,
			Color:       NodeColor{Background: sectionBg, Border: "#8B0000"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   1,
			Metadata:    map[string]any{"type": "article"},
		},
		{
			ID:          "section1",
			Label:       "Context",
			Content:     "Background of Tunisia before the protectorate and the Congress of Berlin",
			Group:       1,
			Size:        12,
			Color:       NodeColor{Background: sectionBg, Border: "#B22222"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   2,
			Metadata:    map[string]any{"type": "section"},
		},
		{
			ID:          "section2",
			Label:       "Conquest",
			Content:     "French military campaigns and the Treaty of Bardo in 1881",
			Group:       1,
			Size:        11,
			Color:       NodeColor{Background: sectionBg, Border: "#CD5C5C"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   3,
			Metadata:    map[string]any{"type": "section"},
		},
		{
			ID:          "section3",
			Label:       "Occupation",
			Content:     "French troops invasion and establishment of control over Tunisia",
			Group:       1,
			Size:        10,
			Color:       NodeColor{Background: sectionBg, Border: "#DC143C"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   4,
			Metadata:    map[string]any{"type": "section"},
		},
		{
			ID:          "section4",
			Label:       "Organisation and administration",
			Content:     "French administrative structure, local government, and judicial system under the protectorate",
			Group:       1,
			Size:        10,
			Color:       NodeColor{Background: sectionBg, Border: "#E9967A"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   5,
			Metadata:    map[string]any{"type": "section"},
		},
		{
			ID:          "section5",
			Label:       "World War II",
			Content:     "Tunisia during WWII, Vichy government, and deposing of Moncef Bey",
			Group:       1,
			Size:        9,
			Color:       NodeColor{Background: sectionBg, Border: "#F08080"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   6,
			Metadata:    map[string]any{"type": "section"},
		},
		{
			ID:          "section6",
			Label:       "Independence",
			Content:     "Nationalist movement, Habib Bourguiba, and independence in 1956",
			Group:       1,
			Size:        9,
			Color:       NodeColor{Background: sectionBg, Border: "#FF6347"},
			Shape:       ShapeBox,
			BorderWidth: sectionBorderWidth,
			DrawOrder:   7,
			Metadata:    map[string]any{"type": "section"},
		},
	}
	nodes = append(nodes, sampleSources()...)

	edges := []Edge{
		// Article contains its sections.
		containsEdge("article1", "section1", 0.95, 1),
		containsEdge("article1", "section2", 0.90, 2),
		containsEdge("article1", "section3", 0.88, 3),
		containsEdge("article1", "section4", 0.85, 4),
		containsEdge("article1", "section5", 0.82, 5),
		containsEdge("article1", "section6", 0.80, 6),
		// Chronological flow between sections.
		flowEdge("section1", "section2", 0.85, "Led to", 13),
		flowEdge("section2", "section3", 0.80, "Established", 14),
		flowEdge("section3", "section4", 0.75, "Organized", 15),
		flowEdge("section5", "section6", 0.90, "Resulted in", 16),
		// References cite the article and its sections.
		citationEdge("source1", "article1", 0.95, 8),
		citationEdge("source2", "section1", 0.90, 9),
		citationEdge("source3", "section2", 0.92, 10),
		citationEdge("source4", "section6", 0.88, 11),
		citationEdge("source5", "section3", 0.87, 12),
		citationEdge("source6", "article1", 0.91, 13),
		citationEdge("source7", "article1", 0.89, 14),
		citationEdge("source8", "article1", 0.90, 15),
		citationEdge("source9", "section1", 0.86, 16),
		citationEdge("source10", "section4", 0.84, 17),
		citationEdge("source11", "article1", 0.85, 18),
		citationEdge("source12", "section4", 0.93, 19),
	}

	g := &Graph{Nodes: nodes, Edges: edges, Metadata: map[string]any{}}
	g.ComputeMetadata()
	g.Metadata["topic"] = "French protectorate of Tunisia"
	g.Metadata["sample"] = true
	return g
}

func sampleSources() []Node {
	refs := []struct {
		id, label, content string
		crossLanguage      bool
	}{
		{"source1", "Perkins (1986)", "Kenneth J. Perkins - Tunisia: Crossroads of the Islamic and European World", false},
		{"source2", "Wesseling (1996)", "Henk Wesseling - Divide and Rule: The Partition of Africa, 1880-1914", false},
		{"source3", "Ling (1960)", "Dwight L. Ling - The French Invasion of Tunisia, 1881", false},
		{"source4", "Aldrich (1996)", "Robert Aldrich - Greater France: A History of French Expansion", false},
		{"source5", "Ganiage (1985)", "Jean Ganiage - The Cambridge History of Africa", false},
		{"source6", "US Dept of State (1949)", "Territories Within the Area of Responsibility - Office of Near Eastern and African Affairs", false},
		{"source7", "Wade (1927)", "Herbert Treadwell Wade - The New International Year Book: Tunis under French foreign office", false},
		{"source8", "UN Territories (1950)", "Non-self-governing Territories - United Nations General Assembly Committee", false},
		{"source9", "Holt & Chilton (1918)", "Lucius Hudson Holt & Alexander Wheeler Chilton - A History of Europe", false},
		{"source10", "Balch (1909)", "Thomas William Balch - French Colonization in North Africa", false},
		{"source11", "Commercial Treaties (1931)", "Handbook of Commercial Treaties with Foreign Powers - His Majesty's Stationery Office", false},
		{"source12", "Arfaoui Khémais", "Arfaoui Khémais - Les élections politiques en Tunisie de 1881 à 1956, pp.45-51", true},
	}

	nodes := make([]Node, 0, len(refs))
	for i, ref := range refs {
		group := 4
		color := "#DC143C"
		language := "en"
		if ref.crossLanguage {
			group = 5
			color = crossLanguageSourceColor
			language = "fr"
		}
		nodes = append(nodes, Node{
			ID:        ref.id,
			Label:     ref.label,
			Content:   ref.content,
			Group:     group,
			Size:      sourceNodeSize,
			Color:     NodeColor{Background: color},
			Shape:     ShapeDot,
			DrawOrder: 8 + i,
			Metadata:  map[string]any{"type": "source", "language": language},
		})
	}
	return nodes
}

func containsEdge(source, target string, sim float64, drawOrder int) Edge {
	return Edge{
		Source:     source,
		Target:     target,
		Similarity: sim,
		Width:      2,
		Value:      sim,
		Title:      sprintfSim("Contains section", sim),
		DrawOrder:  drawOrder,
		Metadata:   map[string]any{"edge_type": "containment"},
	}
}

func flowEdge(source, target string, sim float64, verb string, drawOrder int) Edge {
	return Edge{
		Source:     source,
		Target:     target,
		Similarity: sim,
		Width:      1,
		Value:      sim,
		Title:      sprintfSim(verb, sim),
		DrawOrder:  drawOrder,
		Metadata:   map[string]any{"edge_type": "chronology"},
	}
}

func citationEdge(source, target string, sim float64, drawOrder int) Edge {
	return Edge{
		Source:     source,
		Target:     target,
		Similarity: sim,
		Width:      citationEdgeWidth,
		Value:      sim,
		Title:      sprintfSim("Source", sim),
		DrawOrder:  drawOrder,
		Dashes:     true,
		Arrows:     "to",
		Metadata:   map[string]any{"edge_type": "source_citation"},
	}
}
