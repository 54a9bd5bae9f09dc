// Package graph renders dialogue trees as Mermaid flowcharts.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mojomast/arbor/pkg/domain"
)

// Overlay contains dynamic session state to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart from a dialogue tree.
// Semantic styling:
// - Start node: ((Circle))
// - Terminal node (no choices, no auto-advance): [[Subroutine]]
// - Default: [Rectangle]
// Choice edges are solid and labeled with the choice text (plus the
// first condition, when one exists); auto-advance edges are dotted.
// Overlay styles (Visited/Current) are applied when provided.
func GenerateMermaid(tree *domain.DialogTree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(tree.Nodes))
	for id := range tree.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := tree.Nodes[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == tree.StartNode:
			opener, closer = "((", "))"
		case len(node.Choices) == 0 && node.NextNode == "":
			opener, closer = "[[", "]]"
		}

		label := id
		if node.Speaker != "" {
			label = fmt.Sprintf("%s <br/> %s", id, escapeMermaidLabel(node.Speaker))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, choice := range node.Choices {
			if choice.Terminal() {
				continue
			}
			safeTo := sanitizeMermaidID(choice.Goto)
			edgeLabel := escapeMermaidLabel(choice.Text)
			if len(choice.Conditions) > 0 {
				edgeLabel = fmt.Sprintf("%s [%s]", edgeLabel, escapeMermaidLabel(choice.Conditions[0].Label()))
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, edgeLabel, safeTo))
		}

		if node.AutoAdvance && node.NextNode != "" {
			safeTo := sanitizeMermaidID(node.NextNode)
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", safeID, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || visitedSet[safeID] {
				continue
			}
			if _, known := tree.Nodes[id]; !known {
				continue
			}
			visitedSet[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
