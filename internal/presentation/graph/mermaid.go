package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// GraphOverlay contains dynamic editor state to visualize on the graph.
type GraphOverlay struct {
	SelectedNodes []string
}

// GenerateMermaid produces a Mermaid flowchart from a workflow.
// It applies semantic styling:
// - trigger nodes: ((Circle))
// - tool/action nodes: [[Subroutine]]
// - Default: [Rectangle]
// Connections carry "port -> port" edge labels; dashed connections render as
// dotted arrows.
func GenerateMermaid(wf domain.Workflow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range wf.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		// Node shape based on type
		opener, closer := "[", "]"
		switch node.Type {
		case "trigger":
			opener, closer = "((", "))" // Circle
		case "tool", "action":
			opener, closer = "[[", "]]" // Subroutine
		}

		label := node.Name
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))
	}

	for _, c := range wf.Connections {
		safeFrom := sanitizeMermaidID(c.From.NodeID)
		safeTo := sanitizeMermaidID(c.To.NodeID)

		edgeLabel := fmt.Sprintf("%s → %s", c.From.Port, c.To.Port)
		if c.Style.Label != "" {
			edgeLabel = escapeMermaidLabel(c.Style.Label)
		}

		arrow := fmt.Sprintf("-- \"%s\" -->", edgeLabel)
		if len(c.Style.Dash) > 0 {
			arrow = fmt.Sprintf("-. \"%s\" .->", edgeLabel)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil && len(overlay.SelectedNodes) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.SelectedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
			}
		}
	}

	return sb.String()
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
