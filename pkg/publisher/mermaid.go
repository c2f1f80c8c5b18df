package publisher

import (
	"fmt"
	"strings"

	"github.com/aretw0/hostline/pkg/domain"
)

// Overlay highlights a conversation's path on the flowchart.
type Overlay struct {
	Visited []domain.State
	Current domain.State
}

// Mermaid renders g as a Mermaid flowchart.
// Shapes:
// - initial state: ((Circle))
// - terminal state: ([Stadium])
// - fallback: {{Hexagon}}
// - other states: [Rectangle]
func Mermaid(g Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range g.Nodes {
		id := mermaidID(n.State)
		opener, closer := "[", "]"
		switch {
		case n.State == domain.InitialState:
			opener, closer = "((", "))"
		case n.State.Terminal():
			opener, closer = "([", "])"
		case n.State == domain.StateFallback:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, n.Name, closer)
	}

	for _, e := range g.Edges {
		// Fallback routes are drawn dotted.
		dotted := e.To == domain.StateFallback
		arrow := "-->"
		if dotted {
			arrow = "-.->"
		}
		if e.Label != "" && e.Label != "always" {
			label := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
			if dotted {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.From), arrow, mermaidID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.State]bool)
		for _, s := range overlay.Visited {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", mermaidID(s))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.Current))
		}
	}
	return sb.String()
}

func mermaidID(s domain.State) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_").Replace(string(s))
}
