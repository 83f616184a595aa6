// Package plantuml renders a dependency graph as a PlantUML diagram description.
package plantuml

import (
	"strconv"
	"strings"

	"github.com/masmgr/commitgraph/internal/graph"
)

const (
	startMarker = "@startuml"
	endMarker   = "@enduml"
	arrow       = "-->"
)

// DefaultHighlightColor fills highlighted nodes.
const DefaultHighlightColor = "#FFD6D6"

// Options controls optional diagram decorations.
type Options struct {
	Title string
	// HighlightColor fills nodes marked Highlighted. Empty means DefaultHighlightColor.
	HighlightColor string
}

// Serialize returns the diagram description for g. It performs no I/O and
// returns identical text for identical graphs.
func Serialize(g *graph.DependencyGraph) string {
	return SerializeWithOptions(g, Options{})
}

// SerializeWithOptions is Serialize with decorations.
func SerializeWithOptions(g *graph.DependencyGraph, opts Options) string {
	var b strings.Builder

	b.WriteString(startMarker)
	b.WriteByte('\n')

	if title := strings.TrimSpace(opts.Title); title != "" {
		b.WriteString("title ")
		b.WriteString(escapeText(title))
		b.WriteByte('\n')
	}

	if g != nil {
		aliases := nodeAliases(g)
		for _, n := range g.Nodes {
			b.WriteString(`rectangle "`)
			b.WriteString(escapeText(n.Label))
			b.WriteString(`" as `)
			b.WriteString(aliases[n.ID])
			if n.Highlighted {
				b.WriteByte(' ')
				b.WriteString(opts.highlightColor())
			}
			b.WriteByte('\n')
		}
		for _, e := range g.Edges {
			b.WriteString(aliasOf(aliases, e.From))
			b.WriteByte(' ')
			b.WriteString(arrow)
			b.WriteByte(' ')
			b.WriteString(aliasOf(aliases, e.To))
			b.WriteByte('\n')
		}
	}

	b.WriteString(endMarker)
	b.WriteByte('\n')
	return b.String()
}

func (o Options) highlightColor() string {
	if o.HighlightColor == "" {
		return DefaultHighlightColor
	}
	return o.HighlightColor
}

// nodeAliases assigns each node id a distinct alias. Ids whose Alias collides
// with an earlier node get "_2", "_3", ... appended, in node order.
func nodeAliases(g *graph.DependencyGraph) map[string]string {
	aliases := make(map[string]string, len(g.Nodes))
	used := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := aliases[n.ID]; ok {
			continue
		}
		base := Alias(n.ID)
		alias := base
		for i := 2; ; i++ {
			if _, taken := used[alias]; !taken {
				break
			}
			alias = base + "_" + strconv.Itoa(i)
		}
		used[alias] = struct{}{}
		aliases[n.ID] = alias
	}
	return aliases
}

func aliasOf(aliases map[string]string, id string) string {
	if a, ok := aliases[id]; ok {
		return a
	}
	return Alias(id)
}

// Alias returns the diagram identifier for a commit id: "c_" followed by the
// id with every byte outside [A-Za-z0-9_] replaced by '_'. Distinct ids can
// share an Alias; Serialize disambiguates them within one diagram.
func Alias(id string) string {
	var b strings.Builder
	b.Grow(len(id) + 2)
	b.WriteString("c_")
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Quotes and backslashes become PlantUML unicode escapes; line breaks become spaces.
var textEscaper = strings.NewReplacer(
	`"`, "<U+0022>",
	`\`, "<U+005C>",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
