package anim

import (
	"bytes"
	"fmt"
	"strings"
)

// ToDOT renders the dependency graph in Graphviz DOT format, one cluster
// per section. Nodes are labeled with the animation verb and the objects it
// produces; edges follow the derived ordering constraints.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph animations {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n\n")

	ids := make(map[*Item]string)
	n := 0
	for s, sec := range g.sections {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", s)
		fmt.Fprintf(&buf, "    label=\"section %d\";\n", s)
		for _, it := range sec.items {
			id := fmt.Sprintf("a%d", n)
			n++
			ids[it] = id
			fmt.Fprintf(&buf, "    %s [label=%q];\n", id, itemLabel(it))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, sec := range g.sections {
		for _, it := range sec.items {
			for _, succ := range it.succs {
				to, ok := ids[succ]
				if !ok {
					continue
				}
				fmt.Fprintf(&buf, "  %s -> %s;\n", ids[it], to)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func itemLabel(it *Item) string {
	verb := "animation"
	if it.anim != nil {
		verb = it.anim.Name()
	}
	var outs []string
	for _, dst := range it.dst {
		if label := dst.Label(); label != "" {
			outs = append(outs, label)
		}
	}
	if len(outs) == 0 {
		return verb
	}
	return verb + "\n" + strings.Join(outs, ", ")
}
