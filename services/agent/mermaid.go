package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Mermaid renders the graph as a Mermaid flowchart. Conditional edges are
// dotted and labelled with their route key; interrupt nodes are highlighted.
func (c *CompiledGraph) Mermaid() string {
	g := c.g
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")
	sb.WriteString("    __start__([start])\n")
	for _, name := range g.order {
		fmt.Fprintf(&sb, "    %s[%s]\n", name, name)
	}
	sb.WriteString("    __end__([end])\n")
	fmt.Fprintf(&sb, "    __start__ --> %s\n", g.entry)

	for _, name := range g.order {
		if to, ok := g.edges[name]; ok {
			fmt.Fprintf(&sb, "    %s --> %s\n", name, to)
			continue
		}
		b, ok := g.branches[name]
		if !ok {
			continue
		}
		keys := make([]string, 0, len(b.targets))
		for k := range b.targets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			label := k
			if label == End {
				label = "end"
			}
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", name, label, b.targets[k])
		}
	}

	var interrupts []string
	for name := range g.interrupts {
		interrupts = append(interrupts, name)
	}
	sort.Strings(interrupts)
	if len(interrupts) > 0 {
		sb.WriteString("    classDef interrupt fill:#fde68a,stroke:#b45309\n")
		fmt.Fprintf(&sb, "    class %s interrupt\n", strings.Join(interrupts, ","))
	}
	return sb.String()
}
