package reactive

import "strings"

// TreeNode is a snapshot of one node in the dependency graph.
type TreeNode struct {
	Name     string
	Children []TreeNode
}

// String renders the tree, one node per line, indented by depth.
func (n TreeNode) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n TreeNode) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Name)
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}

// DependencyTree returns what d depends on, recursing through computed
// values.
func DependencyTree(d Derivation) TreeNode {
	node := TreeNode{Name: d.Name()}
	for _, o := range d.derivation().observing {
		if m := o.observable().memo; m != nil {
			node.Children = append(node.Children, DependencyTree(m))
			continue
		}
		node.Children = append(node.Children, TreeNode{Name: o.Name()})
	}
	return node
}

// ObserverTree returns what depends on o, recursing through computed values.
func ObserverTree(o Observable) TreeNode {
	node := TreeNode{Name: o.Name()}
	for _, d := range o.observable().observers.items {
		if next, ok := d.(Observable); ok {
			node.Children = append(node.Children, ObserverTree(next))
			continue
		}
		node.Children = append(node.Children, TreeNode{Name: d.Name()})
	}
	return node
}
