// SPDX-License-Identifier: MPL-2.0

package pom

const (
	// SlotSingle holds exactly one node, as produced by parsing a lone element.
	SlotSingle SlotKind = iota
	// SlotSequence holds any number of nodes in document order.
	SlotSequence
)

type (
	// SlotKind tells whether a slot is a bare node or a sequence.
	SlotKind int

	// Attr is an attribute as written in the source, prefix included
	// (e.g., "xsi:schemaLocation").
	Attr struct {
		Name  string
		Value string
	}

	// Slot groups every child of a node that shares one element name.
	// Serialization emits slots in order; lookups go by Name.
	Slot struct {
		Name  string
		Kind  SlotKind
		Nodes []*Node
	}

	// Node is an element of a parsed document.
	Node struct {
		// Name is the qualified element name, prefix included.
		Name string
		// Attrs are kept in source order.
		Attrs []Attr
		// Slots hold the child elements, grouped by name.
		Slots []*Slot
		// Text is the trimmed character data of the element.
		Text string
		// CDATA records that the text came from a CDATA section.
		CDATA bool
	}

	// Document is a parsed build descriptor.
	Document struct {
		Root *Node
	}
)

// String returns the name of the slot kind.
func (k SlotKind) String() string {
	switch k {
	case SlotSingle:
		return "single"
	case SlotSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// NewNode returns an empty element.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// NewTextNode returns a leaf element holding text.
func NewTextNode(name, text string) *Node {
	return &Node{Name: name, Text: text}
}

// Slot returns the slot holding children named name, or nil.
func (n *Node) Slot(name string) *Slot {
	if n == nil {
		return nil
	}
	for _, s := range n.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// First returns the first child named name, or nil.
func (n *Node) First(name string) *Node {
	s := n.Slot(name)
	if s == nil || len(s.Nodes) == 0 {
		return nil
	}
	return s.Nodes[0]
}

// ChildText returns the text of the first child named name. A missing child
// yields the empty string.
func (n *Node) ChildText(name string) string {
	c := n.First(name)
	if c == nil {
		return ""
	}
	return c.Text
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AppendChild adds child after any existing siblings of the same name. A new
// name opens a single slot at the end of n; a second node with the same name
// turns the slot into a sequence.
func (n *Node) AppendChild(child *Node) {
	if s := n.Slot(child.Name); s != nil {
		s.Nodes = append(s.Nodes, child)
		if len(s.Nodes) > 1 {
			s.Kind = SlotSequence
		}
		return
	}
	n.Slots = append(n.Slots, &Slot{Name: child.Name, Kind: SlotSingle, Nodes: []*Node{child}})
}

// AddSlot opens an empty slot at the end of n, or returns the existing one.
func (n *Node) AddSlot(name string, kind SlotKind) *Slot {
	if s := n.Slot(name); s != nil {
		return s
	}
	s := &Slot{Name: name, Kind: kind}
	n.Slots = append(n.Slots, s)
	return s
}

// EnsureChild returns the first child named name, appending an empty one
// when absent.
func (n *Node) EnsureChild(name string) *Node {
	if c := n.First(name); c != nil {
		return c
	}
	c := NewNode(name)
	n.AppendChild(c)
	return c
}

// HasChildren reports whether n has at least one child element.
func (n *Node) HasChildren() bool {
	for _, s := range n.Slots {
		if len(s.Nodes) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Name: n.Name, Text: n.Text, CDATA: n.CDATA}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, s := range n.Slots {
		c.Slots = append(c.Slots, s.Clone())
	}
	return c
}

// Clone returns a deep copy of s.
func (s *Slot) Clone() *Slot {
	c := &Slot{Name: s.Name, Kind: s.Kind, Nodes: make([]*Node, 0, len(s.Nodes))}
	for _, node := range s.Nodes {
		c.Nodes = append(c.Nodes, node.Clone())
	}
	return c
}

// Normalize turns s into a sequence. The node list is unchanged.
func (s *Slot) Normalize() {
	s.Kind = SlotSequence
}

// Path walks from the document root through the named children, taking the
// first node at each step. It returns nil when any step is missing.
func (d *Document) Path(names ...string) *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	n := d.Root
	for _, name := range names {
		n = n.First(name)
		if n == nil {
			return nil
		}
	}
	return n
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Root: d.Root.Clone()}
}
