// Package channeltree turns the flat channel listing returned by a traQ
// server into a navigable hierarchy. Nodes live in an arena and refer to each
// other by NodeID, so parent back-references need no ownership bookkeeping.
package channeltree

// NodeID addresses a node inside a Directory's arena.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// rootID is always the first node materialized.
const rootID NodeID = 0

// Synthetic root attributes. The root is the invisible common parent of all
// top-level channels and never corresponds to a server-side channel.
const (
	rootChannelID = ""
	rootName      = "dummy"
)

// ChannelRecord is a channel as returned by the remote directory listing.
// Records are never mutated after they are fetched.
type ChannelRecord struct {
	ID       string
	Name     string
	ParentID *string // nil for top-level channels
	Children []string
	Archived bool
}

// Node is a read-only view of a materialized channel.
type Node struct {
	ID       string
	Name     string
	Archived bool
	Active   bool
	Parent   NodeID
	Children []NodeID
}

type node struct {
	id       string
	name     string
	archived bool
	active   bool
	parent   NodeID
	children []NodeID
}

// Directory is a rooted channel hierarchy built from one directory snapshot.
// It is immutable once built.
type Directory struct {
	nodes []node
	byID  map[string]NodeID
}

// New builds a Directory from a channel listing. Records are keyed by ID
// (first occurrence wins) and channels without a parent become children of
// the synthetic root, in listing order.
func New(records []ChannelRecord) *Directory {
	byID := make(map[string]ChannelRecord, len(records))

	var rootIDs []string

	for i := range records {
		rec := records[i]
		if _, dup := byID[rec.ID]; dup {
			continue
		}

		byID[rec.ID] = rec

		if rec.ParentID == nil {
			rootIDs = append(rootIDs, rec.ID)
		}
	}

	return Build(byID, rootIDs)
}

// Build materializes the hierarchy under a synthetic root whose children are
// rootIDs. Child ids missing from byID, and ids that were already placed
// elsewhere in the tree, are skipped. Build never fails.
func Build(byID map[string]ChannelRecord, rootIDs []string) *Directory {
	d := &Directory{
		nodes: make([]node, 0, len(byID)+1),
		byID:  make(map[string]NodeID, len(byID)),
	}

	root := ChannelRecord{
		ID:       rootChannelID,
		Name:     rootName,
		Children: rootIDs,
		Archived: true,
	}

	d.materialize(root, NoNode, byID)

	return d
}

// materialize appends rec and, depth-first, its reachable descendants.
func (d *Directory) materialize(rec ChannelRecord, parent NodeID, byID map[string]ChannelRecord) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, node{
		id:       rec.ID,
		name:     rec.Name,
		archived: rec.Archived,
		active:   true,
		parent:   parent,
	})

	if parent != NoNode {
		d.byID[rec.ID] = id
	}

	if len(rec.Children) == 0 {
		return id
	}

	children := make([]NodeID, 0, len(rec.Children))

	for _, childID := range rec.Children {
		child, ok := byID[childID]
		if !ok {
			continue
		}

		// Already placed: a duplicate reference, or a cycle in bad data.
		if _, seen := d.byID[childID]; seen {
			continue
		}

		children = append(children, d.materialize(child, id, byID))
	}

	// d.nodes may have been reallocated by the recursive calls.
	d.nodes[id].children = children

	return id
}

// Root returns the synthetic root.
func (d *Directory) Root() NodeID {
	return rootID
}

// Len returns the number of nodes, including the synthetic root.
func (d *Directory) Len() int {
	return len(d.nodes)
}

// Node returns a copy of the node at id. It panics if id is out of range,
// like a slice index would.
func (d *Directory) Node(id NodeID) Node {
	n := d.nodes[id]

	return Node{
		ID:       n.id,
		Name:     n.name,
		Archived: n.archived,
		Active:   n.active,
		Parent:   n.parent,
		Children: append([]NodeID(nil), n.children...),
	}
}

// Children returns the child handles of id in source order. The returned
// slice must not be modified.
func (d *Directory) Children(id NodeID) []NodeID {
	return d.nodes[id].children
}

// Parent returns the parent of id. ok is false for the root.
func (d *Directory) Parent(id NodeID) (NodeID, bool) {
	p := d.nodes[id].parent

	return p, p != NoNode
}

// IsRoot reports whether id is the synthetic root.
func (d *Directory) IsRoot(id NodeID) bool {
	return d.nodes[id].parent == NoNode
}

// FindByChannelID returns the node for a server-side channel ID.
func (d *Directory) FindByChannelID(channelID string) (NodeID, bool) {
	id, ok := d.byID[channelID]

	return id, ok
}

// child returns the child of parent whose name equals name exactly.
func (d *Directory) child(parent NodeID, name string) (NodeID, bool) {
	for _, c := range d.nodes[parent].children {
		if d.nodes[c].name == name {
			return c, true
		}
	}

	return NoNode, false
}

// FullPath returns the absolute path of id, e.g. "/general/random".
// The root contributes no segment, so FullPath(Root()) is "".
func (d *Directory) FullPath(id NodeID) string {
	var names []string

	for cur := id; d.nodes[cur].parent != NoNode; cur = d.nodes[cur].parent {
		names = append(names, d.nodes[cur].name)
	}

	if len(names) == 0 {
		return ""
	}

	size := len(names)
	for _, n := range names {
		size += len(n)
	}

	buf := make([]byte, 0, size)
	for i := len(names) - 1; i >= 0; i-- {
		buf = append(buf, '/')
		buf = append(buf, names[i]...)
	}

	return string(buf)
}
