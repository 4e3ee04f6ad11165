// Package view provides StudioShell's view coordination: a tree of named
// render regions, the detach-and-restore anchor utility, the tool/work-browser
// mode coordinator, and the message log with its feedback decorations.
package view

import (
	"fmt"
	"strings"
)

// Region is a node in the render tree. Regions carry a stable identifier, a
// visibility flag, optional text content, and ordered children. The tree is
// owned by the shell's input loop; it is not safe for concurrent mutation.
type Region struct {
	id       string
	visible  bool
	content  string
	parent   *Region
	children []*Region
}

// NewRegion creates a visible region with the given identifier.
func NewRegion(id string) *Region {
	return &Region{id: id, visible: true}
}

// ID returns the region identifier.
func (r *Region) ID() string { return r.id }

// Visible reports whether the region renders.
func (r *Region) Visible() bool { return r.visible }

// SetVisible toggles whether the region (and its subtree) renders.
func (r *Region) SetVisible(visible bool) { r.visible = visible }

// Content returns the region's text content.
func (r *Region) Content() string { return r.content }

// SetContent sets the region's text content.
func (r *Region) SetContent(content string) { r.content = content }

// Parent returns the region's parent, or nil for a root.
func (r *Region) Parent() *Region { return r.parent }

// Children returns a copy of the ordered child list.
func (r *Region) Children() []*Region {
	return append([]*Region(nil), r.children...)
}

// ChildCount returns the number of children.
func (r *Region) ChildCount() int { return len(r.children) }

// AppendChild adds child as the last child, detaching it from any prior parent.
func (r *Region) AppendChild(child *Region) error {
	if child == nil {
		return fmt.Errorf("cannot append nil region")
	}
	if child == r {
		return fmt.Errorf("region %s cannot contain itself", r.id)
	}
	child.Detach()
	child.parent = r
	r.children = append(r.children, child)
	return nil
}

// InsertBefore inserts child immediately before ref among r's children.
// A nil ref appends.
func (r *Region) InsertBefore(child, ref *Region) error {
	if child == nil {
		return fmt.Errorf("cannot insert nil region")
	}
	if ref == nil {
		return r.AppendChild(child)
	}
	idx := r.indexOf(ref)
	if idx < 0 {
		return fmt.Errorf("region %s is not a child of %s", ref.id, r.id)
	}
	child.Detach()
	child.parent = r
	r.children = append(r.children, nil)
	copy(r.children[idx+1:], r.children[idx:])
	r.children[idx] = child
	return nil
}

// RemoveChild unlinks child from r.
func (r *Region) RemoveChild(child *Region) error {
	idx := r.indexOf(child)
	if idx < 0 {
		return fmt.Errorf("region %s is not a child of %s", child.id, r.id)
	}
	r.children = append(r.children[:idx], r.children[idx+1:]...)
	child.parent = nil
	return nil
}

// Detach unlinks the region from its parent, if any.
func (r *Region) Detach() {
	if r.parent != nil {
		_ = r.parent.RemoveChild(r)
	}
}

// Find locates a region by identifier in r's subtree, depth-first.
func (r *Region) Find(id string) *Region {
	if r.id == id {
		return r
	}
	for _, child := range r.children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// IndexOf returns the position of child among r's children, or -1.
func (r *Region) IndexOf(child *Region) int {
	return r.indexOf(child)
}

func (r *Region) indexOf(child *Region) int {
	for i, c := range r.children {
		if c == child {
			return i
		}
	}
	return -1
}

// anchorSuffix marks the invisible placeholder a relocation leaves behind.
const anchorSuffix = "#anchor"

// Anchor records where a relocated region came from. The invisible marker
// left at the original position makes reinsertion exact even when sibling
// structure changes while the region is away.
type Anchor struct {
	parent *Region
	marker *Region
}

// DetachWithAnchor removes node from its parent, leaving an invisible marker
// at its exact position, and returns the anchor needed to put it back.
func DetachWithAnchor(node *Region) (*Anchor, error) {
	parent := node.parent
	if parent == nil {
		return nil, fmt.Errorf("region %s has no parent to anchor to", node.id)
	}

	marker := NewRegion(node.id + anchorSuffix)
	marker.SetVisible(false)
	if err := parent.InsertBefore(marker, node); err != nil {
		return nil, err
	}
	if err := parent.RemoveChild(node); err != nil {
		marker.Detach()
		return nil, err
	}
	return &Anchor{parent: parent, marker: marker}, nil
}

// Restore reinserts node at the marker's position and removes the marker.
// If the marker itself was removed by an outside mutation, the node is
// appended to the recorded parent as a fallback.
func (a *Anchor) Restore(node *Region) error {
	if a == nil {
		return fmt.Errorf("nil anchor")
	}

	if a.marker.parent != nil {
		target := a.marker.parent
		if err := target.InsertBefore(node, a.marker); err != nil {
			return err
		}
		a.marker.Detach()
		return nil
	}
	return a.parent.AppendChild(node)
}

// IsAnchorMarker reports whether id names a placeholder marker.
func IsAnchorMarker(id string) bool {
	return strings.HasSuffix(id, anchorSuffix)
}
