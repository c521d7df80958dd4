// Package asset defines the finished asset graph: the normalized, format
// independent representation every importer produces and the validator checks.
package asset

import (
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// MaxStringLength is the longest name the graph may carry, in bytes.
const MaxStringLength = 1024

// SceneFlags describes global properties of a scene.
type SceneFlags uint32

const (
	// FlagIncomplete marks a scene without meshes, e.g. camera or skeleton only files.
	FlagIncomplete SceneFlags = 1 << iota
	// FlagValidated is set once the validator accepted the scene.
	FlagValidated
	// FlagValidationWarning is set when the validator logged warnings.
	FlagValidationWarning
	// FlagNonVerbose allows faces to share vertices.
	FlagNonVerbose
)

// Has reports whether all bits of f are set.
func (s SceneFlags) Has(f SceneFlags) bool {
	return s&f == f
}

// Scene is the root of an asset graph.
type Scene struct {
	Flags      SceneFlags
	Root       *Node
	Meshes     []*Mesh
	Materials  []*Material
	Animations []*Animation
	Cameras    []*Camera
	Lights     []*Light
}

// Node is one element of the scene hierarchy.
type Node struct {
	Name      string
	Transform mathx.Mat4
	Parent    *Node
	Children  []*Node
	// Meshes indexes Scene.Meshes.
	Meshes []int
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: mathx.Identity()}
}

// AddChild links child under n.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindNode returns the first node named name, or nil.
func (n *Node) FindNode(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// CountNamed counts the nodes named name in the subtree rooted at n.
func (n *Node) CountNamed(name string) int {
	count := 0
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			count++
		}
		return true
	})
	return count
}

// GlobalTransform multiplies the transforms from the root down to n.
func (n *Node) GlobalTransform() mathx.Mat4 {
	m := n.Transform
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Transform.Mul(m)
	}
	return m
}

// NumNodes counts the nodes of the hierarchy.
func (s *Scene) NumNodes() int {
	count := 0
	s.Root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Empty reports whether the scene holds no content at all.
func (s *Scene) Empty() bool {
	return len(s.Meshes) == 0 && len(s.Materials) == 0 && len(s.Animations) == 0 &&
		len(s.Cameras) == 0 && len(s.Lights) == 0
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := &Scene{Flags: s.Flags}
	if s.Root != nil {
		out.Root = s.Root.clone(nil)
	}
	for _, m := range s.Meshes {
		out.Meshes = append(out.Meshes, m.Clone())
	}
	for _, m := range s.Materials {
		out.Materials = append(out.Materials, m.Clone())
	}
	for _, a := range s.Animations {
		out.Animations = append(out.Animations, a.Clone())
	}
	for _, c := range s.Cameras {
		cc := *c
		out.Cameras = append(out.Cameras, &cc)
	}
	for _, l := range s.Lights {
		lc := *l
		out.Lights = append(out.Lights, &lc)
	}
	return out
}

func (n *Node) clone(parent *Node) *Node {
	out := &Node{
		Name:      n.Name,
		Transform: n.Transform,
		Parent:    parent,
		Meshes:    append([]int(nil), n.Meshes...),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.clone(out))
	}
	return out
}
