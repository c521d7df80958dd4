package irr

import (
	"fmt"
	"strings"

	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// NodeType is the kind of a scene node.
type NodeType int

const (
	NodeDummy NodeType = iota
	NodeMesh
	NodeAnimatedMesh
	NodeCube
	NodeSphere
	NodeSkybox
	NodeTerrain
	NodeLight
	NodeCamera
)

// String returns the type name as written in scene files.
func (t NodeType) String() string {
	switch t {
	case NodeDummy:
		return "empty"
	case NodeMesh:
		return "mesh"
	case NodeAnimatedMesh:
		return "animatedMesh"
	case NodeCube:
		return "cube"
	case NodeSphere:
		return "sphere"
	case NodeSkybox:
		return "skybox"
	case NodeTerrain:
		return "terrain"
	case NodeLight:
		return "light"
	case NodeCamera:
		return "camera"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

var nodeTypes = map[string]NodeType{
	"empty":        NodeDummy,
	"mesh":         NodeMesh,
	"animatedmesh": NodeAnimatedMesh,
	"cube":         NodeCube,
	"sphere":       NodeSphere,
	"skybox":       NodeSkybox,
	"terrain":      NodeTerrain,
	"light":        NodeLight,
	"camera":       NodeCamera,
}

// parseNodeType resolves a type attribute, ignoring case.
func parseNodeType(s string) (NodeType, bool) {
	t, ok := nodeTypes[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// NodeID indexes a node in its Tree.
type NodeID int

const (
	// RootID is the implicit root of every tree.
	RootID NodeID = 0
	// NoNode marks an absent parent or cursor.
	NoNode NodeID = -1
)

// RootName is the name of the implicit root node.
const RootName = "<IRRRoot>"

// defaultNodeName names nodes without a Name attribute. Node ids are unique
// within a tree, so unnamed cameras and lights never collide.
func defaultNodeName(id NodeID) string {
	return fmt.Sprintf("IrrNode_%d", id)
}

// Default values of node fields not given in the file.
const (
	DefaultPolyCount = 100
	DefaultRadius    = 1
)

// Node is one node of the build-time tree.
type Node struct {
	Type      NodeType
	Name      string
	Position  mathx.Vec3
	Rotation  mathx.Vec3 // Euler XYZ, degrees
	Scale     mathx.Vec3
	Materials []MaterialEntry
	Animators []Animator

	Parent   NodeID
	Children []NodeID

	MeshPath        string  // mesh, animatedMesh
	PolyCountX      int     // sphere
	PolyCountY      int     // sphere
	Radius          float32 // sphere radius or cube size
	FramesPerSecond float32 // animatedMesh
	Camera          int     // index into ParseResult.Cameras, or -1
	Light           int     // index into ParseResult.Lights, or -1
}

func newNode(t NodeType) Node {
	return Node{
		Type:       t,
		Scale:      mathx.Vec3{X: 1, Y: 1, Z: 1},
		Parent:     NoNode,
		PolyCountX: DefaultPolyCount,
		PolyCountY: DefaultPolyCount,
		Radius:     DefaultRadius,
		Camera:     -1,
		Light:      -1,
	}
}

// Tree is an arena of build-time nodes. Parents are plain indices, so a
// subtree never owns its ancestors.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only the root.
func NewTree() *Tree {
	root := newNode(NodeDummy)
	root.Name = RootName
	return &Tree{nodes: []Node{root}}
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id. The pointer is valid until the
// next Add.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.nodes[RootID] }

// Add appends a node of type typ under parent and returns its id. The node
// is named IrrNode_<id> until a Name attribute replaces it.
func (t *Tree) Add(parent NodeID, typ NodeType) NodeID {
	id := NodeID(len(t.nodes))
	n := newNode(typ)
	n.Name = defaultNodeName(id)
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}
