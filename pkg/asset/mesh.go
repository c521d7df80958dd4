package asset

import (
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// Channel limits per mesh.
const (
	MaxTextureCoords = 8
	MaxColorSets     = 8
)

// PrimitiveType is a bitmask of the face arities present in a mesh.
type PrimitiveType uint32

const (
	PrimitivePoint PrimitiveType = 1 << iota
	PrimitiveLine
	PrimitiveTriangle
	PrimitivePolygon
)

// PrimitiveTypeForIndices returns the primitive type implied by a face of n indices.
func PrimitiveTypeForIndices(n int) PrimitiveType {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return PrimitivePoint
	case n == 2:
		return PrimitiveLine
	case n == 3:
		return PrimitiveTriangle
	default:
		return PrimitivePolygon
	}
}

func (p PrimitiveType) String() string {
	names := []string{"point", "line", "triangle", "polygon"}
	out := ""
	for i, n := range names {
		if p&(1<<i) != 0 {
			if out != "" {
				out += "|"
			}
			out += n
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Color3 is an RGB color.
type Color3 struct {
	R, G, B float32
}

// IsBlack reports whether all components are zero.
func (c Color3) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Color4 is an RGBA color.
type Color4 struct {
	R, G, B, A float32
}

// Face is one polygon given as indices into the mesh vertex channels.
type Face struct {
	Indices []int
}

// VertexWeight is one bone influence.
type VertexWeight struct {
	VertexID int
	Weight   float32
}

// Bone binds vertices to a node of the hierarchy by name.
type Bone struct {
	Name    string
	Weights []VertexWeight
	Offset  mathx.Mat4
}

// Mesh holds geometry with a single material. Every per-vertex channel is
// either nil or has NumVertices entries.
type Mesh struct {
	Name           string
	PrimitiveTypes PrimitiveType
	NumVertices    int

	Vertices      []mathx.Vec3
	Normals       []mathx.Vec3
	Tangents      []mathx.Vec3
	Bitangents    []mathx.Vec3
	TextureCoords [MaxTextureCoords][]mathx.Vec3
	// UVComponents is 2 for UV and 3 for UVW channels.
	UVComponents [MaxTextureCoords]int
	Colors       [MaxColorSets][]Color4

	Faces         []Face
	Bones         []*Bone
	MaterialIndex int
}

// HasTextureCoords reports whether UV channel i is populated.
func (m *Mesh) HasTextureCoords(i int) bool {
	return i >= 0 && i < MaxTextureCoords && len(m.TextureCoords[i]) > 0
}

// HasColors reports whether color set i is populated.
func (m *Mesh) HasColors(i int) bool {
	return i >= 0 && i < MaxColorSets && len(m.Colors[i]) > 0
}

// NumUVChannels counts the leading populated UV channels.
func (m *Mesh) NumUVChannels() int {
	n := 0
	for n < MaxTextureCoords && m.HasTextureCoords(n) {
		n++
	}
	return n
}

// NumColorChannels counts the leading populated color sets.
func (m *Mesh) NumColorChannels() int {
	n := 0
	for n < MaxColorSets && m.HasColors(n) {
		n++
	}
	return n
}

// UpdatePrimitiveTypes recomputes PrimitiveTypes from the faces.
func (m *Mesh) UpdatePrimitiveTypes() {
	m.PrimitiveTypes = 0
	for _, f := range m.Faces {
		m.PrimitiveTypes |= PrimitiveTypeForIndices(len(f.Indices))
	}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := *m
	out.Vertices = cloneVecs(m.Vertices)
	out.Normals = cloneVecs(m.Normals)
	out.Tangents = cloneVecs(m.Tangents)
	out.Bitangents = cloneVecs(m.Bitangents)
	for i := range m.TextureCoords {
		out.TextureCoords[i] = cloneVecs(m.TextureCoords[i])
	}
	for i := range m.Colors {
		if m.Colors[i] != nil {
			out.Colors[i] = append([]Color4(nil), m.Colors[i]...)
		}
	}
	out.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		out.Faces[i] = Face{Indices: append([]int(nil), f.Indices...)}
	}
	out.Bones = nil
	for _, b := range m.Bones {
		if b == nil {
			out.Bones = append(out.Bones, nil)
			continue
		}
		bc := *b
		bc.Weights = append([]VertexWeight(nil), b.Weights...)
		out.Bones = append(out.Bones, &bc)
	}
	return &out
}

func cloneVecs(v []mathx.Vec3) []mathx.Vec3 {
	if v == nil {
		return nil
	}
	return append([]mathx.Vec3(nil), v...)
}
