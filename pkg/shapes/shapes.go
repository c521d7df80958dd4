// Package shapes generates the procedural primitives used by scene nodes
// that carry no mesh file: spheres and boxes. Output meshes use the verbose
// layout (one vertex per face corner) and carry normals.
package shapes

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// MaxSphereLevel caps the subdivision depth; level 6 already yields 81920 triangles.
const MaxSphereLevel = 6

// Sphere returns a unit sphere built by subdividing an icosahedron level times.
// The mesh has 20 * 4^level triangles.
func Sphere(level int) *asset.Mesh {
	if level < 0 {
		level = 0
	}
	if level > MaxSphereLevel {
		level = MaxSphereLevel
	}

	tris := icosahedron()
	for i := 0; i < level; i++ {
		tris = subdivide(tris)
	}

	m := FromPositions(tris, 3)
	// A unit sphere's normals are its positions.
	m.Normals = append([]mathx.Vec3(nil), m.Vertices...)
	return m
}

// Hexahedron returns a cube centered at the origin whose corners lie on the unit sphere.
func Hexahedron() *asset.Mesh {
	l := 1 / math32.Sqrt(3)

	c := func(x, y, z float32) mathx.Vec3 { return mathx.Vec3{X: x * l, Y: y * l, Z: z * l} }
	quads := []mathx.Vec3{
		c(-1, -1, 1), c(1, -1, 1), c(1, 1, 1), c(-1, 1, 1), // +Z
		c(1, -1, -1), c(-1, -1, -1), c(-1, 1, -1), c(1, 1, -1), // -Z
		c(1, -1, 1), c(1, -1, -1), c(1, 1, -1), c(1, 1, 1), // +X
		c(-1, -1, -1), c(-1, -1, 1), c(-1, 1, 1), c(-1, 1, -1), // -X
		c(-1, 1, 1), c(1, 1, 1), c(1, 1, -1), c(-1, 1, -1), // +Y
		c(-1, -1, -1), c(1, -1, -1), c(1, -1, 1), c(-1, -1, 1), // -Y
	}

	m := FromPositions(quads, 4)
	m.Normals = FlatNormals(m)
	return m
}

// FromPositions builds a verbose mesh from a flat corner list, perFace corners at a time.
func FromPositions(pos []mathx.Vec3, perFace int) *asset.Mesh {
	n := len(pos) / perFace * perFace
	m := &asset.Mesh{
		NumVertices: n,
		Vertices:    append([]mathx.Vec3(nil), pos[:n]...),
		Faces:       make([]asset.Face, 0, n/perFace),
	}
	for i := 0; i < n; i += perFace {
		idx := make([]int, perFace)
		for k := range idx {
			idx[k] = i + k
		}
		m.Faces = append(m.Faces, asset.Face{Indices: idx})
	}
	m.PrimitiveTypes = asset.PrimitiveTypeForIndices(perFace)
	return m
}

// FlatNormals returns one face normal per corner, from the first three corners of each face.
func FlatNormals(m *asset.Mesh) []mathx.Vec3 {
	out := make([]mathx.Vec3, m.NumVertices)
	for _, f := range m.Faces {
		if len(f.Indices) < 3 {
			continue
		}
		a, b, c := m.Vertices[f.Indices[0]], m.Vertices[f.Indices[1]], m.Vertices[f.Indices[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, i := range f.Indices {
			out[i] = n
		}
	}
	return out
}

func icosahedron() []mathx.Vec3 {
	t := (1 + math32.Sqrt(5)) / 2
	v := []mathx.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range v {
		v[i] = v[i].Normalize()
	}
	faces := [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	out := make([]mathx.Vec3, 0, 60)
	for _, f := range faces {
		out = append(out, v[f[0]], v[f[1]], v[f[2]])
	}
	return out
}

// subdivide splits every triangle into four and pushes new corners onto the unit sphere.
func subdivide(tris []mathx.Vec3) []mathx.Vec3 {
	out := make([]mathx.Vec3, 0, len(tris)*4)
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := tris[i], tris[i+1], tris[i+2]
		ab := a.Add(b).Normalize()
		bc := b.Add(c).Normalize()
		ca := c.Add(a).Normalize()
		out = append(out,
			a, ab, ca,
			ab, b, bc,
			ca, bc, c,
			ab, bc, ca,
		)
	}
	return out
}
