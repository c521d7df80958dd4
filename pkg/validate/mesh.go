package validate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// Bone weight sums outside this range are reported.
const (
	minWeightSum = 0.995
	maxWeightSum = 1.005
)

func (v *validator) meshes() error {
	for i, m := range v.s.Meshes {
		if err := v.mesh(i, m); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) mesh(i int, m *asset.Mesh) error {
	if err := checkString("meshes", i, "name", m.Name); err != nil {
		return err
	}
	if m.MaterialIndex < 0 || m.MaterialIndex >= len(v.s.Materials) {
		return fail("meshes", i, "material index %d is out of range (materials: %d)", m.MaterialIndex, len(v.s.Materials))
	}

	if m.NumVertices == 0 {
		return fail("meshes", i, "mesh has no vertices")
	}
	if m.Vertices == nil {
		return fail("meshes", i, "vertex positions are absent but the mesh has %d vertices", m.NumVertices)
	}
	if err := channelLength(i, "positions", m.Vertices, m.NumVertices); err != nil {
		return err
	}
	if err := channelLength(i, "normals", m.Normals, m.NumVertices); err != nil {
		return err
	}
	if err := channelLength(i, "tangents", m.Tangents, m.NumVertices); err != nil {
		return err
	}
	if err := channelLength(i, "bitangents", m.Bitangents, m.NumVertices); err != nil {
		return err
	}
	if (m.Tangents == nil) != (m.Bitangents == nil) {
		return fail("meshes", i, "tangents and bitangents must be present together")
	}

	if err := texCoordChannels(i, m); err != nil {
		return err
	}
	if err := colorChannels(i, m); err != nil {
		return err
	}

	if err := v.faces(i, m); err != nil {
		return err
	}
	return v.bones(i, m)
}

func channelLength(i int, what string, ch []mathx.Vec3, n int) error {
	if ch != nil && len(ch) != n {
		return fail("meshes", i, "%s channel has %d entries, expected %d", what, len(ch), n)
	}
	return nil
}

// texCoordChannels requires channels to be populated from 0 without gaps.
func texCoordChannels(i int, m *asset.Mesh) error {
	gap := -1
	for k := 0; k < asset.MaxTextureCoords; k++ {
		ch := m.TextureCoords[k]
		if ch == nil {
			if gap < 0 {
				gap = k
			}
			continue
		}
		if gap >= 0 {
			return fail("meshes", i, "texture coordinate channel %d exists although channel %d is absent", k, gap)
		}
		if err := channelLength(i, fmt.Sprintf("texture coordinate %d", k), ch, m.NumVertices); err != nil {
			return err
		}
	}
	return nil
}

func colorChannels(i int, m *asset.Mesh) error {
	gap := -1
	for k := 0; k < asset.MaxColorSets; k++ {
		ch := m.Colors[k]
		if ch == nil {
			if gap < 0 {
				gap = k
			}
			continue
		}
		if gap >= 0 {
			return fail("meshes", i, "vertex color channel %d exists although channel %d is absent", k, gap)
		}
		if len(ch) != m.NumVertices {
			return fail("meshes", i, "vertex color %d channel has %d entries, expected %d", k, len(ch), m.NumVertices)
		}
	}
	return nil
}

func (v *validator) faces(i int, m *asset.Mesh) error {
	if len(m.Faces) == 0 {
		return fail("meshes", i, "mesh has no faces")
	}

	nonVerbose := v.s.Flags.Has(asset.FlagNonVerbose)
	referenced := make([]bool, m.NumVertices)
	for f, face := range m.Faces {
		n := len(face.Indices)
		if n == 0 {
			return fail("meshes", i, "face %d has no indices", f)
		}
		if pt := asset.PrimitiveTypeForIndices(n); m.PrimitiveTypes&pt == 0 {
			return fail("meshes", i, "face %d is a %s but the mesh primitive types are %s", f, pt, m.PrimitiveTypes)
		}
		for k, idx := range face.Indices {
			if idx < 0 || idx >= m.NumVertices {
				return fail("meshes", i, "face %d index %d is %d, out of range (vertices: %d)", f, k, idx, m.NumVertices)
			}
			if referenced[idx] && !nonVerbose {
				return fail("meshes", i, "vertex %d is referenced twice, second time by face %d index %d", idx, f, k)
			}
			referenced[idx] = true
		}
	}

	unreferenced := 0
	for _, r := range referenced {
		if !r {
			unreferenced++
		}
	}
	if unreferenced > 0 {
		v.warn("meshes", i, "unreferenced vertices", zap.Int("count", unreferenced))
	}
	return nil
}

func (v *validator) bones(i int, m *asset.Mesh) error {
	if len(m.Bones) == 0 {
		return nil
	}

	names := make(map[string]int, len(m.Bones))
	sums := make([]float32, m.NumVertices)
	for b, bone := range m.Bones {
		if bone == nil {
			return fail("meshes", i, "bone %d is nil (mesh has %d bones)", b, len(m.Bones))
		}
		if err := checkString("meshes", i, "bone name", bone.Name); err != nil {
			return err
		}
		if prev, ok := names[bone.Name]; ok {
			return fail("meshes", i, "bone %d has the same name as bone %d (%q)", b, prev, bone.Name)
		}
		names[bone.Name] = b

		if len(bone.Weights) == 0 {
			return fail("meshes", i, "bone %q has no weights", bone.Name)
		}
		for w, vw := range bone.Weights {
			if vw.VertexID < 0 || vw.VertexID >= m.NumVertices {
				return fail("meshes", i, "bone %q weight %d references vertex %d, out of range (vertices: %d)",
					bone.Name, w, vw.VertexID, m.NumVertices)
			}
			if vw.Weight < 0 || vw.Weight > 1 {
				v.warn("meshes", i, "bone weight outside [0, 1]",
					zap.String("bone", bone.Name), zap.Int("weight", w), zap.Float32("value", vw.Weight))
			}
			sums[vw.VertexID] += vw.Weight
		}
	}

	for vert, sum := range sums {
		if sum != 0 && (sum < minWeightSum || sum > maxWeightSum) {
			v.warn("meshes", i, "bone weight sum is not 1", zap.Int("vertex", vert), zap.Float32("sum", sum))
		}
	}
	return nil
}
