package irr

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// SkyboxPrefix marks skybox nodes, which need special handling when drawn.
const SkyboxPrefix = "IRR.SkyBox_"

// skyboxSize is the half extent Irrlicht uses for skybox planes.
const skyboxSize = 10

type skyVertex struct {
	pos, normal mathx.Vec3
	u, v        float32
}

func sv(x, y, z, nx, ny, nz, u, v float32) skyVertex {
	return skyVertex{pos: mathx.Vec3{X: x, Y: y, Z: z}, normal: mathx.Vec3{X: nx, Y: ny, Z: nz}, u: u, v: v}
}

// skyboxFaces returns the quads in the order front, left, back, right, top,
// bottom. Normals point into the box.
func skyboxFaces() [6][4]skyVertex {
	const l = skyboxSize
	return [6][4]skyVertex{
		{sv(-l, -l, -l, 0, 0, 1, 1, 1), sv(l, -l, -l, 0, 0, 1, 0, 1), sv(l, l, -l, 0, 0, 1, 0, 0), sv(-l, l, -l, 0, 0, 1, 1, 0)},
		{sv(l, -l, -l, -1, 0, 0, 1, 1), sv(l, -l, l, -1, 0, 0, 0, 1), sv(l, l, l, -1, 0, 0, 0, 0), sv(l, l, -l, -1, 0, 0, 1, 0)},
		{sv(l, -l, l, 0, 0, -1, 1, 1), sv(-l, -l, l, 0, 0, -1, 0, 1), sv(-l, l, l, 0, 0, -1, 0, 0), sv(l, l, l, 0, 0, -1, 1, 0)},
		{sv(-l, -l, l, 1, 0, 0, 1, 1), sv(-l, -l, -l, 1, 0, 0, 0, 1), sv(-l, l, -l, 1, 0, 0, 0, 0), sv(-l, l, l, 1, 0, 0, 1, 0)},
		{sv(l, l, -l, 0, -1, 0, 1, 1), sv(l, l, l, 0, -1, 0, 0, 1), sv(-l, l, l, 0, -1, 0, 0, 0), sv(-l, l, -l, 0, -1, 0, 1, 0)},
		{sv(l, -l, l, 0, 1, 0, 0, 0), sv(l, -l, -l, 0, 1, 0, 1, 0), sv(-l, -l, -l, 0, 1, 0, 1, 1), sv(-l, -l, l, 0, 1, 0, 0, 1)},
	}
}

func quadMesh(q [4]skyVertex) *asset.Mesh {
	m := &asset.Mesh{
		PrimitiveTypes: asset.PrimitivePolygon,
		NumVertices:    4,
		Vertices:       make([]mathx.Vec3, 4),
		Normals:        make([]mathx.Vec3, 4),
		Faces:          []asset.Face{{Indices: []int{0, 1, 2, 3}}},
	}
	m.TextureCoords[0] = make([]mathx.Vec3, 4)
	m.UVComponents[0] = 2
	for i, v := range q {
		m.Vertices[i] = v.pos
		m.Normals[i] = v.normal
		m.TextureCoords[0][i] = mathx.Vec3{X: v.u, Y: v.v}
	}
	return m
}

// buildSkybox emits six quads, one per side material. It reports false and
// emits nothing unless the node declares exactly six materials.
func (s *synthesizer) buildSkybox(n *Node) bool {
	if len(n.Materials) != 6 {
		s.log.Error("skybox needs exactly six materials",
			zap.String("node", n.Name), zap.Int("materials", len(n.Materials)))
		return false
	}

	for i, q := range skyboxFaces() {
		mat := n.Materials[i].Material
		mat.SetName(fmt.Sprintf("SkyboxSide_%d", i))
		mat.SetInt(asset.KeyShadingModel, asset.TextureNone, 0, int32(asset.ShadingNone))

		m := quadMesh(q)
		m.MaterialIndex = len(s.scene.Materials)
		s.scene.Materials = append(s.scene.Materials, mat)
		s.scene.Meshes = append(s.scene.Meshes, m)
	}
	s.log.Info("skybox needs special handling to be displayed", zap.String("node", n.Name))
	return true
}
