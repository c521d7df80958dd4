package irr

import (
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	"github.com/Faultbox/irrscene/pkg/merge"
	mathx "github.com/Faultbox/irrscene/pkg/math"
	"github.com/Faultbox/irrscene/pkg/shapes"
)

// GlobalAnimationName names the animation holding all node channels.
const GlobalAnimationName = "Irr_GlobalAnimChannel"

// SceneSource returns the loaded scene of a mesh file, or nil when it could
// not be loaded. *loader.BatchLoader implements it.
type SceneSource interface {
	Scene(path string) *asset.Scene
}

type synthesizer struct {
	tree *Tree
	src  SceneSource
	fps  int
	log  *diag.Sink
	anim *diag.Sink

	scene      *asset.Scene
	channels   []*asset.NodeAnim
	atts       []merge.Attachment
	defaultMat int
}

// Synthesize turns a parse result into a finished scene. Mesh files are not
// spliced in; they are returned as attachments for merge.Attach.
func Synthesize(res *ParseResult, src SceneSource, fps int, sink *diag.Sink) (*asset.Scene, []merge.Attachment) {
	if sink == nil {
		sink = diag.Discard()
	}
	s := &synthesizer{
		tree: res.Tree,
		src:  src,
		fps:  fps,
		log:  sink.Named("synth"),
		anim: sink.Named("anim"),
		scene: &asset.Scene{
			Root:    asset.NewNode(RootName),
			Cameras: res.Cameras,
			Lights:  res.Lights,
		},
		defaultMat: -1,
	}

	s.generate(RootID, s.scene.Root)
	s.finishCameras()

	if len(s.channels) > 0 {
		a := &asset.Animation{
			Name:           GlobalAnimationName,
			TicksPerSecond: float64(fps),
			Channels:       s.channels,
		}
		for _, c := range s.channels {
			if t := c.LastTime(); t > a.Duration {
				a.Duration = t
			}
		}
		s.scene.Animations = append(s.scene.Animations, a)
	}

	if len(s.scene.Meshes) == 0 {
		s.scene.Flags |= asset.FlagIncomplete
	}
	return s.scene, s.atts
}

func (s *synthesizer) generate(id NodeID, out *asset.Node) {
	n := s.tree.Node(id)
	out.Name = n.Name
	if id == RootID {
		out.Name = RootName
	}

	scale := n.Scale
	before := len(s.scene.Meshes)

	switch n.Type {
	case NodeMesh, NodeAnimatedMesh:
		s.attachMesh(n, out)

	case NodeSphere:
		m := shapes.Sphere(sphereLevel(n.PolyCountX, n.PolyCountY))
		m.Name = n.Name
		s.assignMaterial(n, m)
		s.scene.Meshes = append(s.scene.Meshes, m)
		scale = scale.Scale(n.Radius)

	case NodeCube:
		m := shapes.Hexahedron()
		m.Name = n.Name
		s.assignMaterial(n, m)
		s.scene.Meshes = append(s.scene.Meshes, m)
		scale = scale.Scale(n.Radius)

	case NodeSkybox:
		if s.buildSkybox(n) {
			out.Name = SkyboxPrefix + out.Name
		}

	case NodeTerrain:
		s.log.Error("terrain nodes are not supported", zap.String("node", n.Name))

	case NodeLight, NodeCamera, NodeDummy:
	}

	for i := before; i < len(s.scene.Meshes); i++ {
		out.Meshes = append(out.Meshes, i)
	}

	out.Transform = localTransform(n.Position, n.Rotation, scale)
	if ch := Resolve(out.Name, n.Animators, out.Transform, s.fps, s.anim); ch != nil {
		s.channels = append(s.channels, ch)
	}

	for _, c := range n.Children {
		child := asset.NewNode("")
		out.AddChild(child)
		s.generate(c, child)
	}
}

// localTransform builds Rx*Ry*Rz from degrees, scales its basis columns and
// sets the translation.
func localTransform(position, rotation, scale mathx.Vec3) mathx.Mat4 {
	m := mathx.EulerXYZ(rotation)
	m.ScaleColumns(scale)
	m.SetTranslation(position)
	return m
}

// sphereLevel maps the polygon counts of a sphere node to a subdivision level.
func sphereLevel(polyX, polyY int) int {
	switch mul := polyX * polyY; {
	case mul < 100:
		return 2
	case mul < 300:
		return 3
	default:
		return 4
	}
}

func (s *synthesizer) attachMesh(n *Node, out *asset.Node) {
	if n.MeshPath == "" {
		s.log.Warn("mesh node without a mesh file", zap.String("node", n.Name))
		return
	}
	var sub *asset.Scene
	if s.src != nil {
		sub = s.src.Scene(n.MeshPath)
	}
	if sub == nil {
		s.log.Error("mesh file could not be loaded", zap.String("node", n.Name), zap.String("path", n.MeshPath))
		return
	}
	// Scene materials and vertex colors are rewritten below; the loaded
	// scene stays untouched for the next node using the same file.
	sub = sub.Clone()
	s.atts = append(s.atts, merge.Attachment{Scene: sub, Target: out})

	if len(n.Materials) != len(sub.Materials) {
		s.log.Warn("material count of mesh file does not match the scene",
			zap.String("node", n.Name),
			zap.String("path", n.MeshPath),
			zap.Int("scene", len(n.Materials)),
			zap.Int("file", len(sub.Materials)))
		return
	}
	for i, e := range n.Materials {
		sub.Materials[i] = e.Material
	}

	for _, m := range sub.Meshes {
		if m == nil || m.MaterialIndex < 0 || m.MaterialIndex >= len(n.Materials) {
			continue
		}
		e := n.Materials[m.MaterialIndex]
		if e.Flags.Any(MatTransVertexAlpha) && hoistVertexAlpha(m, e.Material) {
			s.log.Info("replaced uniform vertex alpha with material opacity", zap.String("node", n.Name))
		}
		if m.HasTextureCoords(1) {
			setSecondUVSource(e)
		}
	}
}

// hoistVertexAlpha moves an alpha shared by every vertex of the first color
// channel into the material opacity and makes the vertices opaque.
func hoistVertexAlpha(m *asset.Mesh, mat *asset.Material) bool {
	colors := m.Colors[0]
	if len(colors) == 0 {
		return false
	}
	alpha := colors[0].A
	for _, c := range colors[1:] {
		if c.A != alpha {
			return false
		}
	}
	for i := range colors {
		colors[i].A = 1
	}
	mat.SetFloat(asset.KeyOpacity, asset.TextureNone, 0, alpha)
	return true
}

// setSecondUVSource points the second texture of two-layer, lightmap and
// normal-map materials at UV channel 1.
func setSecondUVSource(e MaterialEntry) {
	var sem asset.TextureType
	index := 0
	switch {
	case e.Flags.Any(MatLightmapFamily):
		sem = asset.TextureLightmap
	case e.Flags.Any(MatNormalMap | MatParallaxMap):
		sem = asset.TextureNormals
	case e.Flags.Any(MatSolid2Layer):
		sem, index = asset.TextureDiffuse, 1
	default:
		return
	}
	if _, ok := e.Material.Texture(sem, index); ok {
		e.Material.SetInt(asset.KeyUVSource, sem, index, 1)
	}
}

// assignMaterial gives a procedural mesh the first material of its node, or
// the shared default material.
func (s *synthesizer) assignMaterial(n *Node, m *asset.Mesh) {
	if len(n.Materials) == 0 {
		m.MaterialIndex = s.defaultMaterial()
		return
	}
	if len(n.Materials) > 1 {
		s.log.Info("skipping additional materials", zap.String("node", n.Name), zap.Int("materials", len(n.Materials)))
	}
	m.MaterialIndex = len(s.scene.Materials)
	s.scene.Materials = append(s.scene.Materials, n.Materials[0].Material)
}

func (s *synthesizer) defaultMaterial() int {
	if s.defaultMat < 0 {
		s.defaultMat = len(s.scene.Materials)
		s.scene.Materials = append(s.scene.Materials, asset.NewDefaultMaterial())
	}
	return s.defaultMat
}

// finishCameras turns the stored vertical field of view into a horizontal one.
func (s *synthesizer) finishCameras() {
	for _, c := range s.scene.Cameras {
		if c.Aspect != 0 {
			c.HorizontalFOV *= c.Aspect
			continue
		}
		s.log.Warn("camera aspect is not given, horizontal field of view not computed", zap.String("camera", c.Name))
	}
}
