package loader

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// GLTF loads .gltf and .glb files. Meshes are expanded to the verbose layout;
// skins, cameras and animations are not imported.
type GLTF struct{}

// Name implements Format.
func (GLTF) Name() string { return "gltf" }

// Extensions implements Format.
func (GLTF) Extensions() []string { return []string{".gltf", ".glb"} }

// Load implements Format.
func (GLTF) Load(path string) (*asset.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open gltf")
	}
	return FromGLTF(doc, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

type gltfImport struct {
	doc        *gltf.Document
	scene      *asset.Scene
	meshes     map[uint32][]int
	defaultMat int
}

// FromGLTF converts a decoded document into an asset scene rooted at a node named name.
func FromGLTF(doc *gltf.Document, name string) (*asset.Scene, error) {
	im := &gltfImport{
		doc:        doc,
		scene:      &asset.Scene{Root: asset.NewNode(name)},
		meshes:     make(map[uint32][]int),
		defaultMat: -1,
	}

	for _, m := range doc.Materials {
		im.scene.Materials = append(im.scene.Materials, convertGLTFMaterial(m))
	}

	for _, idx := range im.rootNodes() {
		if err := im.node(idx, im.scene.Root, 0); err != nil {
			return nil, err
		}
	}
	return im.scene, nil
}

func convertGLTFMaterial(m *gltf.Material) *asset.Material {
	out := asset.NewMaterial(m.Name)
	if m.DoubleSided {
		out.SetInt(asset.KeyTwoSided, asset.TextureNone, 0, 1)
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		out.SetColor(asset.KeyColorDiffuse, asset.Color3{R: c[0], G: c[1], B: c[2]})
		if c[3] < 1 {
			out.SetFloat(asset.KeyOpacity, asset.TextureNone, 0, c[3])
		}
	}
	return out
}

func (im *gltfImport) rootNodes() []uint32 {
	if len(im.doc.Scenes) > 0 {
		idx := 0
		if im.doc.Scene != nil && int(*im.doc.Scene) < len(im.doc.Scenes) {
			idx = int(*im.doc.Scene)
		}
		return im.doc.Scenes[idx].Nodes
	}

	// No scene list: every node that is nobody's child is a root.
	child := make(map[uint32]bool)
	for _, n := range im.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range im.doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// maxNodeDepth guards against cyclic child lists in malformed files.
const maxNodeDepth = 256

func (im *gltfImport) node(idx uint32, parent *asset.Node, depth int) error {
	if depth > maxNodeDepth {
		return errors.New("gltf node hierarchy too deep or cyclic")
	}
	if int(idx) >= len(im.doc.Nodes) {
		return errors.Errorf("gltf node index %d out of range", idx)
	}
	n := im.doc.Nodes[idx]

	out := asset.NewNode(n.Name)
	out.Transform = gltfNodeTransform(n)
	parent.AddChild(out)

	if n.Mesh != nil {
		meshes, err := im.mesh(*n.Mesh)
		if err != nil {
			return err
		}
		out.Meshes = append(out.Meshes, meshes...)
	}

	for _, c := range n.Children {
		if err := im.node(c, out, depth+1); err != nil {
			return err
		}
	}
	return nil
}

var identityMatrix = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func gltfNodeTransform(n *gltf.Node) mathx.Mat4 {
	if n.Matrix != identityMatrix && n.Matrix != ([16]float32{}) {
		return mathx.Mat4(n.Matrix)
	}

	rot := mathx.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
	if rot == (mathx.Quat{}) {
		rot = mathx.QuatIdentity()
	}
	scale := mathx.Vec3{X: n.Scale[0], Y: n.Scale[1], Z: n.Scale[2]}
	if scale.IsZero() {
		scale = mathx.Vec3{X: 1, Y: 1, Z: 1}
	}
	tr := mathx.Vec3{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]}
	return mathx.Compose(tr, rot, scale)
}

// mesh converts every primitive of glTF mesh idx once and returns the asset mesh indices.
func (im *gltfImport) mesh(idx uint32) ([]int, error) {
	if out, ok := im.meshes[idx]; ok {
		return out, nil
	}
	if int(idx) >= len(im.doc.Meshes) {
		return nil, errors.Errorf("gltf mesh index %d out of range", idx)
	}
	gm := im.doc.Meshes[idx]

	var out []int
	for i, p := range gm.Primitives {
		m, err := im.primitive(p)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %q primitive %d", gm.Name, i)
		}
		if m == nil {
			continue
		}
		m.Name = gm.Name
		out = append(out, len(im.scene.Meshes))
		im.scene.Meshes = append(im.scene.Meshes, m)
	}
	im.meshes[idx] = out
	return out, nil
}

func (im *gltfImport) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(im.doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	return im.doc.Accessors[idx], nil
}

func (im *gltfImport) primitive(p *gltf.Primitive) (*asset.Mesh, error) {
	arity := 0
	switch p.Mode {
	case gltf.PrimitiveTriangles:
		arity = 3
	case gltf.PrimitiveLines:
		arity = 2
	case gltf.PrimitivePoints:
		arity = 1
	default:
		// Strips, fans and loops would need re-indexing.
		return nil, nil
	}

	posIdx, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("primitive without POSITION")
	}
	acc, err := im.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(im.doc, acc, nil)
	if err != nil {
		return nil, errors.Wrap(err, "read positions")
	}

	var indices []uint32
	if p.Indices != nil {
		acc, err := im.accessor(*p.Indices)
		if err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(im.doc, acc, nil); err != nil {
			return nil, errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)/arity*arity]
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil, errors.Errorf("index %d out of range (%d vertices)", i, len(positions))
		}
	}

	var normals [][3]float32
	if idx, ok := p.Attributes["NORMAL"]; ok {
		acc, err := im.accessor(idx)
		if err != nil {
			return nil, err
		}
		if normals, err = modeler.ReadNormal(im.doc, acc, nil); err != nil {
			return nil, errors.Wrap(err, "read normals")
		}
	}
	var uvs [][2]float32
	if idx, ok := p.Attributes["TEXCOORD_0"]; ok {
		acc, err := im.accessor(idx)
		if err != nil {
			return nil, err
		}
		if uvs, err = modeler.ReadTextureCoord(im.doc, acc, nil); err != nil {
			return nil, errors.Wrap(err, "read texture coordinates")
		}
	}
	var colors [][4]uint8
	if idx, ok := p.Attributes["COLOR_0"]; ok {
		acc, err := im.accessor(idx)
		if err != nil {
			return nil, err
		}
		if colors, err = modeler.ReadColor(im.doc, acc, nil); err != nil {
			return nil, errors.Wrap(err, "read colors")
		}
	}

	n := len(indices)
	m := &asset.Mesh{NumVertices: n, Vertices: make([]mathx.Vec3, n)}
	if len(normals) == len(positions) {
		m.Normals = make([]mathx.Vec3, n)
	}
	if len(uvs) == len(positions) {
		m.TextureCoords[0] = make([]mathx.Vec3, n)
		m.UVComponents[0] = 2
	}
	if len(colors) == len(positions) {
		m.Colors[0] = make([]asset.Color4, n)
	}

	for i, src := range indices {
		v := positions[src]
		m.Vertices[i] = mathx.Vec3{X: v[0], Y: v[1], Z: v[2]}
		if m.Normals != nil {
			nv := normals[src]
			m.Normals[i] = mathx.Vec3{X: nv[0], Y: nv[1], Z: nv[2]}
		}
		if m.TextureCoords[0] != nil {
			m.TextureCoords[0][i] = mathx.Vec3{X: uvs[src][0], Y: 1 - uvs[src][1]}
		}
		if m.Colors[0] != nil {
			c := colors[src]
			m.Colors[0][i] = asset.Color4{R: float32(c[0]) / 255, G: float32(c[1]) / 255, B: float32(c[2]) / 255, A: float32(c[3]) / 255}
		}
	}

	for i := 0; i < n; i += arity {
		f := asset.Face{Indices: make([]int, arity)}
		for k := range f.Indices {
			f.Indices[k] = i + k
		}
		m.Faces = append(m.Faces, f)
	}
	m.UpdatePrimitiveTypes()

	if p.Material != nil && int(*p.Material) < len(im.scene.Materials) {
		m.MaterialIndex = int(*p.Material)
	} else {
		m.MaterialIndex = im.defaultMaterial()
	}
	return m, nil
}

func (im *gltfImport) defaultMaterial() int {
	if im.defaultMat < 0 {
		im.defaultMat = len(im.scene.Materials)
		im.scene.Materials = append(im.scene.Materials, asset.NewDefaultMaterial())
	}
	return im.defaultMat
}
