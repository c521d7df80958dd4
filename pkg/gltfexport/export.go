// Package gltfexport writes asset scenes as glTF 2.0 documents.
//
// Polygon faces are fan-triangulated; point and line faces are dropped.
// Cameras are attached to the node of the same name. Animations and lights
// are not written.
package gltfexport

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
)

// ErrNoRoot is returned for scenes without a hierarchy.
var ErrNoRoot = errors.New("scene has no root node")

type exporter struct {
	scene *asset.Scene
	doc   *gltf.Document
	log   *diag.Sink

	meshes   []int // asset mesh index -> gltf mesh index, or -1
	textures map[string]uint32
	cameras  map[string]uint32
}

// Export converts scene into a new document. Vertex data is stored in the
// document's first buffer.
func Export(scene *asset.Scene, sink *diag.Sink) (*gltf.Document, error) {
	if scene == nil || scene.Root == nil {
		return nil, ErrNoRoot
	}
	if sink == nil {
		sink = diag.Discard()
	}

	e := &exporter{
		scene:    scene,
		doc:      gltf.NewDocument(),
		log:      sink.Named("gltf"),
		textures: make(map[string]uint32),
		cameras:  make(map[string]uint32),
	}

	for _, m := range scene.Materials {
		e.doc.Materials = append(e.doc.Materials, e.material(m))
	}
	e.meshes = make([]int, len(scene.Meshes))
	for i, m := range scene.Meshes {
		e.meshes[i] = e.mesh(i, m)
	}
	for i, c := range scene.Cameras {
		e.cameras[c.Name] = uint32(i)
		e.doc.Cameras = append(e.doc.Cameras, camera(c))
	}

	root := e.node(scene.Root)
	e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, root)

	e.log.Debug("exported scene",
		zap.Int("nodes", len(e.doc.Nodes)),
		zap.Int("meshes", len(e.doc.Meshes)),
		zap.Int("materials", len(e.doc.Materials)))
	return e.doc, nil
}

// Write encodes doc to w, as GLB when binary is set.
func Write(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		embedBuffers(doc)
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	return errors.Wrap(enc.Encode(doc), "encode gltf")
}

// Save exports scene to path. A .glb extension selects the binary container.
func Save(scene *asset.Scene, path string, sink *diag.Sink) error {
	doc, err := Export(scene, sink)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		embedBuffers(doc)
		err = gltf.Save(doc, path)
	}
	return errors.Wrapf(err, "save %s", path)
}

// embedBuffers stores buffers without a URI as base64 data URIs, since a
// JSON document has no binary chunk to hold them.
func embedBuffers(doc *gltf.Document) {
	for _, b := range doc.Buffers {
		if b.URI == "" && len(b.Data) > 0 {
			b.EmbeddedResource()
		}
	}
}

var identity = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (e *exporter) node(n *asset.Node) uint32 {
	gn := &gltf.Node{
		Name:   n.Name,
		Matrix: [16]float32(n.Transform),
	}
	if c, ok := e.cameras[n.Name]; ok {
		gn.Camera = gltf.Index(c)
	}

	idx := uint32(len(e.doc.Nodes))
	e.doc.Nodes = append(e.doc.Nodes, gn)

	// A glTF node holds one mesh; extra meshes get child nodes.
	var meshes []uint32
	for _, m := range n.Meshes {
		if m >= 0 && m < len(e.meshes) && e.meshes[m] >= 0 {
			meshes = append(meshes, uint32(e.meshes[m]))
		}
	}
	for i, m := range meshes {
		if i == 0 {
			gn.Mesh = gltf.Index(m)
			continue
		}
		child := uint32(len(e.doc.Nodes))
		e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
			Name:   e.doc.Meshes[m].Name,
			Matrix: identity,
			Mesh:   gltf.Index(m),
		})
		gn.Children = append(gn.Children, child)
	}

	for _, c := range n.Children {
		if c == nil {
			continue
		}
		gn.Children = append(gn.Children, e.node(c))
	}
	return idx
}

func (e *exporter) material(m *asset.Material) *gltf.Material {
	out := &gltf.Material{Name: m.Name()}
	if v, ok := m.Int(asset.KeyTwoSided, asset.TextureNone, 0); ok && v != 0 {
		out.DoubleSided = true
	}

	color := &[4]float32{1, 1, 1, 1}
	if c, ok := m.Color(asset.KeyColorDiffuse); ok {
		color[0], color[1], color[2] = c.R, c.G, c.B
	}
	if o, ok := m.Float(asset.KeyOpacity, asset.TextureNone, 0); ok {
		color[3] = o
		if o < 1 {
			out.AlphaMode = gltf.AlphaBlend
		}
	}
	out.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{BaseColorFactor: color}

	if tex, ok := m.Texture(asset.TextureDiffuse, 0); ok && tex != "" {
		out.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: e.texture(tex)}
	}
	return out
}

// texture returns the texture referencing file by URI, adding it once.
func (e *exporter) texture(file string) uint32 {
	if idx, ok := e.textures[file]; ok {
		return idx
	}
	img := uint32(len(e.doc.Images))
	e.doc.Images = append(e.doc.Images, &gltf.Image{URI: filepath.ToSlash(file)})
	idx := uint32(len(e.doc.Textures))
	e.doc.Textures = append(e.doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
	e.textures[file] = idx
	return idx
}

// mesh writes one asset mesh as a single triangle primitive and returns its
// glTF index, or -1 when the mesh has no polygonal faces.
func (e *exporter) mesh(i int, m *asset.Mesh) int {
	if m == nil || len(m.Vertices) != m.NumVertices {
		e.log.Warn("skipping malformed mesh", zap.Int("mesh", i))
		return -1
	}

	indices, dropped := triangulate(m)
	if dropped > 0 {
		e.log.Debug("dropped point and line faces", zap.Int("mesh", i), zap.Int("faces", dropped))
	}
	if len(indices) == 0 {
		e.log.Info("mesh has no polygons, not exported", zap.Int("mesh", i), zap.String("name", m.Name))
		return -1
	}

	positions := make([][3]float32, m.NumVertices)
	for k, v := range m.Vertices {
		positions[k] = [3]float32{v.X, v.Y, v.Z}
	}
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(e.doc, positions),
	}

	if len(m.Normals) == m.NumVertices {
		normals := make([][3]float32, m.NumVertices)
		for k, n := range m.Normals {
			normals[k] = [3]float32{n.X, n.Y, n.Z}
		}
		attributes["NORMAL"] = modeler.WriteNormal(e.doc, normals)
	}
	if uv := m.TextureCoords[0]; len(uv) == m.NumVertices {
		uvs := make([][2]float32, m.NumVertices)
		for k, t := range uv {
			uvs[k] = [2]float32{t.X, 1 - t.Y}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(e.doc, uvs)
	}
	if col := m.Colors[0]; len(col) == m.NumVertices {
		colors := make([][4]uint8, m.NumVertices)
		for k, c := range col {
			colors[k] = [4]uint8{unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)}
		}
		attributes["COLOR_0"] = modeler.WriteColor(e.doc, colors)
	}

	prim := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(e.doc, indices)),
		Attributes: attributes,
	}
	if m.MaterialIndex >= 0 && m.MaterialIndex < len(e.doc.Materials) {
		prim.Material = gltf.Index(uint32(m.MaterialIndex))
	}

	idx := len(e.doc.Meshes)
	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{
		Name:       m.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	return idx
}

// triangulate fans every face of three or more corners and counts the
// faces it could not use.
func triangulate(m *asset.Mesh) (indices []uint32, dropped int) {
	for _, f := range m.Faces {
		if len(f.Indices) < 3 {
			dropped++
			continue
		}
		for k := 1; k+1 < len(f.Indices); k++ {
			indices = append(indices, uint32(f.Indices[0]), uint32(f.Indices[k]), uint32(f.Indices[k+1]))
		}
	}
	return indices, dropped
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

func camera(c *asset.Camera) *gltf.Camera {
	far := c.ClipPlaneFar
	p := &gltf.Perspective{
		Znear: c.ClipPlaneNear,
		Zfar:  &far,
		Yfov:  c.HorizontalFOV,
	}
	if c.Aspect > 0 {
		aspect := c.Aspect
		p.AspectRatio = &aspect
		p.Yfov = c.HorizontalFOV / c.Aspect
	}
	return &gltf.Camera{Name: c.Name, Perspective: p}
}
