package loader

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// OBJ loads Wavefront .obj files. Material libraries are not read; each
// usemtl name becomes a material carrying only that name.
type OBJ struct{}

// Name implements Format.
func (OBJ) Name() string { return "obj" }

// Extensions implements Format.
func (OBJ) Extensions() []string { return []string{".obj"} }

// Load implements Format.
func (OBJ) Load(path string) (*asset.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open obj")
	}
	defer f.Close()
	return ParseOBJ(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

type objCorner struct {
	v, vt, vn int
}

type objGroup struct {
	name     string
	material string
	faces    [][]objCorner
}

type objParser struct {
	positions []mathx.Vec3
	texcoords []mathx.Vec3
	normals   []mathx.Vec3
	groups    []*objGroup
	cur       *objGroup
	object    string
	material  string
}

// ParseOBJ reads an OBJ stream into a scene with one mesh per group and
// material. Meshes use the verbose layout.
func ParseOBJ(r io.Reader, name string) (*asset.Scene, error) {
	p := &objParser{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ident, val := fields[0], fields[1:]

		switch ident {
		case "v", "vn":
			v, err := parseObjVec(val, 3)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			if ident == "v" {
				p.positions = append(p.positions, v)
			} else {
				p.normals = append(p.normals, v)
			}
		case "vt":
			v, err := parseObjVec(val, 1)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			p.texcoords = append(p.texcoords, v)
		case "f", "l", "p":
			face, err := p.parseFace(val)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			p.group().faces = append(p.group().faces, face)
		case "o", "g":
			p.object = strings.Join(val, " ")
			p.cur = nil
		case "usemtl":
			p.material = strings.Join(val, " ")
			p.cur = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read obj")
	}
	return p.scene(name), nil
}

func (p *objParser) group() *objGroup {
	if p.cur == nil {
		p.cur = &objGroup{name: p.object, material: p.material}
		p.groups = append(p.groups, p.cur)
	}
	return p.cur
}

func parseObjVec(val []string, want int) (mathx.Vec3, error) {
	if len(val) < want {
		return mathx.Vec3{}, errors.Errorf("expected %d components, got %d", want, len(val))
	}
	var c [3]float32
	for i := 0; i < len(val) && i < 3; i++ {
		f, err := strconv.ParseFloat(val[i], 32)
		if err != nil {
			return mathx.Vec3{}, errors.Wrapf(err, "component %d", i)
		}
		c[i] = float32(f)
	}
	return mathx.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// objIndex converts a 1-based, possibly negative OBJ index to 0-based.
func objIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "index %q", s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, errors.Errorf("index %d out of range (%d elements)", i, count)
	}
}

func (p *objParser) parseFace(val []string) ([]objCorner, error) {
	face := make([]objCorner, 0, len(val))
	for _, s := range val {
		parts := strings.Split(s, "/")
		var c objCorner
		var err error
		if c.v, err = objIndex(parts[0], len(p.positions)); err != nil {
			return nil, err
		}
		if c.v < 0 {
			return nil, errors.Errorf("face corner %q without position", s)
		}
		c.vt, c.vn = -1, -1
		if len(parts) > 1 {
			if c.vt, err = objIndex(parts[1], len(p.texcoords)); err != nil {
				return nil, err
			}
		}
		if len(parts) > 2 {
			if c.vn, err = objIndex(parts[2], len(p.normals)); err != nil {
				return nil, err
			}
		}
		face = append(face, c)
	}
	if len(face) == 0 {
		return nil, errors.New("empty face")
	}
	return face, nil
}

func (p *objParser) scene(name string) *asset.Scene {
	s := &asset.Scene{Root: asset.NewNode(name)}
	materials := map[string]int{}

	for _, g := range p.groups {
		if len(g.faces) == 0 {
			continue
		}
		matName := g.material
		if matName == "" {
			matName = asset.DefaultMaterialName
		}
		idx, ok := materials[matName]
		if !ok {
			idx = len(s.Materials)
			materials[matName] = idx
			if g.material == "" {
				s.Materials = append(s.Materials, asset.NewDefaultMaterial())
			} else {
				s.Materials = append(s.Materials, asset.NewMaterial(matName))
			}
		}

		m := p.mesh(g)
		m.MaterialIndex = idx
		s.Root.Meshes = append(s.Root.Meshes, len(s.Meshes))
		s.Meshes = append(s.Meshes, m)
	}
	return s
}

// mesh expands a group into one vertex per face corner. UV and normal
// channels are kept only when every corner has them.
func (p *objParser) mesh(g *objGroup) *asset.Mesh {
	hasUV, hasNormal := true, true
	n := 0
	for _, f := range g.faces {
		for _, c := range f {
			hasUV = hasUV && c.vt >= 0
			hasNormal = hasNormal && c.vn >= 0
		}
		n += len(f)
	}

	m := &asset.Mesh{Name: g.name, NumVertices: n, Vertices: make([]mathx.Vec3, 0, n)}
	if hasUV {
		m.TextureCoords[0] = make([]mathx.Vec3, 0, n)
		m.UVComponents[0] = 2
	}
	if hasNormal {
		m.Normals = make([]mathx.Vec3, 0, n)
	}

	for _, f := range g.faces {
		face := asset.Face{Indices: make([]int, len(f))}
		for i, c := range f {
			face.Indices[i] = len(m.Vertices)
			m.Vertices = append(m.Vertices, p.positions[c.v])
			if hasUV {
				m.TextureCoords[0] = append(m.TextureCoords[0], p.texcoords[c.vt])
			}
			if hasNormal {
				m.Normals = append(m.Normals, p.normals[c.vn])
			}
		}
		m.Faces = append(m.Faces, face)
	}
	m.UpdatePrimitiveTypes()
	return m
}
