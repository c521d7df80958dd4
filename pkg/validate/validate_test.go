package validate

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

func triangle() *asset.Mesh {
	return &asset.Mesh{
		PrimitiveTypes: asset.PrimitiveTriangle,
		NumVertices:    3,
		Vertices:       []mathx.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Faces:          []asset.Face{{Indices: []int{0, 1, 2}}},
	}
}

// validScene returns a scene with one triangle mesh under node "box", a
// camera and a light.
func validScene() *asset.Scene {
	root := asset.NewNode("root")
	box := asset.NewNode("box")
	box.Meshes = []int{0}
	root.AddChild(box)
	root.AddChild(asset.NewNode("cam"))
	root.AddChild(asset.NewNode("sun"))

	return &asset.Scene{
		Root:      root,
		Meshes:    []*asset.Mesh{triangle()},
		Materials: []*asset.Material{asset.NewDefaultMaterial()},
		Cameras:   []*asset.Camera{asset.NewCamera("cam")},
		Lights:    []*asset.Light{asset.NewLight("sun")},
	}
}

func requireInvalid(t *testing.T, err error, table string) *Error {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	var verr *Error
	require.True(t, errors.As(err, &verr), "error %v is not a *Error", err)
	assert.Equal(t, table, verr.Table)
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed: "))
	return verr
}

func TestValidScene(t *testing.T) {
	sink := diag.Discard()
	require.NoError(t, Validate(validScene(), sink))
	assert.Empty(t, sink.Warnings())
}

func TestNilScene(t *testing.T) {
	requireInvalid(t, Validate(nil, nil), "scene")
}

func TestFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *asset.Scene)
		table  string
	}{
		{"no root", func(s *asset.Scene) { s.Root = nil }, "scene"},
		{"no meshes", func(s *asset.Scene) {
			s.Meshes = nil
			s.Root.FindNode("box").Meshes = nil
		}, "meshes"},
		{"no materials", func(s *asset.Scene) { s.Materials = nil }, "materials"},
		{"nil mesh", func(s *asset.Scene) { s.Meshes = append(s.Meshes, nil) }, "meshes"},
		{"nil material", func(s *asset.Scene) { s.Materials = append(s.Materials, nil) }, "materials"},
		{"nil light", func(s *asset.Scene) { s.Lights = append(s.Lights, nil) }, "lights"},
		{"root with parent", func(s *asset.Scene) { s.Root.Parent = asset.NewNode("x") }, "nodes"},
		{"orphan child", func(s *asset.Scene) { s.Root.Children[0].Parent = nil }, "nodes"},
		{"wrong parent link", func(s *asset.Scene) { s.Root.Children[0].Parent = s.Root.Children[1] }, "nodes"},
		{"node mesh out of range", func(s *asset.Scene) { s.Root.FindNode("box").Meshes = []int{1} }, "nodes"},
		{"node mesh twice", func(s *asset.Scene) { s.Root.FindNode("box").Meshes = []int{0, 0} }, "nodes"},
		{"long node name", func(s *asset.Scene) { s.Root.FindNode("box").Name = strings.Repeat("x", asset.MaxStringLength+1) }, "nodes"},
		{"node name with NUL", func(s *asset.Scene) { s.Root.FindNode("box").Name = "bo\x00x" }, "nodes"},
		{"material index out of range", func(s *asset.Scene) { s.Meshes[0].MaterialIndex = 1 }, "meshes"},
		{"positions absent", func(s *asset.Scene) { s.Meshes[0].Vertices = nil }, "meshes"},
		{"no vertices", func(s *asset.Scene) { s.Meshes[0].NumVertices = 0 }, "meshes"},
		{"short normals", func(s *asset.Scene) { s.Meshes[0].Normals = make([]mathx.Vec3, 2) }, "meshes"},
		{"tangents without bitangents", func(s *asset.Scene) { s.Meshes[0].Tangents = make([]mathx.Vec3, 3) }, "meshes"},
		{"second uv channel without first", func(s *asset.Scene) { s.Meshes[0].TextureCoords[1] = make([]mathx.Vec3, 3) }, "meshes"},
		{"second color set without first", func(s *asset.Scene) { s.Meshes[0].Colors[1] = make([]asset.Color4, 3) }, "meshes"},
		{"no faces", func(s *asset.Scene) { s.Meshes[0].Faces = nil }, "meshes"},
		{"empty face", func(s *asset.Scene) { s.Meshes[0].Faces = append(s.Meshes[0].Faces, asset.Face{}) }, "meshes"},
		{"face index out of range", func(s *asset.Scene) { s.Meshes[0].Faces[0].Indices[2] = 3 }, "meshes"},
		{"undeclared primitive type", func(s *asset.Scene) { s.Meshes[0].PrimitiveTypes = asset.PrimitiveLine }, "meshes"},
		{"vertex referenced twice", func(s *asset.Scene) {
			m := s.Meshes[0]
			m.PrimitiveTypes |= asset.PrimitiveLine
			m.Faces = append(m.Faces, asset.Face{Indices: []int{0, 1}})
		}, "meshes"},
		{"bone vertex out of range", func(s *asset.Scene) {
			s.Meshes[0].Bones = []*asset.Bone{{Name: "b", Weights: []asset.VertexWeight{{VertexID: 5, Weight: 1}}}}
		}, "meshes"},
		{"bone without weights", func(s *asset.Scene) { s.Meshes[0].Bones = []*asset.Bone{{Name: "b"}} }, "meshes"},
		{"duplicate bone names", func(s *asset.Scene) {
			w := []asset.VertexWeight{{VertexID: 0, Weight: 0.5}}
			s.Meshes[0].Bones = []*asset.Bone{{Name: "b", Weights: w}, {Name: "b", Weights: w}}
		}, "meshes"},
		{"duplicate material names", func(s *asset.Scene) { s.Materials = append(s.Materials, asset.NewDefaultMaterial()) }, "materials"},
		{"empty property", func(s *asset.Scene) { s.Materials[0].SetFloat(asset.KeyOpacity, asset.TextureNone, 0) }, "materials"},
		{"texture numbering gap", func(s *asset.Scene) {
			s.Materials[0].SetString(asset.KeyTexture, asset.TextureDiffuse, 1, "a.png")
		}, "materials"},
		{"uv source beyond mesh channels", func(s *asset.Scene) {
			s.Materials[0].SetString(asset.KeyTexture, asset.TextureDiffuse, 0, "a.png")
			s.Materials[0].SetInt(asset.KeyUVSource, asset.TextureDiffuse, 0, 1)
			s.Meshes[0].TextureCoords[0] = make([]mathx.Vec3, 3)
		}, "materials"},
		{"uv source without texture", func(s *asset.Scene) {
			s.Materials[0].SetInt(asset.KeyUVSource, asset.TextureLightmap, 0, 0)
		}, "materials"},
		{"animation without channels", func(s *asset.Scene) {
			s.Animations = []*asset.Animation{{Name: "a"}}
		}, "animations"},
		{"channel without keys", func(s *asset.Scene) {
			s.Animations = []*asset.Animation{{Name: "a", Channels: []*asset.NodeAnim{{NodeName: "box"}}}}
		}, "animations"},
		{"duplicate camera names", func(s *asset.Scene) { s.Cameras = append(s.Cameras, asset.NewCamera("cam")) }, "cameras"},
		{"camera without node", func(s *asset.Scene) { s.Cameras[0].Name = "nowhere" }, "cameras"},
		{"camera matching two nodes", func(s *asset.Scene) { s.Root.FindNode("box").AddChild(asset.NewNode("cam")) }, "cameras"},
		{"camera far before near", func(s *asset.Scene) { s.Cameras[0].ClipPlaneFar = 0.05 }, "cameras"},
		{"camera fov too wide", func(s *asset.Scene) { s.Cameras[0].HorizontalFOV = 3.2 }, "cameras"},
		{"camera fov zero", func(s *asset.Scene) { s.Cameras[0].HorizontalFOV = 0 }, "cameras"},
		{"duplicate light names", func(s *asset.Scene) { s.Lights = append(s.Lights, asset.NewLight("sun")) }, "lights"},
		{"light type undefined", func(s *asset.Scene) { s.Lights[0].Type = asset.LightUndefined }, "lights"},
		{"light inner cone wider", func(s *asset.Scene) {
			s.Lights[0].AngleInnerCone = 1
			s.Lights[0].AngleOuterCone = 0.5
		}, "lights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScene()
			tt.mutate(s)
			requireInvalid(t, Validate(s, nil), tt.table)
		})
	}
}

func TestNonVerboseAllowsSharedVertices(t *testing.T) {
	s := validScene()
	m := s.Meshes[0]
	m.Faces = append(m.Faces, asset.Face{Indices: []int{2, 1, 0}})
	require.Error(t, Validate(s, nil))

	s.Flags |= asset.FlagNonVerbose
	assert.NoError(t, Validate(s, nil))
}

func TestIncompleteSceneWithoutMeshes(t *testing.T) {
	s := validScene()
	s.Meshes = nil
	s.Materials = nil
	s.Root.FindNode("box").Meshes = nil
	s.Flags |= asset.FlagIncomplete
	assert.NoError(t, Validate(s, nil))

	s.Cameras, s.Lights = nil, nil
	requireInvalid(t, Validate(s, nil), "scene")
}

func weightedScene(weights ...float32) *asset.Scene {
	s := validScene()
	for b, w := range weights {
		bone := &asset.Bone{Name: string(rune('a' + b))}
		for v := 0; v < 3; v++ {
			bone.Weights = append(bone.Weights, asset.VertexWeight{VertexID: v, Weight: w})
		}
		s.Meshes[0].Bones = append(s.Meshes[0].Bones, bone)
	}
	return s
}

func TestBoneWeightSums(t *testing.T) {
	sink := diag.Discard()
	require.NoError(t, Validate(weightedScene(0.5, 0.3), sink))
	warnings := sink.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "bone weight sum is not 1", warnings[0].Message)

	sink = diag.Discard()
	require.NoError(t, Validate(weightedScene(0.5, 0.502), sink))
	assert.Empty(t, sink.Warnings())
}

func hasWarning(sink *diag.Sink, msg string) bool {
	for _, e := range sink.Warnings() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *asset.Scene)
		want   string
	}{
		{"unreferenced vertex", func(s *asset.Scene) {
			m := s.Meshes[0]
			m.NumVertices = 4
			m.Vertices = append(m.Vertices, mathx.Vec3{Z: 1})
		}, "unreferenced vertices"},
		{"zero attenuation", func(s *asset.Scene) { s.Lights[0].AttenuationConstant = 0 }, "all attenuation factors are zero"},
		{"black light", func(s *asset.Scene) {
			s.Lights[0].ColorDiffuse = asset.Color3{}
			s.Lights[0].ColorSpecular = asset.Color3{}
		}, "all light colors are black"},
		{"transparent material", func(s *asset.Scene) {
			s.Materials[0].SetFloat(asset.KeyOpacity, asset.TextureNone, 0, 0)
		}, "material is fully transparent"},
		{"phong without shininess", func(s *asset.Scene) {
			s.Materials[0].SetInt(asset.KeyShadingModel, asset.TextureNone, 0, int32(asset.ShadingPhong))
		}, "specular shading model without shininess"},
		{"texture without uvs", func(s *asset.Scene) {
			s.Materials[0].SetString(asset.KeyTexture, asset.TextureDiffuse, 0, "a.png")
		}, "UV-mapped texture, but the mesh has no texture coordinates"},
		{"key past duration", func(s *asset.Scene) {
			s.Animations = []*asset.Animation{{Name: "a", Duration: 1, Channels: []*asset.NodeAnim{{
				NodeName:     "box",
				PositionKeys: []asset.VectorKey{{Time: 0}, {Time: 2}},
			}}}}
		}, "key time is past the animation duration"},
		{"keys out of order", func(s *asset.Scene) {
			s.Animations = []*asset.Animation{{Name: "a", Duration: 5, Channels: []*asset.NodeAnim{{
				NodeName:     "box",
				RotationKeys: []asset.QuatKey{{Time: 1}, {Time: 1}},
			}}}}
		}, "key times are not increasing"},
		{"channel without target", func(s *asset.Scene) {
			s.Animations = []*asset.Animation{{Name: "a", Duration: 5, Channels: []*asset.NodeAnim{{
				NodeName:    "ghost",
				ScalingKeys: []asset.VectorKey{{Time: 0}},
			}}}}
		}, "channel targets no node and no bone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScene()
			tt.mutate(s)
			sink := diag.Discard()
			require.NoError(t, Validate(s, sink))
			assert.True(t, hasWarning(sink, tt.want), "warnings: %v", sink.Warnings())
		})
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	s := weightedScene(0.4)
	before := s.Clone()
	_ = Validate(s, nil)
	assert.Equal(t, before.Meshes, s.Meshes)
	assert.Equal(t, before.Materials, s.Materials)
}
