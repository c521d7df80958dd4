package irr

import (
	"strings"

	"github.com/Faultbox/irrscene/pkg/asset"
)

// MaterialFlags records the Irrlicht material type of a material entry.
type MaterialFlags uint32

const (
	MatSolid MaterialFlags = 1 << iota
	MatTransVertexAlpha
	MatTransAlphaChannel
	MatTransAdd
	MatLightmap
	MatLightmapAdd
	MatLightmapModulate2
	MatLightmapModulate4
	MatLightmapLight
	MatSolid2Layer
	MatDetailMap
	MatNormalMap
	MatParallaxMap
	MatSphereMap
	MatReflection
)

// MatLightmapFamily covers every lightmap material type.
const MatLightmapFamily = MatLightmap | MatLightmapAdd | MatLightmapModulate2 | MatLightmapModulate4 | MatLightmapLight

// Has reports whether all bits of f2 are set.
func (f MaterialFlags) Has(f2 MaterialFlags) bool { return f&f2 == f2 }

// Any reports whether any bit of f2 is set.
func (f MaterialFlags) Any(f2 MaterialFlags) bool { return f&f2 != 0 }

var materialTypes = map[string]MaterialFlags{
	"solid":                         MatSolid,
	"solid_2layer":                  MatSolid2Layer,
	"lightmap":                      MatLightmap,
	"lightmap_add":                  MatLightmap | MatLightmapAdd,
	"lightmap_m2":                   MatLightmap | MatLightmapModulate2,
	"lightmap_m4":                   MatLightmap | MatLightmapModulate4,
	"lightmap_light":                MatLightmap | MatLightmapLight,
	"lightmap_light_m2":             MatLightmap | MatLightmapLight | MatLightmapModulate2,
	"lightmap_light_m4":             MatLightmap | MatLightmapLight | MatLightmapModulate4,
	"detail_map":                    MatDetailMap | MatSolid2Layer,
	"sphere_map":                    MatSphereMap,
	"reflection_2layer":             MatReflection | MatSolid2Layer,
	"trans_add":                     MatTransAdd,
	"trans_alphach":                 MatTransAlphaChannel,
	"trans_alphach_ref":             MatTransAlphaChannel,
	"trans_vertex_alpha":            MatTransVertexAlpha,
	"trans_reflection_2layer":       MatReflection | MatSolid2Layer | MatTransVertexAlpha,
	"normalmap_solid":               MatNormalMap,
	"normalmap_trans_add":           MatNormalMap | MatTransAdd,
	"normalmap_trans_vertexalpha":   MatNormalMap | MatTransVertexAlpha,
	"parallaxmap_solid":             MatParallaxMap,
	"parallaxmap_trans_add":         MatParallaxMap | MatTransAdd,
	"parallaxmap_trans_vertexalpha": MatParallaxMap | MatTransVertexAlpha,
	"onetexture_blend":              MatTransAdd,
}

// MaterialEntry pairs a parsed material with its type flags.
type MaterialEntry struct {
	Material *asset.Material
	Flags    MaterialFlags
}

// materialRecord accumulates one material attributes block.
type materialRecord struct {
	mat       *asset.Material
	flags     MaterialFlags
	textures  [4]string
	shininess float32
	gouraud   bool
	lighting  bool
}

func newMaterialRecord() *materialRecord {
	return &materialRecord{
		mat:      &asset.Material{},
		flags:    MatSolid,
		gouraud:  true,
		lighting: true,
	}
}

// set routes one leaf element of the block. Unknown names are ignored.
func (r *materialRecord) set(kind, name, value string) {
	switch strings.ToLower(kind) {
	case "enum", "string":
		if name == "Type" {
			if f, ok := materialTypes[strings.ToLower(value)]; ok {
				r.flags = f
			}
		}
	case "color":
		c := parseColorHex(value)
		switch name {
		case "Diffuse":
			r.mat.SetColor(asset.KeyColorDiffuse, rgb(c))
		case "Ambient":
			r.mat.SetColor(asset.KeyColorAmbient, rgb(c))
		case "Specular":
			r.mat.SetColor(asset.KeyColorSpecular, rgb(c))
		case "Emissive":
			r.mat.SetColor(asset.KeyColorEmissive, rgb(c))
		}
	case "float":
		if name == "Shininess" {
			r.shininess = parseFloat(value)
		}
	case "texture":
		if strings.HasPrefix(name, "Texture") {
			if i := parseInt(name[len("Texture"):]); i >= 1 && i <= len(r.textures) {
				r.textures[i-1] = strings.TrimSpace(value)
			}
		}
	case "bool":
		b := parseBool(value)
		switch name {
		case "Wireframe":
			if b {
				r.mat.SetInt(asset.KeyWireframe, asset.TextureNone, 0, 1)
			}
		case "BackfaceCulling":
			if !b {
				r.mat.SetInt(asset.KeyTwoSided, asset.TextureNone, 0, 1)
			}
		case "GouraudShading":
			r.gouraud = b
		case "Lighting":
			r.lighting = b
		}
	}
}

// finish resolves shading and texture slots once the whole block is read,
// since Type may follow the textures.
func (r *materialRecord) finish() MaterialEntry {
	shading := asset.ShadingGouraud
	switch {
	case !r.lighting:
		shading = asset.ShadingNone
	case !r.gouraud:
		shading = asset.ShadingFlat
	case r.shininess > 0:
		shading = asset.ShadingPhong
	}
	r.mat.SetInt(asset.KeyShadingModel, asset.TextureNone, 0, int32(shading))
	if r.shininess > 0 {
		r.mat.SetFloat(asset.KeyShininess, asset.TextureNone, 0, r.shininess)
	}

	if t := r.textures[0]; t != "" {
		r.mat.SetString(asset.KeyTexture, asset.TextureDiffuse, 0, t)
	}
	if t := r.textures[1]; t != "" {
		switch {
		case r.flags.Any(MatLightmapFamily):
			r.mat.SetString(asset.KeyTexture, asset.TextureLightmap, 0, t)
		case r.flags.Any(MatNormalMap | MatParallaxMap):
			r.mat.SetString(asset.KeyTexture, asset.TextureNormals, 0, t)
		case r.flags.Any(MatSolid2Layer):
			r.mat.SetString(asset.KeyTexture, asset.TextureDiffuse, r.mat.TextureCount(asset.TextureDiffuse), t)
		}
	}
	return MaterialEntry{Material: r.mat, Flags: r.flags}
}
