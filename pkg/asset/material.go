package asset

import "strings"

// Material property keys.
const (
	KeyName              = "?mat.name"
	KeyTwoSided          = "$mat.twosided"
	KeyShadingModel      = "$mat.shadingm"
	KeyWireframe         = "$mat.wireframe"
	KeyOpacity           = "$mat.opacity"
	KeyShininess         = "$mat.shininess"
	KeyShininessStrength = "$mat.shinpercent"
	KeyColorDiffuse      = "$clr.diffuse"
	KeyColorAmbient      = "$clr.ambient"
	KeyColorSpecular     = "$clr.specular"
	KeyColorEmissive     = "$clr.emissive"
	KeyTexture           = "$tex.file"
	KeyUVSource          = "$tex.uvwsrc"
	KeyTextureBlend      = "$tex.blend"
)

// DefaultMaterialName names the material synthesized for geometry without one.
const DefaultMaterialName = "DefaultMaterial"

// TextureType is the semantic slot of a texture property.
type TextureType int

const (
	TextureNone TextureType = iota
	TextureDiffuse
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureNormals
	TextureShininess
	TextureOpacity
	TextureDisplacement
	TextureLightmap
	TextureReflection
)

// TextureTypes lists every texture slot, in declaration order.
var TextureTypes = []TextureType{
	TextureDiffuse, TextureSpecular, TextureAmbient, TextureEmissive, TextureHeight,
	TextureNormals, TextureShininess, TextureOpacity, TextureDisplacement,
	TextureLightmap, TextureReflection,
}

func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureAmbient:
		return "ambient"
	case TextureEmissive:
		return "emissive"
	case TextureHeight:
		return "height"
	case TextureNormals:
		return "normals"
	case TextureShininess:
		return "shininess"
	case TextureOpacity:
		return "opacity"
	case TextureDisplacement:
		return "displacement"
	case TextureLightmap:
		return "lightmap"
	case TextureReflection:
		return "reflection"
	default:
		return "none"
	}
}

// ShadingMode values stored under KeyShadingModel.
type ShadingMode int32

const (
	ShadingFlat ShadingMode = iota + 1
	ShadingGouraud
	ShadingPhong
	ShadingBlinn
	ShadingToon
	ShadingOrenNayar
	ShadingMinnaert
	ShadingCookTorrance
	ShadingNone
	ShadingFresnel
)

// PropertyType is the payload type of a material property.
type PropertyType int

const (
	PropertyFloat PropertyType = iota + 1
	PropertyInteger
	PropertyString
)

func (t PropertyType) String() string {
	switch t {
	case PropertyFloat:
		return "float"
	case PropertyInteger:
		return "integer"
	case PropertyString:
		return "string"
	default:
		return "unknown"
	}
}

// MaterialProperty is one typed key/value entry.
type MaterialProperty struct {
	Key      string
	Semantic TextureType
	Index    int
	Type     PropertyType
	Floats   []float32
	Ints     []int32
	Str      string
}

// Empty reports whether the property carries no payload.
func (p *MaterialProperty) Empty() bool {
	switch p.Type {
	case PropertyFloat:
		return len(p.Floats) == 0
	case PropertyInteger:
		return len(p.Ints) == 0
	case PropertyString:
		return false
	default:
		return len(p.Floats) == 0 && len(p.Ints) == 0 && p.Str == ""
	}
}

// Material is an ordered bag of properties.
type Material struct {
	Properties []*MaterialProperty
}

// NewMaterial returns a material carrying only a name.
func NewMaterial(name string) *Material {
	m := &Material{}
	if name != "" {
		m.SetString(KeyName, TextureNone, 0, name)
	}
	return m
}

// Property returns the property with the given key, semantic and index.
func (m *Material) Property(key string, sem TextureType, index int) *MaterialProperty {
	for _, p := range m.Properties {
		if p != nil && p.Key == key && p.Semantic == sem && p.Index == index {
			return p
		}
	}
	return nil
}

// Set stores p, replacing a property with the same key, semantic and index.
func (m *Material) Set(p *MaterialProperty) {
	for i, old := range m.Properties {
		if old != nil && old.Key == p.Key && old.Semantic == p.Semantic && old.Index == p.Index {
			m.Properties[i] = p
			return
		}
	}
	m.Properties = append(m.Properties, p)
}

// SetFloat stores a float property.
func (m *Material) SetFloat(key string, sem TextureType, index int, v ...float32) {
	m.Set(&MaterialProperty{Key: key, Semantic: sem, Index: index, Type: PropertyFloat, Floats: v})
}

// SetInt stores an integer property.
func (m *Material) SetInt(key string, sem TextureType, index int, v ...int32) {
	m.Set(&MaterialProperty{Key: key, Semantic: sem, Index: index, Type: PropertyInteger, Ints: v})
}

// SetString stores a string property.
func (m *Material) SetString(key string, sem TextureType, index int, v string) {
	m.Set(&MaterialProperty{Key: key, Semantic: sem, Index: index, Type: PropertyString, Str: v})
}

// SetColor stores an RGB color property.
func (m *Material) SetColor(key string, c Color3) {
	m.SetFloat(key, TextureNone, 0, c.R, c.G, c.B)
}

// Float returns the first float of a property.
func (m *Material) Float(key string, sem TextureType, index int) (float32, bool) {
	p := m.Property(key, sem, index)
	if p == nil || p.Type != PropertyFloat || len(p.Floats) == 0 {
		return 0, false
	}
	return p.Floats[0], true
}

// Int returns the first integer of a property.
func (m *Material) Int(key string, sem TextureType, index int) (int32, bool) {
	p := m.Property(key, sem, index)
	if p == nil || p.Type != PropertyInteger || len(p.Ints) == 0 {
		return 0, false
	}
	return p.Ints[0], true
}

// String returns a string property.
func (m *Material) String(key string, sem TextureType, index int) (string, bool) {
	p := m.Property(key, sem, index)
	if p == nil || p.Type != PropertyString {
		return "", false
	}
	return p.Str, true
}

// Color returns an RGB color property.
func (m *Material) Color(key string) (Color3, bool) {
	p := m.Property(key, TextureNone, 0)
	if p == nil || p.Type != PropertyFloat || len(p.Floats) < 3 {
		return Color3{}, false
	}
	return Color3{p.Floats[0], p.Floats[1], p.Floats[2]}, true
}

// Name returns the material name, or "".
func (m *Material) Name() string {
	s, _ := m.String(KeyName, TextureNone, 0)
	return s
}

// SetName replaces the material name.
func (m *Material) SetName(name string) {
	m.SetString(KeyName, TextureNone, 0, name)
}

// TextureCount returns the number of texture file properties in slot sem.
func (m *Material) TextureCount(sem TextureType) int {
	n := 0
	for _, p := range m.Properties {
		if p != nil && p.Key == KeyTexture && p.Semantic == sem {
			n++
		}
	}
	return n
}

// Texture returns the file of texture index in slot sem.
func (m *Material) Texture(sem TextureType, index int) (string, bool) {
	return m.String(KeyTexture, sem, index)
}

// Clone returns a deep copy of the material.
func (m *Material) Clone() *Material {
	out := &Material{Properties: make([]*MaterialProperty, len(m.Properties))}
	for i, p := range m.Properties {
		if p == nil {
			continue
		}
		pc := *p
		pc.Floats = append([]float32(nil), p.Floats...)
		pc.Ints = append([]int32(nil), p.Ints...)
		out.Properties[i] = &pc
	}
	return out
}

// IsTextureKey reports whether key belongs to the texture stack.
func IsTextureKey(key string) bool {
	return strings.HasPrefix(key, "$tex.")
}

// NewDefaultMaterial returns the gray material used for geometry without one.
func NewDefaultMaterial() *Material {
	m := NewMaterial(DefaultMaterialName)
	m.SetColor(KeyColorDiffuse, Color3{0.6, 0.6, 0.6})
	return m
}
