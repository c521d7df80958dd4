package validate

import (
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
)

func (v *validator) materials() error {
	names := make(map[string]int, len(v.s.Materials))
	for i, mat := range v.s.Materials {
		if err := v.material(i, mat); err != nil {
			return err
		}
		name := mat.Name()
		if name == "" {
			continue
		}
		if prev, ok := names[name]; ok {
			return fail("materials", i, "name %q is already used by material %d", name, prev)
		}
		names[name] = i
	}
	return nil
}

func (v *validator) material(i int, mat *asset.Material) error {
	for k, p := range mat.Properties {
		if p == nil {
			return fail("materials", i, "property %d is nil (material has %d)", k, len(mat.Properties))
		}
		if p.Key == "" {
			return fail("materials", i, "property %d has no key", k)
		}
		if p.Empty() {
			return fail("materials", i, "property %d (%s) has no data", k, p.Key)
		}
		switch p.Type {
		case asset.PropertyFloat, asset.PropertyInteger:
		case asset.PropertyString:
			if err := checkString("materials", i, p.Key, p.Str); err != nil {
				return err
			}
		default:
			return fail("materials", i, "property %d (%s) has unknown type %d", k, p.Key, int(p.Type))
		}
		if p.Key == asset.KeyTexture && p.Type != asset.PropertyString {
			return fail("materials", i, "property %s is expected to be a string", p.Key)
		}
		if p.Key == asset.KeyUVSource && p.Type != asset.PropertyInteger {
			return fail("materials", i, "property %s is expected to be an integer", p.Key)
		}
	}

	for _, sem := range asset.TextureTypes {
		if err := v.textureSlot(i, mat, sem); err != nil {
			return err
		}
	}

	if sh, ok := mat.Int(asset.KeyShadingModel, asset.TextureNone, 0); ok {
		switch asset.ShadingMode(sh) {
		case asset.ShadingPhong, asset.ShadingBlinn, asset.ShadingCookTorrance:
			if _, ok := mat.Float(asset.KeyShininess, asset.TextureNone, 0); !ok {
				v.warn("materials", i, "specular shading model without shininess")
			}
			if s, ok := mat.Float(asset.KeyShininessStrength, asset.TextureNone, 0); ok && s == 0 {
				v.warn("materials", i, "specular shading model with zero shininess strength")
			}
		}
	}

	if o, ok := mat.Float(asset.KeyOpacity, asset.TextureNone, 0); ok && o == 0 {
		v.warn("materials", i, "material is fully transparent")
	}
	return nil
}

// textureSlot checks texture numbering in one semantic slot and the UV
// channels its textures select on meshes using the material.
func (v *validator) textureSlot(i int, mat *asset.Material, sem asset.TextureType) error {
	count, maxIndex := 0, -1
	for _, p := range mat.Properties {
		if p.Key == asset.KeyTexture && p.Semantic == sem {
			count++
			if p.Index > maxIndex {
				maxIndex = p.Index
			}
		}
	}
	if maxIndex+1 != count {
		return fail("materials", i, "%s texture #%d is set, but there are only %d %s textures", sem, maxIndex, count, sem)
	}

	uvSpecified := false
	for _, p := range mat.Properties {
		if p.Key != asset.KeyUVSource || p.Semantic != sem {
			continue
		}
		uvSpecified = true
		if p.Index < 0 || p.Index >= count {
			return fail("materials", i, "UV source for %s texture #%d, but there are only %d %s textures", sem, p.Index, count, sem)
		}
		channel := int(p.Ints[0])
		for m, mesh := range v.s.Meshes {
			if mesh.MaterialIndex != i {
				continue
			}
			if n := mesh.NumUVChannels(); channel < 0 || channel >= n {
				return fail("materials", i, "UV source %d of %s texture #%d is invalid, mesh %d has only %d UV channels",
					channel, sem, p.Index, m, n)
			}
		}
	}

	if count > 0 && !uvSpecified {
		for m, mesh := range v.s.Meshes {
			if mesh.MaterialIndex == i && !mesh.HasTextureCoords(0) {
				v.warn("materials", i, "UV-mapped texture, but the mesh has no texture coordinates",
					zap.Stringer("slot", sem), zap.Int("mesh", m))
			}
		}
	}
	return nil
}
