package asset

import (
	"math"

	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// Camera is a viewpoint attached to the node of the same name.
type Camera struct {
	Name     string
	Position mathx.Vec3
	Up       mathx.Vec3
	LookAt   mathx.Vec3
	// HorizontalFOV is the full horizontal field of view in radians.
	HorizontalFOV float32
	ClipPlaneNear float32
	ClipPlaneFar  float32
	// Aspect is width/height; 0 means unknown.
	Aspect float32
}

// NewCamera returns a camera with the usual defaults.
func NewCamera(name string) *Camera {
	return &Camera{
		Name:          name,
		Up:            mathx.Vec3{Y: 1},
		LookAt:        mathx.Vec3{Z: 1},
		HorizontalFOV: math.Pi / 4,
		ClipPlaneNear: 0.1,
		ClipPlaneFar:  1000,
	}
}

// LightType is the kind of a light source.
type LightType int

const (
	LightUndefined LightType = iota
	LightDirectional
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	default:
		return "undefined"
	}
}

// Light is a light source attached to the node of the same name.
type Light struct {
	Name      string
	Type      LightType
	Position  mathx.Vec3
	Direction mathx.Vec3

	AttenuationConstant  float32
	AttenuationLinear    float32
	AttenuationQuadratic float32

	ColorDiffuse  Color3
	ColorSpecular Color3
	ColorAmbient  Color3

	// Cone angles in radians, only meaningful for spot lights.
	AngleInnerCone float32
	AngleOuterCone float32
}

// NewLight returns a point light with white diffuse and specular colors.
func NewLight(name string) *Light {
	return &Light{
		Name:                name,
		Type:                LightPoint,
		Direction:           mathx.Vec3{Z: 1},
		AttenuationConstant: 1,
		ColorDiffuse:        Color3{1, 1, 1},
		ColorSpecular:       Color3{1, 1, 1},
		AngleInnerCone:      2 * math.Pi,
		AngleOuterCone:      2 * math.Pi,
	}
}
